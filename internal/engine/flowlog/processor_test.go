package flowlog

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"EagleEye/internal/model"
)

type fakeStore struct {
	objects map[string][]byte
	deleted []string
	getErr  error
}

func (f *fakeStore) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[*params.Key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeStore) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	seen   []string
	failID string
}

func (f *fakePublisher) Publish(ctx context.Context, s model.ConnectionSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, s.ID)
	if f.failID != "" && s.ID == f.failID {
		return errors.New("downstream rejected summary")
	}
	return nil
}

const twoTupleContent = "2 1 eni-1 10.0.0.5 10.0.0.9 443 51000 6 10 1500 1000000 1000060 ACCEPT OK\n" +
	"2 1 eni-1 10.0.0.7 10.0.0.9 443 51000 6 5 500 1000000 1000060 REJECT OK\n"

func TestProcessObjectPublishesAndDeletes(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"year=2025/log.txt": []byte(twoTupleContent)}}
	pub := &fakePublisher{}
	p := NewProcessor(store, []model.Publisher{pub}, nil)

	outcome, err := p.ProcessObject(context.Background(), "bucket", "year%3D2025/log.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Summaries != 2 || outcome.Published != 2 || outcome.Failed != 0 {
		t.Errorf("outcome = %+v", outcome)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "year=2025/log.txt" {
		t.Errorf("expected decoded key to be deleted, got %v", store.deleted)
	}
	if len(pub.seen) != 2 {
		t.Errorf("expected 2 publishes, got %v", pub.seen)
	}
}

func TestProcessObjectGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(twoTupleContent)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	store := &fakeStore{objects: map[string][]byte{"log.txt.gz": buf.Bytes()}}
	p := NewProcessor(store, nil, nil)

	outcome, err := p.ProcessObject(context.Background(), "bucket", "log.txt.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Summaries != 2 {
		t.Errorf("summaries = %d, want 2", outcome.Summaries)
	}
}

func TestProcessObjectPublishFailureIsPerItem(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"log.txt": []byte(twoTupleContent)}}
	pub := &fakePublisher{failID: "10.0.0.5:443->10.0.0.9:51000:6"}
	p := NewProcessor(store, []model.Publisher{pub}, nil)

	outcome, err := p.ProcessObject(context.Background(), "bucket", "log.txt")
	if err != nil {
		t.Fatalf("a failed publish must not fail the file: %v", err)
	}
	if outcome.Published != 1 || outcome.Failed != 1 {
		t.Errorf("outcome = %+v, want 1 published / 1 failed", outcome)
	}
	if len(store.deleted) != 1 {
		t.Error("the file must still be deleted after all publishes were attempted")
	}
}

func TestProcessObjectDownloadFailureIsFatal(t *testing.T) {
	store := &fakeStore{getErr: errors.New("access denied")}
	p := NewProcessor(store, nil, nil)

	if _, err := p.ProcessObject(context.Background(), "bucket", "log.txt"); err == nil {
		t.Fatal("expected a fatal error for download failures")
	}
	if len(store.deleted) != 0 {
		t.Error("failed downloads must not delete the source object")
	}
}

func TestProcessObjectBadGzipIsFatal(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{"log.txt.gz": []byte("not gzip")}}
	p := NewProcessor(store, nil, nil)
	if _, err := p.ProcessObject(context.Background(), "bucket", "log.txt.gz"); err == nil {
		t.Fatal("expected a fatal error for corrupt gzip content")
	}
	if len(store.deleted) != 0 {
		t.Error("failed decompression must not delete the source object")
	}
}

func TestProcessFileLocal(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/flow.log"
	if err := writeFile(path, twoTupleContent); err != nil {
		t.Fatal(err)
	}

	p := NewProcessor(nil, nil, nil)
	outcome, err := p.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Summaries != 2 || outcome.Processed != 2 {
		t.Errorf("outcome = %+v", outcome)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
