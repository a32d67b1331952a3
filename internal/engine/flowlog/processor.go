package flowlog

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"EagleEye/internal/model"
)

// ObjectStore is the part of the S3 API the processor needs.
type ObjectStore interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Outcome is the structured result of processing one file: partial progress
// is always visible, a bare pass/fail is never enough.
type Outcome struct {
	Summaries int `json:"summaries_processed"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
	Processed int `json:"lines_processed"`
	Skipped   int `json:"lines_skipped"`
}

// Processor drives one flow-log file end to end: download, decompress,
// aggregate, publish every summary, then delete the source object. Publish
// failures are per-item counts; only download/decompress errors are fatal.
type Processor struct {
	store      ObjectStore
	publishers []model.Publisher
	writers    []model.SummaryWriter
	log        *logrus.Entry
}

// NewProcessor creates a processor over the given object store, publishers,
// and optional batch writers.
func NewProcessor(store ObjectStore, publishers []model.Publisher, writers []model.SummaryWriter) *Processor {
	return &Processor{
		store:      store,
		publishers: publishers,
		writers:    writers,
		log:        logrus.WithField("component", "flowlog"),
	}
}

// ProcessObject handles one S3 object. The key may arrive URL-encoded from an
// S3 event (Hive partitioning encodes "=" as "%3D") and is decoded first.
func (p *Processor) ProcessObject(ctx context.Context, bucket, encodedKey string) (Outcome, error) {
	key, err := url.PathUnescape(encodedKey)
	if err != nil {
		key = encodedKey
	}
	p.log.WithFields(logrus.Fields{"bucket": bucket, "key": key}).Info("processing flow-log file")

	obj, err := p.store.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	defer obj.Body.Close()

	outcome, err := p.process(ctx, obj.Body, strings.HasSuffix(key, ".gz"))
	if err != nil {
		return Outcome{}, err
	}

	// The source object goes away only after every summary was attempted.
	if _, err := p.store.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		p.log.WithError(err).WithField("key", key).Warn("failed to delete processed file")
	}

	return outcome, nil
}

// ProcessFile handles one local file, for CLI runs against downloaded logs.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return p.process(ctx, f, strings.HasSuffix(path, ".gz"))
}

func (p *Processor) process(ctx context.Context, body io.Reader, gzipped bool) (Outcome, error) {
	if gzipped {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to decompress flow log: %w", err)
		}
		defer gz.Close()
		body = gz
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read flow log: %w", err)
	}

	agg := NewAggregator()
	for _, line := range strings.Split(string(content), "\n") {
		agg.AddLine(line)
	}
	summaries := agg.Finalize(time.Now())
	counts := agg.Counts()

	outcome := Outcome{
		Summaries: len(summaries),
		Processed: counts.Processed,
		Skipped:   counts.Skipped,
	}
	published, failed := p.publishAll(ctx, summaries)
	outcome.Published = published
	outcome.Failed = failed

	p.log.WithFields(logrus.Fields{
		"summaries": outcome.Summaries,
		"published": outcome.Published,
		"failed":    outcome.Failed,
		"skipped":   outcome.Skipped,
	}).Info("flow-log file complete")
	return outcome, nil
}

// publishAll fans the batch out to the writers and pushes each summary to
// every publisher. Publishes run concurrently; one failure never blocks the
// rest.
func (p *Processor) publishAll(ctx context.Context, summaries map[string]model.ConnectionSummary) (published, failed int) {
	if len(summaries) == 0 {
		return 0, 0
	}

	batch := make([]model.ConnectionSummary, 0, len(summaries))
	for _, s := range summaries {
		batch = append(batch, s)
	}
	for _, w := range p.writers {
		if err := w.Write(ctx, batch); err != nil {
			p.log.WithError(err).Warn("summary batch write failed")
		}
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, s := range batch {
		for _, pub := range p.publishers {
			wg.Add(1)
			go func(pub model.Publisher, s model.ConnectionSummary) {
				defer wg.Done()
				err := pub.Publish(ctx, s)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					p.log.WithError(err).WithField("id", s.ID).Warn("publish failed")
					failed++
				} else {
					published++
				}
			}(pub, s)
		}
	}
	wg.Wait()
	return published, failed
}
