package awsx

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterGetter is the part of the SSM API the secret cache needs.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SecretCache resolves one decrypted SSM parameter and holds the value for
// the lifetime of the process. The parameter is fetched on first use; a
// failed fetch is not cached, so the next caller retries.
type SecretCache struct {
	client ParameterGetter
	name   string

	mu    sync.Mutex
	value string
	ok    bool
}

// NewSecretCache creates a cache for the named parameter.
func NewSecretCache(client ParameterGetter, name string) *SecretCache {
	return &SecretCache{client: client, name: name}
}

// Get returns the decrypted parameter value, fetching it at most once.
func (s *SecretCache) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ok {
		return s.value, nil
	}

	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch parameter %s: %w", s.name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", s.name)
	}

	s.value = *out.Parameter.Value
	s.ok = true
	return s.value, nil
}
