package security

import (
	"context"
	"errors"
	"fmt"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretSource yields the session signing secret. Implementations are safe
// for concurrent use.
type SecretSource interface {
	Secret(ctx context.Context) (string, error)
}

// StaticSecretSource serves a fixed secret, used in development and tests.
type StaticSecretSource string

func (s StaticSecretSource) Secret(context.Context) (string, error) {
	if s == "" {
		return "", errors.New("static session secret is empty")
	}
	return string(s), nil
}

type secretFetcher interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerSource fetches the secret from AWS Secrets Manager at most
// once per process and caches it in memory for the process lifetime. A
// rotated secret only takes effect after a restart; that lifecycle is the
// contract, not an accident.
type SecretsManagerSource struct {
	client secretFetcher
	arn    string

	mu     sync.Mutex
	cached string
}

func NewSecretsManagerSource(ctx context.Context, region, arn string) (*SecretsManagerSource, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SecretsManagerSource{
		client: secretsmanager.NewFromConfig(awsCfg),
		arn:    arn,
	}, nil
}

func newSecretsManagerSourceWithClient(client secretFetcher, arn string) *SecretsManagerSource {
	return &SecretsManagerSource{client: client, arn: arn}
}

// Secret returns the cached value after the first successful fetch. Failed
// fetches are not cached, so a transient Secrets Manager outage does not
// wedge the process.
func (s *SecretsManagerSource) Secret(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != "" {
		return s.cached, nil
	}
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &s.arn,
	})
	if err != nil {
		return "", fmt.Errorf("fetch session secret: %w", err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", errors.New("session secret has no string value")
	}
	s.cached = *out.SecretString
	return s.cached, nil
}
