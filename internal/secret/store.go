package secret

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
)

// SecretsManagerClient is the subset of the Secrets Manager API the store uses.
type SecretsManagerClient interface {
	GetSecretValue(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(context.Context, *secretsmanager.PutSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
}

// Store reads and writes DatabaseSecret records by name.
type Store struct {
	client SecretsManagerClient
}

func NewStore(client SecretsManagerClient) *Store {
	return &Store{client: client}
}

func NewStoreFromConfig(cfg aws.Config) *Store {
	return NewStore(secretsmanager.NewFromConfig(cfg))
}

// Get fetches and decodes the current version of the named secret.
func (s *Store) Get(ctx context.Context, name string) (DatabaseSecret, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(name)})
	if err != nil {
		return DatabaseSecret{}, classify(name, "read", err)
	}
	if out.SecretString == nil {
		return DatabaseSecret{}, fmt.Errorf("%w: read %q: %w", ErrStore, name, fmt.Errorf("%w: no secret string", ErrMalformed))
	}

	sec, err := Decode([]byte(aws.ToString(out.SecretString)))
	if err != nil {
		return DatabaseSecret{}, fmt.Errorf("%w: read %q: %w", ErrStore, name, err)
	}
	return sec, nil
}

// Put stores sec as a new version of the named secret.
func (s *Store) Put(ctx context.Context, name string, sec DatabaseSecret) error {
	payload, err := sec.Encode()
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", ErrStore, name, err)
	}
	_, err = s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(string(payload)),
	})
	if err != nil {
		return classify(name, "write", err)
	}
	return nil
}

func classify(name, op string, err error) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s %q: %w", ErrStore, op, name, ErrNotFound)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s %q: %s: %w", ErrStore, op, name, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%w: %s %q: %w", ErrStore, op, name, err)
}
