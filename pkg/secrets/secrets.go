package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// API is the slice of the Secrets Manager client this package needs.
type API interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Get fetches a JSON secret and decodes it into dst.
func Get(ctx context.Context, client API, name string, dst interface{}) error {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &name,
	})
	if err != nil {
		return fmt.Errorf("get secret %s failed: %w", name, err)
	}
	if result.SecretString == nil {
		return fmt.Errorf("secret %s has no string value", name)
	}

	r := json.NewDecoder(strings.NewReader(*result.SecretString))
	r.UseNumber()
	if err := r.Decode(dst); err != nil {
		return fmt.Errorf("parse secret %s JSON failed: %w", name, err)
	}
	return nil
}
