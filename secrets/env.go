// Package secrets resolves named secrets at call time.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"easychat/errors"
)

// EnvStore resolves secrets from the process environment on every call.
// Nothing is cached: rotating a secret takes effect on the next resolve.
//
// A name suffixed with "_FILE" in the environment indirects through a file,
// the usual pattern for container secret mounts.
type EnvStore struct{}

func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// Resolve implements contract.SecretStore.
func (s *EnvStore) Resolve(_ context.Context, name string) (string, error) {
	if value, ok := os.LookupEnv(name); ok && value != "" {
		return value, nil
	}

	if path, ok := os.LookupEnv(name + "_FILE"); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading secret file for %s: %w", name, err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	return "", fmt.Errorf("%w: %s", errors.ErrSecretNotFound, name)
}
