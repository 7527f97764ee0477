// Package secrets resolves the webhook verification secret from an external
// parameter source by logical name.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Provider looks up secret material by logical name.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Env resolves secrets from environment variables. The logical name
// "/github/metrics/secret-token" maps to GITHUB_METRICS_SECRET_TOKEN.
type Env struct{}

func (Env) GetSecret(_ context.Context, name string) (string, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.Trim(name, "/"), "/", "_"))
	key = strings.ReplaceAll(key, "-", "_")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("secret %s: environment variable %s is not set", name, key)
	}
	return v, nil
}

// File resolves secrets from files under a base directory, one secret per
// file with the logical name as relative path. Trailing newlines are
// stripped, matching how secret files are usually mounted.
type File struct {
	Dir string
}

func (f File) GetSecret(_ context.Context, name string) (string, error) {
	path := f.Dir + "/" + strings.Trim(name, "/")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("secret %s: %w", name, err)
	}
	v := strings.TrimRight(string(data), "\r\n")
	if v == "" {
		return "", fmt.Errorf("secret %s: file %s is empty", name, path)
	}
	return v, nil
}

// Static serves fixed values. Test and local-dev provider.
type Static map[string]string

func (s Static) GetSecret(_ context.Context, name string) (string, error) {
	v, ok := s[name]
	if !ok {
		return "", fmt.Errorf("secret %s: not configured", name)
	}
	return v, nil
}

// Cached wraps a Provider with a process-lifetime cache. The first successful
// fetch per name is served forever after; secret rotation takes effect on
// restart. Concurrent first fetches may race, which is harmless since the
// upstream value is stable between rotations.
type Cached struct {
	inner Provider

	mu     sync.Mutex
	values map[string]string
}

// NewCached wraps inner with caching.
func NewCached(inner Provider) *Cached {
	return &Cached{inner: inner, values: make(map[string]string)}
}

func (c *Cached) GetSecret(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	v, ok := c.values[name]
	c.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err := c.inner.GetSecret(ctx, name)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.values[name] = v
	c.mu.Unlock()
	return v, nil
}
