package kv

import "context"

type prefixed struct {
	inner  Store
	prefix string
}

// WithPrefix scopes every key of inner under prefix. Close is a no-op so many
// scoped views can share one backend.
func WithPrefix(inner Store, prefix string) Store {
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Ping(ctx context.Context) error {
	return p.inner.Ping(ctx)
}

func (p *prefixed) Close() error { return nil }
