package storage

import "context"

// Namespace scopes every key of next under "profile:<id>:", the server-side
// equivalent of storage that belongs to one browser profile.
func Namespace(next Storage, profileID string) Storage {
	return namespaced{next: next, prefix: "profile:" + profileID + ":"}
}

type namespaced struct {
	next   Storage
	prefix string
}

func (n namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.next.Get(ctx, n.prefix+key)
}

func (n namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.next.Set(ctx, n.prefix+key, value)
}

func (n namespaced) Delete(ctx context.Context, key string) error {
	return n.next.Delete(ctx, n.prefix+key)
}
