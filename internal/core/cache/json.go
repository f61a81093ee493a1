package cache

import (
	"context"
	"encoding/json"
)

// GetOrLoadJSON caches the JSON form of T.
func GetOrLoadJSON[T any](ctx context.Context, c Store, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var out T
	b, err := c.GetOrLoad(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}
