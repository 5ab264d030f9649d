package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt is returned by LoadJSON when a stored value cannot be decoded.
var ErrCorrupt = errors.New("stored value is corrupt")

// LoadJSON reads key from kv and decodes it into dst.
// It returns (false, nil) when the key is absent and ErrCorrupt when the
// payload does not decode. dst is left untouched in both cases.
func LoadJSON(ctx context.Context, kv KVStore, key string, dst any) (bool, error) {
	data, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, NewStoreError("kv", "load", fmt.Sprintf("reading %q", key), err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%w: %q: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, kv KVStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return NewStoreError("kv", "save", fmt.Sprintf("encoding %q", key), err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return NewStoreError("kv", "save", fmt.Sprintf("writing %q", key), errors.Join(ErrUpdateFailed, err))
	}
	return nil
}
