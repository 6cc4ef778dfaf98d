package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Encode serialises a collection value to JSON for storage.
// HTML escaping is disabled so non-Latin text stays readable in the database.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses a stored JSON document into v.
func Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// LoadInto loads key from a and decodes it into v.
// It reports found=false, leaving v untouched, when the key is absent.
// A malformed document is returned as an error and v is left untouched.
func LoadInto[T any](ctx context.Context, a Adapter, key Key, v *T) (found bool, err error) {
	data, ok, err := a.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	var decoded T
	if err := Decode(data, &decoded); err != nil {
		return true, fmt.Errorf("%s: %w", key, err)
	}
	*v = decoded
	return true, nil
}

// LoadOnto loads key from a and decodes it over the current value of v, so
// fields the stored document omits keep their values and a null document
// changes nothing. Use it for single documents such as settings; collections
// go through LoadInto.
func LoadOnto[T any](ctx context.Context, a Adapter, key Key, v *T) (found bool, err error) {
	data, ok, err := a.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	decoded := *v
	if err := Decode(data, &decoded); err != nil {
		return true, fmt.Errorf("%s: %w", key, err)
	}
	*v = decoded
	return true, nil
}
