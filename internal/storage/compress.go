// internal/storage/compress.go
package storage

import (
	"encoding/base64"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compressed wraps a Store and transparently zstd-compresses values. Large
// canvas payloads (embedded media, node data) shrink substantially, which
// stretches the capacity of bounded backends.
type Compressed struct {
	inner   Store
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCompressed wraps inner with zstd compression at the given level.
func NewCompressed(inner Store, level int) *Compressed {
	encoder, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	decoder, _ := zstd.NewReader(nil)

	return &Compressed{
		inner:   inner,
		encoder: encoder,
		decoder: decoder,
	}
}

// Get decompresses the stored value for key.
func (c *Compressed) Get(key string) (string, error) {
	encoded, err := c.inner.Get(key)
	if err != nil {
		return "", err
	}

	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode value for %s: %w", key, err)
	}
	raw, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return "", fmt.Errorf("decompress value for %s: %w", key, err)
	}
	return string(raw), nil
}

// Set compresses value and stores it under key.
func (c *Compressed) Set(key, value string) error {
	compressed := c.encoder.EncodeAll([]byte(value), nil)
	return c.inner.Set(key, base64.StdEncoding.EncodeToString(compressed))
}

// Remove deletes key.
func (c *Compressed) Remove(key string) error {
	return c.inner.Remove(key)
}
