package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// ExistsFunc is a membership test over the target key namespace. It is
// authoritative even when each probe costs a network round trip.
type ExistsFunc func(ctx context.Context, key string) (bool, error)

// ResolveKey produces a collision-free storage key for filename under dir.
// On collision it appends _1, _2, ... before the extension of the original
// filename and probes again until a free slot is found.
//
// The probe is not atomic with the subsequent write: two concurrent uploads
// with the same name can both see a key as free, and the later write wins at
// the blob layer.
func ResolveKey(ctx context.Context, dir, filename string, exists ExistsFunc) (string, error) {
	ext := path.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	candidate := path.Join(dir, filename)
	for counter := 1; ; counter++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check key %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = path.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
	}
}
