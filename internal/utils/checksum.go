package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Digest counts and hashes bytes as they are written through it
type Digest struct {
	h    hash.Hash
	size int64
}

// NewDigest creates a SHA-256 digest writer
func NewDigest() *Digest {
	return &Digest{h: sha256.New()}
}

// Write implements io.Writer
func (d *Digest) Write(p []byte) (int, error) {
	n, err := d.h.Write(p)
	d.size += int64(n)
	return n, err
}

// Size returns the number of bytes written so far
func (d *Digest) Size() int64 {
	return d.size
}

// SHA256 returns the hex encoded hash of everything written so far
func (d *Digest) SHA256() string {
	return hex.EncodeToString(d.h.Sum(nil))
}
