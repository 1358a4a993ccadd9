package hashindex

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Algorithm names a supported content hash.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
	XXH64  Algorithm = "xxh64"
)

// DefaultChunkSize is the read buffer used when none is configured.
const DefaultChunkSize = 64 * 1024

// ErrUnknownAlgorithm is returned by NewHasher for unsupported names.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// Hasher hashes streams with a fixed-size read buffer.
type Hasher struct {
	algorithm Algorithm
	chunkSize int
}

// NewHasher validates the algorithm name. A chunkSize <= 0 selects
// DefaultChunkSize.
func NewHasher(algorithm string, chunkSize int) (*Hasher, error) {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(algorithm)))
	switch alg {
	case MD5, SHA1, SHA256, XXH64:
	case "":
		alg = MD5
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Hasher{algorithm: alg, chunkSize: chunkSize}, nil
}

// Algorithm returns the configured algorithm.
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// New returns a fresh hash.Hash for the configured algorithm, for callers
// that feed bytes through an io.TeeReader.
func (h *Hasher) New() hash.Hash {
	switch h.algorithm {
	case SHA1:
		return sha1.New()
	case SHA256:
		return sha256.New()
	case XXH64:
		return xxhash.New()
	default:
		return md5.New()
	}
}

// Sum hashes r to EOF and returns the lowercase hex digest.
func (h *Hasher) Sum(r io.Reader) (string, error) {
	sum := h.New()
	buf := make([]byte, h.chunkSize)
	// Hide WriterTo so the fixed buffer is always used.
	if _, err := io.CopyBuffer(sum, struct{ io.Reader }{r}, buf); err != nil {
		return "", err
	}
	return Hex(sum), nil
}

// SumFile hashes a file on disk.
func (h *Hasher) SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.Sum(f)
}

// Hex renders the digest accumulated in sum.
func Hex(sum hash.Hash) string {
	return hex.EncodeToString(sum.Sum(nil))
}
