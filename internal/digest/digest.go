// Package digest computes content checksums for ROM files in a single
// streaming pass.
//
// Catalogs identify files by crc32, md5, and sha1; all requested hashes are
// fed from one read loop so a multi-gigabyte disc image is only read once.
// Memory use is bounded by the chunk size regardless of file size.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Algorithm names a supported checksum algorithm.
type Algorithm string

const (
	CRC32 Algorithm = "crc32"
	MD5   Algorithm = "md5"
	SHA1  Algorithm = "sha1"
	// XXH64 is not found in catalogs; the digest cache uses it as a cheap
	// content spot check.
	XXH64 Algorithm = "xxh64"
)

// CatalogAlgorithms are the algorithms DAT catalogs tag members with,
// strongest first.
var CatalogAlgorithms = []Algorithm{SHA1, MD5, CRC32}

const chunkSize = 64 * 1024

// Set holds lowercase hex digest values keyed by algorithm, plus the byte
// count consumed while computing them.
type Set struct {
	Values map[Algorithm]string
	Size   int64
}

// Get returns the digest value for algo, if present.
func (s Set) Get(algo Algorithm) (string, bool) {
	v, ok := s.Values[algo]
	return v, ok
}

func newHasher(algo Algorithm) (hash.Hash, error) {
	switch algo {
	case CRC32:
		return crc32.NewIEEE(), nil
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case XXH64:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf("digest: unsupported algorithm %q", algo)
	}
}

// Sum streams the file at path through every requested hash at once and
// returns the resulting digest set. The file is read in 64 KiB chunks.
func Sum(path string, algos []Algorithm) (Set, error) {
	if len(algos) == 0 {
		algos = CatalogAlgorithms
	}

	hashers := make(map[Algorithm]hash.Hash, len(algos))
	writers := make([]io.Writer, 0, len(algos))
	for _, algo := range algos {
		if _, ok := hashers[algo]; ok {
			continue
		}
		h, err := newHasher(algo)
		if err != nil {
			return Set{}, err
		}
		hashers[algo] = h
		writers = append(writers, h)
	}

	file, err := os.Open(path)
	if err != nil {
		return Set{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	size, err := io.CopyBuffer(io.MultiWriter(writers...), file, make([]byte, chunkSize))
	if err != nil {
		return Set{}, fmt.Errorf("read %s: %w", path, err)
	}

	values := make(map[Algorithm]string, len(hashers))
	for algo, h := range hashers {
		values[algo] = hex.EncodeToString(h.Sum(nil))
	}
	return Set{Values: values, Size: size}, nil
}

// SumPrefix hashes at most maxBytes of the file with the given algorithm.
// Used by the digest cache to spot-check file content without a full read.
func SumPrefix(path string, algo Algorithm, maxBytes int64) (string, error) {
	h, err := newHasher(algo)
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := io.Reader(file)
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes)
	}
	if _, err := io.CopyBuffer(h, reader, make([]byte, chunkSize)); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
