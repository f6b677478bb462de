// Package testsupport provides shared helpers for building test ROM trees
// and catalogs whose digests genuinely match the files on disk.
package testsupport

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"romrenamer/internal/catalog"
	"romrenamer/internal/digest"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Digests computes the catalog digests of content in memory.
func Digests(content []byte) map[digest.Algorithm]string {
	crc := crc32.ChecksumIEEE(content)
	md5Sum := md5.Sum(content)
	sha1Sum := sha1.Sum(content)
	return map[digest.Algorithm]string{
		digest.CRC32: hex.EncodeToString([]byte{byte(crc >> 24), byte(crc >> 16), byte(crc >> 8), byte(crc)}),
		digest.MD5:   hex.EncodeToString(md5Sum[:]),
		digest.SHA1:  hex.EncodeToString(sha1Sum[:]),
	}
}

// Member builds a catalog member whose size and digests describe content.
func Member(name string, index int, content []byte) catalog.Member {
	return catalog.Member{
		Name:    name,
		Size:    int64(len(content)),
		Index:   index,
		Digests: Digests(content),
	}
}

// Entry builds a catalog entry from (name, content) member pairs.
func Entry(console, name string, members ...catalog.Member) catalog.Entry {
	return catalog.Entry{Console: console, Name: name, Members: members}
}
