package digest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.bin")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestSumKnownVectors(t *testing.T) {
	path := writeTemp(t, []byte("abc"))

	set, err := Sum(path, []Algorithm{CRC32, MD5, SHA1, XXH64})
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if set.Size != 3 {
		t.Fatalf("size = %d, want 3", set.Size)
	}

	want := map[Algorithm]string{
		CRC32: "352441c2",
		MD5:   "900150983cd24fb0d6963f7d28e17f72",
		SHA1:  "a9993e364706816aba3e25717850c26c9cd0d89d",
		XXH64: "44bc2cf5ad770999",
	}
	for algo, expected := range want {
		got, ok := set.Get(algo)
		if !ok {
			t.Fatalf("missing %s digest", algo)
		}
		if got != expected {
			t.Errorf("%s = %s, want %s", algo, got, expected)
		}
	}
}

func TestSumDefaultsToCatalogAlgorithms(t *testing.T) {
	path := writeTemp(t, []byte("content"))

	set, err := Sum(path, nil)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	for _, algo := range CatalogAlgorithms {
		if _, ok := set.Get(algo); !ok {
			t.Errorf("missing %s digest", algo)
		}
	}
	if _, ok := set.Get(XXH64); ok {
		t.Error("xxh64 should not be computed by default")
	}
}

func TestSumLargeFileSpansChunks(t *testing.T) {
	content := make([]byte, 3*chunkSize+17)
	for i := range content {
		content[i] = byte(i % 251)
	}
	path := writeTemp(t, content)

	first, err := Sum(path, nil)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	second, err := Sum(path, nil)
	if err != nil {
		t.Fatalf("Sum (second): %v", err)
	}
	if first.Size != int64(len(content)) {
		t.Fatalf("size = %d, want %d", first.Size, len(content))
	}
	for _, algo := range CatalogAlgorithms {
		a, _ := first.Get(algo)
		b, _ := second.Get(algo)
		if a != b || a == "" {
			t.Errorf("%s unstable across reads: %q vs %q", algo, a, b)
		}
	}
}

func TestSumMissingFile(t *testing.T) {
	if _, err := Sum(filepath.Join(t.TempDir(), "absent.bin"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSumUnsupportedAlgorithm(t *testing.T) {
	path := writeTemp(t, []byte("x"))
	if _, err := Sum(path, []Algorithm{Algorithm("sha512")}); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}

func TestSumPrefixLimitsRead(t *testing.T) {
	path := writeTemp(t, []byte("abcdef"))

	full, err := SumPrefix(path, XXH64, 0)
	if err != nil {
		t.Fatalf("SumPrefix full: %v", err)
	}
	prefix, err := SumPrefix(path, XXH64, 3)
	if err != nil {
		t.Fatalf("SumPrefix limited: %v", err)
	}
	if full == prefix {
		t.Fatal("prefix hash should differ from full hash")
	}

	// The 3-byte prefix of "abcdef" is "abc".
	if prefix != "44bc2cf5ad770999" {
		t.Fatalf("prefix hash = %s, want xxh64(abc)", prefix)
	}
}
