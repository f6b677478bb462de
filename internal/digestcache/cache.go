// Package digestcache persists computed digests between runs in SQLite.
//
// Hashing multi-gigabyte disc images dominates run time, so an opt-in cache
// keyed by absolute path remembers crc32/md5/sha1 once computed. A cached
// row is only trusted when size and mtime are unchanged and an xxh64 of the
// file's first 64 KiB still matches, so a touched or rewritten file is
// re-hashed in full. Classification results never depend on the cache being
// present; it only short-circuits the streaming read.
//
// Schema changes bump schemaVersion; a mismatched database is discarded and
// recreated since every row can be recomputed from disk.
package digestcache

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"romrenamer/internal/digest"
	"romrenamer/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

const quickCheckBytes = 64 * 1024

// Cache is a SQLite-backed digest store implementing scan.Cache.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes or connects to the cache database at path, creating
// parent directories as needed.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{db: db, logger: logging.NewComponentLogger(logger, "digestcache")}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Cache) initSchema(ctx context.Context) error {
	var version int
	err := c.db.QueryRowContext(ctx,
		"SELECT version FROM schema_version LIMIT 1",
	).Scan(&version)
	if err == nil && version == schemaVersion {
		return nil
	}

	// Fresh database, or a stale schema: rebuild. Every row is derivable
	// from disk, so dropping is always safe.
	statements := []string{
		"DROP TABLE IF EXISTS digests",
		"DROP TABLE IF EXISTS schema_version",
		schemaSQL,
		fmt.Sprintf("INSERT INTO schema_version (version) VALUES (%d)", schemaVersion),
	}
	for _, stmt := range statements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init cache schema: %w", err)
		}
	}
	return nil
}

// Lookup returns the cached digest set for path when size, mtime, and the
// quick-check prefix hash all still agree.
func (c *Cache) Lookup(path string, size int64, modTime time.Time) (digest.Set, bool) {
	var (
		cachedSize       int64
		cachedMtime      int64
		quickCheck       string
		crc, md5v, sha1v string
	)
	err := c.db.QueryRow(
		"SELECT size, mtime_ns, quick_check, crc32, md5, sha1 FROM digests WHERE path = ?",
		path,
	).Scan(&cachedSize, &cachedMtime, &quickCheck, &crc, &md5v, &sha1v)
	if err != nil {
		return digest.Set{}, false
	}
	if cachedSize != size || cachedMtime != modTime.UnixNano() {
		return digest.Set{}, false
	}

	prefix, err := digest.SumPrefix(path, digest.XXH64, quickCheckBytes)
	if err != nil || prefix != quickCheck {
		return digest.Set{}, false
	}

	return digest.Set{
		Size: size,
		Values: map[digest.Algorithm]string{
			digest.CRC32: crc,
			digest.MD5:   md5v,
			digest.SHA1:  sha1v,
		},
	}, true
}

// Store records the digest set for path. Missing algorithms make the row
// useless for matching, so partial sets are not stored.
func (c *Cache) Store(path string, size int64, modTime time.Time, set digest.Set) error {
	crc, okCRC := set.Get(digest.CRC32)
	md5v, okMD5 := set.Get(digest.MD5)
	sha1v, okSHA1 := set.Get(digest.SHA1)
	if !okCRC || !okMD5 || !okSHA1 {
		return nil
	}

	quickCheck, err := digest.SumPrefix(path, digest.XXH64, quickCheckBytes)
	if err != nil {
		return fmt.Errorf("quick check %s: %w", path, err)
	}

	_, err = c.db.Exec(
		`INSERT INTO digests (path, size, mtime_ns, quick_check, crc32, md5, sha1)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
           size = excluded.size,
           mtime_ns = excluded.mtime_ns,
           quick_check = excluded.quick_check,
           crc32 = excluded.crc32,
           md5 = excluded.md5,
           sha1 = excluded.sha1`,
		path, size, modTime.UnixNano(), quickCheck, crc, md5v, sha1v,
	)
	if err != nil {
		return fmt.Errorf("store digest for %s: %w", path, err)
	}
	return nil
}
