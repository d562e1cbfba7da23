// Package cache stores collected file histories on disk so repeated reports
// over an unchanged HEAD skip the git log walk.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Cache is a directory of JSON entries that expire after a TTL.
// A disabled Cache accepts writes and never returns a hit.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	now     func() time.Time
}

// envelope is the on-disk form of an entry. The key is stored in full
// because file names are only a hash of it.
type envelope struct {
	Key      string    `json:"key"`
	Checksum string    `json:"checksum"`
	Written  time.Time `json:"written"`
	Payload  []byte    `json:"payload"`
}

// New opens the cache at dir, creating it if needed.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	c := &Cache{enabled: enabled, now: time.Now}
	if !enabled {
		return c, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	c.dir = dir
	c.ttl = time.Duration(ttlHours) * time.Hour
	return c, nil
}

func (c *Cache) Enabled() bool { return c.enabled }

// Dir is the cache directory, empty when disabled.
func (c *Cache) Dir() string { return c.dir }

// HistoryKey names the history of the repository at root, collected at
// commit head over a window of days starting at since. Only the UTC day of
// since is part of the key, so reruns on the same day share an entry.
func HistoryKey(root, head string, since time.Time, days int) string {
	return strings.Join([]string{"history", root, head, since.UTC().Format("2006-01-02"), fmt.Sprint(days)}, "\x00")
}

// checksum is the hex BLAKE3 digest of data.
func checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x.json", xxhash.Sum64String(key)))
}

// Get returns the payload stored under key. Entries that are expired,
// unparsable or fail their checksum are deleted and reported as misses.
func (c *Cache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var env envelope
	switch {
	case json.Unmarshal(raw, &env) != nil:
	case env.Key != key:
		// xxhash collision with another key; leave its entry alone.
		return nil, false
	case c.now().Sub(env.Written) > c.ttl:
	case checksum(env.Payload) != env.Checksum:
	default:
		return env.Payload, true
	}
	_ = os.Remove(path)
	return nil, false
}

// Set stores payload under key. The entry is written to a temporary file
// and renamed so readers never see a partial entry.
func (c *Cache) Set(key string, payload []byte) error {
	if !c.enabled {
		return nil
	}
	raw, err := json.Marshal(envelope{
		Key:      key,
		Checksum: checksum(payload),
		Written:  c.now(),
		Payload:  payload,
	})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}

// GetJSON decodes the entry under key into v. An entry that no longer
// decodes, for instance after the stored type changed, is deleted.
func (c *Cache) GetJSON(key string, v any) bool {
	payload, ok := c.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		_ = c.Invalidate(key)
		return false
	}
	return true
}

func (c *Cache) SetJSON(key string, v any) error {
	if !c.enabled {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.Set(key, payload)
}

// Invalidate deletes the entry under key. A missing entry is not an error.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear deletes the cache directory and every entry in it.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// Stats summarizes the entries on disk.
type Stats struct {
	Dir       string        `json:"dir"`
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// Stats counts the entries in the cache directory by file modification time.
// A directory that does not exist yet is an empty cache.
func (c *Cache) Stats() (*Stats, error) {
	stats := &Stats{Dir: c.dir}
	if !c.enabled {
		return stats, nil
	}
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}

	var oldest, newest time.Time
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		if mod := info.ModTime(); oldest.IsZero() || mod.Before(oldest) {
			oldest = mod
		}
		if mod := info.ModTime(); mod.After(newest) {
			newest = mod
		}
	}

	if stats.Entries > 0 {
		now := c.now()
		stats.OldestAge = now.Sub(oldest)
		stats.NewestAge = now.Sub(newest)
	}
	return stats, nil
}
