package guard

import (
	"container/list"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DigestCache memoizes file content digests so identical files are not
// hashed (or processed) twice. Entries are keyed on path, size, and
// mtime; a touched file re-hashes. Eviction is least-recently-used.
type DigestCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*list.Element
	order   *list.List
}

type digestEntry struct {
	key    string
	digest string
}

func NewDigestCache(maxSize int) *DigestCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &DigestCache{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Digest returns the xxhash64 digest of the file contents, cached on
// path:size:mtime.
func (c *DigestCache) Digest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	key := path + ":" + strconv.FormatInt(info.Size(), 10) + ":" + strconv.FormatInt(info.ModTime().UnixNano(), 10)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		digest := el.Value.(*digestEntry).digest
		c.mu.Unlock()
		return digest, nil
	}
	c.mu.Unlock()

	digest, err := hashFile(path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*digestEntry).digest, nil
	}
	for c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*digestEntry).key)
	}
	c.entries[key] = c.order.PushFront(&digestEntry{key: key, digest: digest})
	return digest, nil
}

// Len reports the number of cached entries.
func (c *DigestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every cached entry.
func (c *DigestCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
