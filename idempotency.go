package newsdigest

import (
	"container/list"
	"sort"
	"strings"
	"sync"
	"time"
)

// idempotencyEntry is one cached response, keyed by request identity.
type idempotencyEntry struct {
	key       string
	response  SummarizeResponse
	expiresAt time.Time
}

// idempotencyCache is a bounded, TTL-evicting cache of recent
// SummarizeResponses keyed on (userID, set of article URLs, language),
// per spec §4.7/§9. No LRU/cache library appears anywhere in the
// retrieved corpus's go.mod files, so this stays on container/list +
// map + sync.Mutex rather than reaching for an invented dependency.
type idempotencyCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List
	index    map[string]*list.Element
}

func newIdempotencyCache(capacity int, ttl time.Duration) *idempotencyCache {
	return &idempotencyCache{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *idempotencyCache) get(key string, now time.Time) (SummarizeResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		return SummarizeResponse{}, false
	}
	entry := elem.Value.(*idempotencyEntry)
	if now.After(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.index, key)
		return SummarizeResponse{}, false
	}
	c.order.MoveToFront(elem)
	return entry.response, true
}

func (c *idempotencyCache) put(key string, response SummarizeResponse, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		elem.Value.(*idempotencyEntry).response = response
		elem.Value.(*idempotencyEntry).expiresAt = now.Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	entry := &idempotencyEntry{key: key, response: response, expiresAt: now.Add(c.ttl)}
	elem := c.order.PushFront(entry)
	c.index[key] = elem

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*idempotencyEntry).key)
	}
}

// idempotencyKey builds the cache key from a request's identity: the
// user, the exact set of article URLs it names (sorted for a stable
// key regardless of input order), and the target language. Query-path
// requests use the query text in place of a URL set — the set of
// candidate URLs isn't known until after relevance filtering runs.
func idempotencyKey(userID string, urls []string, query string, language Language) string {
	var b strings.Builder
	b.WriteString(userID)
	b.WriteByte('|')
	b.WriteString(string(language))
	b.WriteByte('|')
	if query != "" {
		b.WriteString("q:")
		b.WriteString(query)
		return b.String()
	}
	sorted := append([]string(nil), urls...)
	sort.Strings(sorted)
	b.WriteString(strings.Join(sorted, ","))
	return b.String()
}
