package cost

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"github.com/de-tools/cost-atlas/pkg/models/domain"
)

const DefaultCacheSize = 128

// QuerySignature identifies a report request. Source names, scope and filter keys are
// case-folded and sources sorted. Dimensions keep request order and filter values keep
// their case, since both change the report.
type QuerySignature struct {
	Sources     []string
	Scope       string
	Start       time.Time
	End         time.Time
	Granularity domain.Granularity
	Dimensions  []string
	Filter      map[string][]string
}

func SignatureOf(sources []string, q Query) QuerySignature {
	return QuerySignature{
		Sources:     sources,
		Scope:       q.Scope,
		Start:       q.Start,
		End:         q.End,
		Granularity: q.Granularity,
		Dimensions:  q.Dimensions,
		Filter:      q.Filter,
	}
}

// Key renders the normalized signature
func (s QuerySignature) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sources=%s", strings.Join(normalized(s.Sources), ","))
	fmt.Fprintf(&b, ";scope=%s", strings.ToLower(strings.TrimSpace(s.Scope)))
	fmt.Fprintf(&b, ";start=%s;end=%s", s.Start.UTC().Format(time.RFC3339), s.End.UTC().Format(time.RFC3339))
	granularity, _ := domain.ParseGranularity(string(s.Granularity))
	fmt.Fprintf(&b, ";granularity=%s", granularity)
	fmt.Fprintf(&b, ";dimensions=%s", strings.Join(unique(s.Dimensions), ","))

	filter := make(map[string][]string, len(s.Filter))
	for k, v := range s.Filter {
		key := strings.ToLower(strings.TrimSpace(k))
		filter[key] = append(filter[key], v...)
	}
	for _, k := range FilterKeys(filter) {
		values := unique(filter[k])
		slices.Sort(values)
		fmt.Fprintf(&b, ";filter.%s=%s", k, strings.Join(values, ","))
	}
	return b.String()
}

// normalized returns the trimmed, lower-cased, sorted distinct values
func normalized(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

// unique returns the trimmed distinct values in first-seen order
func unique(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

type cacheEntry struct {
	report  *domain.AnalysisReport
	sources []string
	expires time.Time
}

// Cache is a bounded LRU of complete reports with an optional time to live.
// Cached reports are shared and must be treated as read-only.
type Cache struct {
	mu       sync.Mutex
	entries  *lru.Cache
	bySource map[string]map[string]struct{}
	ttl      time.Duration
	now      func() time.Time
}

func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c := &Cache{
		entries:  lru.New(size),
		bySource: make(map[string]map[string]struct{}),
		ttl:      ttl,
		now:      time.Now,
	}
	c.entries.OnEvicted = c.onEvicted
	return c
}

func (c *Cache) Get(sig QuerySignature) (*domain.AnalysisReport, bool) {
	key := sig.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(cacheEntry)
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.report, true
}

// Put stores a report. Reports with missing sources are not cached.
func (c *Cache) Put(sig QuerySignature, report *domain.AnalysisReport) bool {
	if report == nil || !report.Complete() {
		return false
	}
	key := sig.Key()
	entry := cacheEntry{report: report, sources: normalized(sig.Sources)}
	if c.ttl > 0 {
		entry.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Add(key, entry)
	for _, s := range entry.sources {
		if c.bySource[s] == nil {
			c.bySource[s] = make(map[string]struct{})
		}
		c.bySource[s][key] = struct{}{}
	}
	return true
}

func (c *Cache) Invalidate(sig QuerySignature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(sig.Key())
}

// InvalidateSource drops every report built from the named source and returns how many
func (c *Cache) InvalidateSource(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.bySource[strings.ToLower(strings.TrimSpace(name))]
	n := len(keys)
	for key := range keys {
		c.entries.Remove(key)
	}
	return n
}

func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Clear()
	c.bySource = make(map[string]map[string]struct{})
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// onEvicted runs under c.mu
func (c *Cache) onEvicted(key lru.Key, value interface{}) {
	entry, ok := value.(cacheEntry)
	if !ok {
		return
	}
	k := key.(string)
	for _, s := range entry.sources {
		delete(c.bySource[s], k)
		if len(c.bySource[s]) == 0 {
			delete(c.bySource, s)
		}
	}
}
