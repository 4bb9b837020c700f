// Package messages resolves stable error codes to user-facing message
// templates. The catalog is loaded from a backing source (database table or
// static map) and cached with a TTL; the clock and loader are injected so
// tests control time and invalidation deterministically.
package messages

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Loader fetches the full code->message map from the backing source.
type Loader func(ctx context.Context) (map[string]string, error)

// Catalog is a TTL-cached code->message lookup. Safe for concurrent use.
type Catalog struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	entries  map[string]string
	loadedAt time.Time
}

// New creates a catalog with the given loader and TTL, using wall-clock time.
func New(loader Loader, ttl time.Duration) *Catalog {
	return NewWithClock(loader, ttl, time.Now)
}

// NewWithClock creates a catalog with an injected clock.
func NewWithClock(loader Loader, ttl time.Duration, now func() time.Time) *Catalog {
	return &Catalog{loader: loader, ttl: ttl, now: now}
}

// Resolve returns the message for a code, falling back to the code itself
// when the catalog has no entry or cannot be loaded. A stale cache is
// refreshed first; if the refresh fails, the previous entries keep serving.
func (c *Catalog) Resolve(ctx context.Context, code string) string {
	entries := c.current(ctx)
	if msg, ok := entries[code]; ok {
		return msg
	}
	return code
}

// Invalidate drops the cached entries, forcing a reload on next use.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.loadedAt = time.Time{}
}

func (c *Catalog) current(ctx context.Context) map[string]string {
	c.mu.RLock()
	fresh := c.entries != nil && c.now().Sub(c.loadedAt) < c.ttl
	entries := c.entries
	c.mu.RUnlock()
	if fresh {
		return entries
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have refreshed while we waited for the lock
	if c.entries != nil && c.now().Sub(c.loadedAt) < c.ttl {
		return c.entries
	}

	loaded, err := c.loader(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load message catalog")
		return c.entries // serve stale rather than nothing
	}
	c.entries = loaded
	c.loadedAt = c.now()
	return c.entries
}

// DefaultMessages is the built-in catalog used when no backing source is
// configured.
var DefaultMessages = map[string]string{
	"ERR_CATEGORY_NOT_FOUND":                      "The requested account category does not exist.",
	"ERR_SUBCATEGORY_NOT_FOUND":                   "The requested subcategory does not exist in that category.",
	"ERR_CANNOT_DELETE_CATEGORY_WITH_ACCOUNTS":    "This category still has accounts and cannot be deleted.",
	"ERR_CANNOT_DELETE_SUBCATEGORY_WITH_ACCOUNTS": "This subcategory still has accounts and cannot be deleted.",
	"ERR_ACCOUNT_NOT_FOUND":                       "The requested account does not exist.",
	"ERR_INVALID_NORMAL_SIDE":                     "Normal side must be either debit or credit.",
	"ERR_INVALID_STATEMENT_TYPE":                  "Statement type must be Balance Sheet, Income Statement, or Retained Earnings Statement.",
	"ERR_ACCOUNT_CREATION_FAILED":                 "The account could not be created. Please try again.",
	"ERR_EMPTY_JOURNAL_ENTRY":                     "A journal entry needs at least one line.",
	"ERR_LINE_BOTH_SIDES":                         "A journal line cannot have both a debit and a credit amount.",
	"ERR_LINE_NO_AMOUNT":                          "Every journal line needs a debit or credit amount.",
	"ERR_LINE_UNKNOWN_ACCOUNT":                    "A journal line references an account that does not exist.",
	"ERR_JOURNAL_NOT_BALANCED":                    "Total debits must equal total credits.",
	"ERR_INTERNAL":                                "Something went wrong. Please try again later.",
}

// StaticLoader returns a Loader that always serves the given map.
func StaticLoader(entries map[string]string) Loader {
	return func(context.Context) (map[string]string, error) {
		return entries, nil
	}
}
