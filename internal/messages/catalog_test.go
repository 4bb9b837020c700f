package messages

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for TTL tests
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func countingLoader(entries map[string]string, calls *int32) Loader {
	return func(context.Context) (map[string]string, error) {
		atomic.AddInt32(calls, 1)
		return entries, nil
	}
}

func TestCatalog_ResolvesKnownCode(t *testing.T) {
	catalog := New(StaticLoader(map[string]string{"ERR_X": "Something specific"}), time.Minute)

	assert.Equal(t, "Something specific", catalog.Resolve(context.Background(), "ERR_X"))
}

func TestCatalog_FallsBackToCode(t *testing.T) {
	catalog := New(StaticLoader(map[string]string{}), time.Minute)

	assert.Equal(t, "ERR_UNKNOWN_THING", catalog.Resolve(context.Background(), "ERR_UNKNOWN_THING"))
}

func TestCatalog_CachesWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	var calls int32
	catalog := NewWithClock(countingLoader(map[string]string{"ERR_X": "msg"}, &calls), time.Minute, clock.Now)

	catalog.Resolve(context.Background(), "ERR_X")
	clock.Advance(30 * time.Second)
	catalog.Resolve(context.Background(), "ERR_X")

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "within the TTL the loader runs once")
}

func TestCatalog_ReloadsAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	var calls int32
	catalog := NewWithClock(countingLoader(map[string]string{"ERR_X": "msg"}, &calls), time.Minute, clock.Now)

	catalog.Resolve(context.Background(), "ERR_X")
	clock.Advance(61 * time.Second)
	catalog.Resolve(context.Background(), "ERR_X")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "an expired cache reloads")
}

func TestCatalog_InvalidateForcesReload(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	var calls int32
	catalog := NewWithClock(countingLoader(map[string]string{"ERR_X": "msg"}, &calls), time.Hour, clock.Now)

	catalog.Resolve(context.Background(), "ERR_X")
	catalog.Invalidate()
	catalog.Resolve(context.Background(), "ERR_X")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCatalog_ServesStaleOnLoadFailure(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	failing := false
	loader := func(context.Context) (map[string]string, error) {
		if failing {
			return nil, errors.New("database down")
		}
		return map[string]string{"ERR_X": "healthy message"}, nil
	}
	catalog := NewWithClock(loader, time.Minute, clock.Now)

	require.Equal(t, "healthy message", catalog.Resolve(context.Background(), "ERR_X"))

	failing = true
	clock.Advance(2 * time.Minute)

	assert.Equal(t, "healthy message", catalog.Resolve(context.Background(), "ERR_X"),
		"a failed reload keeps serving the previous entries")
}

func TestDefaultMessages_CoverDomainCodes(t *testing.T) {
	for _, code := range []string{
		"ERR_INVALID_NORMAL_SIDE",
		"ERR_INVALID_STATEMENT_TYPE",
		"ERR_CATEGORY_NOT_FOUND",
		"ERR_SUBCATEGORY_NOT_FOUND",
		"ERR_ACCOUNT_CREATION_FAILED",
		"ERR_CANNOT_DELETE_CATEGORY_WITH_ACCOUNTS",
		"ERR_CANNOT_DELETE_SUBCATEGORY_WITH_ACCOUNTS",
		"ERR_EMPTY_JOURNAL_ENTRY",
		"ERR_LINE_BOTH_SIDES",
		"ERR_LINE_NO_AMOUNT",
		"ERR_LINE_UNKNOWN_ACCOUNT",
		"ERR_JOURNAL_NOT_BALANCED",
	} {
		assert.Contains(t, DefaultMessages, code)
	}
}
