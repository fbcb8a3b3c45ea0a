package common

import (
	"context"
	"sync"

	"github.com/puzpuzpuz/xsync"
	"golang.org/x/exp/slices"
)

type heldLocksKey struct{}

type lockEntry struct {
	mu sync.Mutex

	// guard protects refs and dead.
	guard sync.Mutex
	refs  int
	dead  bool
}

// WriterLock serializes mutating operations on the same resource inside one
// process. Resources are identified by string keys. An entry lives only while
// some goroutine holds or waits for its key.
type WriterLock struct {
	locks *xsync.MapOf[string, *lockEntry]
}

func NewWriterLock() *WriterLock {
	return &WriterLock{locks: xsync.NewMapOf[*lockEntry]()}
}

// Lock acquires every key in sorted order and returns the function releasing
// them. Keys already held through ctx are skipped, so a nested call sharing
// its caller's context never waits on the caller's own lock. The returned
// context carries every held key.
//
// Callers must not wait on a lock while holding a database transaction.
func (l *WriterLock) Lock(ctx context.Context, keys ...string) (context.Context, func()) {
	held := heldLocks(ctx)

	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	acquired := make([]string, 0, len(sorted))
	entries := make([]*lockEntry, 0, len(sorted))
	for _, key := range sorted {
		if slices.Contains(held, key) {
			continue
		}

		entries = append(entries, l.acquire(key))
		acquired = append(acquired, key)
	}

	if len(acquired) == 0 {
		return ctx, func() {}
	}

	newHeld := make([]string, 0, len(held)+len(acquired))
	newHeld = append(newHeld, held...)
	newHeld = append(newHeld, acquired...)
	ctx = context.WithValue(ctx, heldLocksKey{}, newHeld)

	return ctx, func() {
		for i := len(entries) - 1; i >= 0; i-- {
			l.release(acquired[i], entries[i])
		}
	}
}

func (l *WriterLock) acquire(key string) *lockEntry {
	for {
		entry, _ := l.locks.LoadOrStore(key, &lockEntry{})

		entry.guard.Lock()
		if entry.dead {
			// Released and removed after we loaded it, retry with a fresh one.
			entry.guard.Unlock()
			continue
		}
		entry.refs++
		entry.guard.Unlock()

		entry.mu.Lock()
		return entry
	}
}

func (l *WriterLock) release(key string, entry *lockEntry) {
	entry.mu.Unlock()

	entry.guard.Lock()
	defer entry.guard.Unlock()

	entry.refs--
	if entry.refs == 0 {
		entry.dead = true
		l.locks.Delete(key)
	}
}

func heldLocks(ctx context.Context) []string {
	held, _ := ctx.Value(heldLocksKey{}).([]string)
	return held
}
