// Package cache holds derived read views between ledger mutations.
package cache

import (
	"context"
	"time"
)

// Cache is the subset of LRU the service depends on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Purge()
	Size() int
}

// Cleaner is a cache that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically cleans the caches registered with it.
type Janitor struct {
	caches  []Cleaner
	onClean func(removed int)
}

// NewJanitor returns a janitor for caches. onClean, if set, is called after
// each sweep that removed something.
func NewJanitor(onClean func(removed int), caches ...Cleaner) *Janitor {
	return &Janitor{caches: caches, onClean: onClean}
}

// Run sweeps every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.Sweep(); n > 0 && j.onClean != nil {
				j.onClean(n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Sweep cleans every cache once.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}
