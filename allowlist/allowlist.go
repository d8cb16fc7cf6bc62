// Package allowlist restricts which qualified domain names the update
// endpoint may touch. The list lives in a YAML file and is hot-reloaded
// while the service runs.
package allowlist

import (
	"sync"
)

// List is a thread-safe set of fully qualified domain names. An empty
// list allows every domain, so a deployment without an allowlist file
// behaves as an open updater.
type List struct {
	mu      sync.RWMutex
	domains map[string]struct{}
	version uint64
}

// New creates an empty List.
func New() *List {
	return &List{domains: make(map[string]struct{})}
}

// Replace swaps the full set of allowed domains atomically.
func (l *List) Replace(domains []string) {
	next := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if d != "" {
			next[d] = struct{}{}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.domains = next
	l.version++
}

// Allowed reports whether the name may be updated.
func (l *List) Allowed(fqdn string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.domains) == 0 {
		return true
	}
	_, ok := l.domains[fqdn]
	return ok
}

// Len returns the number of listed domains.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.domains)
}

// Version increments on every Replace; tests use it to observe reloads.
func (l *List) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}
