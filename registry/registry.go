// Package registry implements the process-wide processor catalog: a
// startup-phase builder producing an index that Seal makes read-only;
// every lookup is a map or slice read under a shared read lock — the
// "dynamic registration → declarative capability records" redesign from
// the design notes.
//
// Grounded on the distilled original's processors/registry.py (the
// filter-then-sort-by-priority-descending algorithm, with Go's stable
// sort preserving registration order as the tie-break) and on
// hazyhaar-chrc's veille/internal/pipeline/pipeline.go RegisterHandler
// map-based dispatch registry.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/extractcore/extractcore/coretype"
)

// entry pairs a processor with its registration order and memoized
// availability, mirroring the original's check-once-and-cache framing of
// "availability is checked lazily and memoized per process" (spec §4.1).
type entry struct {
	proc      coretype.Processor
	order     int
	availOnce sync.Once
	avail     bool
}

// Registry is the process-wide processor catalog. Create one with New,
// Register every processor during the startup phase, then call Seal (or
// simply stop registering — Seal only guards against accidental late
// registration) before serving lookups.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*entry
	order   []*entry
	sealed  bool
}

// New creates an empty Registry ready for registration.
func New() *Registry {
	return &Registry{byName: map[string]*entry{}}
}

// Register adds a processor to the catalog. Fails if another processor
// with the same name is already registered, or if the registry has been
// sealed.
func (r *Registry) Register(p coretype.Processor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("registry: cannot register %q after Seal", p.Name())
	}
	if _, exists := r.byName[p.Name()]; exists {
		return fmt.Errorf("registry: processor %q already registered", p.Name())
	}
	e := &entry{proc: p, order: len(r.order)}
	r.byName[p.Name()] = e
	r.order = append(r.order, e)
	return nil
}

// Seal marks the registry read-only: later Register calls fail. Lookups
// still take the read lock.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (e *entry) isAvailable() bool {
	e.availOnce.Do(func() {
		e.avail = e.proc.IsAvailable()
	})
	return e.avail
}

// GetByName returns the processor registered under name, or (nil, false).
func (r *Registry) GetByName(name string) (coretype.Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return e.proc, true
}

// AvailableEngines returns the set of registered engine names whose
// IsAvailable() currently reports true.
func (r *Registry) AvailableEngines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for _, e := range r.order {
		if e.isAvailable() {
			names = append(names, e.proc.Name())
		}
	}
	return names
}

// sortCandidates orders entries by (available first, priority desc,
// registration order asc) — the ordering rationale from spec §4.1.
func sortCandidates(entries []*entry) []coretype.Processor {
	sort.SliceStable(entries, func(i, j int) bool {
		ai, aj := entries[i].isAvailable(), entries[j].isAvailable()
		if ai != aj {
			return ai // available sorts first
		}
		pi := entries[i].proc.Capabilities().Priority
		pj := entries[j].proc.Capabilities().Priority
		if pi != pj {
			return pi > pj
		}
		return entries[i].order < entries[j].order
	})
	out := make([]coretype.Processor, len(entries))
	for i, e := range entries {
		out[i] = e.proc
	}
	return out
}

// FindByMime returns all processors whose capabilities cover mime (exact
// or wildcard), ordered by availability, priority, then registration order.
func (r *Registry) FindByMime(mime string) []coretype.Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*entry
	for _, e := range r.order {
		if e.proc.Capabilities().SupportsMimeType(mime) {
			matched = append(matched, e)
		}
	}
	return sortCandidates(matched)
}

// FindByCategory returns all processors in the given category, ordered
// the same way as FindByMime.
func (r *Registry) FindByCategory(category coretype.Category) []coretype.Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*entry
	for _, e := range r.order {
		if e.proc.Capabilities().Category == category {
			matched = append(matched, e)
		}
	}
	return sortCandidates(matched)
}

// FindByExtension returns all processors recognizing ext as a secondary
// hint, ordered the same way as FindByMime.
func (r *Registry) FindByExtension(ext string) []coretype.Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*entry
	for _, e := range r.order {
		if e.proc.Capabilities().SupportsExtension(ext) {
			matched = append(matched, e)
		}
	}
	return sortCandidates(matched)
}
