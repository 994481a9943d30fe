// Package checker resolves extracted cross-references against the loaded
// object inventories and applies the exception list to whatever fails to
// resolve. It is the single consumption point of the exception set: one
// membership test per unresolved reference.
package checker

import (
	"sort"

	"go.uber.org/zap"

	"nitpick/internal/docscan"
	"nitpick/internal/exceptions"
	"nitpick/internal/inventory"
)

// Finding is one unresolved reference, with the inventory verdict attached.
type Finding struct {
	Ref        docscan.Ref
	Suppressed bool // true when the exception list covers it
}

// Result is the outcome of one check run.
type Result struct {
	RefsTotal  int
	Resolved   int
	Unresolved []Finding          // warnings to emit
	Suppressed []Finding          // exempted by the exception list
	Unused     []exceptions.Entry // exceptions that never fired
}

// Checker holds the immutable inputs of a run. Safe for concurrent use:
// inventories and the exception set are read-only after construction.
type Checker struct {
	inventories []*inventory.Inventory
	set         *exceptions.Set
	logger      *zap.Logger
}

// New builds a Checker. set may be nil (empty exception set).
func New(inventories []*inventory.Inventory, set *exceptions.Set, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{inventories: inventories, set: set, logger: logger}
}

// Check classifies every reference: resolved, suppressed, or unresolved.
// A reference resolves when any inventory knows (domain, role, target).
// On a miss the exception list is consulted with the reference's domain-tag
// and target; a hit suppresses the warning, a miss emits it.
func (c *Checker) Check(refs []docscan.Ref) *Result {
	result := &Result{RefsTotal: len(refs)}
	hits := make(map[string]map[string]bool) // domain-tag -> identifier -> fired

	for _, ref := range refs {
		if c.resolve(ref) {
			result.Resolved++
			continue
		}

		finding := Finding{Ref: ref}
		if c.set.Contains(ref.Tag(), ref.Target) {
			finding.Suppressed = true
			result.Suppressed = append(result.Suppressed, finding)
			tagHits, ok := hits[ref.Tag()]
			if !ok {
				tagHits = make(map[string]bool)
				hits[ref.Tag()] = tagHits
			}
			tagHits[ref.Target] = true
			c.logger.Debug("suppressed unresolved reference",
				zap.String("tag", ref.Tag()),
				zap.String("target", ref.Target),
				zap.String("file", ref.File))
			continue
		}

		result.Unresolved = append(result.Unresolved, finding)
	}

	for _, entry := range c.set.Entries() {
		if !hits[entry.Domain][entry.Name] {
			result.Unused = append(result.Unused, entry)
		}
	}
	sort.Slice(result.Unused, func(i, j int) bool {
		if result.Unused[i].Domain != result.Unused[j].Domain {
			return result.Unused[i].Domain < result.Unused[j].Domain
		}
		return result.Unused[i].Name < result.Unused[j].Name
	})

	return result
}

func (c *Checker) resolve(ref docscan.Ref) bool {
	for _, inv := range c.inventories {
		if _, ok := inv.Resolve(ref.Domain, ref.Role, ref.Target); ok {
			return true
		}
	}
	return false
}

// Failed reports whether the run should be treated as failing: any
// unresolved, unsuppressed reference remains.
func (r *Result) Failed() bool {
	return len(r.Unresolved) > 0
}
