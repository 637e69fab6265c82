package reconcile

import (
	"fmt"
	"strings"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/models"
)

// Predicate selects the rule that decides INSTALLED vs OPEN. One predicate is
// chosen per deployment and applied to every record.
type Predicate string

const (
	// PredicateTimestamp: installed iff an installation timestamp is present.
	PredicateTimestamp Predicate = "timestamp"
	// PredicateCount: installed iff the installed-unit count is >= 1.
	PredicateCount Predicate = "count"
	// PredicateMembership: installed iff the site id appears in the progress log.
	PredicateMembership Predicate = "membership"
	// PredicateScope: installed iff the registry scope status reads "installed".
	PredicateScope Predicate = "scope"
)

// ParsePredicate validates a configured predicate name.
func ParsePredicate(s string) (Predicate, error) {
	p := Predicate(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PredicateTimestamp, PredicateCount, PredicateMembership, PredicateScope:
		return p, nil
	default:
		return "", fmt.Errorf("unknown status predicate %q (want timestamp, count, membership or scope)", s)
	}
}

const scopeInstalled = "installed"

// status is total: every record gets exactly one of the two values. When a
// progress log is in play an unmatched site is always OPEN.
func (p Predicate) status(rec models.SiteRecord, twoSource, matched bool) models.Status {
	if twoSource && !matched {
		return models.StatusOpen
	}

	var installed bool
	switch p {
	case PredicateTimestamp:
		installed = rec.InstalledAt != nil
	case PredicateCount:
		installed = rec.InstalledCount != nil && *rec.InstalledCount >= 1
	case PredicateMembership:
		installed = matched
	case PredicateScope:
		installed = strings.EqualFold(strings.TrimSpace(rec.Scope), scopeInstalled)
	}

	if installed {
		return models.StatusInstalled
	}
	return models.StatusOpen
}
