package catalog

import (
	"strings"

	"vehicle-catalog-lab/internal/domain"
)

// DefaultRewardSuffix marks killstreak reward variants, which are not catalog entries.
const DefaultRewardSuffix = "_killstreak"

// ExclusionFilter drops administratively excluded identifiers and reward variants.
// Matching is case-sensitive on the stored identifier.
type ExclusionFilter struct {
	excluded     map[string]struct{}
	rewardSuffix string
}

// NewExclusionFilter creates a filter. An empty rewardSuffix means DefaultRewardSuffix.
func NewExclusionFilter(excluded []string, rewardSuffix string) *ExclusionFilter {
	if rewardSuffix == "" {
		rewardSuffix = DefaultRewardSuffix
	}
	set := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		set[id] = struct{}{}
	}
	return &ExclusionFilter{excluded: set, rewardSuffix: rewardSuffix}
}

// Excludes reports whether identifier is dropped by the filter.
// An identifier is kept only if it is not in the set AND does not carry the suffix.
func (f *ExclusionFilter) Excludes(identifier string) bool {
	if _, ok := f.excluded[identifier]; ok {
		return true
	}
	return strings.HasSuffix(identifier, f.rewardSuffix)
}

// Apply returns a new catalog without excluded identifiers.
func (f *ExclusionFilter) Apply(catalog domain.Catalog) domain.Catalog {
	out := make(domain.Catalog, len(catalog))
	for id, snap := range catalog {
		if f.Excludes(id) {
			continue
		}
		out[id] = snap
	}
	return out
}
