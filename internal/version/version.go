// Package version validates, parses and orders catalog version strings.
//
// Versions are dotted numeric ("2.33.0.15") and compare segment by segment as
// integers, so "1.10" sorts after "1.9". Stored versions may carry a qualifier
// suffix ("1.97 beta"); request versions may not.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalid is returned when a version string fails validation.
var ErrInvalid = errors.New("invalid version")

var (
	// requestPattern accepts 2-4 dotted numeric segments and nothing else.
	requestPattern = regexp.MustCompile(`^\d+(?:\.\d+){1,3}$`)

	// storedPattern splits a leading dotted numeric part from an optional qualifier.
	storedPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)(?:[\s\-_+]*(.*))?$`)
)

// Version is a parsed version string.
type Version struct {
	Raw       string
	Segments  []uint64
	Qualifier string
}

// IsValid reports whether s is an acceptable request version.
func IsValid(s string) bool {
	return requestPattern.MatchString(s)
}

// Validate returns an error wrapping ErrInvalid if s is not an acceptable request version.
func Validate(s string) error {
	if !IsValid(s) {
		return fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return nil
}

// Parse parses a stored version string. Qualifiers are allowed.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	m := storedPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	parts := strings.Split(m[1], ".")
	segments := make([]uint64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: segment %q: %v", ErrInvalid, s, p, err)
		}
		segments[i] = n
	}

	return Version{
		Raw:       s,
		Segments:  segments,
		Qualifier: strings.TrimSpace(m[2]),
	}, nil
}

// Compare returns -1, 0 or 1 comparing a and b.
//
// Numeric segments compare as integers, a missing segment counting as 0. Ties
// are broken by segment count (fewer first) and then by qualifier (none first,
// then lexical). Unparseable strings sort before all parseable ones and compare
// lexically among themselves.
func Compare(a, b string) int {
	if a == b {
		return 0
	}

	va, errA := Parse(a)
	vb, errB := Parse(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}

	return va.Compare(vb)
}

// Compare compares two parsed versions. See the package-level Compare.
func (v Version) Compare(other Version) int {
	n := max(len(v.Segments), len(other.Segments))
	for i := 0; i < n; i++ {
		x, y := segmentAt(v.Segments, i), segmentAt(other.Segments, i)
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}

	if len(v.Segments) != len(other.Segments) {
		if len(v.Segments) < len(other.Segments) {
			return -1
		}
		return 1
	}

	switch {
	case v.Qualifier == other.Qualifier:
		return 0
	case v.Qualifier == "":
		return -1
	case other.Qualifier == "":
		return 1
	}
	return strings.Compare(v.Qualifier, other.Qualifier)
}

// String returns the raw version string.
func (v Version) String() string {
	return v.Raw
}

func segmentAt(segments []uint64, i int) uint64 {
	if i < len(segments) {
		return segments[i]
	}
	return 0
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort sorts versions ascending in place.
func Sort(versions []string) {
	slices.SortStableFunc(versions, Compare)
}

// Latest returns the greatest version. ok is false for an empty input.
func Latest(versions []string) (latest string, ok bool) {
	for _, v := range versions {
		if !ok || Compare(v, latest) > 0 {
			latest, ok = v, true
		}
	}
	return latest, ok
}

// MergeUniverse returns the deduplicated union of both sets, ascending.
func MergeUniverse(live, historical []string) []string {
	seen := make(map[string]struct{}, len(live)+len(historical))
	merged := make([]string, 0, len(live)+len(historical))
	for _, set := range [][]string{live, historical} {
		for _, v := range set {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			merged = append(merged, v)
		}
	}
	Sort(merged)
	return merged
}

// AtOrBefore returns the versions in set that are <= target, ascending.
func AtOrBefore(set []string, target string) []string {
	var out []string
	for _, v := range set {
		if Compare(v, target) <= 0 {
			out = append(out, v)
		}
	}
	Sort(out)
	return out
}

// Key returns the numeric segments of v as a sortable key.
// Unparseable versions yield an empty key.
func Key(v string) []uint32 {
	parsed, err := Parse(v)
	if err != nil {
		return []uint32{}
	}
	key := make([]uint32, len(parsed.Segments))
	for i, s := range parsed.Segments {
		if s > uint64(^uint32(0)) {
			s = uint64(^uint32(0))
		}
		key[i] = uint32(s)
	}
	return key
}
