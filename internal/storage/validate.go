package storage

import (
	"fmt"
	"strings"

	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/version"
)

// ValidateSnapshot checks a snapshot before it is appended.
func ValidateSnapshot(s *domain.VehicleSnapshot) error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidInput)
	}
	if strings.TrimSpace(s.Identifier) == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidInput)
	}
	if _, err := version.Parse(s.Version); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// Key identifies one row of the snapshot log.
type Key struct {
	Identifier string
	Version    string
}

// SnapshotKey is the log key of a snapshot.
func SnapshotKey(identifier, version string) Key {
	return Key{Identifier: identifier, Version: version}
}
