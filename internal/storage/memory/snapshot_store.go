package memory

import (
	"context"
	"sort"
	"sync"

	"vehicle-catalog-lab/internal/domain"
	"vehicle-catalog-lab/internal/storage"
	"vehicle-catalog-lab/internal/version"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
// It keeps one append-only log keyed by (identifier, version) and a derived
// current index pointing at the greatest version of each identifier.
type SnapshotStore struct {
	mu      sync.RWMutex
	log     map[storage.Key]*domain.VehicleSnapshot
	byID    map[string][]string // identifier -> versions in log
	current map[string]string   // identifier -> current version
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		log:     make(map[storage.Key]*domain.VehicleSnapshot),
		byID:    make(map[string][]string),
		current: make(map[string]string),
	}
}

// Append adds a snapshot. Returns ErrDuplicateKey if (identifier, version) exists.
func (s *SnapshotStore) Append(_ context.Context, snap *domain.VehicleSnapshot) error {
	if err := storage.ValidateSnapshot(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.log[storage.SnapshotKey(snap.Identifier, snap.Version)]; exists {
		return storage.ErrDuplicateKey
	}
	s.appendLocked(snap)
	return nil
}

// AppendBulk appends in order, atomically. Fails entire batch on any duplicate.
func (s *SnapshotStore) AppendBulk(_ context.Context, snaps []*domain.VehicleSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[storage.Key]struct{}, len(snaps))

	for _, snap := range snaps {
		if err := storage.ValidateSnapshot(snap); err != nil {
			return err
		}
		key := storage.SnapshotKey(snap.Identifier, snap.Version)
		if _, exists := s.log[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, snap := range snaps {
		s.appendLocked(snap)
	}
	return nil
}

// appendLocked records snap and advances the current index. Caller holds mu.
func (s *SnapshotStore) appendLocked(snap *domain.VehicleSnapshot) {
	snapCopy := *snap
	s.log[storage.SnapshotKey(snap.Identifier, snap.Version)] = &snapCopy
	s.byID[snap.Identifier] = append(s.byID[snap.Identifier], snap.Version)

	cur, ok := s.current[snap.Identifier]
	if !ok || version.Compare(snap.Version, cur) > 0 {
		s.current[snap.Identifier] = snap.Version
	}
}

func (s *SnapshotStore) isCurrent(identifier, v string) bool {
	return s.current[identifier] == v
}

// LiveVersions returns the distinct versions of Live rows.
func (s *SnapshotStore) LiveVersions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, v := range s.current {
		seen[v] = struct{}{}
	}
	return keys(seen), nil
}

// HistoricalVersions returns the distinct versions of Historical rows.
func (s *SnapshotStore) HistoricalVersions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for id, versions := range s.byID {
		for _, v := range versions {
			if !s.isCurrent(id, v) {
				seen[v] = struct{}{}
			}
		}
	}
	return keys(seen), nil
}

// Live returns every Live row, ordered by identifier.
func (s *SnapshotStore) Live(_ context.Context) ([]*domain.VehicleSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.VehicleSnapshot, 0, len(s.current))
	for id, v := range s.current {
		snapCopy := *s.log[storage.SnapshotKey(id, v)]
		result = append(result, &snapCopy)
	}
	sortSnapshots(result)
	return result, nil
}

// HistoricalIn returns every Historical row whose version is in versions.
func (s *SnapshotStore) HistoricalIn(_ context.Context, versions []string) ([]*domain.VehicleSnapshot, error) {
	if len(versions) == 0 {
		return nil, nil
	}

	wanted := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		wanted[v] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.VehicleSnapshot
	for _, snap := range s.log {
		if _, ok := wanted[snap.Version]; !ok {
			continue
		}
		if s.isCurrent(snap.Identifier, snap.Version) {
			continue
		}
		snapCopy := *snap
		result = append(result, &snapCopy)
	}
	sortSnapshots(result)
	return result, nil
}

// GetLive returns the Live row of an identifier. Returns ErrNotFound if none.
func (s *SnapshotStore) GetLive(_ context.Context, identifier string) (*domain.VehicleSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.current[identifier]
	if !ok {
		return nil, storage.ErrNotFound
	}
	snapCopy := *s.log[storage.SnapshotKey(identifier, v)]
	return &snapCopy, nil
}

// GetHistorical returns the Historical row (identifier, version). Returns ErrNotFound if none.
func (s *SnapshotStore) GetHistorical(_ context.Context, identifier, v string) (*domain.VehicleSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.log[storage.SnapshotKey(identifier, v)]
	if !ok || s.isCurrent(identifier, v) {
		return nil, storage.ErrNotFound
	}
	snapCopy := *snap
	return &snapCopy, nil
}

// VersionsOf returns every version of an identifier.
func (s *SnapshotStore) VersionsOf(_ context.Context, identifier string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.byID[identifier]
	out := make([]string, len(versions))
	copy(out, versions)
	return out, nil
}

// Close is a no-op.
func (s *SnapshotStore) Close() error {
	return nil
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sortSnapshots orders by identifier, then version ascending.
func sortSnapshots(snaps []*domain.VehicleSnapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].Identifier != snaps[j].Identifier {
			return snaps[i].Identifier < snaps[j].Identifier
		}
		return version.Less(snaps[i].Version, snaps[j].Version)
	})
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
