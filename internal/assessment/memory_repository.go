package assessment

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and single-node deployments. Production
// should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewInMemoryRepository creates a new in-memory assessment repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]*Record),
	}
}

// Save stores a new assessment record.
func (r *InMemoryRepository) Save(_ context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *record
	r.records[record.ID] = &cpy
	return nil
}

// Get retrieves a record by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	// Return a copy
	cpy := *record
	return &cpy, nil
}

// Latest retrieves the most recent record for a location bucket.
func (r *InMemoryRepository) Latest(_ context.Context, lat, lon float64) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := locationKey(lat, lon)

	var latest *Record
	for _, record := range r.records {
		if locationKey(record.Lat, record.Lon) != key {
			continue
		}
		if latest == nil || record.AssessedAt.After(latest.AssessedAt) {
			latest = record
		}
	}

	if latest == nil {
		return nil, ErrRecordNotFound
	}

	cpy := *latest
	return &cpy, nil
}

// List retrieves records, newest first, with pagination.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*Record
	for _, record := range r.records {
		if opts.Category != "" && record.Result.Category != opts.Category {
			continue
		}
		if opts.MinAQI > 0 && record.Result.AQI < opts.MinAQI {
			continue
		}
		cpy := *record
		records = append(records, &cpy)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].AssessedAt.After(records[j].AssessedAt)
	})

	// Apply cursor: skip everything up to and including the cursor record
	if opts.Cursor != "" {
		for i, record := range records {
			if record.ID == opts.Cursor {
				records = records[i+1:]
				break
			}
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: records}

	if len(records) > limit {
		result.Items = records[:limit]
		result.NextCursor = records[limit-1].ID
	}

	return result, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
