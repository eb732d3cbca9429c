package assessment

import "context"

// Repository defines the interface for assessment record storage.
type Repository interface {
	// Save stores a new assessment record.
	Save(ctx context.Context, record *Record) error

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*Record, error)

	// Latest retrieves the most recent record for a location bucket.
	Latest(ctx context.Context, lat, lon float64) (*Record, error)

	// List retrieves records, newest first, with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
}
