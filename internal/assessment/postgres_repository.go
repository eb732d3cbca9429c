package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airindex/airindex/internal/aqi"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL assessment repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const recordColumns = `
	id, lat, lon, location_key,
	co, no2, o3, so2, pm25, pm10,
	aqi, category, sub_indices, dominant_pollutants,
	source, measured_at, assessed_at
`

// Save stores a new assessment record.
func (r *PostgresRepository) Save(ctx context.Context, record *Record) error {
	subIndices, err := json.Marshal(record.Result.SubIndices)
	if err != nil {
		return fmt.Errorf("marshal sub-indices: %w", err)
	}
	dominant, err := json.Marshal(record.Result.DominantPollutants)
	if err != nil {
		return fmt.Errorf("marshal dominant pollutants: %w", err)
	}

	query := `
		INSERT INTO assessments (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = r.pool.Exec(ctx, query,
		record.ID,
		record.Lat,
		record.Lon,
		locationKey(record.Lat, record.Lon),
		record.Reading.CO,
		record.Reading.NO2,
		record.Reading.O3,
		record.Reading.SO2,
		record.Reading.PM25,
		record.Reading.PM10,
		record.Result.AQI,
		string(record.Result.Category),
		subIndices,
		dominant,
		record.Source,
		record.MeasuredAt,
		record.AssessedAt,
	)
	return err
}

// Get retrieves a record by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM assessments WHERE id = $1`
	return r.scanRecord(r.pool.QueryRow(ctx, query, id))
}

// Latest retrieves the most recent record for a location bucket.
func (r *PostgresRepository) Latest(ctx context.Context, lat, lon float64) (*Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM assessments
		WHERE location_key = $1
		ORDER BY assessed_at DESC
		LIMIT 1
	`
	return r.scanRecord(r.pool.QueryRow(ctx, query, locationKey(lat, lon)))
}

// List retrieves records, newest first, with cursor pagination.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `SELECT ` + recordColumns + ` FROM assessments WHERE 1=1`
	args := []interface{}{}

	if opts.Cursor != "" {
		args = append(args, opts.Cursor)
		query += fmt.Sprintf(` AND assessed_at < (SELECT assessed_at FROM assessments WHERE id = $%d)`, len(args))
	}
	if opts.Category != "" {
		args = append(args, string(opts.Category))
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if opts.MinAQI > 0 {
		args = append(args, opts.MinAQI)
		query += fmt.Sprintf(` AND aqi >= $%d`, len(args))
	}

	args = append(args, fetchLimit)
	query += fmt.Sprintf(` ORDER BY assessed_at DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{Items: records}

	if len(records) > limit {
		result.Items = records[:limit]
		result.NextCursor = records[limit-1].ID
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans one record, unpacking the JSONB result columns.
func (r *PostgresRepository) scanRecord(row rowScanner) (*Record, error) {
	var (
		record     Record
		key        string
		category   string
		subIndices []byte
		dominant   []byte
	)

	err := row.Scan(
		&record.ID,
		&record.Lat,
		&record.Lon,
		&key,
		&record.Reading.CO,
		&record.Reading.NO2,
		&record.Reading.O3,
		&record.Reading.SO2,
		&record.Reading.PM25,
		&record.Reading.PM10,
		&record.Result.AQI,
		&category,
		&subIndices,
		&dominant,
		&record.Source,
		&record.MeasuredAt,
		&record.AssessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	record.Result.Category = aqi.Category(category)
	if err := json.Unmarshal(subIndices, &record.Result.SubIndices); err != nil {
		return nil, fmt.Errorf("unmarshal sub-indices: %w", err)
	}
	if err := json.Unmarshal(dominant, &record.Result.DominantPollutants); err != nil {
		return nil, fmt.Errorf("unmarshal dominant pollutants: %w", err)
	}

	return &record, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
