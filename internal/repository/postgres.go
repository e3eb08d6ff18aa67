package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"roomie/internal/model"
)

//go:embed schema.sql
var schemaSQL string

const listingColumns = `
	id, title, description, rent, utilities, distance_to_campus,
	is_furnished, allows_pets, vibe_tags, languages, address,
	images, host, vibe_vector, created_at`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection pool
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Migrate creates the tables and the vector extension when missing
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateListing inserts a published listing
func (r *PostgresRepository) CreateListing(ctx context.Context, listing *model.Listing) error {
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		listing.ID,
		listing.Title,
		listing.Description,
		listing.Rent,
		listing.Utilities,
		listing.DistanceToCampus,
		listing.IsFurnished,
		listing.AllowsPets,
		listing.VibeTags,
		listing.Languages,
		listing.Address,
		listing.Images,
		listing.Host,
		listing.VibeVector,
		listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// GetListing retrieves a single listing by its ID
func (r *PostgresRepository) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	err := r.db.GetContext(ctx, &listing, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// SearchListings performs a filtered search. With a vibe vector the
// closest listings by cosine distance come first, otherwise the newest.
func (r *PostgresRepository) SearchListings(
	ctx context.Context,
	filters *model.ListingFilters,
	vibe []float32,
	limit, offset int,
) ([]model.Listing, int, error) {
	whereClause, args, err := buildListingWhere(filters)
	if err != nil {
		return nil, 0, err
	}
	argIndex := len(args) + 1

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM listings WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count results: %w", err)
	}

	orderBy := "created_at DESC, id"
	if len(vibe) > 0 {
		orderBy = fmt.Sprintf("vibe_vector <=> $%d, created_at DESC, id", argIndex)
		args = append(args, pgvector.NewVector(vibe))
		argIndex++
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM listings
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, listingColumns, whereClause, orderBy, argIndex, argIndex+1)
	args = append(args, limit, offset)

	listings := []model.Listing{}
	if err := r.db.SelectContext(ctx, &listings, selectQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, total, nil
}

// buildListingWhere turns filters into a WHERE clause with positional args
func buildListingWhere(filters *model.ListingFilters) (string, []interface{}, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	add := func(format string, arg interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf(format, argIndex))
		args = append(args, arg)
		argIndex++
	}

	if filters != nil {
		if filters.MinRent != nil {
			add("rent >= $%d", *filters.MinRent)
		}
		if filters.MaxRent != nil {
			add("rent <= $%d", *filters.MaxRent)
		}
		if filters.MaxDistance != nil {
			add("distance_to_campus <= $%d", *filters.MaxDistance)
		}
		if filters.AllowsPets != nil {
			add("allows_pets = $%d", *filters.AllowsPets)
		}
		if filters.IsFurnished != nil {
			add("is_furnished = $%d", *filters.IsFurnished)
		}
		// JSONB containment: every requested value must be present
		if len(filters.VibeTags) > 0 {
			raw, err := json.Marshal(filters.VibeTags)
			if err != nil {
				return "", nil, fmt.Errorf("failed to encode vibe tags: %w", err)
			}
			add("vibe_tags @> $%d::jsonb", string(raw))
		}
		if len(filters.Languages) > 0 {
			raw, err := json.Marshal(filters.Languages)
			if err != nil {
				return "", nil, fmt.Errorf("failed to encode languages: %w", err)
			}
			add("languages @> $%d::jsonb", string(raw))
		}
	}

	return strings.Join(whereClauses, " AND "), args, nil
}

// LogSearch logs a search query
func (r *PostgresRepository) LogSearch(ctx context.Context, query string, intent *model.QueryIntent, total int, listingIDs []string, tookMs int64) error {
	intentJSON, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to encode intent: %w", err)
	}

	logQuery := `
		INSERT INTO search_logs (search_id, query, intent, result_count, returned_listing_ids, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, logQuery,
		uuid.NewString(),
		query,
		string(intentJSON),
		total,
		model.JSONArray(listingIDs),
		tookMs,
	)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}
