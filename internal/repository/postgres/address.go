package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/neighborly/internal/domain"
	"github.com/utafrali/neighborly/pkg/database"
	apperrors "github.com/utafrali/neighborly/pkg/errors"
)

// AddressRepository implements address persistence operations using PostgreSQL.
type AddressRepository struct {
	pool database.DBTX
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool database.DBTX) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// addressMatch is the case-insensitive filter shared by Search and Suggest.
const addressMatch = `
	a.street_address ILIKE $1 OR a.city ILIKE $1 OR a.state ILIKE $1
	OR a.zip_code ILIKE $1 OR a.formatted_address ILIKE $1`

// likePattern escapes LIKE metacharacters in q and wraps it in wildcards.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// GetByID retrieves an address by its identifier.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (_ *domain.Address, err error) {
	query := `SELECT ` + addressColumns + ` FROM addresses a WHERE a.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetAddress", query)
	defer func() { end(err) }()

	var a domain.Address
	if err = r.pool.QueryRow(ctx, query, id).Scan(addressDest(&a)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("address", id)
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &a, nil
}

// GetByFormatted retrieves an address by its normalised key.
func (r *AddressRepository) GetByFormatted(ctx context.Context, formatted string) (_ *domain.Address, err error) {
	query := `SELECT ` + addressColumns + ` FROM addresses a WHERE a.formatted_address = $1`

	ctx, end := database.TraceQuery(ctx, "GetAddressByFormatted", query)
	defer func() { end(err) }()

	var a domain.Address
	if err = r.pool.QueryRow(ctx, query, formatted).Scan(addressDest(&a)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("address", formatted)
		}
		return nil, fmt.Errorf("get address by formatted: %w", err)
	}
	return &a, nil
}

// Create inserts the address or loads the existing one with the same key.
func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) error {
	return ensureAddress(ctx, r.pool, a)
}

const ensureAddressQuery = `
	INSERT INTO addresses (id, street_address, city, state, zip_code, formatted_address, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (formatted_address) DO UPDATE SET formatted_address = EXCLUDED.formatted_address
	RETURNING id, street_address, city, state, zip_code, formatted_address, created_at`

type rowQueryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ensureAddress upserts on formatted_address so concurrent first reviews of
// the same address converge on one row.
func ensureAddress(ctx context.Context, db rowQueryer, a *domain.Address) (err error) {
	ctx, end := database.TraceQuery(ctx, "EnsureAddress", ensureAddressQuery)
	defer func() { end(err) }()

	err = db.QueryRow(ctx, ensureAddressQuery,
		a.ID,
		a.StreetAddress,
		a.City,
		a.State,
		a.ZipCode,
		a.FormattedAddress,
		a.CreatedAt,
	).Scan(addressDest(a)...)
	if err != nil {
		return fmt.Errorf("ensure address: %w", err)
	}
	return nil
}

// Search returns matching addresses ordered by city, with reviews loaded.
func (r *AddressRepository) Search(ctx context.Context, query string, limit int) (_ []domain.AddressWithReviews, err error) {
	stmt := `SELECT ` + addressColumns + ` FROM addresses a WHERE ` + addressMatch + `
		ORDER BY a.city ASC, a.id ASC
		LIMIT $2`

	ctx, end := database.TraceQuery(ctx, "SearchAddresses", stmt)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, stmt, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search addresses: %w", err)
	}
	addresses, err := collectAddresses(rows)
	if err != nil {
		return nil, err
	}
	return r.withReviews(ctx, addresses)
}

// Suggest returns matching addresses with their review counts, ordered by
// city.
func (r *AddressRepository) Suggest(ctx context.Context, query string, limit int) (_ []domain.AddressSuggestion, err error) {
	stmt := `
		SELECT a.id, a.street_address, a.city, a.state, a.zip_code,
		       (SELECT COUNT(*) FROM reviews r WHERE r.address_id = a.id) AS review_count
		FROM addresses a
		WHERE ` + addressMatch + `
		ORDER BY a.city ASC, a.id ASC
		LIMIT $2`

	ctx, end := database.TraceQuery(ctx, "SuggestAddresses", stmt)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, stmt, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("suggest addresses: %w", err)
	}
	defer rows.Close()

	suggestions := []domain.AddressSuggestion{}
	for rows.Next() {
		var (
			s                        domain.AddressSuggestion
			street, city, state, zip string
		)
		if err := rows.Scan(&s.ID, &street, &city, &state, &zip, &s.ReviewCount); err != nil {
			return nil, fmt.Errorf("scan suggestion row: %w", err)
		}
		s.Display = fmt.Sprintf("%s, %s, %s %s", street, city, state, zip)
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestion rows: %w", err)
	}
	return suggestions, nil
}

// ListWithReviews returns up to limit addresses that have at least one review.
func (r *AddressRepository) ListWithReviews(ctx context.Context, limit int) (_ []domain.AddressWithReviews, err error) {
	stmt := `SELECT ` + addressColumns + ` FROM addresses a
		WHERE EXISTS (SELECT 1 FROM reviews r WHERE r.address_id = a.id)
		ORDER BY a.created_at DESC
		LIMIT $1`

	ctx, end := database.TraceQuery(ctx, "ListAddressesWithReviews", stmt)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	addresses, err := collectAddresses(rows)
	if err != nil {
		return nil, err
	}
	return r.withReviews(ctx, addresses)
}

func collectAddresses(rows pgx.Rows) ([]domain.Address, error) {
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(addressDest(&a)...); err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address rows: %w", err)
	}
	return addresses, nil
}

const reviewsByAddressesQuery = `
	SELECT ` + reviewColumns + `
	FROM reviews r
	WHERE r.address_id = ANY($1)
	ORDER BY r.created_at DESC, r.id`

// withReviews loads the reviews and answers of every address in two queries.
func (r *AddressRepository) withReviews(ctx context.Context, addresses []domain.Address) ([]domain.AddressWithReviews, error) {
	out := make([]domain.AddressWithReviews, len(addresses))
	if len(addresses) == 0 {
		return out, nil
	}

	ids := make([]string, len(addresses))
	index := make(map[string]int, len(addresses))
	for i, a := range addresses {
		ids[i] = a.ID
		index[a.ID] = i
		out[i] = domain.AddressWithReviews{Address: a, Reviews: []domain.Review{}}
	}

	rows, err := r.pool.Query(ctx, reviewsByAddressesQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("list reviews for addresses: %w", err)
	}
	reviews, err := collectReviews(rows, false)
	if err != nil {
		return nil, err
	}
	if err := loadAnswers(ctx, r.pool, reviews); err != nil {
		return nil, err
	}

	for _, rv := range reviews {
		if i, ok := index[rv.AddressID]; ok {
			out[i].Reviews = append(out[i].Reviews, rv)
		}
	}
	return out, nil
}
