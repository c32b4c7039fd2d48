// Package pgstore adapts the legacy free_listings Postgres table to the
// listing.Source contract. The table predates the primary store and has
// no user accounts; ownership is decided by the contact details stored
// on each row.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"urgentsales/server/internal/listing"
)

const selectColumns = `id, owner_name, owner_email, owner_phone, title, description,
	property_type, sale_type, city, location, price, area_sqft, bedrooms,
	bathrooms, amenities, image_urls, approval_status,
	COALESCE(rejection_reason, ''), approval_date, created_at, updated_at`

// Store is the free listing source.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Origin implements listing.Source.
func (s *Store) Origin() listing.Origin {
	return listing.OriginFree
}

// Create inserts a guest submission in pending state. Numeric fields
// are written back in the table's text form to match the legacy schema.
func (s *Store) Create(ctx context.Context, l listing.Listing) (listing.Listing, error) {
	var contact listing.ContactInfo
	if l.Contact != nil {
		contact = *l.Contact
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO free_listings
			(owner_name, owner_email, owner_phone, title, description,
			 property_type, sale_type, city, location, price, area_sqft,
			 bedrooms, bathrooms, amenities, image_urls, approval_status,
			 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$17)
		RETURNING id`,
		contact.Name, contact.Email, contact.Phone,
		l.Title, l.Description, l.PropertyType, l.SaleType, l.City, l.Location,
		strconv.FormatFloat(l.Price, 'f', -1, 64),
		strconv.FormatFloat(l.AreaSqFt, 'f', -1, 64),
		strconv.Itoa(l.Bedrooms), strconv.Itoa(l.Bathrooms),
		strings.Join(l.Amenities, ","), strings.Join(l.ImageURLs, ","),
		string(listing.StatusPending), time.Now().UTC())

	var id int64
	if err := row.Scan(&id); err != nil {
		return listing.Listing{}, &listing.StorageError{Origin: s.Origin(), Op: "create", Err: err}
	}
	return s.Get(ctx, strconv.FormatInt(id, 10))
}

// Get returns one free listing by its serial ID.
func (s *Store) Get(ctx context.Context, id string) (listing.Listing, error) {
	serial, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return listing.Listing{}, listing.ErrNotFound
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM free_listings WHERE id = $1 AND NOT deleted`,
		serial)
	r, err := scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return listing.Listing{}, listing.ErrNotFound
		}
		return listing.Listing{}, &listing.StorageError{Origin: s.Origin(), Op: "get", Err: err}
	}
	return normalizeRow(r), nil
}

// List returns all free listings matching the filter. Price bounds are
// applied after coercion because the price column is text; pushing them
// into SQL would compare lexicographically.
func (s *Store) List(ctx context.Context, f listing.Filter) ([]listing.Listing, error) {
	var (
		where = []string{"NOT deleted"}
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != nil {
		where = append(where, "approval_status = "+arg(string(*f.Status)))
	}
	if f.City != "" {
		where = append(where, "city ILIKE "+arg("%"+f.City+"%"))
	}
	if f.PropertyType != "" {
		where = append(where, "property_type = "+arg(f.PropertyType))
	}
	if f.SaleType != "" {
		where = append(where, "sale_type = "+arg(f.SaleType))
	}
	// Free rows have no user accounts, so ownership filters only work
	// through the contact email. An owner-ID filter with no email can
	// never match here.
	if f.OwnerEmail != "" {
		where = append(where, "LOWER(owner_email) = LOWER("+arg(strings.TrimSpace(f.OwnerEmail))+")")
	} else if f.OwnerUserID != "" {
		return []listing.Listing{}, nil
	}

	query := `SELECT ` + selectColumns + ` FROM free_listings WHERE ` + strings.Join(where, " AND ")
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &listing.StorageError{Origin: s.Origin(), Op: "list", Err: err}
	}
	defer rows.Close()

	var out []listing.Listing
	for rows.Next() {
		r, scanErr := scanRow(rows)
		if scanErr != nil {
			return nil, &listing.StorageError{Origin: s.Origin(), Op: "list", Err: scanErr}
		}
		l := normalizeRow(r)
		if f.MinPrice != nil && l.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && l.Price > *f.MaxPrice {
			continue
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &listing.StorageError{Origin: s.Origin(), Op: "list", Err: err}
	}
	if out == nil {
		out = []listing.Listing{}
	}
	return out, nil
}

// ApplyDecision persists an approval outcome with a single conditional
// UPDATE guarded by the expected current status. The table has no
// approved_by column, so the admin identity is not recorded here.
func (s *Store) ApplyDecision(ctx context.Context, id string, out listing.Outcome) (listing.Listing, error) {
	serial, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return listing.Listing{}, listing.ErrNotFound
	}

	var reason interface{}
	if out.Status == listing.StatusRejected {
		reason = out.Reason
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE free_listings
		SET approval_status = $1, rejection_reason = $2, approval_date = $3, updated_at = $3
		WHERE id = $4 AND approval_status = $5 AND NOT deleted`,
		string(out.Status), reason, out.DecidedAt, serial, string(out.FromStatus))
	if err != nil {
		return listing.Listing{}, &listing.StorageError{Origin: s.Origin(), Op: "decide", Err: err}
	}
	if tag.RowsAffected() == 0 {
		// Re-read to tell "gone" apart from "already decided".
		var exists bool
		checkErr := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM free_listings WHERE id = $1 AND NOT deleted)`,
			serial).Scan(&exists)
		if checkErr != nil {
			return listing.Listing{}, &listing.StorageError{Origin: s.Origin(), Op: "decide", Err: checkErr}
		}
		if !exists {
			return listing.Listing{}, listing.ErrNotFound
		}
		return listing.Listing{}, listing.ErrAlreadyDecided
	}

	return s.Get(ctx, id)
}

// Delete soft-deletes a free listing.
func (s *Store) Delete(ctx context.Context, id string) error {
	serial, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return listing.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE free_listings SET deleted = TRUE, updated_at = $1 WHERE id = $2 AND NOT deleted`,
		time.Now().UTC(), serial)
	if err != nil {
		return &listing.StorageError{Origin: s.Origin(), Op: "delete", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return listing.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRow(row rowScanner) (freeRow, error) {
	var r freeRow
	err := row.Scan(
		&r.ID, &r.OwnerName, &r.OwnerEmail, &r.OwnerPhone, &r.Title,
		&r.Description, &r.PropertyType, &r.SaleType, &r.City, &r.Location,
		&r.PriceText, &r.AreaText, &r.BedroomsText, &r.BathroomsText,
		&r.AmenitiesText, &r.ImagesText, &r.ApprovalStatus,
		&r.RejectionReason, &r.ApprovalDate, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}
