package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Listings CRUD. Writes are scoped to the owning farmer: every mutation
// carries the farmer id in the WHERE clause, so one farmer can never touch
// another's stock.

type ListingInput struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Unit         string `json:"unit"`
	PricePerUnit int64  `json:"price_per_unit"`
	Photo        string `json:"photo,omitempty"`
}

func (in ListingInput) validate() error {
	if in.Name == "" || in.Unit == "" {
		return fmt.Errorf("%w: name and unit are required", ErrValidation)
	}
	if in.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	if in.PricePerUnit <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	return nil
}

func (r *Repo) CreateListing(ctx context.Context, farmerID, farmerName string, in ListingInput) (*Listing, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	l := &Listing{
		ID:           uuid.NewString(),
		FarmerID:     farmerID,
		FarmerName:   farmerName,
		Name:         in.Name,
		Quantity:     in.Quantity,
		Unit:         in.Unit,
		PricePerUnit: in.PricePerUnit,
		Photo:        in.Photo,
		Status:       ListingAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO listings(id, farmer_id, farmer_name, name, quantity, unit, price_per_unit, photo, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		l.ID, l.FarmerID, l.FarmerName, l.Name, l.Quantity, l.Unit, l.PricePerUnit, l.Photo, l.Status, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *Repo) UpdateListing(ctx context.Context, listingID, farmerID string, in ListingInput) (*Listing, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE listings SET name=$3, quantity=$4, unit=$5, price_per_unit=$6, photo=$7, updated_at=$8
		WHERE id=$1 AND farmer_id=$2`,
		listingID, farmerID, in.Name, in.Quantity, in.Unit, in.PricePerUnit, in.Photo, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetListing(ctx, listingID)
}

func (r *Repo) DeleteListing(ctx context.Context, listingID, farmerID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM listings WHERE id=$1 AND farmer_id=$2`, listingID, farmerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetListing(ctx context.Context, listingID string) (*Listing, error) {
	var l Listing
	err := r.DB.QueryRow(ctx, `
		SELECT id, farmer_id, farmer_name, name, quantity, unit, price_per_unit, photo, status,
		       reserved_quantity, sold_quantity, created_at, updated_at
		FROM listings WHERE id=$1`, listingID).
		Scan(&l.ID, &l.FarmerID, &l.FarmerName, &l.Name, &l.Quantity, &l.Unit, &l.PricePerUnit,
			&l.Photo, &l.Status, &l.ReservedQuantity, &l.SoldQuantity, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListAvailable is the buyer-facing catalog.
func (r *Repo) ListAvailable(ctx context.Context) ([]Listing, error) {
	return r.listListings(ctx, `WHERE status=$1`, string(ListingAvailable))
}

func (r *Repo) ListByFarmer(ctx context.Context, farmerID string) ([]Listing, error) {
	return r.listListings(ctx, `WHERE farmer_id=$1`, farmerID)
}

func (r *Repo) listListings(ctx context.Context, where string, args ...any) ([]Listing, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, farmer_id, farmer_name, name, quantity, unit, price_per_unit, photo, status,
		       reserved_quantity, sold_quantity, created_at, updated_at
		FROM listings `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(&l.ID, &l.FarmerID, &l.FarmerName, &l.Name, &l.Quantity, &l.Unit,
			&l.PricePerUnit, &l.Photo, &l.Status, &l.ReservedQuantity, &l.SoldQuantity,
			&l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
