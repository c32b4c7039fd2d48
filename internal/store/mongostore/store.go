// Package mongostore adapts the primary MongoDB properties collection
// to the listing.Source contract. Records here are natively typed;
// normalization is a straight field mapping.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"urgentsales/server/internal/db"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/models"
	"urgentsales/server/internal/utils"
)

const propertiesCollection = "properties"

// Store is the primary listing source.
type Store struct {
	db *mongo.Database
}

// New creates a Store over the given database.
func New(database *mongo.Database) *Store {
	return &Store{db: database}
}

// Origin implements listing.Source.
func (s *Store) Origin() listing.Origin {
	return listing.OriginPrimary
}

// Create inserts a new property in pending state and returns the
// canonical listing. The random document ID is regenerated on
// duplicate-key retries.
func (s *Store) Create(ctx context.Context, l listing.Listing) (listing.Listing, error) {
	coll := s.db.Collection(propertiesCollection)
	now := time.Now().UTC()

	var doc *models.Property
	operation := func() error {
		userID, err := utils.ParseSixID(l.UserID)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", l.UserID, err)
		}
		doc = &models.Property{
			Base:           models.NewBase(),
			UserID:         userID,
			Title:          l.Title,
			Description:    l.Description,
			PropertyType:   l.PropertyType,
			SaleType:       l.SaleType,
			City:           l.City,
			Location:       l.Location,
			Price:          l.Price,
			AreaSqFt:       l.AreaSqFt,
			Bedrooms:       l.Bedrooms,
			Bathrooms:      l.Bathrooms,
			Amenities:      append([]string{}, l.Amenities...),
			ImageKeys:      append([]string{}, l.ImageURLs...),
			ApprovalStatus: string(listing.StatusPending),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		_, insertErr := coll.InsertOne(ctx, doc)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return listing.Listing{}, &listing.StorageError{Origin: s.Origin(), Op: "create", Err: err}
	}
	return toListing(doc), nil
}

// Get returns one property by ID, excluding soft-deleted records.
func (s *Store) Get(ctx context.Context, id string) (listing.Listing, error) {
	docID, err := utils.ParseSixID(id)
	if err != nil {
		return listing.Listing{}, listing.ErrNotFound
	}

	var doc models.Property
	err = s.db.Collection(propertiesCollection).
		FindOne(ctx, bson.M{"_id": docID, "deleted": false}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return listing.Listing{}, listing.ErrNotFound
		}
		return listing.Listing{}, &listing.StorageError{Origin: s.Origin(), Op: "get", Err: err}
	}
	return toListing(&doc), nil
}

// List returns all properties matching the filter. Ordering and
// pagination are the merger's job.
func (s *Store) List(ctx context.Context, f listing.Filter) ([]listing.Listing, error) {
	filter := bson.M{"deleted": false}

	if f.Status != nil {
		filter["approval_status"] = string(*f.Status)
	}
	if f.City != "" {
		filter["city"] = bson.M{"$regex": f.City, "$options": "i"}
	}
	if f.PropertyType != "" {
		filter["property_type"] = f.PropertyType
	}
	if f.SaleType != "" {
		filter["sale_type"] = f.SaleType
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	// Primary rows are owned by account, never by contact email. An
	// email-only ownership filter targets the free source.
	if f.OwnerUserID != "" {
		ownerID, err := utils.ParseSixID(f.OwnerUserID)
		if err != nil {
			return []listing.Listing{}, nil
		}
		filter["user_id"] = ownerID
	} else if f.OwnerEmail != "" {
		return []listing.Listing{}, nil
	}

	cursor, err := s.db.Collection(propertiesCollection).Find(ctx, filter)
	if err != nil {
		return nil, &listing.StorageError{Origin: s.Origin(), Op: "list", Err: err}
	}
	defer cursor.Close(ctx)

	var docs []models.Property
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &listing.StorageError{Origin: s.Origin(), Op: "list", Err: err}
	}

	out := make([]listing.Listing, 0, len(docs))
	for i := range docs {
		out = append(out, toListing(&docs[i]))
	}
	return out, nil
}

// ApplyDecision persists an approval outcome with a single conditional
// update guarded by the expected current status, so two racing admins
// cannot overwrite each other.
func (s *Store) ApplyDecision(ctx context.Context, id string, out listing.Outcome) (listing.Listing, error) {
	docID, err := utils.ParseSixID(id)
	if err != nil {
		return listing.Listing{}, listing.ErrNotFound
	}
	coll := s.db.Collection(propertiesCollection)

	set := bson.M{
		"approval_status": string(out.Status),
		"approval_date":   out.DecidedAt,
		"updated_at":      out.DecidedAt,
	}
	unset := bson.M{}
	if out.Status == listing.StatusRejected {
		set["rejection_reason"] = out.Reason
	} else {
		unset["rejection_reason"] = ""
	}
	if out.ApprovedBy != "" {
		adminID, parseErr := utils.ParseSixID(out.ApprovedBy)
		if parseErr != nil {
			return listing.Listing{}, fmt.Errorf("invalid admin id %q: %w", out.ApprovedBy, parseErr)
		}
		set["approved_by"] = adminID
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	filter := bson.M{
		"_id":             docID,
		"deleted":         false,
		"approval_status": string(out.FromStatus),
	}

	result, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return listing.Listing{}, &listing.StorageError{Origin: s.Origin(), Op: "decide", Err: err}
	}
	if result.MatchedCount == 0 {
		// Re-read to tell "gone" apart from "already decided".
		var check models.Property
		checkErr := coll.FindOne(ctx, bson.M{"_id": docID, "deleted": false}).Decode(&check)
		if errors.Is(checkErr, mongo.ErrNoDocuments) {
			return listing.Listing{}, listing.ErrNotFound
		}
		if checkErr != nil {
			return listing.Listing{}, &listing.StorageError{Origin: s.Origin(), Op: "decide", Err: checkErr}
		}
		return listing.Listing{}, listing.ErrAlreadyDecided
	}

	return s.Get(ctx, id)
}

// Update applies owner field edits. Only descriptive fields are
// allowed; status and ownership move through their own paths.
func (s *Store) Update(ctx context.Context, id string, updates map[string]interface{}) (listing.Listing, error) {
	docID, err := utils.ParseSixID(id)
	if err != nil {
		return listing.Listing{}, listing.ErrNotFound
	}

	allowed := bson.M{}
	for key, value := range updates {
		switch key {
		case "title", "description", "property_type", "sale_type", "city", "location",
			"price", "area_sqft", "bedrooms", "bathrooms", "amenities":
			allowed[key] = value
		default:
			return listing.Listing{}, &listing.ValidationError{Field: key, Msg: "field cannot be updated"}
		}
	}
	if len(allowed) == 0 {
		return listing.Listing{}, &listing.ValidationError{Msg: "no valid fields provided for update"}
	}
	allowed["updated_at"] = time.Now().UTC()

	result, err := s.db.Collection(propertiesCollection).UpdateOne(ctx,
		bson.M{"_id": docID, "deleted": false},
		bson.M{"$set": allowed})
	if err != nil {
		return listing.Listing{}, &listing.StorageError{Origin: s.Origin(), Op: "update", Err: err}
	}
	if result.MatchedCount == 0 {
		return listing.Listing{}, listing.ErrNotFound
	}
	return s.Get(ctx, id)
}

// AddImage appends a processed image key to the property, skipping
// duplicates.
func (s *Store) AddImage(ctx context.Context, id, imageKey string) error {
	docID, err := utils.ParseSixID(id)
	if err != nil {
		return listing.ErrNotFound
	}
	result, err := s.db.Collection(propertiesCollection).UpdateOne(ctx,
		bson.M{"_id": docID, "deleted": false},
		bson.M{
			"$addToSet": bson.M{"image_keys": imageKey},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return &listing.StorageError{Origin: s.Origin(), Op: "add-image", Err: err}
	}
	if result.MatchedCount == 0 {
		return listing.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a property.
func (s *Store) Delete(ctx context.Context, id string) error {
	docID, err := utils.ParseSixID(id)
	if err != nil {
		return listing.ErrNotFound
	}
	now := time.Now().UTC()
	result, err := s.db.Collection(propertiesCollection).UpdateOne(ctx,
		bson.M{"_id": docID, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "updated_at": now}})
	if err != nil {
		return &listing.StorageError{Origin: s.Origin(), Op: "delete", Err: err}
	}
	if result.MatchedCount == 0 {
		return listing.ErrNotFound
	}
	return nil
}

// CountActiveByUser counts a user's live listings, for free-tier quota
// checks.
func (s *Store) CountActiveByUser(ctx context.Context, userID utils.SixID) (int, error) {
	n, err := s.db.Collection(propertiesCollection).CountDocuments(ctx, bson.M{
		"user_id": userID,
		"deleted": false,
		"approval_status": bson.M{
			"$in": []string{string(listing.StatusPending), string(listing.StatusApproved)},
		},
	})
	if err != nil {
		return 0, &listing.StorageError{Origin: s.Origin(), Op: "count", Err: err}
	}
	return int(n), nil
}

// toListing maps the Mongo document onto the canonical shape.
func toListing(doc *models.Property) listing.Listing {
	l := listing.Listing{
		ID:              doc.ID.String(),
		Origin:          listing.OriginPrimary,
		Status:          listing.ApprovalStatus(doc.ApprovalStatus),
		RejectionReason: doc.RejectionReason,
		ApprovalDate:    doc.ApprovalDate,
		UserID:          doc.UserID.String(),
		Title:           doc.Title,
		Description:     doc.Description,
		PropertyType:    doc.PropertyType,
		SaleType:        doc.SaleType,
		City:            doc.City,
		Location:        doc.Location,
		Price:           doc.Price,
		AreaSqFt:        doc.AreaSqFt,
		Bedrooms:        doc.Bedrooms,
		Bathrooms:       doc.Bathrooms,
		Amenities:       doc.Amenities,
		ImageURLs:       doc.ImageKeys,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if doc.ApprovedBy != nil {
		l.ApprovedBy = doc.ApprovedBy.String()
	}
	l.Normalize()
	return l
}
