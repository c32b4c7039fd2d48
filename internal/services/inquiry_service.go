package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"urgentsales/server/internal/db"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/models"
	"urgentsales/server/internal/utils"
)

const inquiriesCollection = "inquiries"

// InquiryDispatcher queues the owner email for a stored inquiry.
type InquiryDispatcher interface {
	DispatchInquiry(inquiryID utils.SixID) error
}

type InquiryInput struct {
	Email   string
	Phone   string
	Message string
}

type IInquiryService interface {
	Submit(ctx context.Context, key listing.Key, actor *listing.Actor, in InquiryInput) (*models.Inquiry, error)
	ListForListing(ctx context.Context, actor listing.Actor, key listing.Key) ([]models.Inquiry, error)
}

type inquiryService struct {
	db         *mongo.Database
	merger     *listing.Merger
	dispatcher InquiryDispatcher
}

func NewInquiryService(database *mongo.Database, merger *listing.Merger, dispatcher InquiryDispatcher) IInquiryService {
	return &inquiryService{db: database, merger: merger, dispatcher: dispatcher}
}

// Submit stores a buyer's inquiry and queues the owner email. Only
// approved listings accept inquiries. Guests must leave an email;
// logged-in buyers inherit theirs from the account when blank.
func (s *inquiryService) Submit(ctx context.Context, key listing.Key, actor *listing.Actor, in InquiryInput) (*models.Inquiry, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, &listing.ValidationError{Field: "message", Msg: "message is required"}
	}

	buyerEmail := strings.TrimSpace(in.Email)
	var buyerID *utils.SixID
	if actor != nil {
		id, err := utils.ParseSixID(actor.ID)
		if err == nil {
			buyerID = &id
		}
		if buyerEmail == "" {
			buyerEmail = actor.Email
		}
	}
	if !emailPattern.MatchString(buyerEmail) {
		return nil, &listing.ValidationError{Field: "email", Msg: "a valid reply email is required"}
	}

	l, err := s.merger.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if l.Status != listing.StatusApproved {
		return nil, listing.ErrNotFound
	}

	var inquiry *models.Inquiry
	err = db.Try(func() error {
		inquiry = &models.Inquiry{
			Base:          models.NewBase(),
			ListingOrigin: string(key.Origin),
			ListingID:     key.ID,
			UserID:        buyerID,
			Email:         buyerEmail,
			Phone:         strings.TrimSpace(in.Phone),
			Message:       strings.TrimSpace(in.Message),
			CreatedAt:     time.Now().UTC(),
		}
		_, insertErr := s.db.Collection(inquiriesCollection).InsertOne(ctx, inquiry)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("storing inquiry: %w", err)
	}

	if err := s.dispatcher.DispatchInquiry(inquiry.ID); err != nil {
		// The inquiry is stored; delivery will be retried by the
		// unsent sweep.
		log.Printf("WARN: could not queue inquiry %s delivery: %v", inquiry.ID, err)
	}
	return inquiry, nil
}

// ListForListing returns the inquiries on one listing, owner only.
func (s *inquiryService) ListForListing(ctx context.Context, actor listing.Actor, key listing.Key) ([]models.Inquiry, error) {
	l, err := s.merger.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !listing.CanMutate(actor, l) {
		return nil, &listing.ForbiddenError{Msg: "not the owner of this listing"}
	}

	cursor, err := s.db.Collection(inquiriesCollection).Find(ctx,
		bson.M{"listing_origin": string(key.Origin), "listing_id": key.ID, "deleted": false},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	defer cursor.Close(ctx)

	var inquiries []models.Inquiry
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	return inquiries, nil
}
