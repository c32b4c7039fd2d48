package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/store/mongostore"
	"urgentsales/server/internal/store/pgstore"
	"urgentsales/server/internal/utils"
)

// DecisionNotifier delivers approval outcome notifications to listing
// owners. Delivery runs out of band; failures never affect the
// decision itself.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, l listing.Listing, n listing.Notification)
}

// PostingQuota answers whether an account may post another listing.
type PostingQuota interface {
	CheckCanPost(ctx context.Context, userID utils.SixID) error
}

// SubmissionInput is the one shape both submission endpoints produce
// after validation.
type SubmissionInput struct {
	Contact      listing.ContactInfo
	Title        string
	Description  string
	PropertyType string
	SaleType     string
	City         string
	Location     string
	Price        float64
	AreaSqFt     float64
	Bedrooms     int
	Bathrooms    int
	Amenities    []string
}

type IListingService interface {
	Search(ctx context.Context, f listing.Filter, sort listing.Sort, page listing.Page) (listing.ResultPage, error)
	Get(ctx context.Context, key listing.Key) (listing.Listing, error)
	SubmitPrimary(ctx context.Context, actor listing.Actor, in SubmissionInput) (listing.Listing, error)
	SubmitFree(ctx context.Context, in SubmissionInput) (listing.Listing, error)
	Decide(ctx context.Context, key listing.Key, d listing.Decision, admin listing.Actor) (listing.Listing, error)
	PendingQueue(ctx context.Context, page listing.Page) (listing.ResultPage, error)
	Update(ctx context.Context, actor listing.Actor, key listing.Key, updates map[string]interface{}) (listing.Listing, error)
	Delete(ctx context.Context, actor listing.Actor, key listing.Key) error
	OwnListings(ctx context.Context, actor listing.Actor, page listing.Page) (listing.ResultPage, error)
	AttachImage(ctx context.Context, actor listing.Actor, key listing.Key, imageKey string) error
}

type listingService struct {
	merger   *listing.Merger
	primary  *mongostore.Store
	free     *pgstore.Store
	quota    PostingQuota
	notifier DecisionNotifier
}

func NewListingService(merger *listing.Merger, primary *mongostore.Store, free *pgstore.Store,
	quota PostingQuota, notifier DecisionNotifier) IListingService {
	return &listingService{
		merger:   merger,
		primary:  primary,
		free:     free,
		quota:    quota,
		notifier: notifier,
	}
}

// Search serves the public catalogue. Callers cannot pick a status;
// only approved listings are visible here.
func (s *listingService) Search(ctx context.Context, f listing.Filter, sort listing.Sort, page listing.Page) (listing.ResultPage, error) {
	approved := listing.StatusApproved
	f.Status = &approved
	f.OwnerUserID = ""
	f.OwnerEmail = ""
	return s.merger.List(ctx, f, sort, page)
}

func (s *listingService) Get(ctx context.Context, key listing.Key) (listing.Listing, error) {
	return s.merger.Get(ctx, key)
}

func (s *listingService) SubmitPrimary(ctx context.Context, actor listing.Actor, in SubmissionInput) (listing.Listing, error) {
	if err := validateSubmission(in, false); err != nil {
		return listing.Listing{}, err
	}
	userID, err := utils.ParseSixID(actor.ID)
	if err != nil {
		return listing.Listing{}, &listing.ForbiddenError{Msg: "invalid account"}
	}
	if err := s.quota.CheckCanPost(ctx, userID); err != nil {
		return listing.Listing{}, err
	}

	l := submissionToListing(in)
	l.Origin = listing.OriginPrimary
	l.UserID = actor.ID
	return s.primary.Create(ctx, l)
}

// SubmitFree accepts a guest submission. No account is required, but
// contact details are mandatory since they are the only ownership
// anchor the free table has.
func (s *listingService) SubmitFree(ctx context.Context, in SubmissionInput) (listing.Listing, error) {
	if err := validateSubmission(in, true); err != nil {
		return listing.Listing{}, err
	}
	l := submissionToListing(in)
	l.Origin = listing.OriginFree
	contact := in.Contact
	l.Contact = &contact
	return s.free.Create(ctx, l)
}

// Decide runs the approval state machine for one listing: read the
// current record, compute the outcome, persist it with a status-guarded
// update, then hand the notification off. A concurrent decision
// surfaces as listing.ErrAlreadyDecided from the guarded update.
func (s *listingService) Decide(ctx context.Context, key listing.Key, d listing.Decision, admin listing.Actor) (listing.Listing, error) {
	source, err := s.merger.Source(key.Origin)
	if err != nil {
		return listing.Listing{}, err
	}

	current, err := source.Get(ctx, key.ID)
	if err != nil {
		return listing.Listing{}, err
	}

	outcome, err := listing.Decide(current, d, admin.ID, time.Now().UTC())
	if err != nil {
		return listing.Listing{}, err
	}

	updated, err := source.ApplyDecision(ctx, key.ID, outcome)
	if err != nil {
		return listing.Listing{}, err
	}

	log.Printf("listing %s %s by admin %s", key, outcome.Status, admin.ID)
	s.notifier.NotifyDecision(ctx, updated, outcome.Notification)
	return updated, nil
}

// PendingQueue serves the admin moderation queue, oldest first so
// nothing starves at the back.
func (s *listingService) PendingQueue(ctx context.Context, page listing.Page) (listing.ResultPage, error) {
	pending := listing.StatusPending
	return s.merger.List(ctx, listing.Filter{Status: &pending}, listing.SortOldest, page)
}

func (s *listingService) Update(ctx context.Context, actor listing.Actor, key listing.Key, updates map[string]interface{}) (listing.Listing, error) {
	current, err := s.merger.Get(ctx, key)
	if err != nil {
		return listing.Listing{}, err
	}
	if !listing.CanMutate(actor, current) {
		return listing.Listing{}, &listing.ForbiddenError{Msg: "not the owner of this listing"}
	}
	if key.Origin != listing.OriginPrimary {
		return listing.Listing{}, &listing.ForbiddenError{Msg: "free listings cannot be edited, delete and resubmit"}
	}
	return s.primary.Update(ctx, key.ID, updates)
}

func (s *listingService) Delete(ctx context.Context, actor listing.Actor, key listing.Key) error {
	current, err := s.merger.Get(ctx, key)
	if err != nil {
		return err
	}
	if !listing.CanMutate(actor, current) {
		return &listing.ForbiddenError{Msg: "not the owner of this listing"}
	}
	switch key.Origin {
	case listing.OriginPrimary:
		return s.primary.Delete(ctx, key.ID)
	case listing.OriginFree:
		return s.free.Delete(ctx, key.ID)
	default:
		return fmt.Errorf("unknown origin %q", key.Origin)
	}
}

// OwnListings returns the caller's listings across both sources,
// regardless of status. Primary rows match by account, free rows by
// the contact email on record.
func (s *listingService) OwnListings(ctx context.Context, actor listing.Actor, page listing.Page) (listing.ResultPage, error) {
	f := listing.Filter{OwnerUserID: actor.ID, OwnerEmail: actor.Email}
	return s.merger.List(ctx, f, listing.SortNewest, page)
}

func (s *listingService) AttachImage(ctx context.Context, actor listing.Actor, key listing.Key, imageKey string) error {
	current, err := s.merger.Get(ctx, key)
	if err != nil {
		return err
	}
	if !listing.CanMutate(actor, current) {
		return &listing.ForbiddenError{Msg: "not the owner of this listing"}
	}
	if key.Origin != listing.OriginPrimary {
		return &listing.ForbiddenError{Msg: "images are only supported on account listings"}
	}
	return s.primary.AddImage(ctx, key.ID, imageKey)
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateSubmission(in SubmissionInput, guest bool) error {
	if strings.TrimSpace(in.Title) == "" {
		return &listing.ValidationError{Field: "title", Msg: "title is required"}
	}
	if strings.TrimSpace(in.City) == "" {
		return &listing.ValidationError{Field: "city", Msg: "city is required"}
	}
	if in.PropertyType == "" {
		return &listing.ValidationError{Field: "property_type", Msg: "property type is required"}
	}
	if in.SaleType != "sale" && in.SaleType != "rent" {
		return &listing.ValidationError{Field: "sale_type", Msg: "must be sale or rent"}
	}
	if in.Price < 0 {
		return &listing.ValidationError{Field: "price", Msg: "price cannot be negative"}
	}
	if in.AreaSqFt < 0 {
		return &listing.ValidationError{Field: "area_sqft", Msg: "area cannot be negative"}
	}
	if guest {
		if !emailPattern.MatchString(strings.TrimSpace(in.Contact.Email)) {
			return &listing.ValidationError{Field: "contact_email", Msg: "a valid contact email is required"}
		}
		if len(digits(in.Contact.Phone)) < 10 {
			return &listing.ValidationError{Field: "contact_phone", Msg: "a valid contact phone is required"}
		}
	}
	return nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func submissionToListing(in SubmissionInput) listing.Listing {
	l := listing.Listing{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		PropertyType: in.PropertyType,
		SaleType:     in.SaleType,
		City:         strings.TrimSpace(in.City),
		Location:     strings.TrimSpace(in.Location),
		Price:        in.Price,
		AreaSqFt:     in.AreaSqFt,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		Amenities:    in.Amenities,
		Status:       listing.StatusPending,
	}
	l.Normalize()
	return l
}

// IsNoOpDecision reports whether an error from Decide means the
// listing was already in the requested state.
func IsNoOpDecision(err error) bool {
	return errors.Is(err, listing.ErrAlreadyDecided)
}
