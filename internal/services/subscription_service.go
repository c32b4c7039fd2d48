package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"urgentsales/server/internal/db"
	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/models"
	"urgentsales/server/internal/store/mongostore"
	"urgentsales/server/internal/utils"
)

const invoicesCollection = "invoices"

var ErrQuotaExceeded = errors.New("active listing quota reached")

// ISubscriptionService enforces posting quotas and bills accounts whose
// live listings exceed the free tier.
type ISubscriptionService interface {
	PostingQuota
	GenerateInvoice(ctx context.Context, userID utils.SixID, periodStart time.Time) (*models.Invoice, error)
	ListInvoices(ctx context.Context, userID utils.SixID) ([]models.Invoice, error)
	MarkPaid(ctx context.Context, invoiceID utils.SixID) error
}

type subscriptionService struct {
	db               *mongo.Database
	users            IUserService
	primary          *mongostore.Store
	freeTierListings int
	listingRate      float64
	basePeriod       time.Duration
	invoiceDue       time.Duration
}

func NewSubscriptionService(database *mongo.Database, users IUserService, primary *mongostore.Store,
	freeTierListings int, listingRate float64, basePeriodDays, invoiceDueDays int) ISubscriptionService {
	return &subscriptionService{
		db:               database,
		users:            users,
		primary:          primary,
		freeTierListings: freeTierListings,
		listingRate:      listingRate,
		basePeriod:       time.Duration(basePeriodDays) * 24 * time.Hour,
		invoiceDue:       time.Duration(invoiceDueDays) * 24 * time.Hour,
	}
}

func (s *subscriptionService) allowance(user *models.User) int {
	if user.FreeTierListings != nil {
		return *user.FreeTierListings
	}
	return s.freeTierListings
}

// CheckCanPost compares the user's live listing count against their
// allowance. Agents and companies post beyond the allowance and get
// billed for it instead.
func (s *subscriptionService) CheckCanPost(ctx context.Context, userID utils.SixID) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == models.UserRoleAgent || user.Role == models.UserRoleCompanyAdmin {
		return nil
	}

	active, err := s.primary.CountActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	if active >= s.allowance(user) {
		return ErrQuotaExceeded
	}
	return nil
}

// GenerateInvoice bills the user's live listings beyond the free
// allowance for one period starting at periodStart. Returns nil without
// error when there is nothing to bill.
func (s *subscriptionService) GenerateInvoice(ctx context.Context, userID utils.SixID, periodStart time.Time) (*models.Invoice, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	active, err := s.primary.List(ctx, listing.Filter{OwnerUserID: userID.String()})
	if err != nil {
		return nil, err
	}

	items := billableItems(active, s.allowance(user), s.listingRate, periodStart, s.basePeriod)
	if len(items) == 0 {
		return nil, nil
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.Amount
	}

	now := time.Now().UTC()
	var invoice *models.Invoice
	err = db.Try(func() error {
		base := models.NewBase()
		invoice = &models.Invoice{
			Base:          base,
			UserID:        userID,
			InvoiceNumber: fmt.Sprintf("INV-%s-%s", periodStart.Format("200601"), base.ID),
			Items:         items,
			CurrencyCode:  "INR",
			Subtotal:      subtotal,
			Total:         subtotal,
			IssuedAt:      now,
			DueAt:         now.Add(s.invoiceDue),
		}
		_, insertErr := s.db.Collection(invoicesCollection).InsertOne(ctx, invoice)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}
	return invoice, nil
}

// billableItems picks which of a user's live listings fall outside the
// free allowance for a billing period. The allowance covers the oldest
// listings first, so new postings are the ones that cost.
func billableItems(active []listing.Listing, allowance int, rate float64, periodStart time.Time, period time.Duration) []models.InvoiceLineItem {
	var live []listing.Listing
	for _, l := range active {
		if l.Status == listing.StatusPending || l.Status == listing.StatusApproved {
			live = append(live, l)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if !live[i].CreatedAt.Equal(live[j].CreatedAt) {
			return live[i].CreatedAt.Before(live[j].CreatedAt)
		}
		return live[i].ID < live[j].ID
	})

	if allowance < 0 {
		allowance = 0
	}
	if len(live) <= allowance {
		return nil
	}

	items := make([]models.InvoiceLineItem, 0, len(live)-allowance)
	for _, l := range live[allowance:] {
		items = append(items, models.InvoiceLineItem{
			ListingID:    l.Key().String(),
			ListingTitle: l.Title,
			StartDate:    periodStart,
			BilledUntil:  periodStart.Add(period),
			Amount:       rate,
		})
	}
	return items
}

func (s *subscriptionService) ListInvoices(ctx context.Context, userID utils.SixID) ([]models.Invoice, error) {
	cursor, err := s.db.Collection(invoicesCollection).Find(ctx,
		bson.M{"user_id": userID, "deleted": false},
		options.Find().SetSort(bson.M{"issued_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer cursor.Close(ctx)

	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return invoices, nil
}

func (s *subscriptionService) MarkPaid(ctx context.Context, invoiceID utils.SixID) error {
	now := time.Now().UTC()
	result, err := s.db.Collection(invoicesCollection).UpdateOne(ctx,
		bson.M{"_id": invoiceID, "deleted": false, "paid_at": nil},
		bson.M{"$set": bson.M{"paid_at": now}})
	if err != nil {
		return fmt.Errorf("marking invoice paid: %w", err)
	}
	if result.MatchedCount == 0 {
		return listing.ErrNotFound
	}
	return nil
}
