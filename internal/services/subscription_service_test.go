package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urgentsales/server/internal/listing"
)

func liveListing(id string, status listing.ApprovalStatus, createdDay int) listing.Listing {
	return listing.Listing{
		ID:        id,
		Origin:    listing.OriginPrimary,
		Status:    status,
		Title:     "Listing " + id,
		CreatedAt: time.Date(2025, 5, createdDay, 0, 0, 0, 0, time.UTC),
	}
}

func TestBillableItemsWithinAllowance(t *testing.T) {
	active := []listing.Listing{
		liveListing("A", listing.StatusApproved, 1),
		liveListing("B", listing.StatusPending, 2),
	}
	assert.Nil(t, billableItems(active, 3, 500, time.Now(), 30*24*time.Hour))
}

func TestBillableItemsNewestListingsBilled(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	period := 30 * 24 * time.Hour
	active := []listing.Listing{
		liveListing("C", listing.StatusApproved, 3),
		liveListing("A", listing.StatusApproved, 1),
		liveListing("B", listing.StatusPending, 2),
	}

	items := billableItems(active, 2, 500, start, period)
	require.Len(t, items, 1)
	assert.Equal(t, "primary:C", items[0].ListingID, "the allowance covers the oldest listings")
	assert.Equal(t, 500.0, items[0].Amount)
	assert.Equal(t, start, items[0].StartDate)
	assert.Equal(t, start.Add(period), items[0].BilledUntil)
}

func TestBillableItemsIgnoresRejected(t *testing.T) {
	active := []listing.Listing{
		liveListing("A", listing.StatusApproved, 1),
		liveListing("B", listing.StatusRejected, 2),
		liveListing("C", listing.StatusRejected, 3),
	}
	assert.Nil(t, billableItems(active, 1, 500, time.Now(), 30*24*time.Hour))
}

func TestBillableItemsZeroAllowanceBillsEverything(t *testing.T) {
	active := []listing.Listing{
		liveListing("A", listing.StatusApproved, 1),
		liveListing("B", listing.StatusApproved, 2),
	}
	items := billableItems(active, 0, 250, time.Now(), 30*24*time.Hour)
	require.Len(t, items, 2)
	assert.Equal(t, "primary:A", items[0].ListingID)
	assert.Equal(t, "primary:B", items[1].ListingID)
}
