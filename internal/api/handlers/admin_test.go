package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"urgentsales/server/internal/listing"
	"urgentsales/server/internal/services"
)

type mockListingService struct {
	mock.Mock
}

func (m *mockListingService) Search(ctx context.Context, f listing.Filter, sort listing.Sort, page listing.Page) (listing.ResultPage, error) {
	args := m.Called(ctx, f, sort, page)
	return args.Get(0).(listing.ResultPage), args.Error(1)
}

func (m *mockListingService) Get(ctx context.Context, key listing.Key) (listing.Listing, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(listing.Listing), args.Error(1)
}

func (m *mockListingService) SubmitPrimary(ctx context.Context, actor listing.Actor, in services.SubmissionInput) (listing.Listing, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(listing.Listing), args.Error(1)
}

func (m *mockListingService) SubmitFree(ctx context.Context, in services.SubmissionInput) (listing.Listing, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(listing.Listing), args.Error(1)
}

func (m *mockListingService) Decide(ctx context.Context, key listing.Key, d listing.Decision, admin listing.Actor) (listing.Listing, error) {
	args := m.Called(ctx, key, d, admin)
	return args.Get(0).(listing.Listing), args.Error(1)
}

func (m *mockListingService) PendingQueue(ctx context.Context, page listing.Page) (listing.ResultPage, error) {
	args := m.Called(ctx, page)
	return args.Get(0).(listing.ResultPage), args.Error(1)
}

func (m *mockListingService) Update(ctx context.Context, actor listing.Actor, key listing.Key, updates map[string]interface{}) (listing.Listing, error) {
	args := m.Called(ctx, actor, key, updates)
	return args.Get(0).(listing.Listing), args.Error(1)
}

func (m *mockListingService) Delete(ctx context.Context, actor listing.Actor, key listing.Key) error {
	return m.Called(ctx, actor, key).Error(0)
}

func (m *mockListingService) OwnListings(ctx context.Context, actor listing.Actor, page listing.Page) (listing.ResultPage, error) {
	args := m.Called(ctx, actor, page)
	return args.Get(0).(listing.ResultPage), args.Error(1)
}

func (m *mockListingService) AttachImage(ctx context.Context, actor listing.Actor, key listing.Key, imageKey string) error {
	return m.Called(ctx, actor, key, imageKey).Error(0)
}

func adminRouter(svc services.IListingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAdminHandler(svc)
	// Auth middleware is exercised in its own package; here the admin
	// actor is injected directly.
	r.POST("/admin/listings/:origin/:id/decision", func(c *gin.Context) {
		c.Set("actor", listing.Actor{ID: "02ADMN", Role: listing.RoleAdmin})
	}, h.Decide)
	return r
}

func postDecision(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDecideEndpointApproves(t *testing.T) {
	svc := &mockListingService{}
	key := listing.Key{Origin: listing.OriginFree, ID: "42"}
	svc.On("Decide", mock.Anything, key,
		listing.Decision{Approve: true}, mock.Anything).
		Return(listing.Listing{ID: "42", Origin: listing.OriginFree, Status: listing.StatusApproved}, nil)

	w := postDecision(t, adminRouter(svc), "/admin/listings/free/42/decision",
		gin.H{"approve": true})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Changed bool `json:"changed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Changed)
	svc.AssertExpectations(t)
}

func TestDecideEndpointNoOp(t *testing.T) {
	svc := &mockListingService{}
	svc.On("Decide", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(listing.Listing{}, listing.ErrAlreadyDecided)

	w := postDecision(t, adminRouter(svc), "/admin/listings/primary/01ABCD/decision",
		gin.H{"approve": true})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Changed bool `json:"changed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Changed)
}

func TestDecideEndpointBlankReason(t *testing.T) {
	svc := &mockListingService{}
	svc.On("Decide", mock.Anything, mock.Anything,
		listing.Decision{Approve: false, Reason: ""}, mock.Anything).
		Return(listing.Listing{}, &listing.ValidationError{Field: "reason", Msg: "rejection requires a non-empty reason"})

	w := postDecision(t, adminRouter(svc), "/admin/listings/free/42/decision",
		gin.H{"approve": false})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecideEndpointBadOrigin(t *testing.T) {
	svc := &mockListingService{}
	w := postDecision(t, adminRouter(svc), "/admin/listings/unknown/42/decision",
		gin.H{"approve": true})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Decide")
}

func TestSearchEndpointParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &mockListingService{}
	min := 100000.0
	svc.On("Search", mock.Anything,
		listing.Filter{City: "Chennai", MinPrice: &min}, listing.SortPriceAsc, listing.Page{Number: 2, Size: 0}).
		Return(listing.ResultPage{Items: []listing.Listing{}, Page: 2, PageSize: 20}, nil)

	r := gin.New()
	r.GET("/listings", NewListingHandler(svc, nil).Search)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/listings?city=Chennai&min_price=100000&sort=price_asc&page=2", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
