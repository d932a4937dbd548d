package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkhub/internal/booking"
	apperrors "parkhub/internal/errors"
	"parkhub/internal/middleware"
	"parkhub/internal/models"
	"parkhub/internal/service"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperrors.ErrInvalidWindow, http.StatusBadRequest},
		{apperrors.ErrInvalidInput, http.StatusBadRequest},
		{apperrors.ErrAmountMismatch, http.StatusBadRequest},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{apperrors.ErrForbidden, http.StatusForbidden},
		{apperrors.ErrSpaceNotFound, http.StatusNotFound},
		{apperrors.ErrBookingNotFound, http.StatusNotFound},
		{apperrors.ErrConflict, http.StatusConflict},
		{apperrors.ErrSpaceUnavailable, http.StatusConflict},
		{apperrors.ErrAlreadyPaid, http.StatusConflict},
		{apperrors.ErrIllegalTransition, http.StatusConflict},
		{apperrors.ErrNotCancellable, http.StatusConflict},
		{apperrors.ErrStoreTimeout, http.StatusGatewayTimeout},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), "%v", tc.err)
	}

	// Wrapped errors keep their mapping
	assert.Equal(t, http.StatusConflict,
		StatusFor(fmt.Errorf("create failed: %w", apperrors.ErrConflict)))
	assert.Equal(t, http.StatusBadRequest,
		StatusFor(fmt.Errorf("%w: unknown space type %q", apperrors.ErrInvalidInput, "hover")))
	assert.Equal(t, http.StatusConflict,
		StatusFor(&booking.ConflictError{Window: models.BookingWindow{BookingID: "b1"}}))
}

// fakeStore is a minimal in-memory engine store for routing tests.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
	spaces   map[string]*models.ParkingSpace
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings: make(map[string]*models.Booking),
		spaces:   make(map[string]*models.ParkingSpace),
	}
}

func (f *fakeStore) GetSpace(ctx context.Context, id string) (*models.ParkingSpace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spaces[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) ListLive(ctx context.Context, spaceID string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.SpaceID != spaceID {
			continue
		}
		switch b.Status {
		case models.BookingPending, models.BookingConfirmed, models.BookingActive:
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateWithReservation(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.ID] = &cp
	f.spaces[b.SpaceID].Status = models.SpaceReserved
	return nil
}

func (f *fakeStore) Transition(ctx context.Context, b *models.Booking, spaceStatus models.SpaceStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.ID] = &cp
	space := f.spaces[b.SpaceID]
	if space.Status == models.SpaceMaintenance {
		return true, nil
	}
	space.Status = spaceStatus
	return false, nil
}

func (f *fakeStore) UpdatePayment(ctx context.Context, id string, decide func(b *models.Booking) (models.PaymentStatus, models.BookingStatus, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return apperrors.ErrBookingNotFound
	}
	cp := *b
	payment, status, err := decide(&cp)
	if err != nil {
		return err
	}
	b.PaymentStatus = payment
	b.Status = status
	return nil
}

func (f *fakeStore) SetVehicle(ctx context.Context, id string, vehicleNumber *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[id].VehicleNumber = vehicleNumber
	return nil
}

type approvePayments struct{}

func (approvePayments) Charge(ctx context.Context, bookingID string, amountCents int64, method string) (*booking.ChargeResult, error) {
	return &booking.ChargeResult{Approved: true, Reference: "txn-test"}, nil
}

// fakeAuth attaches a fixed actor, standing in for BasicAuth.
func fakeAuth(actor booking.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(middleware.ContextWithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func setupRouter(store *fakeStore, actor booking.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := booking.NewEngine(store, store, approvePayments{}, nil, booking.NewQRSigner("test-secret"), 0)
	h := NewHandlers(&service.Services{Bookings: engine}, nil)

	r := gin.New()
	api := r.Group("/api")
	api.Use(fakeAuth(actor))
	{
		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.PATCH("/status", h.UpdateBooking)
			bookings.PATCH("/cancel", h.CancelBooking)
			bookings.GET("/qr/verify", h.VerifyQR)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/process", h.ProcessPayment)
		}
	}
	return r
}

func seedSpace(store *fakeStore, id string) {
	store.spaces[id] = &models.ParkingSpace{
		ID:              id,
		Number:          "1A-01",
		Floor:           1,
		Section:         "A",
		Type:            models.SpaceRegular,
		Status:          models.SpaceAvailable,
		HourlyRateCents: 1000,
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var testActor = booking.Actor{UserID: "user-1", Role: models.RoleCustomer}

func TestCreateBookingEndpoint(t *testing.T) {
	store := newFakeStore()
	seedSpace(store, "s1")
	r := setupRouter(store, testActor)

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		SpaceID:   "s1",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var b models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, "user-1", b.UserID)
	assert.Equal(t, int64(2000), b.TotalAmountCents)
	assert.Equal(t, models.BookingPending, b.Status)
}

func TestCreateBookingEndpointConflict(t *testing.T) {
	store := newFakeStore()
	seedSpace(store, "s1")
	r := setupRouter(store, testActor)

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		SpaceID:   "s1",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		SpaceID:   "s1",
		StartTime: start.Add(30 * time.Minute),
		EndTime:   start.Add(3 * time.Hour),
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "conflict")
}

func TestCreateBookingEndpointInvalidWindow(t *testing.T) {
	store := newFakeStore()
	seedSpace(store, "s1")
	r := setupRouter(store, testActor)

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		SpaceID:   "s1",
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingPaymentAndCancelFlow(t *testing.T) {
	store := newFakeStore()
	seedSpace(store, "s1")
	r := setupRouter(store, testActor)

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		SpaceID:   "s1",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var b models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))

	// Wrong amount is rejected without side effects
	w = doJSON(t, r, "POST", "/api/payments/process", models.ProcessPaymentRequest{
		BookingID:   b.ID,
		AmountCents: 500,
		Method:      "card",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "POST", "/api/payments/process", models.ProcessPaymentRequest{
		BookingID:   b.ID,
		AmountCents: 2000,
		Method:      "card",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var outcome models.PaymentOutcomeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.Equal(t, models.PaymentPaid, outcome.PaymentStatus)
	assert.Equal(t, models.BookingConfirmed, outcome.BookingStatus)

	w = doJSON(t, r, "PATCH", "/api/bookings/cancel", models.CancelBookingRequest{BookingID: b.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	// Second cancel hits a terminal state
	w = doJSON(t, r, "PATCH", "/api/bookings/cancel", models.CancelBookingRequest{BookingID: b.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateBookingEndpoint(t *testing.T) {
	store := newFakeStore()
	seedSpace(store, "s1")
	r := setupRouter(store, testActor)

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		SpaceID:   "s1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var b models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))

	// Empty update is rejected
	w = doJSON(t, r, "PATCH", "/api/bookings/status", models.UpdateBookingRequest{BookingID: b.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	plate := "A123BC"
	status := "confirmed"
	w = doJSON(t, r, "PATCH", "/api/bookings/status", models.UpdateBookingRequest{
		BookingID:     b.ID,
		Status:        &status,
		VehicleNumber: &plate,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.BookingConfirmed, updated.Status)

	bad := "completed"
	w = doJSON(t, r, "PATCH", "/api/bookings/status", models.UpdateBookingRequest{
		BookingID: b.ID,
		Status:    &bad,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateBookingRejectedTransitionLeavesVehicleUntouched(t *testing.T) {
	store := newFakeStore()
	seedSpace(store, "s1")
	r := setupRouter(store, testActor)

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		SpaceID:   "s1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var b models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))

	// pending -> completed is rejected; the vehicle number in the same
	// request must not stick
	plate := "A123BC"
	bad := "completed"
	w = doJSON(t, r, "PATCH", "/api/bookings/status", models.UpdateBookingRequest{
		BookingID:     b.ID,
		Status:        &bad,
		VehicleNumber: &plate,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	stored, err := store.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, stored.Status)
	assert.Nil(t, stored.VehicleNumber)
}

func TestUpdateBookingReportsMaintenanceHold(t *testing.T) {
	store := newFakeStore()
	seedSpace(store, "s1")
	r := setupRouter(store, testActor)

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		SpaceID:   "s1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var b models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))

	store.spaces["s1"].Status = models.SpaceMaintenance

	status := "cancelled"
	w = doJSON(t, r, "PATCH", "/api/bookings/status", models.UpdateBookingRequest{
		BookingID: b.ID,
		Status:    &status,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.BookingCancelled, updated.Status)
	assert.True(t, updated.MaintenanceHeld)
}

func TestListBookingsEndpoint(t *testing.T) {
	store := newFakeStore()
	seedSpace(store, "s1")
	seedSpace(store, "s2")
	r := setupRouter(store, testActor)

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for _, spaceID := range []string{"s1", "s2"} {
		w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
			SpaceID:   spaceID,
			StartTime: start,
			EndTime:   start.Add(time.Hour),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// A foreign booking must not show up
	store.bookings["other"] = &models.Booking{ID: "other", UserID: "user-2", SpaceID: "s1"}

	w := doJSON(t, r, "GET", "/api/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestVerifyQREndpoint(t *testing.T) {
	store := newFakeStore()
	seedSpace(store, "s1")
	r := setupRouter(store, testActor)

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	w := doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		SpaceID:   "s1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var b models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))

	w = doJSON(t, r, "GET", "/api/bookings/qr/verify?booking_id="+b.ID+"&token="+b.QRCode, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["valid"])

	w = doJSON(t, r, "GET", "/api/bookings/qr/verify?booking_id="+b.ID+"&token=bogus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["valid"])

	w = doJSON(t, r, "GET", "/api/bookings/qr/verify?booking_id=missing&token=bogus", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEndpointsRequireActor(t *testing.T) {
	store := newFakeStore()
	seedSpace(store, "s1")

	gin.SetMode(gin.TestMode)
	engine := booking.NewEngine(store, store, approvePayments{}, nil, booking.NewQRSigner("test-secret"), 0)
	h := NewHandlers(&service.Services{Bookings: engine}, nil)

	// No auth middleware attached
	r := gin.New()
	r.POST("/api/bookings", h.CreateBooking)
	r.GET("/api/bookings", h.ListBookings)

	w := doJSON(t, r, "GET", "/api/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	w = doJSON(t, r, "POST", "/api/bookings", models.CreateBookingRequest{
		SpaceID:   "s1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
