package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srgjo27/property_booking/internal/adapter/handler"
	"github.com/srgjo27/property_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/property_booking/internal/core/domain"
	"github.com/srgjo27/property_booking/internal/core/services"
)

const secret = "test-secret"

var fixedNow = time.Date(2025, time.February, 20, 10, 30, 0, 0, time.UTC)

type nopNotifier struct{}

func (nopNotifier) BookingCreated(context.Context, *domain.Booking, *domain.Property) error {
	return nil
}

func (nopNotifier) BookingStatusChanged(context.Context, *domain.Booking, domain.BookingStatus) error {
	return nil
}

type keyStore struct {
	mu   sync.Mutex
	keys map[string]uuid.UUID
}

func (s *keyStore) Lookup(_ context.Context, key string) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.keys[key]
	return id, ok, nil
}

func (s *keyStore) Remember(_ context.Context, key string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; !ok {
		s.keys[key] = id
	}
	return nil
}

type testServer struct {
	router     *gin.Engine
	propertyID uuid.UUID
	service    *services.BookingService
}

func newTestServer(t *testing.T, cfg handler.RouterConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	propertyID := uuid.New()
	store.PutProperty(domain.Property{
		ID:        propertyID,
		Title:     "Cantonments Villa",
		Location:  "Cantonments, Accra",
		Address:   "12 Switchback Road",
		Available: true,
	})

	bookingRepo := memory.NewBookingRepository(store)
	availability := services.NewAvailabilityService(bookingRepo)
	svc := services.NewBookingService(
		bookingRepo,
		memory.NewPropertyRepository(store),
		availability,
		nopNotifier{},
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithIdempotencyStore(&keyStore{keys: map[string]uuid.UUID{}}),
	)
	t.Cleanup(svc.Wait)

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = secret
	}

	checks := map[string]handler.HealthCheck{"store": func(context.Context) error { return nil }}
	router := handler.NewRouter(cfg, handler.NewBookingHandler(svc, availability), checks, zap.NewNop())

	return &testServer{router: router, propertyID: propertyID, service: svc}
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := handler.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (s *testServer) bookingBody(in, out string) map[string]any {
	return map[string]any{
		"property_id":    s.propertyID.String(),
		"guest_name":     "Ama Mensah",
		"guest_email":    "ama@example.com",
		"guest_phone":    "+233200000000",
		"check_in_date":  in,
		"check_out_date": out,
		"guests_count":   2,
		"total_amount":   "750.50",
	}
}

func (s *testServer) createBooking(t *testing.T, in, out string) string {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/api/bookings", s.bookingBody(in, out), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["data"].(map[string]any)["id"].(string)
}

func bearer(t *testing.T, role string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token(t, role)}
}

func TestCreateBooking(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{})

	w, body := s.do(t, http.MethodPost, "/api/bookings", s.bookingBody("2025-03-01", "2025-03-05"), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "2025-03-01", data["check_in_date"])
	assert.Equal(t, 750.5, data["total_amount"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, body = s.do(t, http.MethodPost, "/api/bookings", s.bookingBody("2025-03-04", "2025-03-08"), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "dates_unavailable", body["code"])
	assert.Equal(t, "conflict", body["kind"])

	w, _ = s.do(t, http.MethodPost, "/api/bookings", s.bookingBody("2025-03-05", "2025-03-07"), nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateBooking_Rejections(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{})

	missing := s.bookingBody("2025-03-01", "2025-03-05")
	delete(missing, "guest_phone")

	badNumber := s.bookingBody("2025-03-01", "2025-03-05")
	badNumber["guests_count"] = "two"

	past := s.bookingBody("2025-02-19", "2025-02-22")

	unknown := s.bookingBody("2025-03-01", "2025-03-05")
	unknown["property_id"] = uuid.NewString()

	numericID := s.bookingBody("2025-03-01", "2025-03-05")
	numericID["property_id"] = 17

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed json", "{", http.StatusBadRequest, "invalid_body"},
		{"missing field", missing, http.StatusBadRequest, "missing_field"},
		{"bad number", badNumber, http.StatusBadRequest, "invalid_number"},
		{"past check-in", past, http.StatusBadRequest, "checkin_in_past"},
		{"unknown property", unknown, http.StatusNotFound, "property_unavailable"},
		{"numeric property id", numericID, http.StatusNotFound, "property_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := s.do(t, http.MethodPost, "/api/bookings", tt.body, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestCreateBooking_IdempotencyKeyReplays(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{})
	headers := map[string]string{"Idempotency-Key": "retry-7f3a"}

	w1, first := s.do(t, http.MethodPost, "/api/bookings", s.bookingBody("2025-04-01", "2025-04-03"), headers)
	require.Equal(t, http.StatusCreated, w1.Code)

	w2, second := s.do(t, http.MethodPost, "/api/bookings", s.bookingBody("2025-04-01", "2025-04-03"), headers)
	require.Equal(t, http.StatusCreated, w2.Code)

	assert.Equal(t, first["data"].(map[string]any)["id"], second["data"].(map[string]any)["id"])
}

func TestCreateBooking_RateLimited(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{RateLimitPerMin: 1, RateLimitBurst: 1})

	w, _ := s.do(t, http.MethodPost, "/api/bookings", s.bookingBody("2025-03-01", "2025-03-02"), nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w, body := s.do(t, http.MethodPost, "/api/bookings", s.bookingBody("2025-03-10", "2025-03-12"), nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", body["code"])
}

func TestCheckAvailability(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{})
	id := s.createBooking(t, "2025-03-01", "2025-03-05")
	path := "/api/bookings/availability/" + s.propertyID.String()

	w, body := s.do(t, http.MethodGet, path+"?check_in_date=2025-03-03&check_out_date=2025-03-06", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["available"])
	conflicts := data["conflicting_bookings"].([]any)
	require.Len(t, conflicts, 1)
	assert.Equal(t, id, conflicts[0].(map[string]any)["id"])

	w, body = s.do(t, http.MethodGet, path+"?check_in_date=2025-03-05&check_out_date=2025-03-07", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["data"].(map[string]any)["available"])
	assert.Empty(t, body["data"].(map[string]any)["conflicting_bookings"])

	w, body = s.do(t, http.MethodGet, path+"?check_in_date=2025-03-05", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_field", body["code"])

	w, body = s.do(t, http.MethodGet, path+"?check_in_date=2025-03-07&check_out_date=2025-03-05", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "checkout_before_checkin", body["code"])
}

func TestGetBooking(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{})
	id := s.createBooking(t, "2025-03-01", "2025-03-05")

	w, body := s.do(t, http.MethodGet, "/api/bookings/"+id, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Cantonments Villa", data["property_title"])
	assert.Equal(t, "12 Switchback Road", data["property_address"])

	w, body = s.do(t, http.MethodGet, "/api/bookings/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "booking_not_found", body["code"])

	w, _ = s.do(t, http.MethodGet, "/api/bookings/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{})

	w, body := s.do(t, http.MethodGet, "/api/bookings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", body["code"])

	w, _ = s.do(t, http.MethodGet, "/api/bookings", nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/bookings", nil, bearer(t, "guest"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", body["code"])

	w, _ = s.do(t, http.MethodGet, "/api/bookings/stats/overview", nil, bearer(t, "superadmin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListBookings(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{})
	first := s.createBooking(t, "2025-03-01", "2025-03-05")
	s.createBooking(t, "2025-03-10", "2025-03-12")

	w, _ := s.do(t, http.MethodPatch, "/api/bookings/"+first+"/status", map[string]string{"status": "confirmed"}, bearer(t, "admin"))
	require.Equal(t, http.StatusOK, w.Code)

	w, body := s.do(t, http.MethodGet, "/api/bookings", nil, bearer(t, "admin"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["count"])

	w, body = s.do(t, http.MethodGet, "/api/bookings?status=confirmed&property_id="+s.propertyID.String(), nil, bearer(t, "admin"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])
	data := body["data"].([]any)
	assert.Equal(t, first, data[0].(map[string]any)["id"])
	assert.Equal(t, "Cantonments, Accra", data[0].(map[string]any)["property_location"])

	w, body = s.do(t, http.MethodGet, "/api/bookings?status=archived", nil, bearer(t, "admin"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_status", body["code"])
}

func TestUpdateStatus(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{})
	id := s.createBooking(t, "2025-03-01", "2025-03-05")
	admin := bearer(t, "admin")
	path := "/api/bookings/" + id + "/status"

	w, body := s.do(t, http.MethodPatch, path, map[string]string{"status": "confirmed"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Booking status updated successfully", body["message"])

	w, body = s.do(t, http.MethodPatch, path, map[string]string{"status": "pending"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_transition", body["code"])

	w, body = s.do(t, http.MethodPatch, path, map[string]string{"status": "archived"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_status", body["code"])

	w, body = s.do(t, http.MethodPatch, "/api/bookings/"+uuid.NewString()+"/status", map[string]string{"status": "cancelled"}, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "booking_not_found", body["code"])

	w, _ = s.do(t, http.MethodPatch, path, map[string]string{"status": "cancelled"}, admin)
	require.Equal(t, http.StatusOK, w.Code)

	// cancellation frees the calendar
	w, _ = s.do(t, http.MethodPost, "/api/bookings", s.bookingBody("2025-03-02", "2025-03-04"), nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestStats(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{})
	id := s.createBooking(t, "2025-03-01", "2025-03-05")
	s.createBooking(t, "2025-03-10", "2025-03-12")
	require.NoError(t, s.service.UpdateStatus(context.Background(), id, "confirmed"))

	w, body := s.do(t, http.MethodGet, "/api/bookings/stats/overview", nil, bearer(t, "admin"))
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["total_bookings"])
	assert.EqualValues(t, 1, data["pending_bookings"])
	assert.EqualValues(t, 1, data["confirmed_bookings"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, handler.RouterConfig{})

	w, body := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	gin.SetMode(gin.TestMode)
	broken := handler.NewRouter(handler.RouterConfig{}, handler.NewBookingHandler(nil, nil),
		map[string]handler.HealthCheck{"redis": func(context.Context) error { return errors.New("dial tcp 10.0.3.7:6379: connect: connection refused") }},
		zap.NewNop())
	rec := httptest.NewRecorder()
	broken.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.3.7")

	var out struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "unavailable", out.Dependencies["redis"])
}
