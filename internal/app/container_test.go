package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nekogravitycat/venue-booking-backend/internal/app"
	"github.com/nekogravitycat/venue-booking-backend/internal/catalog"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
)

type client struct {
	t      *testing.T
	router http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	seeds, err := catalog.Default()
	require.NoError(t, err)
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2030, 6, 15, 10, 0, 0, 0, time.UTC)
	c := app.NewContainer(app.Config{
		Store:          store.NewMemoryStore(),
		Blobs:          blobs,
		Catalog:        seeds,
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		BcryptCost:     bcrypt.MinCost,
		MaxUploadBytes: 1 << 20,
		Location:       time.UTC,
		Now:            func() time.Time { return now },
	})
	require.NoError(t, c.ProvisionSeedOwners(context.Background(), seeds.Owners, "password1"))
	return &client{t: t, router: c.Router}
}

func (c *client) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup registers and logs in, returning the access token.
func (c *client) signup(email, role string) string {
	c.t.Helper()
	w := c.do(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email": email, "password": "password1", "name": email, "role": role,
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	return c.login(email)
}

// login signs in an existing account, seed owners included, returning the access token.
func (c *client) login(email string) string {
	c.t.Helper()
	w := c.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email, "password": "password1"})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	return decode[struct {
		AccessToken string `json:"accessToken"`
	}](c.t, w).AccessToken
}

type bookingBody struct {
	ID            string `json:"id"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	TotalAmount   int64  `json:"totalAmount"`
	DepositAmount int64  `json:"depositAmount"`
	BalanceAmount int64  `json:"balanceAmount"`
	Bucket        string `json:"bucket"`
}

type page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func weddingRequest() map[string]any {
	return map[string]any{
		"venueId":    "v1",
		"eventName":  "Santos Wedding",
		"eventType":  "wedding",
		"eventDate":  "2030-07-01",
		"startTime":  "16:00",
		"endTime":    "22:00",
		"guestCount": 50,
		"services":   []string{"sp1"},
	}
}

func TestHealthAndMetrics(t *testing.T) {
	c := newClient(t)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", "", nil).Code)

	w := c.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "venue_booking_http_requests_total")
}

func TestAuth(t *testing.T) {
	c := newClient(t)
	token := c.signup("ana@example.com", "customer")

	w := c.do(http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"customer"`)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/v1/me", "", nil).Code)

	w = c.do(http.MethodPost, "/v1/auth/register", "", map[string]string{"email": "ana@example.com", "password": "password1", "name": "Ana"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "ana@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVenueBrowsing(t *testing.T) {
	c := newClient(t)

	w := c.do(http.MethodGet, "/v1/venues", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 6, decode[page[map[string]any]](t, w).Total)

	w = c.do(http.MethodGet, "/v1/venues?category=ballroom&sort=price_low", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[page[struct {
		ID string `json:"id"`
	}]](t, w)
	require.NotEmpty(t, list.Items)
	assert.Equal(t, "v1", list.Items[0].ID)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/v1/venues?sort=cheapest", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/v1/venues/nope", "", nil).Code)

	w = c.do(http.MethodGet, "/v1/venues/v1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"origin":"seed"`)

	w = c.do(http.MethodGet, "/v1/venues/v1/packages", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[page[map[string]any]](t, w).Total)
}

func TestBookingFlow(t *testing.T) {
	c := newClient(t)
	customer := c.signup("ana@example.com", "customer")
	other := c.signup("ben@example.com", "customer")

	w := c.do(http.MethodPost, "/v1/bookings/quote", "", map[string]any{"venueId": "v1", "guestCount": 50, "services": []string{"sp1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quote := decode[struct {
		Total   int64 `json:"total"`
		Deposit int64 `json:"deposit"`
		Balance int64 `json:"balance"`
	}](t, w)
	assert.Equal(t, int64(47250), quote.Total)
	assert.Equal(t, int64(14175), quote.Deposit)
	assert.Equal(t, int64(33075), quote.Balance)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/v1/bookings", "", weddingRequest()).Code)

	w = c.do(http.MethodPost, "/v1/bookings", customer, weddingRequest(), "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[bookingBody](t, w)
	assert.Regexp(t, `^BKL\d{8}$`, b.Reference)
	assert.Equal(t, "confirmed", b.Status)
	assert.Equal(t, "deposit_paid", b.PaymentStatus)
	assert.Equal(t, int64(47250), b.TotalAmount)
	assert.Equal(t, "upcoming", b.Bucket)

	w = c.do(http.MethodPost, "/v1/bookings", customer, weddingRequest(), "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, b.ID, decode[bookingBody](t, w).ID, "retry returns the first booking")

	bad := weddingRequest()
	bad["guestCount"] = 0
	bad["eventDate"] = "07/01/2030"
	w = c.do(http.MethodPost, "/v1/bookings", customer, bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "guestCount")
	assert.Contains(t, w.Body.String(), "eventDate")

	w = c.do(http.MethodGet, "/v1/bookings?bucket=upcoming", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[page[bookingBody]](t, w).Total)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/v1/bookings/"+b.ID, other, nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/bookings/"+b.ID, customer, nil).Code)

	w = c.do(http.MethodGet, "/v1/bookings/"+b.ID+"/qrcode", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = c.do(http.MethodGet, "/v1/bookings/"+b.ID+"/receipt", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = c.do(http.MethodPost, "/v1/bookings/"+b.ID+"/cancel", customer, map[string]string{"reason": "Date moved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"cancellationReason":"Date moved"`)

	w = c.do(http.MethodPost, "/v1/bookings/"+b.ID+"/cancel", customer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodPost, "/v1/bookings/"+b.ID+"/payments", customer, map[string]string{"paymentStatus": "refunded"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "refunded", decode[bookingBody](t, w).PaymentStatus)

	w = c.do(http.MethodGet, "/v1/bookings?bucket=cancelled", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[page[bookingBody]](t, w).Total)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/v1/bookings?bucket=later", customer, nil).Code)
}

func TestOwnerFlow(t *testing.T) {
	c := newClient(t)
	owner := c.signup("owner@example.com", "owner")
	customer := c.signup("ana@example.com", "customer")

	newVenue := map[string]any{
		"name":       "Rooftop Loft",
		"category":   "events_hall",
		"location":   map[string]string{"city": "Taguig", "province": "Metro Manila", "address": "5th Ave"},
		"capacity":   map[string]int{"min": 20, "max": 120},
		"priceRange": map[string]int{"min": 15000, "max": 40000},
		"amenities":  []string{"Sound System"},
	}
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/v1/venues", customer, newVenue).Code)

	w := c.do(http.MethodPost, "/v1/venues", owner, newVenue)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	venueID := decode[struct {
		ID string `json:"id"`
	}](t, w).ID

	w = c.do(http.MethodPost, "/v1/packages", owner, map[string]any{
		"venueId": venueID, "name": "Light Bites", "type": "catering", "pricingUnit": "per_person", "pricePerPerson": 300,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	packageID := decode[struct {
		ID string `json:"id"`
	}](t, w).ID

	w = c.do(http.MethodPatch, "/v1/packages/sp1", owner, map[string]any{"price": 1})
	assert.Equal(t, http.StatusForbidden, w.Code, "seed packages are read-only")

	req := weddingRequest()
	req["venueId"] = venueID
	req["services"] = []string{packageID}
	req["guestCount"] = 40
	w = c.do(http.MethodPost, "/v1/bookings", customer, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[bookingBody](t, w)
	// 15000 + 300*40 = 27000; fee 1350; total 28350
	assert.Equal(t, int64(28350), b.TotalAmount)

	w = c.do(http.MethodGet, "/v1/venues/"+venueID+"/can-delete", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"canDelete":false,"reason":"has 1 existing booking(s)"}`, w.Body.String())

	w = c.do(http.MethodGet, "/v1/packages/"+packageID+"/can-delete", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"canDelete":false,"reason":"used in existing bookings"}`, w.Body.String())

	assert.Equal(t, http.StatusConflict, c.do(http.MethodDelete, "/v1/venues/"+venueID, owner, nil).Code)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodDelete, "/v1/packages/"+packageID, owner, nil).Code)

	w = c.do(http.MethodGet, "/v1/venues/"+venueID+"/bookings", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[page[bookingBody]](t, w).Total)

	w = c.do(http.MethodPatch, "/v1/bookings/"+b.ID+"/status", owner, map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "completed", decode[bookingBody](t, w).Status)

	w = c.do(http.MethodPatch, "/v1/bookings/"+b.ID+"/status", owner, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodGet, "/v1/owner/stats", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[struct {
		Stats struct {
			TotalBookings int   `json:"totalBookings"`
			Revenue       int64 `json:"revenue"`
		} `json:"stats"`
	}](t, w)
	assert.Equal(t, 1, stats.Stats.TotalBookings)
	assert.Equal(t, int64(28350), stats.Stats.Revenue)

	// A venue without bookings can go.
	w = c.do(http.MethodPost, "/v1/venues", owner, newVenue)
	require.Equal(t, http.StatusCreated, w.Code)
	spare := decode[struct {
		ID string `json:"id"`
	}](t, w).ID
	w = c.do(http.MethodPost, "/v1/packages", owner, map[string]any{
		"venueId": spare, "name": "Projector", "type": "other", "pricingUnit": "flat_rate", "price": 2500,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sparePackage := decode[struct {
		ID string `json:"id"`
	}](t, w).ID
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/v1/venues/"+spare, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/v1/venues/"+spare, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/v1/packages/"+sparePackage, "", nil).Code, "packages go with their venue")

	w = c.do(http.MethodGet, "/v1/venues/v2/can-delete", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"canDelete":false,"reason":"system venue"}`, w.Body.String())
}

func TestSeedVenueOwnership(t *testing.T) {
	c := newClient(t)
	owner1 := c.login("owner1@venues.example")
	stranger := c.signup("owner@example.com", "owner")
	customer := c.signup("ana@example.com", "customer")

	w := c.do(http.MethodPost, "/v1/bookings", customer, weddingRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[bookingBody](t, w)

	// v1 belongs to owner1; other owner accounts cannot reach it or its bookings.
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPatch, "/v1/venues/v1", stranger, map[string]any{"name": "Mine now"}).Code)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/v1/venues/v1/bookings", stranger, nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/v1/bookings/"+b.ID, stranger, nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/v1/bookings/"+b.ID+"/cancel", stranger, nil).Code)
	w = c.do(http.MethodPost, "/v1/packages", stranger, map[string]any{
		"venueId": "v1", "name": "Crashers", "type": "other", "pricingUnit": "flat_rate", "price": 1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodGet, "/v1/venues/v1/bookings", owner1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[page[bookingBody]](t, w).Total)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/bookings/"+b.ID, owner1, nil).Code)

	w = c.do(http.MethodGet, "/v1/owner/venues", stranger, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[page[map[string]any]](t, w).Total)
}

func TestSeedVenuePromotion(t *testing.T) {
	c := newClient(t)
	owner1 := c.login("owner1@venues.example")

	w := c.do(http.MethodPatch, "/v1/venues/v5", owner1, map[string]any{"name": "Davao Pavilion (Renovated)"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"ownerId":"owner1"`)

	// The promoted copy still belongs to its owner, so editing can continue.
	w = c.do(http.MethodPatch, "/v1/venues/v5", owner1, map[string]any{"description": "Fresh paint"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/v1/venues/v5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"origin":"owned"`)
	assert.Contains(t, w.Body.String(), "Davao Pavilion (Renovated)")
	assert.Contains(t, w.Body.String(), "Fresh paint")

	w = c.do(http.MethodGet, "/v1/owner/venues", owner1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Davao Pavilion (Renovated)")

	w = c.do(http.MethodGet, "/v1/venues", "", nil)
	assert.Equal(t, 6, decode[page[map[string]any]](t, w).Total, "promotion never duplicates")

	// Deleting the owned copy reverts to the seed, which the response returns.
	w = c.do(http.MethodDelete, "/v1/venues/v5", owner1, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"origin":"seed"`)
	assert.NotContains(t, w.Body.String(), "Davao Pavilion (Renovated)")

	w = c.do(http.MethodGet, "/v1/venues/v5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"origin":"seed"`)
}

func TestFavoritesAndReviews(t *testing.T) {
	c := newClient(t)
	customer := c.signup("ana@example.com", "customer")

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodPut, "/v1/favorites/v2", customer, nil).Code)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodPut, "/v1/favorites/v2", customer, nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPut, "/v1/favorites/nope", customer, nil).Code)

	w := c.do(http.MethodGet, "/v1/favorites", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[page[map[string]any]](t, w).Total)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/v1/favorites/v2", customer, nil).Code)
	w = c.do(http.MethodGet, "/v1/favorites/v2", customer, nil)
	assert.JSONEq(t, `{"favorite":false}`, w.Body.String())

	w = c.do(http.MethodPost, "/v1/venues/v2/reviews", customer, map[string]any{"rating": 4, "reviewText": "Lovely garden"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = c.do(http.MethodPost, "/v1/venues/v2/reviews", customer, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = c.do(http.MethodPost, "/v1/venues/v3/reviews", customer, map[string]any{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodGet, "/v1/venues/v2/rating", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"average":4,"count":1}`, w.Body.String())
}

func TestVenueImageUpload(t *testing.T) {
	c := newClient(t)
	owner := c.login("owner1@venues.example")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 320, 240))))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "hall.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/venues/v1/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+owner)
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	up := decode[struct {
		URL          string `json:"url"`
		ThumbnailURL string `json:"thumbnailUrl"`
	}](t, w)

	w = c.do(http.MethodGet, up.URL, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	w = c.do(http.MethodGet, up.ThumbnailURL, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/v1/venues/v1", "", nil)
	assert.Contains(t, w.Body.String(), up.URL)
}
