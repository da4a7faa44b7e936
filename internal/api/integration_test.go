package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentdesk/internal/config"
	"rentdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end flow over a real database: the availability endpoint must
// reflect every booking written through the API, and a cancelled booking
// must release its units again.

func availabilityURL(ts *httptest.Server, itemID, quantity int) string {
	return fmt.Sprintf("%s/api/v1/availability?item_id=%d&start_at=2026-03-10T09:00:00Z&end_at=2026-03-12T18:00:00Z&quantity=%d",
		ts.URL, itemID, quantity)
}

func checkAvailability(t *testing.T, ts *httptest.Server, itemID, quantity int) models.AvailabilityResult {
	t.Helper()
	var result models.AvailabilityResult
	status := getJSON(t, availabilityURL(ts, itemID, quantity), &result)
	require.Equal(t, http.StatusOK, status)
	return result
}

func book(t *testing.T, ts *httptest.Server, itemID, quantity int, name string) models.Booking {
	t.Helper()
	payload := fmt.Sprintf(
		`{"item_id":%d,"start_at":"2026-03-10T09:00:00Z","end_at":"2026-03-12T18:00:00Z","quantity":%d,"customer_name":"%s"}`,
		itemID, quantity, name)
	var booking models.Booking
	status := postJSON(t, ts.URL+"/api/v1/bookings", payload, &booking)
	require.Equal(t, http.StatusCreated, status)
	return booking
}

func TestAvailabilityReflectsBookings(t *testing.T) {
	ts := openServer(t)

	result := checkAvailability(t, ts, 1, 1)
	assert.True(t, result.Available)
	assert.Equal(t, int64(2), result.Remaining)

	first := book(t, ts, 1, 1, "Ada Lovelace")

	result = checkAvailability(t, ts, 1, 1)
	assert.True(t, result.Available)
	assert.Equal(t, int64(1), result.Remaining)

	book(t, ts, 1, 1, "Grace Hopper")

	result = checkAvailability(t, ts, 1, 1)
	assert.False(t, result.Available)
	assert.Equal(t, int64(0), result.Remaining)

	status := postJSON(t, ts.URL+"/api/v1/bookings",
		`{"item_id":1,"start_at":"2026-03-11T09:00:00Z","end_at":"2026-03-11T18:00:00Z"}`, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Cancelling frees the units again.
	status = postJSON(t, fmt.Sprintf("%s/api/v1/bookings/%s/cancel", ts.URL, first.Reference),
		`{"version":1}`, nil)
	require.Equal(t, http.StatusOK, status)

	result = checkAvailability(t, ts, 1, 1)
	assert.True(t, result.Available)
	assert.Equal(t, int64(1), result.Remaining)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	ts := openServer(t)

	booking := book(t, ts, 2, 3, "Film Crew")
	assert.Equal(t, models.StatusPending, booking.Status)

	base := fmt.Sprintf("%s/api/v1/bookings/%s", ts.URL, booking.Reference)

	var confirmed models.Booking
	status := postJSON(t, base+"/confirm", `{"version":1}`, &confirmed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	// Confirmed bookings still consume inventory.
	result := checkAvailability(t, ts, 2, 3)
	assert.Equal(t, int64(2), result.Remaining)
	assert.False(t, result.Available)

	var completed models.Booking
	status = postJSON(t, base+"/complete", `{"version":2}`, &completed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	// Completed bookings no longer consume inventory but stay listed.
	result = checkAvailability(t, ts, 2, 3)
	assert.Equal(t, int64(5), result.Remaining)

	var listing struct {
		Bookings []models.Booking `json:"bookings"`
	}
	status = getJSON(t, ts.URL+"/api/v1/bookings?month=2026-03", &listing)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, listing.Bookings, 1)
	assert.Equal(t, models.StatusCompleted, listing.Bookings[0].Status)
}

func TestAdjacentWindowsDoNotConflictOverHTTP(t *testing.T) {
	ts := openServer(t)

	// Take the whole stock of item 1 for the morning.
	status := postJSON(t, ts.URL+"/api/v1/bookings",
		`{"item_id":1,"start_at":"2026-03-10T09:00:00Z","end_at":"2026-03-10T12:00:00Z","quantity":2}`, nil)
	require.Equal(t, http.StatusCreated, status)

	// A window starting exactly when the first ends is free.
	status = postJSON(t, ts.URL+"/api/v1/bookings",
		`{"item_id":1,"start_at":"2026-03-10T12:00:00Z","end_at":"2026-03-10T15:00:00Z","quantity":2}`, nil)
	assert.Equal(t, http.StatusCreated, status)
}

func TestDeactivatedItemDisappearsFromAPI(t *testing.T) {
	db := newTestDB(t)
	ts := newTestServer(t, db, config.APIConfig{})

	require.NoError(t, db.DeactivateItem(context.Background(), testShopID, 2))

	var body struct {
		Items []models.Item `json:"items"`
	}
	status := getJSON(t, ts.URL+"/api/v1/items", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Sony A7SIII", body.Items[0].Name)

	// Availability treats the inactive item as unknown.
	result := checkAvailability(t, ts, 2, 1)
	assert.False(t, result.Exists)
	assert.False(t, result.Available)

	// Booking it is a 404.
	status = postJSON(t, ts.URL+"/api/v1/bookings",
		`{"item_id":2,"start_at":"2026-03-10T09:00:00Z","end_at":"2026-03-12T18:00:00Z"}`, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
