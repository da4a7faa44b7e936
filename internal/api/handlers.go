package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentdesk/internal/database"
	"rentdesk/internal/models"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	items, err := s.items.GetActiveItems(r.Context(), s.shopID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()

	itemID, err := strconv.ParseInt(strings.TrimSpace(query.Get("item_id")), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "item_id is required and must be an integer")
		return
	}

	startAt, err := parseInstant(query.Get("start_at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_at must be RFC3339")
		return
	}
	endAt, err := parseInstant(query.Get("end_at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_at must be RFC3339")
		return
	}

	quantity := int64(models.DefaultQuantity)
	if raw := strings.TrimSpace(query.Get("quantity")); raw != "" {
		quantity, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "quantity must be an integer")
			return
		}
	}

	result, err := s.bookings.CheckAvailability(r.Context(), s.shopID, itemID, startAt, endAt, quantity)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListBookings(w, r)
	case http.MethodPost:
		s.handleCreateBooking(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	monthStr := strings.TrimSpace(r.URL.Query().Get("month"))
	if monthStr == "" {
		writeError(w, http.StatusBadRequest, "month is required")
		return
	}
	month, err := time.Parse("2006-01", monthStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month format; expected YYYY-MM")
		return
	}

	bookings, err := s.bookings.ListBookingsForMonth(r.Context(), s.shopID, month.Year(), month.Month())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	type request struct {
		ItemID       int64  `json:"item_id"`
		StartAt      string `json:"start_at"`
		EndAt        string `json:"end_at"`
		Quantity     int64  `json:"quantity"`
		CustomerName string `json:"customer_name"`
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	var body request
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	startAt, err := parseInstant(body.StartAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_at must be RFC3339")
		return
	}
	endAt, err := parseInstant(body.EndAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_at must be RFC3339")
		return
	}
	if body.Quantity == 0 {
		body.Quantity = models.DefaultQuantity
	}

	booking, err := s.bookings.CreateBooking(r.Context(), &models.BookingRequest{
		ShopID:       s.shopID,
		ItemID:       body.ItemID,
		StartAt:      startAt,
		EndAt:        endAt,
		Quantity:     body.Quantity,
		CustomerName: strings.TrimSpace(body.CustomerName),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// handleBookingAction routes /api/v1/bookings/{reference} and
// /api/v1/bookings/{reference}/{confirm|cancel|complete}.
func (s *HTTPServer) handleBookingAction(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleGetBooking(w, r, parts[0])
	case len(parts) == 2:
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleTransition(w, r, parts[0], parts[1])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request, reference string) {
	booking, err := s.bookings.GetBookingByReference(r.Context(), s.shopID, reference)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleTransition(w http.ResponseWriter, r *http.Request, reference, action string) {
	type request struct {
		Version int64 `json:"version"`
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	var body request
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Version <= 0 {
		writeError(w, http.StatusBadRequest, "version is required")
		return
	}

	var (
		booking *models.Booking
		err     error
	)
	switch action {
	case "confirm":
		booking, err = s.bookings.ConfirmBooking(r.Context(), s.shopID, reference, body.Version)
	case "cancel":
		booking, err = s.bookings.CancelBooking(r.Context(), s.shopID, reference, body.Version)
	case "complete":
		booking, err = s.bookings.CompleteBooking(r.Context(), s.shopID, reference, body.Version)
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func parseInstant(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(raw))
}

// writeServiceError maps storage sentinels onto HTTP statuses. Conflicts are
// distinguished from malformed input so callers can react differently.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "start_at must be before end_at")
	case errors.Is(err, database.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "quantity must be positive")
	case errors.Is(err, database.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, database.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, database.ErrNotAvailable):
		writeError(w, http.StatusConflict, "not available")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "booking was modified concurrently")
	case errors.Is(err, database.ErrCustomerResolution):
		writeError(w, http.StatusInternalServerError, "customer resolution failed")
	default:
		s.logger.Error().Err(err).Msg("unhandled API error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
