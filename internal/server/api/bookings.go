// HTTP-хендлеры бронирований
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/IvanChernomyrdin/go-carrental/internal/server/models"
	"github.com/IvanChernomyrdin/go-carrental/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-carrental/internal/shared/errors"
	wire "github.com/IvanChernomyrdin/go-carrental/internal/shared/models"
)

// CreateBookingRequest - тело запроса бронирования.
//
// Даты принимаются как "2006-01-02" (поле input type=date) или в RFC 3339.
type CreateBookingRequest struct {
	Car         string `json:"car"`
	PickupDate  string `json:"pickupDate"`
	ReturnDate  string `json:"returnDate"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// ChangeStatusRequest - смена статуса бронирования владельцем.
type ChangeStatusRequest = wire.ChangeStatusRequest

// BookingsResponse - список бронирований.
type BookingsResponse struct {
	Success  bool             `json:"success"`
	Bookings []models.Booking `json:"bookings"`
}

// BookingResponse - созданное бронирование.
type BookingResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Booking models.Booking `json:"booking"`
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// CreateBooking бронирует машину для текущего пользователя.
//
// @Summary      Create booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateBookingRequest true "Booking"
// @Success      200 {object} BookingResponse
// @Failure      400 {object} ErrorResponse "Fill all the fields / invalid dates"
// @Failure      404 {object} ErrorResponse "Car not found"
// @Failure      409 {object} ErrorResponse "Car is not available"
// @Router       /api/bookings/create [post]
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if !decode(w, r, &req) {
		return
	}

	pickup, ok1 := parseDate(req.PickupDate)
	ret, ok2 := parseDate(req.ReturnDate)
	if !ok1 || !ok2 {
		WriteError(w, http.StatusBadRequest, serr.New(serr.ErrInvalidInput, "Invalid date format"))
		return
	}

	b, err := h.Svc.Bookings.Create(r.Context(), userID, service.BookingInput{
		CarID:       req.Car,
		PickupDate:  pickup,
		ReturnDate:  ret,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.fail(w, r, "create booking", err, "user_id", userID, "car_id", req.Car)
		return
	}

	WriteJSON(w, http.StatusOK, BookingResponse{Success: true, Message: "Booking Created", Booking: b})
}

// UserBookings - бронирования текущего пользователя.
//
// @Summary      My bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} BookingsResponse
// @Router       /api/bookings/user [get]
func (h *Handler) UserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	list, err := h.Svc.Bookings.ListUser(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "user bookings", err, "user_id", userID)
		return
	}
	writeBookings(w, list)
}

// OwnerBookings - бронирования машин владельца, новые первыми.
//
// @Summary      Owner bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} BookingsResponse
// @Failure      403 {object} ErrorResponse "Unauthorized"
// @Router       /api/bookings/owner [get]
func (h *Handler) OwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	list, err := h.Svc.Bookings.ListOwner(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, "owner bookings", err, "user_id", ownerID)
		return
	}
	writeBookings(w, list)
}

func writeBookings(w http.ResponseWriter, list []models.Booking) {
	if list == nil {
		list = []models.Booking{}
	}
	WriteJSON(w, http.StatusOK, BookingsResponse{Success: true, Bookings: list})
}

// ChangeBookingStatus меняет статус бронирования.
//
// Разрешены только переходы pending -> confirmed и pending -> cancelled.
//
// @Summary      Change booking status
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangeStatusRequest true "Booking id and new status"
// @Success      200 {object} MessageResponse "Status Updated"
// @Failure      400 {object} ErrorResponse "Invalid status"
// @Failure      403 {object} ErrorResponse "Unauthorized"
// @Failure      404 {object} ErrorResponse "Booking not found"
// @Failure      409 {object} ErrorResponse "Transition not allowed"
// @Router       /api/bookings/change-status [post]
func (h *Handler) ChangeBookingStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.Svc.Bookings.ChangeStatus(r.Context(), ownerID, req.BookingID, req.Status); err != nil {
		h.fail(w, r, "change status", err, "user_id", ownerID, "booking_id", req.BookingID)
		return
	}

	WriteMessage(w, "Status Updated")
}

// OwnerReport отдаёт PDF-отчёт по бронированиям владельца.
//
// @Summary      Owner bookings report
// @Tags         bookings
// @Produce      application/pdf
// @Security     BearerAuth
// @Success      200 {file} binary
// @Failure      403 {object} ErrorResponse "Unauthorized"
// @Failure      501 {object} ErrorResponse "Reports are not configured"
// @Router       /api/bookings/owner/report [get]
func (h *Handler) OwnerReport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	pdf, err := h.Svc.Bookings.OwnerReport(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, "owner report", err, "user_id", ownerID)
		return
	}

	w.Header().Set(ContentType, "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
