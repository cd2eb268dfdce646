package finish_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers"
	"github.com/lumeaapp/LMA-BookingEngine/internal/api/middleware"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgInvalidStatus    = "завершение из текущего статуса невозможно"
	msgTooEarlyNoShow   = "неявку можно отметить только после окончания льготного периода"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleComplete PATCH /api/v1/bookings/{bookingId}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	bookingID, userID, ok := h.parseIDs(w, r, "PATCH /bookings/{id}/complete")
	if !ok {
		return
	}

	result, err := h.service.Complete(r.Context(), bookingID, userID)
	if err != nil {
		h.respondServiceError(w, err, "PATCH /bookings/{id}/complete", bookingID, userID)
		return
	}

	h.logger.Info("PATCH /bookings/{id}/complete - Booking completed: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleNoShow PATCH /api/v1/bookings/{bookingId}/no-show
func (h *Handler) HandleNoShow(w http.ResponseWriter, r *http.Request) {
	bookingID, userID, ok := h.parseIDs(w, r, "PATCH /bookings/{id}/no-show")
	if !ok {
		return
	}

	result, err := h.service.NoShow(r.Context(), bookingID, userID)
	if err != nil {
		h.respondServiceError(w, err, "PATCH /bookings/{id}/no-show", bookingID, userID)
		return
	}

	h.logger.Info("PATCH /bookings/{id}/no-show - No-show reported: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) parseIDs(w http.ResponseWriter, r *http.Request, op string) (bookingID, userID int64, ok bool) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid booking ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return 0, 0, false
	}

	userID, found := middleware.GetUserID(r.Context())
	if !found {
		h.logger.Warn("%s - Missing user ID", op)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}

	return bookingID, userID, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string, bookingID, userID int64) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		h.logger.Warn("%s - Booking not found: booking_id=%d", op, bookingID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, bookings.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: booking_id=%d, user_id=%d", op, bookingID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, bookings.ErrInvalidStatus):
		h.logger.Warn("%s - Invalid status: booking_id=%d", op, bookingID)
		handlers.RespondError(w, http.StatusConflict, msgInvalidStatus)

	case errors.Is(err, bookings.ErrTooEarlyNoShow):
		h.logger.Warn("%s - Too early for no-show: booking_id=%d", op, bookingID)
		handlers.RespondError(w, http.StatusConflict, msgTooEarlyNoShow)

	default:
		h.logger.Error("%s - Failed: booking_id=%d, error=%v", op, bookingID, err)
		handlers.RespondInternalError(w)
	}
}
