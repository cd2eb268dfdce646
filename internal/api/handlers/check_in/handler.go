package check_in

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers"
	"github.com/lumeaapp/LMA-BookingEngine/internal/api/middleware"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/bookings"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgInvalidStatus      = "чек-ин из текущего статуса невозможен"
	msgNotSettled         = "бронирование ещё не оплачено"
	msgNoCode             = "код чек-ина не выпущен"
	msgCodeExpired        = "код чек-ина истёк"
	msgCodeMismatch       = "неверный код чек-ина"
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

// HandleGenerate POST /api/v1/bookings/{bookingId}/check-in/code
// Код выпускает клиент — владелец бронирования
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	bookingID, userID, ok := h.parseIDs(w, r, "POST /bookings/{id}/check-in/code")
	if !ok {
		return
	}

	result, err := h.service.GenerateCheckInCode(r.Context(), bookingID, userID)
	if err != nil {
		h.respondServiceError(w, err, "POST /bookings/{id}/check-in/code", bookingID, userID)
		return
	}

	h.logger.Info("POST /bookings/{id}/check-in/code - Code issued: booking_id=%d, user_id=%d, expires_at=%s",
		bookingID, userID, result.ExpiresAt)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleConfirm POST /api/v1/bookings/{bookingId}/check-in/confirm
// Подтверждает клиент, предъявляя код
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	bookingID, userID, ok := h.parseIDs(w, r, "POST /bookings/{id}/check-in/confirm")
	if !ok {
		return
	}

	var req ConfirmCheckInRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/check-in/confirm - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.ConfirmCheckIn(r.Context(), bookingID, &models.ConfirmCheckInRequest{
		CustomerID: userID,
		Code:       req.Code,
	})
	if err != nil {
		h.respondServiceError(w, err, "POST /bookings/{id}/check-in/confirm", bookingID, userID)
		return
	}

	h.logger.Info("POST /bookings/{id}/check-in/confirm - Checked in: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleReject POST /api/v1/bookings/{bookingId}/check-in/reject
// Отклонение фиксируется без смены статуса бронирования
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	bookingID, userID, ok := h.parseIDs(w, r, "POST /bookings/{id}/check-in/reject")
	if !ok {
		return
	}

	var req RejectCheckInRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/check-in/reject - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	err := h.service.RejectCheckIn(r.Context(), bookingID, &models.RejectCheckInRequest{
		CustomerID: userID,
		Reason:     req.Reason,
	})
	if err != nil {
		h.respondServiceError(w, err, "POST /bookings/{id}/check-in/reject", bookingID, userID)
		return
	}

	h.logger.Info("POST /bookings/{id}/check-in/reject - Check-in rejected: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, nil)
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

	case errors.Is(err, bookings.ErrNotSettled):
		h.logger.Warn("%s - Not settled: booking_id=%d", op, bookingID)
		handlers.RespondError(w, http.StatusConflict, msgNotSettled)

	case errors.Is(err, bookings.ErrNoCode):
		h.logger.Warn("%s - No code issued: booking_id=%d", op, bookingID)
		handlers.RespondError(w, http.StatusConflict, msgNoCode)

	case errors.Is(err, bookings.ErrCodeExpired):
		h.logger.Warn("%s - Code expired: booking_id=%d", op, bookingID)
		handlers.RespondError(w, http.StatusConflict, msgCodeExpired)

	case errors.Is(err, bookings.ErrCodeMismatch):
		h.logger.Warn("%s - Code mismatch: booking_id=%d", op, bookingID)
		handlers.RespondBadRequest(w, msgCodeMismatch)

	default:
		h.logger.Error("%s - Failed: booking_id=%d, error=%v", op, bookingID, err)
		handlers.RespondInternalError(w)
	}
}
