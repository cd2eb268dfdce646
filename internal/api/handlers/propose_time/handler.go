package propose_time

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers"
	"github.com/lumeaapp/LMA-BookingEngine/internal/api/middleware"
	proposeTime "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/propose_time"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgInvalidTransition  = "предложение времени из текущего статуса невозможно"
	msgProviderClosed     = "провайдер закрыт в выбранную дату"
	msgSlotNotAvailable   = "предложенный временной слот недоступен"
	msgDateInPast         = "дата в прошлом"
)

type Handler struct {
	useCase ProposeTimeUseCase
	logger  Logger
}

func NewHandler(useCase ProposeTimeUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/propose-time
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/propose-time - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/propose-time - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ProposeTimeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/propose-time - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(bookingID, userID)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/propose-time - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, proposeTime.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/propose-time - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, proposeTime.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/propose-time - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, proposeTime.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/propose-time - Invalid transition: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, proposeTime.ErrProviderClosed):
			h.logger.Warn("POST /bookings/{id}/propose-time - Provider closed: booking_id=%d, date=%s", bookingID, req.Date)
			handlers.RespondBadRequest(w, msgProviderClosed)

		case errors.Is(err, proposeTime.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings/{id}/propose-time - Slot not available: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, proposeTime.ErrInvalidDate):
			h.logger.Warn("POST /bookings/{id}/propose-time - Date in past: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, proposeTime.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/propose-time - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/propose-time - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/propose-time - Proposal opened: booking_id=%d, user_id=%d",
		bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, &ProposeTimeResponse{
		ID:              result.ID,
		Status:          result.Status,
		ProposedStartAt: result.ProposedStartAt,
		ProposedEndAt:   result.ProposedEndAt,
		UpdatedAt:       result.UpdatedAt,
	})
}
