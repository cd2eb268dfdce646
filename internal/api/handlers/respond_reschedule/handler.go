package respond_reschedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers"
	"github.com/lumeaapp/LMA-BookingEngine/internal/api/middleware"
	respondReschedule "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/respond_reschedule"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgNoRequest          = "открытого запроса на перенос нет"
	msgSlotNotAvailable   = "запрошенное время уже занято"
)

type Handler struct {
	useCase RespondRescheduleUseCase
	logger  Logger
}

func NewHandler(useCase RespondRescheduleUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/reschedule/respond
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule/respond - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/reschedule/respond - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RespondRescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule/respond - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &respondReschedule.Request{
		BookingID: bookingID,
		UserID:    userID,
		Action:    respondReschedule.Action(req.Action),
	})
	if err != nil {
		switch {
		case errors.Is(err, respondReschedule.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/reschedule/respond - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, respondReschedule.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/reschedule/respond - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, respondReschedule.ErrNoRequest),
			errors.Is(err, respondReschedule.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/reschedule/respond - No open request: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgNoRequest)

		case errors.Is(err, respondReschedule.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings/{id}/reschedule/respond - Slot taken: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, respondReschedule.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/reschedule/respond - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/reschedule/respond - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/reschedule/respond - Responded: booking_id=%d, user_id=%d, status=%s",
		bookingID, userID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, &RespondRescheduleResponse{
		ID:        result.ID,
		Status:    result.Status,
		StartAt:   result.StartAt,
		EndAt:     result.EndAt,
		UpdatedAt: result.UpdatedAt,
	})
}
