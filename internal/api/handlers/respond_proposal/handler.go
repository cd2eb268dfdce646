package respond_proposal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers"
	"github.com/lumeaapp/LMA-BookingEngine/internal/api/middleware"
	respondProposal "github.com/lumeaapp/LMA-BookingEngine/internal/usecase/respond_proposal"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgNoProposal         = "открытого предложения провайдера нет"
	msgSlotNotAvailable   = "предложенное время уже занято"
)

type Handler struct {
	useCase RespondProposalUseCase
	logger  Logger
}

func NewHandler(useCase RespondProposalUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/proposal/respond
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/proposal/respond - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/proposal/respond - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RespondProposalRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/proposal/respond - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &respondProposal.Request{
		BookingID: bookingID,
		UserID:    userID,
		Action:    respondProposal.Action(req.Action),
	})
	if err != nil {
		switch {
		case errors.Is(err, respondProposal.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/proposal/respond - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, respondProposal.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/proposal/respond - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, respondProposal.ErrNoProposal),
			errors.Is(err, respondProposal.ErrInvalidTransition):
			h.logger.Warn("POST /bookings/{id}/proposal/respond - No open proposal: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgNoProposal)

		case errors.Is(err, respondProposal.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings/{id}/proposal/respond - Slot taken: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgSlotNotAvailable)

		case errors.Is(err, respondProposal.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/proposal/respond - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/proposal/respond - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/proposal/respond - Responded: booking_id=%d, user_id=%d, status=%s",
		bookingID, userID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, &RespondProposalResponse{
		ID:        result.ID,
		Status:    result.Status,
		StartAt:   result.StartAt,
		EndAt:     result.EndAt,
		UpdatedAt: result.UpdatedAt,
	})
}
