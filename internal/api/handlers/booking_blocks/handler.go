package booking_blocks

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lumeaapp/LMA-BookingEngine/internal/api/handlers"
	"github.com/lumeaapp/LMA-BookingEngine/internal/api/middleware"
	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/blocks"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/blocks/models"
)

const (
	msgInvalidProviderID  = "некорректный ID провайдера"
	msgInvalidBlockID     = "некорректный ID блокировки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidQuery       = "некорректные параметры периода"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgProviderNotFound   = "провайдер не найден"
	msgBlockNotFound      = "блокировка не найдена"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	service BlockService
	logger  Logger
}

func NewHandler(service BlockService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate POST /api/v1/providers/{providerId}/blocks
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.parseIDs(w, r, "POST /providers/{id}/blocks")
	if !ok {
		return
	}

	var req models.CreateBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /providers/{id}/blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ProviderID = providerID
	req.UserID = userID

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondServiceError(w, err, "POST /providers/{id}/blocks", providerID, userID)
		return
	}

	h.logger.Info("POST /providers/{id}/blocks - Block created: block_id=%d, provider_id=%d", result.ID, providerID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleDelete DELETE /api/v1/providers/{providerId}/blocks/{blockId}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.parseIDs(w, r, "DELETE /providers/{id}/blocks/{blockId}")
	if !ok {
		return
	}

	blockID, err := strconv.ParseInt(mux.Vars(r)["blockId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /providers/{id}/blocks/{blockId} - Invalid block ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	if err := h.service.Delete(r.Context(), blockID, providerID, userID); err != nil {
		h.respondServiceError(w, err, "DELETE /providers/{id}/blocks/{blockId}", providerID, userID)
		return
	}

	h.logger.Info("DELETE /providers/{id}/blocks/{blockId} - Block deleted: block_id=%d, provider_id=%d", blockID, providerID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

// HandleList GET /api/v1/providers/{providerId}/blocks?from=&to=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/blocks - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	from, err := time.Parse(domain.DateFormat, r.URL.Query().Get("from"))
	if err != nil {
		h.logger.Warn("GET /providers/{id}/blocks - Invalid from date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	to, err := time.Parse(domain.DateFormat, r.URL.Query().Get("to"))
	if err != nil {
		h.logger.Warn("GET /providers/{id}/blocks - Invalid to date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.service.List(r.Context(), &models.ListBlocksRequest{
		ProviderID: providerID,
		From:       from,
		To:         to.AddDate(0, 0, 1), // включительно по дату to
	})
	if err != nil {
		h.logger.Error("GET /providers/{id}/blocks - Failed: provider_id=%d, error=%v", providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /providers/{id}/blocks - %d blocks returned: provider_id=%d", len(result.Blocks), providerID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) parseIDs(w http.ResponseWriter, r *http.Request, op string) (providerID, userID int64, ok bool) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid provider ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return 0, 0, false
	}

	userID, found := middleware.GetUserID(r.Context())
	if !found {
		h.logger.Warn("%s - Missing user ID", op)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}

	return providerID, userID, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string, providerID, userID int64) {
	switch {
	case errors.Is(err, blocks.ErrProviderNotFound):
		h.logger.Warn("%s - Provider not found: provider_id=%d", op, providerID)
		handlers.RespondNotFound(w, msgProviderNotFound)

	case errors.Is(err, blocks.ErrBlockNotFound):
		h.logger.Warn("%s - Block not found: provider_id=%d", op, providerID)
		handlers.RespondNotFound(w, msgBlockNotFound)

	case errors.Is(err, blocks.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: provider_id=%d, user_id=%d", op, providerID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, blocks.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: provider_id=%d, error=%v", op, providerID, err)
		handlers.RespondInternalError(w)
	}
}
