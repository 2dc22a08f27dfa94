package create_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	"github.com/m04kA/HospitalBookingService/internal/service/slots"
	"github.com/m04kA/HospitalBookingService/internal/service/slots/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSlot        = "некорректные данные слота"
	msgInvalidTimeRange   = "время окончания должно быть позже времени начала"
	msgDateInPast         = "нельзя создать слот на прошедшую дату"
	msgDepartmentNotFound = "отделение не найдено"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidSlot)

		case errors.Is(err, slots.ErrInvalidTimeRange):
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, slots.ErrDateInPast):
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, slots.ErrDepartmentNotFound):
			handlers.RespondNotFound(w, msgDepartmentNotFound)

		default:
			h.logger.Error("POST /admin/slots - Failed to create slot: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/slots - Slot created: id=%d, department_id=%d", result.ID, result.DepartmentID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
