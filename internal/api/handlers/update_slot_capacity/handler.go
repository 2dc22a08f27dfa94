package update_slot_capacity

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	"github.com/m04kA/HospitalBookingService/internal/service/slots"
	"github.com/m04kA/HospitalBookingService/internal/service/slots/models"
)

const (
	msgInvalidSlotID       = "некорректный ID слота"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidCapacity     = "количество мест должно быть от 1 до 500"
	msgSlotNotFound        = "слот не найден"
	msgCapacityBelowBooked = "новое количество мест меньше числа уже занятых"
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

// Handle PATCH /api/v1/admin/slots/{slotId}/capacity
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(mux.Vars(r)["slotId"], 10, 64)
	if err != nil || slotID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	var req models.UpdateCapacityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /admin/slots/{id}/capacity - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateCapacity(r.Context(), slotID, &req)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidCapacity)

		case errors.Is(err, slots.ErrSlotNotFound):
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, slots.ErrCapacityBelowBooked):
			h.logger.Warn("PATCH /admin/slots/{id}/capacity - Below booked: slot_id=%d, total=%d", slotID, req.TotalSeats)
			handlers.RespondConflict(w, msgCapacityBelowBooked)

		default:
			h.logger.Error("PATCH /admin/slots/{id}/capacity - Failed: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /admin/slots/{id}/capacity - Capacity updated: slot_id=%d, total=%d, available=%d",
		slotID, result.TotalSeats, result.AvailableSeats)
	handlers.RespondJSON(w, http.StatusOK, result)
}
