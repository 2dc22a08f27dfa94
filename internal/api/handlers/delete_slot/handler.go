package delete_slot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	deleteSlot "github.com/m04kA/HospitalBookingService/internal/usecase/delete_slot"
)

const (
	msgInvalidSlotID   = "некорректный ID слота"
	msgInvalidForce    = "параметр force должен быть true или false"
	msgSlotNotFound    = "слот не найден"
	msgSlotHasBookings = "у слота есть бронирования; чтобы удалить их вместе со слотом, повторите запрос с force=true"
)

type Handler struct {
	useCase DeleteSlotUseCase
	logger  Logger
}

func NewHandler(useCase DeleteSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/admin/slots/{slotId}?force=true|false
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.ParseInt(mux.Vars(r)["slotId"], 10, 64)
	if err != nil || slotID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		force, err = strconv.ParseBool(raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidForce)
			return
		}
	}

	result, err := h.useCase.Execute(r.Context(), &deleteSlot.Request{SlotID: slotID, Force: force})
	if err != nil {
		switch {
		case errors.Is(err, deleteSlot.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidSlotID)

		case errors.Is(err, deleteSlot.ErrSlotNotFound):
			h.logger.Warn("DELETE /admin/slots/{id} - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, deleteSlot.ErrSlotHasBookings):
			h.logger.Warn("DELETE /admin/slots/{id} - Slot has bookings: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgSlotHasBookings)

		default:
			h.logger.Error("DELETE /admin/slots/{id} - Failed to delete slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /admin/slots/{id} - Slot deleted: slot_id=%d, cascaded=%t, bookings=%d",
		result.SlotID, result.Cascaded, result.DeletedBookings)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
