package count_unread_bookings

import (
	"net/http"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
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

// Handle GET /api/v1/admin/bookings/unread-count
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CountUnread(r.Context())
	if err != nil {
		h.logger.Error("GET /admin/bookings/unread-count - Failed: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
