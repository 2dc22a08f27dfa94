package list_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	"github.com/m04kA/HospitalBookingService/internal/domain"
	"github.com/m04kA/HospitalBookingService/internal/service/slots"
)

const (
	msgInvalidDepartmentID = "некорректный ID отделения"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgNotFound            = "отделение не найдено"
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

// Handle GET /api/v1/departments/{departmentId}/slots?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	departmentID, err := strconv.ParseInt(mux.Vars(r)["departmentId"], 10, 64)
	if err != nil || departmentID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidDepartmentID)
		return
	}

	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		date = &parsed
	}

	result, err := h.service.ListByDepartment(r.Context(), departmentID, date)
	if err != nil {
		if errors.Is(err, slots.ErrDepartmentNotFound) {
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /departments/{id}/slots - Failed to list slots: department_id=%d, error=%v", departmentID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
