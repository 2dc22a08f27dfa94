package rename_department

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	"github.com/m04kA/HospitalBookingService/internal/service/departments"
	"github.com/m04kA/HospitalBookingService/internal/service/departments/models"
)

const (
	msgInvalidDepartmentID = "некорректный ID отделения"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidName         = "название отделения обязательно и не длиннее 255 символов"
	msgDepartmentExists    = "отделение с таким названием уже существует"
	msgNotFound            = "отделение не найдено"
)

type Handler struct {
	service DepartmentService
	logger  Logger
}

func NewHandler(service DepartmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/admin/departments/{departmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	departmentID, err := strconv.ParseInt(mux.Vars(r)["departmentId"], 10, 64)
	if err != nil || departmentID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidDepartmentID)
		return
	}

	var req models.DepartmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /admin/departments/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Rename(r.Context(), departmentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, departments.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidName)

		case errors.Is(err, departments.ErrDepartmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, departments.ErrDepartmentExists):
			handlers.RespondConflict(w, msgDepartmentExists)

		default:
			h.logger.Error("PUT /admin/departments/{id} - Failed to rename department: id=%d, error=%v", departmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
