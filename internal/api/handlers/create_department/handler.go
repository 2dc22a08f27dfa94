package create_department

import (
	"errors"
	"net/http"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	"github.com/m04kA/HospitalBookingService/internal/service/departments"
	"github.com/m04kA/HospitalBookingService/internal/service/departments/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidName        = "название отделения обязательно и не длиннее 255 символов"
	msgDepartmentExists   = "отделение с таким названием уже существует"
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

// Handle POST /api/v1/admin/departments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.DepartmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/departments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, departments.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidName)

		case errors.Is(err, departments.ErrDepartmentExists):
			handlers.RespondConflict(w, msgDepartmentExists)

		default:
			h.logger.Error("POST /admin/departments - Failed to create department: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/departments - Department created: id=%d", result.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
