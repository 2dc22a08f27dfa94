package create_department

import (
	"context"

	"github.com/m04kA/HospitalBookingService/internal/service/departments/models"
)

type DepartmentService interface {
	Create(ctx context.Context, req *models.DepartmentRequest) (*models.DepartmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
