package rename_department

import (
	"context"

	"github.com/m04kA/HospitalBookingService/internal/service/departments/models"
)

type DepartmentService interface {
	Rename(ctx context.Context, id int64, req *models.DepartmentRequest) (*models.DepartmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
