package list_slots

import (
	"context"
	"time"

	"github.com/m04kA/HospitalBookingService/internal/service/slots/models"
)

type SlotService interface {
	ListByDepartment(ctx context.Context, departmentID int64, date *time.Time) (*models.SlotListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
