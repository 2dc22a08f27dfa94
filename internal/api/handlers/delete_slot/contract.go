package delete_slot

import (
	"context"

	deleteSlot "github.com/m04kA/HospitalBookingService/internal/usecase/delete_slot"
)

type DeleteSlotUseCase interface {
	Execute(ctx context.Context, req *deleteSlot.Request) (*deleteSlot.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
