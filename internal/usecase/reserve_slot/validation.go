package reserve_slot

import (
	"fmt"
	"strings"

	"github.com/m04kA/HospitalBookingService/internal/domain"
	"github.com/m04kA/HospitalBookingService/pkg/validation"
)

// reservation нормализованная форма запроса, по которой работает валидатор
type reservation struct {
	DepartmentID int64   `validate:"gt=0"`
	SlotID       int64   `validate:"gt=0"`
	PatientName  string  `validate:"required,max=255"`
	Phone        string  `validate:"required,phone"`
	CitizenID    *string `validate:"omitempty,citizenid"`
}

// validateRequest проверяет и нормализует запрос: имя и телефон обрезаются по краям,
// пустой citizenId приравнивается к анонимной записи
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}

	req.PatientName = strings.TrimSpace(req.PatientName)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.CitizenID != nil {
		trimmed := strings.TrimSpace(*req.CitizenID)
		if trimmed == "" {
			req.CitizenID = nil
		} else {
			req.CitizenID = &trimmed
		}
	}

	if len([]rune(req.PatientName)) > domain.MaxPatientNameLength {
		return fmt.Errorf("%w: patient name must be at most %d characters", ErrInvalidInput, domain.MaxPatientNameLength)
	}

	if err := validation.Struct(reservation{
		DepartmentID: req.DepartmentID,
		SlotID:       req.SlotID,
		PatientName:  req.PatientName,
		Phone:        req.Phone,
		CitizenID:    req.CitizenID,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return nil
}
