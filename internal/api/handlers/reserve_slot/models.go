package reserve_slot

import (
	"time"

	"github.com/m04kA/HospitalBookingService/internal/domain"
	reserveSlot "github.com/m04kA/HospitalBookingService/internal/usecase/reserve_slot"
)

// ReserveRequest HTTP request model
type ReserveRequest struct {
	DepartmentID int64   `json:"departmentId"`
	SlotID       int64   `json:"slotId"`
	PatientName  string  `json:"patientName"`
	Phone        string  `json:"phone"`
	CitizenID    *string `json:"citizenId,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID       int64   `json:"bookingId"`
	ReferenceNumber string  `json:"referenceNumber"`
	Status          string  `json:"status"`
	DepartmentID    int64   `json:"departmentId"`
	SlotID          int64   `json:"slotId"`
	SlotDate        string  `json:"slotDate"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	PatientName     string  `json:"patientName"`
	Phone           string  `json:"phone"`
	CitizenID       *string `json:"citizenId,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ReserveRequest) ToUseCaseRequest(citizenID *string) *reserveSlot.Request {
	return &reserveSlot.Request{
		DepartmentID: r.DepartmentID,
		SlotID:       r.SlotID,
		PatientName:  r.PatientName,
		Phone:        r.Phone,
		CitizenID:    citizenID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *reserveSlot.Response) *BookingResponse {
	return &BookingResponse{
		BookingID:       resp.BookingID,
		ReferenceNumber: resp.ReferenceNumber,
		Status:          resp.Status,
		DepartmentID:    resp.DepartmentID,
		SlotID:          resp.SlotID,
		SlotDate:        resp.SlotDate.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		PatientName:     resp.PatientName,
		Phone:           resp.Phone,
		CitizenID:       resp.CitizenID,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
