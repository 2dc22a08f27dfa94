package models

import (
	"errors"
	"time"

	"github.com/m04kA/HospitalBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Caller тот, кто запрашивает бронирование
type Caller struct {
	CitizenID string // пусто для анонимного вызова
	IsAdmin   bool
	Phone     string // телефон, указанный анонимным пациентом при поиске
}

// ListForAdminRequest фильтр административного списка
type ListForAdminRequest struct {
	DepartmentID *int64
	Date         *time.Time
	Status       *string
	UnreadOnly   bool
	Limit        uint64
	Offset       uint64
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListForAdminRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		DepartmentID: r.DepartmentID,
		SlotDate:     r.Date,
		UnreadOnly:   r.UnreadOnly,
		Limit:        r.Limit,
		Offset:       r.Offset,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64     `json:"id"`
	ReferenceNumber string    `json:"referenceNumber"`
	SlotID          int64     `json:"slotId"`
	DepartmentID    int64     `json:"departmentId"`
	CitizenID       *string   `json:"citizenId,omitempty"`
	PatientName     string    `json:"patientName"`
	Phone           string    `json:"phone"`
	Status          string    `json:"status"`
	IsReadByAdmin   bool      `json:"isReadByAdmin"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// UnreadCountResponse количество непросмотренных бронирований
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:              b.ID,
		ReferenceNumber: b.ReferenceNumber,
		SlotID:          b.SlotID,
		DepartmentID:    b.DepartmentID,
		CitizenID:       b.CreatedBy,
		PatientName:     b.PatientName,
		Phone:           b.Phone,
		Status:          string(b.Status),
		IsReadByAdmin:   b.IsReadByAdmin,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в статус бронирования
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
