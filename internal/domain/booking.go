package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// ValidStatuses все допустимые статусы бронирования
// Переходы между ними не ограничены: администратор может выставить любой из них
var ValidStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
}

// IsValid returns true if the status is one of the known values
func (s BookingStatus) IsValid() bool {
	for _, valid := range ValidStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// Booking represents a patient's reservation of one seat in a slot
type Booking struct {
	ID              int64
	ReferenceNumber string
	SlotID          int64
	DepartmentID    int64
	CreatedBy       *string // citizen ID; nil for anonymous walk-in bookings
	PatientName     string
	Phone           string
	Status          BookingStatus
	IsReadByAdmin   bool

	CreatedAt time.Time // booking_date
	UpdatedAt time.Time
}

// IsOwnedBy returns true if the booking was created by the given citizen
func (b *Booking) IsOwnedBy(citizenID string) bool {
	return b.CreatedBy != nil && citizenID != "" && *b.CreatedBy == citizenID
}

// BookingsFilter фильтр для административного списка бронирований
type BookingsFilter struct {
	DepartmentID *int64         // Фильтр по отделению (опционально)
	SlotDate     *time.Time     // Дата приёма (опционально)
	Status       *BookingStatus // Фильтр по статусу (опционально)
	UnreadOnly   bool           // Только непросмотренные администратором
	Limit        uint64
	Offset       uint64
}
