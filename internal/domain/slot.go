package domain

import (
	"time"

	"github.com/m04kA/HospitalBookingService/pkg/types"
)

// Slot represents a bookable time window of a department on a specific date
type Slot struct {
	ID             int64
	DepartmentID   int64
	Date           time.Time
	StartTime      types.TimeString
	EndTime        types.TimeString
	TotalSeats     int
	AvailableSeats int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFull returns true if the slot has no available seats
func (s *Slot) IsFull() bool {
	return s.AvailableSeats <= 0
}

// BookedSeats returns the number of seats held by bookings
func (s *Slot) BookedSeats() int {
	return s.TotalSeats - s.AvailableSeats
}

// OccupancyRate returns the occupancy rate as a percentage (0-100)
func (s *Slot) OccupancyRate() float64 {
	if s.TotalSeats == 0 {
		return 0
	}
	return float64(s.BookedSeats()) / float64(s.TotalSeats) * 100
}

// DepartmentSeats суммарный остаток мест по отделению за день
type DepartmentSeats struct {
	DepartmentID   int64
	DepartmentName string
	AvailableSeats int
}
