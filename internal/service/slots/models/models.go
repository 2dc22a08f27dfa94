package models

import (
	"github.com/m04kA/HospitalBookingService/internal/domain"
)

// CreateSlotRequest запрос на публикацию слота
type CreateSlotRequest struct {
	DepartmentID int64  `json:"departmentId" validate:"gt=0"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	TotalSeats   int    `json:"totalSeats" validate:"gte=1,lte=500"`
}

// UpdateCapacityRequest запрос на изменение вместимости слота
type UpdateCapacityRequest struct {
	TotalSeats int `json:"totalSeats" validate:"gte=1,lte=500"`
}

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID             int64   `json:"id"`
	DepartmentID   int64   `json:"departmentId"`
	Date           string  `json:"date"`      // "2026-10-20"
	StartTime      string  `json:"startTime"` // "09:00"
	EndTime        string  `json:"endTime"`
	TotalSeats     int     `json:"totalSeats"`
	AvailableSeats int     `json:"availableSeats"`
	IsFull         bool    `json:"isFull"`
	OccupancyRate  float64 `json:"occupancyRate"` // процент занятых мест
}

// SlotListResponse список слотов отделения
type SlotListResponse struct {
	DepartmentID int64          `json:"departmentId"`
	Slots        []SlotResponse `json:"slots"`
}

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.Slot) *SlotResponse {
	if s == nil {
		return nil
	}
	return &SlotResponse{
		ID:             s.ID,
		DepartmentID:   s.DepartmentID,
		Date:           s.Date.Format(domain.DateFormat),
		StartTime:      s.StartTime.String(),
		EndTime:        s.EndTime.String(),
		TotalSeats:     s.TotalSeats,
		AvailableSeats: s.AvailableSeats,
		IsFull:         s.IsFull(),
		OccupancyRate:  s.OccupancyRate(),
	}
}

// FromDomainSlotList конвертирует список слотов в DTO
func FromDomainSlotList(departmentID int64, slots []*domain.Slot) *SlotListResponse {
	resp := &SlotListResponse{DepartmentID: departmentID, Slots: make([]SlotResponse, 0, len(slots))}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, *FromDomainSlot(s))
	}
	return resp
}
