package reserve_slot

import (
	"time"

	"github.com/m04kA/HospitalBookingService/pkg/types"
)

// Request модель запроса на резервирование места в слоте
type Request struct {
	DepartmentID int64   // ID отделения
	SlotID       int64   // ID слота, должен принадлежать отделению
	PatientName  string  // Имя пациента
	Phone        string  // Контактный телефон
	CitizenID    *string // Идентификатор гражданина (nil - анонимная запись)
}

// Response модель ответа с созданным бронированием
type Response struct {
	BookingID       int64
	ReferenceNumber string
	Status          string
	SlotID          int64
	DepartmentID    int64
	SlotDate        time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	PatientName     string
	Phone           string
	CitizenID       *string
	CreatedAt       time.Time
}
