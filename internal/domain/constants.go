package domain

// Business validation constants
const (
	MaxPatientNameLength    = 255
	MaxDepartmentNameLength = 255
	MinSlotSeats            = 1
	MaxSlotSeats            = 500
	CitizenIDLength         = 13
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Reference period layouts
const (
	ReferencePeriodYear = "year"
	ReferencePeriodDate = "date"
)
