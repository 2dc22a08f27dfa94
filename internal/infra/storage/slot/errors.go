package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrSlotNotAvailable возвращается, когда в слоте не осталось свободных мест
	ErrSlotNotAvailable = errors.New("slot.repository: slot not available")

	// ErrDepartmentNotFound возвращается при нарушении внешнего ключа на отделение
	ErrDepartmentNotFound = errors.New("slot.repository: department not found")

	// ErrInvalidCapacity возвращается при нарушении ограничения 0 <= available_seats <= total_seats
	ErrInvalidCapacity = errors.New("slot.repository: invalid capacity")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
