package department

import "errors"

var (
	// ErrDepartmentNotFound возвращается, когда отделение не найдено
	ErrDepartmentNotFound = errors.New("department.repository: department not found")

	// ErrDuplicateName возвращается при попытке создать отделение с существующим названием
	ErrDuplicateName = errors.New("department.repository: duplicate department name")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("department.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("department.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("department.repository: failed to scan row")
)
