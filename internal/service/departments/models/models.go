package models

import (
	"time"

	"github.com/m04kA/HospitalBookingService/internal/domain"
)

// DepartmentRequest запрос на создание или переименование отделения
type DepartmentRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// DepartmentResponse ответ с данными отделения
type DepartmentResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DepartmentListResponse список отделений
type DepartmentListResponse struct {
	Departments []DepartmentResponse `json:"departments"`
}

// FromDomainDepartment конвертирует domain модель в DTO
func FromDomainDepartment(d *domain.Department) *DepartmentResponse {
	if d == nil {
		return nil
	}
	return &DepartmentResponse{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// FromDomainDepartmentList конвертирует список domain моделей в DTO
func FromDomainDepartmentList(departments []*domain.Department) *DepartmentListResponse {
	resp := &DepartmentListResponse{Departments: make([]DepartmentResponse, 0, len(departments))}
	for _, d := range departments {
		resp.Departments = append(resp.Departments, *FromDomainDepartment(d))
	}
	return resp
}
