package department

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/HospitalBookingService/internal/domain"
	"github.com/m04kA/HospitalBookingService/pkg/dbmetrics"
	"github.com/m04kA/HospitalBookingService/pkg/pgerrors"
	"github.com/m04kA/HospitalBookingService/pkg/psqlbuilder"
)

const (
	tableDepartments = "departments"

	uniqueNameConstraint = "departments_name_key"
)

// Repository репозиторий для работы с отделениями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория отделений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое отделение
func (r *Repository) Create(ctx context.Context, department *domain.Department) (*domain.Department, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableDepartments).
		Columns("name").
		Values(department.Name).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&department.ID, &createdAt, &updatedAt)

	if pgerrors.IsUniqueViolation(err, uniqueNameConstraint) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, pgerrors.Wrap(ErrExecQuery, "Create - execute insert", err)
	}

	department.CreatedAt = createdAt.Time
	department.UpdatedAt = updatedAt.Time

	return department, nil
}

// GetByID получает отделение по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "created_at", "updated_at").
		From(tableDepartments).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	department, err := scanDepartment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDepartmentNotFound
	}
	if err != nil {
		return nil, pgerrors.Wrap(ErrScanRow, "GetByID - scan department", err)
	}

	return department, nil
}

// List получает все отделения, упорядоченные по названию
func (r *Repository) List(ctx context.Context) ([]*domain.Department, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "created_at", "updated_at").
		From(tableDepartments).
		OrderBy("name ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pgerrors.Wrap(ErrExecQuery, "List - execute query", err)
	}
	defer rows.Close()

	departments := make([]*domain.Department, 0)
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		departments = append(departments, department)
	}

	if err := rows.Err(); err != nil {
		return nil, pgerrors.Wrap(ErrScanRow, "List - rows error", err)
	}

	return departments, nil
}

// UpdateName переименовывает отделение
func (r *Repository) UpdateName(ctx context.Context, id int64, name string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableDepartments).
		Set("name", name).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateName - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if pgerrors.IsUniqueViolation(err, uniqueNameConstraint) {
		return ErrDuplicateName
	}
	if err != nil {
		return pgerrors.Wrap(ErrExecQuery, "UpdateName - execute update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateName - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrDepartmentNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDepartment(row rowScanner) (*domain.Department, error) {
	var department domain.Department
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&department.ID, &department.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	department.CreatedAt = createdAt.Time
	department.UpdatedAt = updatedAt.Time

	return &department, nil
}
