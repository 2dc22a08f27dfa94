package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/HospitalBookingService/internal/domain"
	"github.com/m04kA/HospitalBookingService/pkg/dbmetrics"
	"github.com/m04kA/HospitalBookingService/pkg/pgerrors"
	"github.com/m04kA/HospitalBookingService/pkg/psqlbuilder"
)

const tableSlots = "slots"

var slotColumns = []string{
	"id",
	"department_id",
	"slot_date",
	"start_time",
	"end_time",
	"total_seats",
	"available_seats",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы со слотами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новый слот; available_seats выставляется равным total_seats
func (r *Repository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableSlots).
		Columns(
			"department_id",
			"slot_date",
			"start_time",
			"end_time",
			"total_seats",
			"available_seats",
		).
		Values(
			slot.DepartmentID,
			slot.Date.Format(domain.DateFormat),
			slot.StartTime,
			slot.EndTime,
			slot.TotalSeats,
			slot.TotalSeats,
		).
		Suffix("RETURNING id, available_seats, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&slot.AvailableSeats,
		&createdAt,
		&updatedAt,
	)

	if pgerrors.IsForeignKeyViolation(err) {
		return nil, ErrDepartmentNotFound
	}
	if err != nil {
		return nil, pgerrors.Wrap(ErrExecQuery, "Create - execute insert", err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return slot, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает слот по ID и блокирует строку до конца транзакции
// Вне транзакции блокировка не имеет смысла, поэтому FOR UPDATE добавляется только
// при наличии транзакции в контексте
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Slot, error) {
	return r.getByID(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getByID(ctx context.Context, id int64, forUpdate bool) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From(tableSlots).
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, pgerrors.Wrap(ErrScanRow, "GetByID - scan slot", err)
	}

	return slot, nil
}

// ListByDepartment получает слоты отделения, опционально на конкретную дату
func (r *Repository) ListByDepartment(ctx context.Context, departmentID int64, date *time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From(tableSlots).
		Where(squirrel.Eq{"department_id": departmentID}).
		OrderBy("slot_date ASC", "start_time ASC")

	if date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"slot_date": date.Format(domain.DateFormat)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDepartment - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pgerrors.Wrap(ErrExecQuery, "ListByDepartment - execute query", err)
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByDepartment - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, pgerrors.Wrap(ErrScanRow, "ListByDepartment - rows error", err)
	}

	return slots, nil
}

// DecrementAvailable списывает одно место
// Условие available_seats > 0 защищает счётчик, даже если строка не была заблокирована
func (r *Repository) DecrementAvailable(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableSlots).
		Set("available_seats", squirrel.Expr("available_seats - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Gt{"available_seats": 0}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DecrementAvailable - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return pgerrors.Wrap(ErrExecQuery, "DecrementAvailable - execute update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DecrementAvailable - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotAvailable
	}

	return nil
}

// UpdateCapacity выставляет ёмкость слота
// Вызывать под той же блокировкой строки, что и резервирование (GetByIDForUpdate)
func (r *Repository) UpdateCapacity(ctx context.Context, id int64, totalSeats, availableSeats int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableSlots).
		Set("total_seats", totalSeats).
		Set("available_seats", availableSeats).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateCapacity - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if pgerrors.IsCheckViolation(err) {
		return ErrInvalidCapacity
	}
	if err != nil {
		return pgerrors.Wrap(ErrExecQuery, "UpdateCapacity - execute update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateCapacity - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// Delete удаляет слот
// Бронирования слота должны быть удалены раньше в той же транзакции
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableSlots).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return pgerrors.Wrap(ErrExecQuery, "Delete - execute delete", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// SumAvailableByDepartment остаток мест по отделениям на дату
// Отделения без слотов на эту дату возвращаются с нулём
func (r *Repository) SumAvailableByDepartment(ctx context.Context, date time.Time) ([]domain.DepartmentSeats, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"d.id",
		"d.name",
		"COALESCE(SUM(s.available_seats), 0)",
	).
		From("departments d").
		LeftJoin("slots s ON s.department_id = d.id AND s.slot_date = ?", date.Format(domain.DateFormat)).
		GroupBy("d.id", "d.name").
		OrderBy("d.id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: SumAvailableByDepartment - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pgerrors.Wrap(ErrExecQuery, "SumAvailableByDepartment - execute query", err)
	}
	defer rows.Close()

	result := make([]domain.DepartmentSeats, 0)
	for rows.Next() {
		var seats domain.DepartmentSeats
		if err := rows.Scan(&seats.DepartmentID, &seats.DepartmentName, &seats.AvailableSeats); err != nil {
			return nil, fmt.Errorf("%w: SumAvailableByDepartment - scan row: %v", ErrScanRow, err)
		}
		result = append(result, seats)
	}

	if err := rows.Err(); err != nil {
		return nil, pgerrors.Wrap(ErrScanRow, "SumAvailableByDepartment - rows error", err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var slot domain.Slot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.DepartmentID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.TotalSeats,
		&slot.AvailableSeats,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}
