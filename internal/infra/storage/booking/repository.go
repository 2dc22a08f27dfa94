package booking

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
	tableBookings = "bookings"

	// uniqueReferenceConstraint имя уникального индекса по номеру бронирования (см. migrations)
	uniqueReferenceConstraint = "bookings_booking_reference_number_key"
)

var bookingColumns = []string{
	"id",
	"booking_reference_number",
	"slot_id",
	"department_id",
	"created_by",
	"user_name",
	"phone_number",
	"status",
	"is_read_by_admin",
	"booking_date",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Вызывается внутри транзакции резервирования: вставка бронирования и списание места
// фиксируются или откатываются вместе
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(
			"booking_reference_number",
			"slot_id",
			"department_id",
			"created_by",
			"user_name",
			"phone_number",
			"status",
			"is_read_by_admin",
		).
		Values(
			booking.ReferenceNumber,
			booking.SlotID,
			booking.DepartmentID,
			booking.CreatedBy,
			booking.PatientName,
			booking.Phone,
			booking.Status,
			booking.IsReadByAdmin,
		).
		Suffix("RETURNING id, booking_date, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if pgerrors.IsUniqueViolation(err, uniqueReferenceConstraint) {
		return nil, ErrDuplicateReference
	}
	if err != nil {
		return nil, pgerrors.Wrap(ErrExecQuery, "Create - execute insert", err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByReference получает бронирование по номеру
func (r *Repository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"booking_reference_number": reference}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByReference - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, pgerrors.Wrap(ErrScanRow, "GetByReference - scan booking", err)
	}

	return booking, nil
}

// ListByCitizen получает бронирования гражданина, новые первыми
func (r *Repository) ListByCitizen(ctx context.Context, citizenID string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"created_by": citizenID}).
		OrderBy("booking_date DESC", "id DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByCitizen - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pgerrors.Wrap(ErrExecQuery, "ListByCitizen - execute query", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListWithFilter получает бронирования для административной панели
// Поддерживает фильтрацию по:
// - отделению (DepartmentID)
// - дате приёма (SlotDate) - через слот бронирования
// - статусу (Status)
// - непросмотренным (UnreadOnly)
func (r *Repository) ListWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		OrderBy("booking_date DESC", "id DESC")

	if filter.DepartmentID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"department_id": *filter.DepartmentID})
	}

	if filter.SlotDate != nil {
		selectBuilder = selectBuilder.Where(
			squirrel.Expr("slot_id IN (SELECT id FROM slots WHERE slot_date = ?)", filter.SlotDate.Format(domain.DateFormat)),
		)
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.UnreadOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_read_by_admin": false})
	}

	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(filter.Limit).Offset(filter.Offset)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pgerrors.Wrap(ErrExecQuery, "ListWithFilter - execute query", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatusByReference обновляет статус бронирования
// Номер бронирования и занятые места слота не меняются
func (r *Repository) UpdateStatusByReference(ctx context.Context, reference string, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableBookings).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"booking_reference_number": reference}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatusByReference - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateStatusByReference", query, args)
}

// MarkReadByReference отмечает бронирование как просмотренное администратором
func (r *Repository) MarkReadByReference(ctx context.Context, reference string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableBookings).
		Set("is_read_by_admin", true).
		Where(squirrel.Eq{"booking_reference_number": reference}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkReadByReference - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "MarkReadByReference", query, args)
}

// CountUnread количество бронирований, не просмотренных администратором
func (r *Repository) CountUnread(ctx context.Context) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(tableBookings).
		Where(squirrel.Eq{"is_read_by_admin": false}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountUnread - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, pgerrors.Wrap(ErrScanRow, "CountUnread - scan count", err)
	}

	return count, nil
}

// CountBySlot количество бронирований слота (любых статусов)
func (r *Repository) CountBySlot(ctx context.Context, slotID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(tableBookings).
		Where(squirrel.Eq{"slot_id": slotID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountBySlot - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, pgerrors.Wrap(ErrScanRow, "CountBySlot - scan count", err)
	}

	return count, nil
}

// DeleteBySlot физически удаляет все бронирования слота
// Используется только при принудительном удалении слота, в одной транзакции с удалением слота
func (r *Repository) DeleteBySlot(ctx context.Context, slotID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableBookings).
		Where(squirrel.Eq{"slot_id": slotID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBySlot - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, pgerrors.Wrap(ErrExecQuery, "DeleteBySlot - execute delete", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBySlot - get rows affected: %v", ErrExecQuery, err)
	}

	return int(rowsAffected), nil
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return pgerrors.Wrap(ErrExecQuery, op+" - execute update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdBy sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.ReferenceNumber,
		&booking.SlotID,
		&booking.DepartmentID,
		&createdBy,
		&booking.PatientName,
		&booking.Phone,
		&booking.Status,
		&booking.IsReadByAdmin,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if createdBy.Valid {
		booking.CreatedBy = &createdBy.String
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, pgerrors.Wrap(ErrScanRow, "scanBookings - rows error", err)
	}

	return bookings, nil
}
