package reserve_slot

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HospitalBookingService/internal/domain"
	bookingRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/booking"
	departmentRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/department"
	referenceRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/reference"
	slotRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/slot"
	"github.com/m04kA/HospitalBookingService/pkg/dbmetrics"
	"github.com/m04kA/HospitalBookingService/pkg/logger"
	"github.com/m04kA/HospitalBookingService/pkg/txmanager"
)

var (
	sqlSelectDepartment = regexp.QuoteMeta("SELECT id, name, created_at, updated_at FROM departments WHERE id = $1")
	sqlLockSlot         = regexp.QuoteMeta("SELECT id, department_id, slot_date, start_time, end_time, total_seats, available_seats, created_at, updated_at FROM slots WHERE id = $1 FOR UPDATE")
	sqlNextReference    = regexp.QuoteMeta("INSERT INTO reference_counters (period_key,last_value) VALUES ($1,$2) ON CONFLICT (period_key) DO UPDATE SET last_value = reference_counters.last_value + 1 RETURNING last_value")
	sqlInsertBooking    = regexp.QuoteMeta("INSERT INTO bookings (booking_reference_number,slot_id,department_id,created_by,user_name,phone_number,status,is_read_by_admin) VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, booking_date, updated_at")
	sqlDecrementSeats   = regexp.QuoteMeta("UPDATE slots SET available_seats = available_seats - 1, updated_at = NOW() WHERE id = $1 AND available_seats > $2")
)

// newSQLUseCase собирает use case на настоящих репозиториях и менеджере транзакций поверх sqlmock
func newSQLUseCase(t *testing.T) (*UseCase, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)

	uc := NewUseCase(
		departmentRepo.NewRepository(wrapped),
		slotRepo.NewRepository(wrapped),
		bookingRepo.NewRepository(wrapped),
		referenceRepo.NewRepository(wrapped),
		txmanager.NewTransactionManager(wrapped),
		defaultScheme,
		fixedTime{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)},
		nil,
		logger.Nop(),
	)
	return uc, mock
}

func expectDepartment(mock sqlmock.Sqlmock) {
	now := time.Now()
	mock.ExpectQuery(sqlSelectDepartment).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(int64(1), "Cardiology", now, now))
}

func expectLockedSlot(mock sqlmock.Sqlmock, available int) {
	now := time.Now()
	mock.ExpectQuery(sqlLockSlot).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "department_id", "slot_date", "start_time", "end_time",
			"total_seats", "available_seats", "created_at", "updated_at",
		}).AddRow(int64(10), int64(1), time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
			"09:00:00", "09:30:00", 5, available, now, now))
}

func expectReferenceAndInsert(mock sqlmock.Sqlmock, seq int64, reference string) {
	now := time.Now()
	mock.ExpectQuery(sqlNextReference).
		WithArgs("2026", 1).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(seq))
	mock.ExpectQuery(sqlInsertBooking).
		WithArgs(reference, int64(10), int64(1), "1101700230708", "Somchai Jaidee", "0812345678", string(domain.StatusPending), false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_date", "updated_at"}).AddRow(int64(42), now, now))
}

func TestExecuteSQL_CommitsInLockOrder(t *testing.T) {
	uc, mock := newSQLUseCase(t)

	expectDepartment(mock)
	mock.ExpectBegin()
	expectLockedSlot(mock, 3)
	expectReferenceAndInsert(mock, 7, "BK2026-00007")
	mock.ExpectExec(sqlDecrementSeats).WithArgs(int64(10), 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "BK2026-00007", resp.ReferenceNumber)
	assert.Equal(t, int64(42), resp.BookingID)
	assert.Equal(t, "09:00", resp.StartTime.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSQL_GuardedDecrementMissRollsBack(t *testing.T) {
	uc, mock := newSQLUseCase(t)

	expectDepartment(mock)
	mock.ExpectBegin()
	expectLockedSlot(mock, 1)
	expectReferenceAndInsert(mock, 8, "BK2026-00008")
	mock.ExpectExec(sqlDecrementSeats).WithArgs(int64(10), 0).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrCapacityExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSQL_FullSlotStopsUnderLock(t *testing.T) {
	uc, mock := newSQLUseCase(t)

	expectDepartment(mock)
	mock.ExpectBegin()
	expectLockedSlot(mock, 0)
	mock.ExpectRollback()

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrCapacityExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSQL_SerializationFailureOnCommitIsRetryable(t *testing.T) {
	uc, mock := newSQLUseCase(t)

	expectDepartment(mock)
	mock.ExpectBegin()
	expectLockedSlot(mock, 3)
	expectReferenceAndInsert(mock, 9, "BK2026-00009")
	mock.ExpectExec(sqlDecrementSeats).WithArgs(int64(10), 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access"})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrRetryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSQL_LostCommitIsNotRetryable(t *testing.T) {
	uc, mock := newSQLUseCase(t)

	expectDepartment(mock)
	mock.ExpectBegin()
	expectLockedSlot(mock, 3)
	expectReferenceAndInsert(mock, 10, "BK2026-00010")
	mock.ExpectExec(sqlDecrementSeats).WithArgs(int64(10), 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

	// Бронирование могло записаться, повтор дал бы второе место
	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrRetryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSQL_UnknownSlotRollsBack(t *testing.T) {
	uc, mock := newSQLUseCase(t)

	expectDepartment(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(sqlLockSlot).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "department_id", "slot_date", "start_time", "end_time",
			"total_seats", "available_seats", "created_at", "updated_at",
		}))
	mock.ExpectRollback()

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
