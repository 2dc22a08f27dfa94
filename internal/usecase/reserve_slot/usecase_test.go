package reserve_slot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HospitalBookingService/internal/domain"
	departmentRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/department"
	slotRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/slot"
	"github.com/m04kA/HospitalBookingService/pkg/logger"
	"github.com/m04kA/HospitalBookingService/pkg/pgerrors"
	"github.com/m04kA/HospitalBookingService/pkg/ptr"
)

// memStore хранилище в памяти; мьютекс транзакции играет роль блокировки строки слота,
// откат восстанавливает снимок состояния
type memStore struct {
	txMu sync.Mutex

	departments map[int64]*domain.Department
	slots       map[int64]*domain.Slot
	bookings    []*domain.Booking
	counters    map[string]int64
	nextID      int64

	// failOn шаг, на котором хранилище вернёт failErr
	failOn  string
	failErr error
}

func newMemStore() *memStore {
	return &memStore{
		departments: map[int64]*domain.Department{
			1: {ID: 1, Name: "Cardiology"},
			2: {ID: 2, Name: "Dental"},
		},
		slots: map[int64]*domain.Slot{
			10: {ID: 10, DepartmentID: 1, Date: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), TotalSeats: 2, AvailableSeats: 2},
			11: {ID: 11, DepartmentID: 1, Date: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), TotalSeats: 1, AvailableSeats: 0},
			20: {ID: 20, DepartmentID: 2, Date: time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), TotalSeats: 3, AvailableSeats: 3},
		},
		counters: map[string]int64{},
	}
}

type txKey struct{}

type snapshot struct {
	slots    map[int64]domain.Slot
	bookings int
	counters map[string]int64
	nextID   int64
}

func (s *memStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := snapshot{slots: map[int64]domain.Slot{}, bookings: len(s.bookings), counters: map[string]int64{}, nextID: s.nextID}
	for id, slot := range s.slots {
		snap.slots[id] = *slot
	}
	for k, v := range s.counters {
		snap.counters[k] = v
	}

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		for id, slot := range snap.slots {
			restored := slot
			s.slots[id] = &restored
		}
		s.bookings = s.bookings[:snap.bookings]
		s.counters = snap.counters
		s.nextID = snap.nextID
		return err
	}
	return nil
}

func (s *memStore) fail(step string) error {
	if s.failOn == step {
		return s.failErr
	}
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	if err := s.fail("department"); err != nil {
		return nil, err
	}
	dept, ok := s.departments[id]
	if !ok {
		return nil, departmentRepo.ErrDepartmentNotFound
	}
	return dept, nil
}

func (s *memStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Slot, error) {
	if ctx.Value(txKey{}) == nil {
		return nil, errors.New("lock requested outside transaction")
	}
	if err := s.fail("lock"); err != nil {
		return nil, err
	}
	slot, ok := s.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (s *memStore) DecrementAvailable(ctx context.Context, id int64) error {
	if err := s.fail("decrement"); err != nil {
		return err
	}
	slot := s.slots[id]
	if slot.AvailableSeats <= 0 {
		return slotRepo.ErrSlotNotAvailable
	}
	slot.AvailableSeats--
	return nil
}

func (s *memStore) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if err := s.fail("create"); err != nil {
		return nil, err
	}
	for _, b := range s.bookings {
		if b.ReferenceNumber == booking.ReferenceNumber {
			return nil, errors.New("duplicate reference")
		}
	}
	s.nextID++
	created := *booking
	created.ID = s.nextID
	created.CreatedAt = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	s.bookings = append(s.bookings, &created)
	return &created, nil
}

func (s *memStore) Next(ctx context.Context, periodKey string) (int64, error) {
	if err := s.fail("next"); err != nil {
		return 0, err
	}
	s.counters[periodKey]++
	return s.counters[periodKey], nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type metricsSpy struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (m *metricsSpy) IncReservation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = map[string]int{}
	}
	m.outcomes[outcome]++
}

var defaultScheme = domain.ReferenceScheme{Prefix: "BK", Period: domain.ReferencePeriodYear, Width: 5}

func newTestUseCase(store *memStore, metrics Metrics) *UseCase {
	return NewUseCase(store, store, store, store, store, defaultScheme,
		fixedTime{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}, metrics, logger.Nop())
}

func validRequest() *Request {
	return &Request{
		DepartmentID: 1,
		SlotID:       10,
		PatientName:  "Somchai Jaidee",
		Phone:        "0812345678",
		CitizenID:    ptr.Ptr("1101700230708"),
	}
}

func TestExecute_CreatesPendingBookingAndTakesSeat(t *testing.T) {
	store := newMemStore()
	uc := newTestUseCase(store, nil)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "BK2026-00001", resp.ReferenceNumber)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, int64(10), resp.SlotID)
	assert.Equal(t, int64(1), resp.DepartmentID)
	assert.Equal(t, "1101700230708", *resp.CitizenID)

	assert.Equal(t, 1, store.slots[10].AvailableSeats)
	require.Len(t, store.bookings, 1)
	assert.Equal(t, domain.StatusPending, store.bookings[0].Status)
	assert.False(t, store.bookings[0].IsReadByAdmin)
}

func TestExecute_AnonymousBookingHasNoCreator(t *testing.T) {
	store := newMemStore()
	uc := newTestUseCase(store, nil)

	req := validRequest()
	req.CitizenID = ptr.Ptr("   ")

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.CitizenID)
	assert.Nil(t, store.bookings[0].CreatedBy)
}

func TestExecute_FullSlotIsRejected(t *testing.T) {
	store := newMemStore()
	uc := newTestUseCase(store, nil)

	req := validRequest()
	req.SlotID = 11

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrCapacityExhausted)
	assert.Empty(t, store.bookings)
	assert.Equal(t, 0, store.slots[11].AvailableSeats)
	assert.Empty(t, store.counters)
}

func TestExecute_InvalidInputTouchesNothing(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Request)
	}{
		{"missing department", func(r *Request) { r.DepartmentID = 0 }},
		{"missing slot", func(r *Request) { r.SlotID = -1 }},
		{"blank name", func(r *Request) { r.PatientName = "   " }},
		{"long name", func(r *Request) { r.PatientName = string(make([]rune, domain.MaxPatientNameLength+1)) }},
		{"short phone", func(r *Request) { r.Phone = "12345" }},
		{"letters in phone", func(r *Request) { r.Phone = "08123abc78" }},
		{"bad citizen checksum", func(r *Request) { r.CitizenID = ptr.Ptr("1101700230705") }},
		{"short citizen id", func(r *Request) { r.CitizenID = ptr.Ptr("110170023") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			uc := newTestUseCase(store, nil)

			req := validRequest()
			tt.modify(req)

			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, store.bookings)
			assert.Equal(t, 2, store.slots[10].AvailableSeats)
		})
	}
}

func TestExecute_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		deptID  int64
		slotID  int64
		wantErr error
	}{
		{"unknown department", 99, 10, ErrDepartmentNotFound},
		{"unknown slot", 1, 999, ErrSlotNotFound},
		{"slot of another department", 1, 20, ErrSlotNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			uc := newTestUseCase(store, nil)

			req := validRequest()
			req.DepartmentID = tt.deptID
			req.SlotID = tt.slotID

			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, store.bookings)
			assert.Equal(t, 3, store.slots[20].AvailableSeats)
		})
	}
}

func TestExecute_ConcurrentRequestsNeverOverbook(t *testing.T) {
	const (
		seats    = 5
		requests = 50
	)

	store := newMemStore()
	store.slots[10].TotalSeats = seats
	store.slots[10].AvailableSeats = seats
	uc := newTestUseCase(store, nil)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []string
		exhausted int
		other     []error
	)

	for i := 0; i < requests; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := uc.Execute(context.Background(), &Request{
				DepartmentID: 1,
				SlotID:       10,
				PatientName:  fmt.Sprintf("Patient %d", i),
				Phone:        "0812345678",
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded = append(succeeded, resp.ReferenceNumber)
			case errors.Is(err, ErrCapacityExhausted):
				exhausted++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Len(t, succeeded, seats)
	assert.Equal(t, requests-seats, exhausted)
	assert.Equal(t, 0, store.slots[10].AvailableSeats)
	assert.Len(t, store.bookings, seats)

	unique := map[string]struct{}{}
	for _, ref := range succeeded {
		unique[ref] = struct{}{}
	}
	assert.Len(t, unique, seats)
}

func TestExecute_TransientFailureRollsBackEverything(t *testing.T) {
	steps := []string{"lock", "next", "create", "decrement"}

	for _, step := range steps {
		t.Run(step, func(t *testing.T) {
			store := newMemStore()
			store.failOn = step
			store.failErr = pgerrors.Wrap(errors.New("repo: failed to execute query"), step,
				&pq.Error{Code: "40P01", Message: "deadlock detected"})
			metrics := &metricsSpy{}
			uc := newTestUseCase(store, metrics)

			_, err := uc.Execute(context.Background(), validRequest())
			assert.ErrorIs(t, err, ErrRetryable)

			assert.Empty(t, store.bookings)
			assert.Equal(t, 2, store.slots[10].AvailableSeats)
			assert.Empty(t, store.counters)
			assert.Equal(t, 1, metrics.outcomes[outcomeRetryable])

			// После сбоя повтор проходит и получает первый номер периода
			store.failOn = ""
			resp, err := uc.Execute(context.Background(), validRequest())
			require.NoError(t, err)
			assert.Equal(t, "BK2026-00001", resp.ReferenceNumber)
		})
	}
}

func TestExecute_DecrementFindsNoSeatsIsExhausted(t *testing.T) {
	store := newMemStore()
	store.failOn = "decrement"
	store.failErr = slotRepo.ErrSlotNotAvailable
	metrics := &metricsSpy{}
	uc := newTestUseCase(store, metrics)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrCapacityExhausted)

	// Бронирование и номер откатываются вместе с неудачным списанием
	assert.Empty(t, store.bookings)
	assert.Empty(t, store.counters)
	assert.Equal(t, 2, store.slots[10].AvailableSeats)
	assert.Equal(t, 1, metrics.outcomes[outcomeExhausted])
}

func TestExecute_PermanentFailureIsInternal(t *testing.T) {
	store := newMemStore()
	store.failOn = "create"
	store.failErr = errors.New("column does not exist")
	uc := newTestUseCase(store, nil)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrRetryable)
	assert.Equal(t, 2, store.slots[10].AvailableSeats)
}

func TestExecute_DepartmentLookupTimeoutIsRetryable(t *testing.T) {
	store := newMemStore()
	store.failOn = "department"
	store.failErr = fmt.Errorf("query: %w", context.DeadlineExceeded)
	uc := newTestUseCase(store, nil)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrRetryable)
}

func TestExecute_ReferenceNumbersFollowScheme(t *testing.T) {
	store := newMemStore()
	store.slots[10].TotalSeats = 3
	store.slots[10].AvailableSeats = 3

	uc := NewUseCase(store, store, store, store, store,
		domain.ReferenceScheme{Prefix: "HN", Period: domain.ReferencePeriodDate, Width: 3},
		fixedTime{now: time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)}, nil, logger.Nop())

	var refs []string
	for i := 0; i < 3; i++ {
		resp, err := uc.Execute(context.Background(), validRequest())
		require.NoError(t, err)
		refs = append(refs, resp.ReferenceNumber)
	}

	assert.Equal(t, []string{"HN20261018-001", "HN20261018-002", "HN20261018-003"}, refs)
}

func TestExecute_RecordsOutcomes(t *testing.T) {
	store := newMemStore()
	metrics := &metricsSpy{}
	uc := newTestUseCase(store, metrics)

	_, _ = uc.Execute(context.Background(), validRequest())
	_, _ = uc.Execute(context.Background(), validRequest())
	_, _ = uc.Execute(context.Background(), validRequest())

	bad := validRequest()
	bad.Phone = ""
	_, _ = uc.Execute(context.Background(), bad)

	assert.Equal(t, 2, metrics.outcomes[outcomeCreated])
	assert.Equal(t, 1, metrics.outcomes[outcomeExhausted])
	assert.Equal(t, 1, metrics.outcomes[outcomeInvalid])
}
