package capacity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/m04kA/HospitalBookingService/internal/domain"
)

const (
	jobName    = "capacity-snapshot"
	runTimeout = 10 * time.Second
)

// SeatsSource источник остатка мест по отделениям
type SeatsSource interface {
	SumAvailableByDepartment(ctx context.Context, date time.Time) ([]domain.DepartmentSeats, error)
}

// Gauge приёмник снимка (prometheus gauge), серия на ID отделения
type Gauge interface {
	SetAvailableSeats(departmentID int64, seats int)
}

type TimeProvider interface {
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Job выгружает остаток мест на сегодня по каждому отделению
type Job struct {
	source       SeatsSource
	gauge        Gauge
	timeProvider TimeProvider
	logger       Logger
}

func NewJob(source SeatsSource, gauge Gauge, timeProvider TimeProvider, logger Logger) *Job {
	return &Job{
		source:       source,
		gauge:        gauge,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Run делает один снимок
func (j *Job) Run(ctx context.Context) error {
	today := j.timeProvider.Now()

	seats, err := j.source.SumAvailableByDepartment(ctx, today)
	if err != nil {
		return fmt.Errorf("capacity snapshot: %w", err)
	}

	for _, s := range seats {
		j.gauge.SetAvailableSeats(s.DepartmentID, s.AvailableSeats)
	}

	j.logger.Info("CapacitySnapshot: exported %d departments for %s", len(seats), today.Format(domain.DateFormat))
	return nil
}

// Start запускает периодический снимок; первый запуск сразу
// Возвращённый scheduler нужно остановить через Shutdown
func Start(job *Job, interval time.Duration, location *time.Location) (gocron.Scheduler, error) {
	opts := []gocron.SchedulerOption{}
	if location != nil {
		opts = append(opts, gocron.WithLocation(location))
	}

	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("capacity snapshot: create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			defer cancel()
			if err := job.Run(ctx); err != nil {
				job.logger.Error("CapacitySnapshot: %v", err)
			}
		}),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("capacity snapshot: register job: %w", err)
	}

	s.Start()
	return s, nil
}
