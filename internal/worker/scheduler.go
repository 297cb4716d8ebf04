package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"taskDesk/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrUnknownJob = errors.New("worker: неизвестная задача")

// Scheduler запускает задачи по cron-выражениям в заданной зоне.
// Пересекающиеся запуски одной задачи не блокируются.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration

	mtx  sync.RWMutex
	jobs map[string]Job
}

func NewScheduler(loc *time.Location, timeout time.Duration) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	cl := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		timeout: timeout,
		jobs:    make(map[string]Job),
	}
}

// Register добавляет задачу с расписанием spec (5 полей cron)
func (s *Scheduler) Register(spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.execute(job) }); err != nil {
		return fmt.Errorf("расписание %q для %s: %w", spec, job.Name(), err)
	}

	s.mtx.Lock()
	s.jobs[job.Name()] = job
	s.mtx.Unlock()

	logger.Info("Scheduler: задача зарегистрирована",
		zap.String("job", job.Name()),
		zap.String("spec", spec))
	return nil
}

// Start блокируется до отмены ctx, затем ждёт завершения текущих запусков
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	logger.Info("Scheduler: Запуск планировщика", zap.Int("jobs", len(s.Jobs())))

	<-ctx.Done()

	logger.Info("Scheduler: Планировщик останавливается")
	<-s.cron.Stop().Done()
}

// RunNow выполняет задачу немедленно и синхронно
func (s *Scheduler) RunNow(ctx context.Context, name string) (Result, error) {
	s.mtx.RLock()
	job, ok := s.jobs[name]
	s.mtx.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return job.Run(ctx), nil
}

func (s *Scheduler) Jobs() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) execute(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	logger.Info("Worker: Плановый запуск", zap.String("job", job.Name()), zap.Time("started_at", time.Now()))
	job.Run(ctx)
}

// cronLogger пишет события cron в общий zap-логгер
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Sugar().Debugw("Scheduler: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Sugar().Errorw("Scheduler: "+msg, append(keysAndValues, "error", err)...)
}
