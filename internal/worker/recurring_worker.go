package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"weekTracker/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultSchedule  = "5 0 * * 1"
	DefaultBatchSize = 500
)

// Roller создаёт экземпляры повторяющихся задач для текущей недели
type Roller interface {
	RolloverRecurring(ctx context.Context, limit int) (int, error)
}

type RecurringWorker struct {
	roller     Roller
	schedule   string
	batchSize  int
	runOnStart bool
	location   *time.Location

	mtx sync.Mutex
}

type Option func(*RecurringWorker)

func WithSchedule(spec string) Option {
	return func(w *RecurringWorker) {
		if spec != "" {
			w.schedule = spec
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *RecurringWorker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithRunOnStart(run bool) Option {
	return func(w *RecurringWorker) {
		w.runOnStart = run
	}
}

func WithLocation(loc *time.Location) Option {
	return func(w *RecurringWorker) {
		if loc != nil {
			w.location = loc
		}
	}
}

func NewRecurringWorker(roller Roller, opts ...Option) *RecurringWorker {
	w := &RecurringWorker{
		roller:     roller,
		schedule:   DefaultSchedule,
		batchSize:  DefaultBatchSize,
		runOnStart: true,
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start блокируется до отмены ctx. Запуски по расписанию не накладываются друг на друга
func (w *RecurringWorker) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(w.location),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := c.AddFunc(w.schedule, func() { w.Check(ctx) }); err != nil {
		return fmt.Errorf("расписание %q: %w", w.schedule, err)
	}

	logger.Info("Worker: Перенос повторяющихся задач запущен",
		zap.String("schedule", w.schedule),
		zap.Int("batch_size", w.batchSize))

	if w.runOnStart {
		w.Check(ctx)
	}

	c.Start()
	<-ctx.Done()

	logger.Info("Worker: Перенос повторяющихся задач останавливается")
	<-c.Stop().Done()
	return nil
}

// Check выполняет один перенос и возвращает число созданных задач
func (w *RecurringWorker) Check(ctx context.Context) int {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if ctx.Err() != nil {
		return 0
	}

	start := time.Now()
	logger.Info("Worker: Перенос повторяющихся задач", zap.Time("started_at", start))

	created, err := w.roller.RolloverRecurring(ctx, w.batchSize)
	if err != nil {
		logger.Warn("Worker: Ошибка переноса повторяющихся задач",
			zap.Error(err),
			zap.Int("created", created))
		return created
	}

	logger.Info("Worker: Завершение переноса повторяющихся задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("created", created))
	return created
}

// cronLogger направляет журнал cron в общий логгер
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("Worker: cron "+msg, kvFields(keysAndValues)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("Worker: cron "+msg, err, kvFields(keysAndValues)...)
}

func kvFields(kv []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}
