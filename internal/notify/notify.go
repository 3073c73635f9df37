// Package notify рассылает уведомления таймеров по подключённым каналам и
// держит короткоживущий баннер ("вспышку") для интерфейса.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"weekTracker/internal/logger"
	"weekTracker/internal/timer"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var (
	ErrNotInitialized = errors.New("уведомления не инициализированы")
	ErrDisposed       = errors.New("уведомления уже остановлены")
)

const DefaultFlashDuration = 5 * time.Second

type Notification struct {
	Title string
	Body  string
}

func (n Notification) String() string {
	if n.Body == "" {
		return n.Title
	}
	return n.Title + "\n" + n.Body
}

type Sink interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

type Notifier struct {
	sinks         []Sink
	flashDuration time.Duration

	mtx         sync.Mutex
	initialized bool
	disposed    bool
	banner      string
	flashTimer  *time.Timer
}

func New(flashDuration time.Duration, sinks ...Sink) *Notifier {
	if flashDuration <= 0 {
		flashDuration = DefaultFlashDuration
	}
	return &Notifier{sinks: sinks, flashDuration: flashDuration}
}

func (n *Notifier) Init(ctx context.Context) error {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if n.disposed {
		return ErrDisposed
	}
	n.initialized = true

	names := make([]string, 0, len(n.sinks))
	for _, s := range n.sinks {
		names = append(names, s.Name())
	}
	logger.Info("Notify: Уведомления готовы", zap.Strings("sinks", names))
	return nil
}

// Notify показывает баннер и отправляет уведомление во все каналы параллельно.
// Ошибка одного канала не мешает остальным
func (n *Notifier) Notify(ctx context.Context, msg Notification) error {
	n.mtx.Lock()
	if !n.initialized {
		n.mtx.Unlock()
		return ErrNotInitialized
	}
	if n.disposed {
		n.mtx.Unlock()
		return ErrDisposed
	}
	n.flashLocked(msg.Title)
	n.mtx.Unlock()

	p := pool.New().WithErrors().WithContext(ctx)
	for _, s := range n.sinks {
		sink := s
		p.Go(func(ctx context.Context) error {
			if err := sink.Send(ctx, msg); err != nil {
				logger.Warn("Notify: Не удалось отправить уведомление",
					zap.String("sink", sink.Name()),
					zap.Error(err))
				return fmt.Errorf("%s: %w", sink.Name(), err)
			}
			return nil
		})
	}
	return p.Wait()
}

func (n *Notifier) flashLocked(text string) {
	if n.flashTimer != nil {
		n.flashTimer.Stop()
	}
	n.banner = text
	n.flashTimer = time.AfterFunc(n.flashDuration, func() {
		n.mtx.Lock()
		defer n.mtx.Unlock()
		n.banner = ""
		n.flashTimer = nil
	})
}

// Banner текст текущей вспышки, если она ещё активна
func (n *Notifier) Banner() (string, bool) {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	return n.banner, n.banner != ""
}

// Dispose гасит вспышку и останавливает её таймер. Повторный вызов безопасен
func (n *Notifier) Dispose() {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if n.flashTimer != nil {
		n.flashTimer.Stop()
		n.flashTimer = nil
	}
	n.banner = ""
	n.disposed = true
}

func WorkComplete(workMinutes int) Notification {
	return Notification{
		Title: "🍅 Помидор завершён!",
		Body:  fmt.Sprintf("%d минут фокуса позади!", workMinutes),
	}
}

func BreakComplete() Notification {
	return Notification{
		Title: "☕ Перерыв окончен!",
		Body:  "Пора снова сосредоточиться!",
	}
}

// ForPhaseChange уведомление для смены фазы помидоро
func ForPhaseChange(from timer.Phase, settings timer.PomodoroSettings) Notification {
	if from == timer.PhaseWork {
		return WorkComplete(settings.WorkMinutes)
	}
	return BreakComplete()
}
