package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"weekTracker/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRoller - мок сервиса задач
type MockRoller struct {
	mock.Mock
}

func (m *MockRoller) RolloverRecurring(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

// TestRecurringWorker_Check тестирует одиночный перенос
func TestRecurringWorker_Check(t *testing.T) {
	tests := []struct {
		name      string
		batch     int
		setupMock func(*MockRoller)
		want      int
	}{
		{
			name:  "success - tasks created",
			batch: 50,
			setupMock: func(m *MockRoller) {
				m.On("RolloverRecurring", mock.Anything, 50).Return(3, nil)
			},
			want: 3,
		},
		{
			name:  "default batch size",
			batch: 0,
			setupMock: func(m *MockRoller) {
				m.On("RolloverRecurring", mock.Anything, worker.DefaultBatchSize).Return(0, nil)
			},
			want: 0,
		},
		{
			name:  "error - partial progress is reported",
			batch: 10,
			setupMock: func(m *MockRoller) {
				m.On("RolloverRecurring", mock.Anything, 10).Return(2, errors.New("connection reset"))
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := new(MockRoller)
			tt.setupMock(roller)

			w := worker.NewRecurringWorker(roller, worker.WithBatchSize(tt.batch))

			assert.Equal(t, tt.want, w.Check(context.Background()))
			roller.AssertExpectations(t)
		})
	}
}

// TestRecurringWorker_CheckCancelled тестирует, что отменённый контекст не запускает перенос
func TestRecurringWorker_CheckCancelled(t *testing.T) {
	roller := new(MockRoller)
	w := worker.NewRecurringWorker(roller)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, w.Check(ctx))
	roller.AssertNotCalled(t, "RolloverRecurring", mock.Anything, mock.Anything)
}

// TestRecurringWorker_StartRunsOnStart тестирует запуск при старте и остановку по ctx
func TestRecurringWorker_StartRunsOnStart(t *testing.T) {
	roller := new(MockRoller)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	roller.On("RolloverRecurring", mock.Anything, 5).
		Run(func(mock.Arguments) { cancel() }).
		Return(1, nil).Once()

	w := worker.NewRecurringWorker(roller, worker.WithBatchSize(5), worker.WithLocation(time.UTC))

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker не остановился после отмены контекста")
	}
	roller.AssertExpectations(t)
}

// TestRecurringWorker_InvalidSchedule тестирует ошибку неверного расписания
func TestRecurringWorker_InvalidSchedule(t *testing.T) {
	roller := new(MockRoller)
	w := worker.NewRecurringWorker(roller, worker.WithSchedule("every monday"), worker.WithRunOnStart(false))

	err := w.Start(context.Background())

	assert.Error(t, err)
	roller.AssertNotCalled(t, "RolloverRecurring", mock.Anything, mock.Anything)
}
