package notify_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"weekTracker/internal/notify"
	"weekTracker/internal/timer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mtx  sync.Mutex
	sent []notify.Notification
	err  error
}

func (s *recordingSink) Name() string {
	return "recording"
}

func (s *recordingSink) Send(_ context.Context, n notify.Notification) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

// TestNotifier_Lifecycle тестирует Init, Notify и Dispose
func TestNotifier_Lifecycle(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	n := notify.New(time.Hour, sink, notify.LogSink{})

	err := n.Notify(ctx, notify.BreakComplete())
	assert.ErrorIs(t, err, notify.ErrNotInitialized)

	require.NoError(t, n.Init(ctx))
	require.NoError(t, n.Notify(ctx, notify.BreakComplete()))
	assert.Len(t, sink.sent, 1)

	banner, ok := n.Banner()
	assert.True(t, ok)
	assert.Equal(t, notify.BreakComplete().Title, banner)

	n.Dispose()
	_, ok = n.Banner()
	assert.False(t, ok)
	assert.ErrorIs(t, n.Notify(ctx, notify.BreakComplete()), notify.ErrDisposed)
	assert.ErrorIs(t, n.Init(ctx), notify.ErrDisposed)

	// повторный Dispose безопасен
	n.Dispose()
}

// TestNotifier_FlashExpires тестирует автоматическое исчезновение баннера
func TestNotifier_FlashExpires(t *testing.T) {
	ctx := context.Background()
	n := notify.New(20 * time.Millisecond)
	require.NoError(t, n.Init(ctx))
	defer n.Dispose()

	require.NoError(t, n.Notify(ctx, notify.WorkComplete(25)))
	_, ok := n.Banner()
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := n.Banner()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

// TestNotifier_SinkError тестирует, что ошибка канала не мешает остальным
func TestNotifier_SinkError(t *testing.T) {
	ctx := context.Background()
	broken := &recordingSink{err: errors.New("недоступен")}
	healthy := &recordingSink{}
	n := notify.New(time.Second, broken, healthy)
	require.NoError(t, n.Init(ctx))
	defer n.Dispose()

	err := n.Notify(ctx, notify.BreakComplete())
	assert.Error(t, err)
	assert.Len(t, healthy.sent, 1)
}

func TestForPhaseChange(t *testing.T) {
	settings := timer.DefaultPomodoroSettings()
	assert.Contains(t, notify.ForPhaseChange(timer.PhaseWork, settings).Body, "25")
	assert.Equal(t, notify.BreakComplete(), notify.ForPhaseChange(timer.PhaseShortBreak, settings))
}

// TestTelegramSink тестирует отправку сообщения через поддельный Bot API
func TestTelegramSink(t *testing.T) {
	var mtx sync.Mutex
	var sentText string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"focus","username":"focus_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			require.NoError(t, r.ParseForm())
			mtx.Lock()
			sentText = r.FormValue("text")
			mtx.Unlock()
			w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	sink, err := notify.NewTelegramSinkWithEndpoint("token", server.URL+"/bot%s/%s", 42)
	require.NoError(t, err)

	require.NoError(t, sink.Send(context.Background(), notify.WorkComplete(25)))
	mtx.Lock()
	defer mtx.Unlock()
	assert.Contains(t, sentText, "Помидор завершён")
}
