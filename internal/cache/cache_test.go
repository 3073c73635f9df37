package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestMemory_GetSet тестирует запись и чтение значений
func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	// изменение полученного среза не затрагивает кэш
	got[0] = 'x'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), again)
}

// TestMemory_TTL тестирует истечение срока жизни ключа
func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	c := NewMemory()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "revoked:abc", []byte("1"), time.Minute))

	ok, err := c.Exists(ctx, "revoked:abc")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = c.Exists(ctx, "revoked:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	// запись другого ключа вычищает просроченные
	require.NoError(t, c.Set(ctx, "other", []byte("1"), 0))
	assert.Len(t, c.items, 1)
}

// TestMemory_Delete тестирует удаление нескольких ключей
func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()
	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	require.NoError(t, c.Delete(ctx, "a", "b", "nope"))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)
}

// TestJSONHelpers тестирует GetJSON/SetJSON
func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	type snapshot struct {
		TotalTasks int     `json:"totalTasks"`
		TotalHours float64 `json:"totalHours"`
	}

	require.NoError(t, SetJSON(ctx, c, "dashboard:1", snapshot{TotalTasks: 3, TotalHours: 1.5}, time.Minute))

	var got snapshot
	require.NoError(t, GetJSON(ctx, c, "dashboard:1", &got))
	assert.Equal(t, snapshot{TotalTasks: 3, TotalHours: 1.5}, got)

	assert.ErrorIs(t, GetJSON(ctx, c, "dashboard:2", &got), ErrMiss)

	require.NoError(t, c.Set(ctx, "broken", []byte("{"), 0))
	assert.Error(t, GetJSON(ctx, c, "broken", &got))
}

// TestRedis_Integration тестирует redis-реализацию на настоящем сервере
func TestRedis_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	c, err := NewRedis(ctx, RedisConfig{
		Addr:      fmt.Sprintf("%s:%s", host, port.Port()),
		KeyPrefix: "weektracker:",
	})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Ping(ctx))

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewRedis(ctx, RedisConfig{})
	assert.Error(t, err)
}
