package service_test

import (
	"testing"
	"time"

	"weekTracker/internal/auth"
	"weekTracker/internal/cache"
	"weekTracker/internal/repository/inmemory"
	"weekTracker/internal/scoring"
	"weekTracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// среда, неделя 2025-01-06
var testNow = time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

const testWeek = "2025-01-06"

type env struct {
	store    *inmemory.Storage
	clock    *fixedClock
	cache    *cache.Memory
	tasks    *service.TaskService
	logs     *service.LogService
	groups   *service.GroupService
	profiles *service.ProfileService
	stats    *service.StatsService
	auth     *service.AuthService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := inmemory.New()
	clock := &fixedClock{now: testNow}
	mem := cache.NewMemory()
	dash := service.NewDashboardCache(mem, time.Minute)

	tokens, err := auth.NewManager("test-secret", time.Hour, "weektracker")
	require.NoError(t, err)

	return &env{
		store:    store,
		clock:    clock,
		cache:    mem,
		tasks:    service.NewTaskService(store, store, clock, dash),
		logs:     service.NewLogService(store, store, clock, dash),
		groups:   service.NewGroupService(store, store, store, clock, scoring.DefaultPolicy()),
		profiles: service.NewProfileService(store, clock),
		stats:    service.NewStatsService(store, store, store, clock, dash),
		auth:     service.NewAuthService(store, store, tokens, mem, clock),
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var be *service.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, code, be.Code)
}

func ptr[T any](v T) *T {
	return &v
}
