package middleware

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/valpere/govorun/internal/services"
	"github.com/valpere/govorun/pkg/metrics"
	"github.com/valpere/govorun/tests/helpers"
)

func TestUserRateLimiter(t *testing.T) {
	t.Run("allows up to burst", func(t *testing.T) {
		rl := NewUserRateLimiter(rate.Every(time.Hour), 2)

		assert.True(t, rl.Allow(1))
		assert.True(t, rl.Allow(1))
		assert.False(t, rl.Allow(1))
	})

	t.Run("limits are per user", func(t *testing.T) {
		rl := NewUserRateLimiter(rate.Every(time.Hour), 1)

		assert.True(t, rl.Allow(1))
		assert.False(t, rl.Allow(1))
		assert.True(t, rl.Allow(2))
	})

	t.Run("cleanup drops stale entries", func(t *testing.T) {
		rl := NewUserRateLimiter(rate.Every(time.Hour), 1)
		rl.Allow(1)

		rl.mu.Lock()
		rl.limiters[1].lastAccess = time.Now().Add(-2 * time.Hour)
		rl.mu.Unlock()

		rl.cleanup()

		rl.mu.RLock()
		_, exists := rl.limiters[1]
		rl.mu.RUnlock()
		assert.False(t, exists)
	})
}

func TestLogging(t *testing.T) {
	tl := helpers.NewTestLogger()
	handler := Logging(*tl.Logger)

	mockBot := helpers.NewMockBot()
	ctx := helpers.NewCommandContext("/start")

	err := handler(mockBot.Bot, ctx)

	require.NoError(t, err)
	tl.AssertLogContains(t, "Request processed")
	tl.AssertLogContains(t, "/start")
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	handler := Metrics(m)

	mockBot := helpers.NewMockBot()
	ctx := helpers.NewCommandContext("/start")

	require.NoError(t, handler(mockBot.Bot, ctx))
	require.NoError(t, handler(mockBot.Bot, ctx))

	assert.Equal(t, float64(2), m.UpdatesValue("message"))
}

func TestAuth_RegistersEffectiveUser(t *testing.T) {
	mockDB := helpers.NewMockDB(t)
	defer mockDB.Close()

	userService := services.NewUserService(mockDB.DB, nil, helpers.NewSilentTestLogger())
	handler := Auth(userService)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"language_code", "is_bot"}).
			AddRow("en", false))
	mockDB.Mock.ExpectCommit()

	mockBot := helpers.NewMockBot()
	ctx := helpers.NewCommandContext("/start")

	require.NoError(t, handler(mockBot.Bot, ctx))
	mockDB.ExpectationsWereMet(t)
}

func TestRateLimit_RepliesWhenExceeded(t *testing.T) {
	rl := NewUserRateLimiter(rate.Every(time.Hour), 1)
	handler := RateLimit(rl)

	mockBot := helpers.NewMockBot()
	ctx := helpers.NewCommandContext("/start")

	require.NoError(t, handler(mockBot.Bot, ctx))
	assert.Empty(t, mockBot.Client.Requests)

	// Second request trips the limiter and sends the warning reply
	require.NoError(t, handler(mockBot.Bot, ctx))
	assert.Contains(t, mockBot.Client.Requests, "sendMessage")
}
