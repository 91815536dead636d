package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func gormLogFixture(t *testing.T, level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func listingQuery() (string, int64) {
	return "SELECT * FROM listings WHERE area_name = '서울'", 3
}

func TestNewGormLogger(t *testing.T) {
	gl, _ := gormLogFixture(t, gormlogger.Info)

	assert.Equal(t, gormlogger.Info, gl.level)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.True(t, gl.skipNotFound)
}

func TestGormLoggerOptions(t *testing.T) {
	gl, _ := gormLogFixture(t, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.skipNotFound)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := gormLogFixture(t, gormlogger.Info)

	changed := gl.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gl.level)
	changedGl, ok := changed.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, changedGl.level)
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("failed query logs at error with the sql", func(t *testing.T) {
		gl, recorded := gormLogFixture(t, gormlogger.Error)

		gl.Trace(ctx, time.Now(), listingQuery, errors.New("connection reset"))

		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "sql error", entry.Message)
		assert.Contains(t, fieldMap(entry), "sql")
	})

	t.Run("record not found is suppressed by default", func(t *testing.T) {
		gl, recorded := gormLogFixture(t, gormlogger.Error)

		gl.Trace(ctx, time.Now(), listingQuery, gormlogger.ErrRecordNotFound)

		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("record not found logs when suppression is off", func(t *testing.T) {
		gl, recorded := gormLogFixture(t, gormlogger.Error, WithIgnoreRecordNotFoundError(false))

		gl.Trace(ctx, time.Now(), listingQuery, gormlogger.ErrRecordNotFound)

		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("a slow query logs at warn", func(t *testing.T) {
		gl, recorded := gormLogFixture(t, gormlogger.Warn, WithSlowThreshold(50*time.Millisecond))

		gl.Trace(ctx, time.Now().Add(-time.Second), listingQuery, nil)

		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Contains(t, entry.Message, "slow sql")
	})

	t.Run("an ordinary query logs at debug on info level", func(t *testing.T) {
		gl, recorded := gormLogFixture(t, gormlogger.Info)

		gl.Trace(ctx, time.Now(), listingQuery, nil)

		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		assert.Equal(t, int64(3), fieldMap(entry)["rows"].Integer)
	})

	t.Run("ordinary queries are silent on warn level", func(t *testing.T) {
		gl, recorded := gormLogFixture(t, gormlogger.Warn)

		gl.Trace(ctx, time.Now(), listingQuery, nil)

		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("silent level drops everything", func(t *testing.T) {
		gl, recorded := gormLogFixture(t, gormlogger.Silent)

		gl.Trace(ctx, time.Now(), listingQuery, errors.New("connection reset"))

		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("a request id in the context is attached", func(t *testing.T) {
		gl, recorded := gormLogFixture(t, gormlogger.Info)
		idCtx := context.WithValue(ctx, RequestIDKey, "req-99")

		gl.Trace(idCtx, time.Now(), listingQuery, nil)

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "req-99", fieldMap(recorded.All()[0])["request_id"].String)
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
		{"trace", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run("level "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.input))
		})
	}
}
