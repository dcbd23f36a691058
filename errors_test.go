package sharky_test

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/hupe1980/sharky"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: sharky.ExitOK},
		{name: "config", err: fmt.Errorf("wrap: %w", sharky.ErrInvalidConfig), want: sharky.ExitConfig},
		{name: "reader", err: &sharky.WorkerError{Role: sharky.RoleReader, Err: &sharky.StatusError{Status: 1}}, want: sharky.ExitReaderFailed},
		{name: "writer", err: &sharky.WorkerError{Role: sharky.RoleWriter, Err: errors.New("broken pipe")}, want: sharky.ExitFatal},
		{name: "other", err: errors.New("pipe: too many open files"), want: sharky.ExitFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sharky.ExitCode(tt.err))
		})
	}
}

func TestWorkerError(t *testing.T) {
	inner := &sharky.StatusError{Status: 9}
	err := &sharky.WorkerError{Role: sharky.RoleReader, Err: inner}

	assert.Equal(t, "reader worker: exited with status 9", err.Error())
	assert.Same(t, inner, errors.Unwrap(err))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelWarn,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range tests {
		got, err := sharky.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := sharky.ParseLevel("loud")
	assert.ErrorIs(t, err, sharky.ErrInvalidConfig)
}

func TestBasicMetricsCollector(t *testing.T) {
	m := &sharky.BasicMetricsCollector{}
	m.RecordTransfer(4096, 2*time.Millisecond, nil)
	m.RecordTransfer(4096, 4*time.Millisecond, nil)
	m.RecordTransfer(4096, time.Millisecond, errors.New("epipe"))
	m.RecordCandidates(1, 78)
	m.RecordCandidates(2, 2028)
	m.RecordLookup(true, time.Microsecond)
	m.RecordLookup(false, 3*time.Microsecond)

	stats := m.GetStats()
	assert.Equal(t, int64(3), stats.TransferCount)
	assert.Equal(t, int64(1), stats.TransferErrors)
	assert.Equal(t, int64(2106), stats.Candidates)
	assert.Equal(t, int64(2), stats.LookupCount)
	assert.Equal(t, int64(1), stats.LookupHits)
	assert.Equal(t, (2 * time.Microsecond).Nanoseconds(), stats.LookupAvgNanos)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	assert.Equal(t, sharky.BasicMetricsStats{}, (&sharky.BasicMetricsCollector{}).GetStats())
}
