package logging

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPlain(t *testing.T) {
	f := &TextFormatter{DisableTimestamp: true}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Message: "Discovery scan complete",
		Data: logrus.Fields{
			"component": "scheduler",
			"pipelines": 3,
			"duration":  "120ms",
		},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[INFO] [scheduler] Discovery scan complete duration=120ms pipelines=3\n", string(out))
}

func TestFormatWarnAbbreviation(t *testing.T) {
	f := &TextFormatter{DisableTimestamp: true}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.WarnLevel,
		Message: "Subscriber evicted",
		Data:    logrus.Fields{},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[WARN] Subscriber evicted\n", string(out))
}

func TestFormatTimestamp(t *testing.T) {
	f := &TextFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.DebugLevel,
		Time:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Message: "tick",
		Data:    logrus.Fields{},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30 12:00:00 [DEBUG] tick\n", string(out))
}

func TestNewLoggerCarriesComponent(t *testing.T) {
	logger := NewLogger("engine")
	assert.Equal(t, "engine", logger.Data["component"])
	// Same component name yields the same underlying logger.
	assert.Same(t, logger.Logger, NewLogger("engine").Logger)
}
