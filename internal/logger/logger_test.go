package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppLogger_LevelFallback(t *testing.T) {
	l := NewAppLogger(&Config{LogLevel: "verbose"})
	assert.Equal(t, "info", l.getLoggerLevel().String())

	l = NewAppLogger(&Config{LogLevel: "debug"})
	assert.Equal(t, "debug", l.getLoggerLevel().String())
}

func TestAppLogger_InitAndWith(t *testing.T) {
	l := NewAppLogger(&Config{LogLevel: "error", DevMode: true})
	l.InitLogger()
	assert.NotNil(t, l.Logger())

	child := l.With("batch_id", "b1")
	assert.NotNil(t, child.Logger())
	child.Infof("dropped below level %d", 1)
}

func TestNewNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Info("nothing")
		l.Errorf("nothing %s", "here")
	})
}
