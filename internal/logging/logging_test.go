package logging

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewFormatterByEnvironment(t *testing.T) {
	_, isJSON := New("production", "info").Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)

	_, isText := New("development", "info").Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestNewLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("", "debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("", "chatty").GetLevel())
}

func TestDiscardDropsOutput(t *testing.T) {
	assert.Equal(t, io.Discard, Discard().Out)
}
