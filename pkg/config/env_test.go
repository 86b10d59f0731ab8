package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("DISPATCH_TEST_INT", "42")
	t.Setenv("DISPATCH_TEST_BAD_INT", "forty")
	t.Setenv("DISPATCH_TEST_BOOL", "false")
	t.Setenv("DISPATCH_TEST_DURATION", "90s")
	t.Setenv("DISPATCH_TEST_LIST", " a, ,b ,")
	t.Setenv("DISPATCH_TEST_BLANK_LIST", " , ")

	assert.Equal(t, "fallback", GetEnvString("DISPATCH_TEST_UNSET", "fallback"))
	assert.Equal(t, 42, GetEnvInt("DISPATCH_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("DISPATCH_TEST_BAD_INT", 1))
	assert.False(t, GetEnvBool("DISPATCH_TEST_BOOL", true))
	assert.Equal(t, 90*time.Second, GetEnvDuration("DISPATCH_TEST_DURATION", time.Second))
	assert.Equal(t, []string{"a", "b"}, GetEnvStringList("DISPATCH_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, GetEnvStringList("DISPATCH_TEST_BLANK_LIST", []string{"x"}))
}

func TestGetEnv_LogsFallback(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv("DISPATCH_TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, GetEnvDuration("DISPATCH_TEST_DURATION", time.Minute))
	assert.Contains(t, buf.String(), "environment variable ignored")
	assert.Contains(t, buf.String(), "DISPATCH_TEST_DURATION")
}
