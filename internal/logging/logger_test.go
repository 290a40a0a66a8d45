package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"error", ERROR},
		{"fatal", FATAL},
		{"bogus", INFO},
		{"", INFO},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "level=%q", tt.in)
	}
}

func TestShouldLog(t *testing.T) {
	l := &Logger{level: WARN, name: "test"}
	assert.False(t, l.shouldLog(DEBUG))
	assert.False(t, l.shouldLog(INFO))
	assert.True(t, l.shouldLog(WARN))
	assert.True(t, l.shouldLog(ERROR))
}

func TestWithFieldIsImmutable(t *testing.T) {
	base := GetLogger("test")
	child := base.WithField("metric", "click_quality_value")
	grandchild := child.WithField("status", "diagnosed")

	assert.Empty(t, base.fields)
	assert.Len(t, child.fields, 1)
	assert.Len(t, grandchild.fields, 2)
	assert.Equal(t, "click_quality_value", grandchild.fields["metric"])
}

func TestWithFieldsMergesAndOverrides(t *testing.T) {
	l := GetLogger("test").
		WithFields(Field("a", 1), Field("b", 2)).
		WithFields(Field("b", 3))

	assert.Equal(t, 1, l.fields["a"])
	assert.Equal(t, 3, l.fields["b"])
}

func TestWithNameResetsFields(t *testing.T) {
	l := GetLogger("test").WithField("k", "v").WithName("other")
	assert.Equal(t, "other", l.name)
	assert.Empty(t, l.fields)
}

func TestGetTimestampOverride(t *testing.T) {
	t.Setenv("LOG_TIMESTAMP", "2026-01-01T00:00:00Z")
	assert.Equal(t, "2026-01-01T00:00:00Z", GetTimestamp())
}

func TestFatalUsesExitFunc(t *testing.T) {
	orig := exitFunc
	defer func() { exitFunc = orig }()

	code := -1
	exitFunc = func(c int) { code = c }

	l := &Logger{level: FATAL, name: "test"}
	l.Fatal("boom")
	assert.Equal(t, 1, code)
}
