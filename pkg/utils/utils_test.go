package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "hello", SanitizeString("he\x00llo"))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2"))
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("  Alice  "))
	assert.Equal(t, "bob", NormalizeUsername("BOB"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "exactly", TruncateString("exactly", 7))
	assert.Equal(t, "long...", TruncateString("long string here", 7))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
}

func TestMaskSensitive(t *testing.T) {
	assert.Equal(t, "secr********", MaskSensitive("secret-value", 4))
	assert.Equal(t, "***", MaskSensitive("abc", 4))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   \t\n"))
	assert.False(t, IsEmpty("x"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "2.50s", FormatDuration(2500*time.Millisecond))
	assert.Equal(t, "3m20s", FormatDuration(200*time.Second))
	assert.Equal(t, "2h30m", FormatDuration(150*time.Minute))
}
