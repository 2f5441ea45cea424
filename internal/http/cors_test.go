package http

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// createTestLogger creates a test logger that discards output.
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateCORSMiddleware(t *testing.T) {
	logger := createTestLogger()

	t.Run("Disabled", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(false, "https://example.com", logger))
	})

	t.Run("EnabledWithoutOrigins", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(true, "", logger))
	})

	t.Run("EnabledWithOrigins", func(t *testing.T) {
		assert.NotNil(t, createCORSMiddleware(true, "https://example.com", logger))
	})
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "Empty", input: "", want: nil},
		{name: "Single", input: "https://example.com", want: []string{"https://example.com"}},
		{
			name:  "MultipleWithWhitespace",
			input: " https://a.com , https://b.com ",
			want:  []string{"https://a.com", "https://b.com"},
		},
		{name: "SkipsEmptyEntries", input: "https://a.com,,  ,https://b.com", want: []string{"https://a.com", "https://b.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseOrigins(tt.input))
		})
	}
}
