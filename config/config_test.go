package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSocketURLFor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"http://localhost:3000", "ws://localhost:3000/socket"},
		{"https://api.storybox.app", "wss://api.storybox.app/socket"},
		{"https://example.com/api/", "wss://example.com/api/socket"},
	}

	for _, test := range tests {
		t.Run("URL: "+test.input, func(t *testing.T) {
			assert.Equal(t, test.expected, SocketURLFor(test.input))
		})
	}
}

func TestInitReadsEnv(t *testing.T) {
	t.Setenv("STORYBOX_ENV", "development")
	t.Setenv("STORYBOX_BASE_URL", "")
	t.Setenv("STORYBOX_SOCKET_URL", "")
	t.Setenv("STORYBOX_REQUEST_TIMEOUT", "5s")
	t.Setenv("STORYBOX_UPLOAD_TIMEOUT", "not-a-duration")

	Init()

	assert.True(t, Current.IsDev())
	assert.Equal(t, "http://localhost:3000", Current.BaseURL)
	assert.Equal(t, "ws://localhost:3000/socket", Current.SocketURL)
	assert.Equal(t, 5*time.Second, Current.RequestTimeout)
	assert.Equal(t, 5*time.Minute, Current.UploadTimeout)
}
