package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type launchRecorder struct {
	name string
	args []string
}

func (r *launchRecorder) launch(name string, args ...string) error {
	r.name = name
	r.args = args
	return nil
}

func TestOpenWithRejectsUnsafeURLs(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com/a?b=c", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		rec := &launchRecorder{}
		err := OpenWith(rec.launch, "linux", tt.url)
		if tt.wantErr {
			assert.Error(t, err, tt.url)
			assert.Empty(t, rec.name, "nothing may be launched for %q", tt.url)
		} else {
			assert.NoError(t, err, tt.url)
		}
	}
}

func TestOpenWithPlatformOpener(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{"https://example.com"}},
		{"linux", "xdg-open", []string{"https://example.com"}},
		{"freebsd", "xdg-open", []string{"https://example.com"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "https://example.com"}},
	}
	for _, tt := range tests {
		rec := &launchRecorder{}
		require.NoError(t, OpenWith(rec.launch, tt.goos, "https://example.com"))
		assert.Equal(t, tt.wantName, rec.name, tt.goos)
		assert.Equal(t, tt.wantArgs, rec.args, tt.goos)
	}
}
