package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Launcher starts an external process without waiting for it.
type Launcher func(name string, args ...string) error

func startProcess(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open launches the system browser for an article link.
func Open(rawURL string) error {
	return OpenWith(startProcess, runtime.GOOS, rawURL)
}

// OpenWith validates rawURL and hands it to launch using the opener for goos.
// Model-supplied links are untrusted, so only http and https are accepted.
func OpenWith(launch Launcher, goos, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without host: %q", rawURL)
	}

	name, args := opener(goos)
	return launch(name, append(args, u.String())...)
}

func opener(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		// rundll32 avoids shell interpretation of the URL.
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}
