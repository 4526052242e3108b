package ui

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// Opener launches story URLs in the desktop's default handler.
type Opener struct {
	command string
	args    []string
}

// NewOpener uses command when given, otherwise the first platform opener
// found on PATH.
func NewOpener(command string) *Opener {
	if command = strings.TrimSpace(command); command != "" {
		fields := strings.Fields(command)
		return &Opener{command: fields[0], args: fields[1:]}
	}

	switch runtime.GOOS {
	case "darwin":
		return &Opener{command: "open"}
	case "windows":
		return &Opener{command: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}
	default:
		return &Opener{command: findCommand("xdg-open", "sensible-browser", "wslview")}
	}
}

// Command is the resolved opener, empty when none was found.
func (o *Opener) Command() string {
	return o.command
}

// Open starts the opener detached. Only http and https URLs are accepted.
func (o *Opener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", rawURL)
	}
	if o.command == "" {
		return fmt.Errorf("no application found to open URL")
	}

	args := append(append([]string{}, o.args...), u.String())
	cmd := exec.Command(o.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", o.command, err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
