package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var getRuntime = func() string { return runtime.GOOS }

// openerArgs returns the command that hands target to the desktop on goos.
func openerArgs(goos, target string) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{"open", target}, nil
	case "linux", "freebsd", "openbsd":
		return []string{"xdg-open", target}, nil
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", target}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// DownloadTarget normalizes target for a desktop opener. URLs pass through; local paths become
// absolute file:// URLs.
func DownloadTarget(target string) (string, error) {
	if u, err := url.Parse(target); err == nil && (u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "file") {
		return target, nil
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", target, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// OpenDownload opens a download URL or a captured file with the system handler.
func OpenDownload(target string) error {
	target, err := DownloadTarget(target)
	if err != nil {
		return err
	}

	args, err := openerArgs(getRuntime(), target)
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		return fmt.Errorf("%s not found: %w", args[0], err)
	}

	if err := exec.Command(args[0], args[1:]...).Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", strings.TrimPrefix(target, "file://"), err)
	}
	return nil
}
