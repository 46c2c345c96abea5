package executable

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// DefaultName is the executable looked up on PATH
const DefaultName = "yt-dlp"

// Provisioning errors, each with a stable code for diagnostics
var (
	ErrUnsupportedPlatform = errors.New("no yt-dlp build for this platform")
	ErrBundleMissing       = errors.New("yt-dlp binary missing from bundle directory")
	ErrInstallFailed       = errors.New("failed to install yt-dlp binary")
	ErrNotFound            = errors.New("yt-dlp executable not found")
)

const (
	CodeUnsupportedPlatform = "4824"
	CodeBundleMissing       = "4825"
	CodeInstallFailed       = "4826"
)

// CodeOf returns the provisioning code for err, or "" when none applies
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedPlatform):
		return CodeUnsupportedPlatform
	case errors.Is(err, ErrBundleMissing):
		return CodeBundleMissing
	case errors.Is(err, ErrInstallFailed):
		return CodeInstallFailed
	}
	return ""
}

// Source tells where a resolved executable came from
type Source string

const (
	SourceConfig Source = "config"
	SourceBundle Source = "bundle"
	SourcePath   Source = "path"
)

// Resolution is a usable yt-dlp executable
type Resolution struct {
	Path   string
	Source Source
}

// Locator finds or installs the yt-dlp executable
type Locator struct {
	path      string
	bundleDir string
	cacheDir  string
	goos      string
	goarch    string
	lookPath  func(file string) (string, error)
}

// Option is a functional option for configuring Locator
type Option func(*Locator)

// WithPath sets an explicit executable that takes precedence over everything else
func WithPath(path string) Option {
	return func(l *Locator) {
		l.path = path
	}
}

// WithBundleDirectory sets the directory holding platform builds such as yt-dlp_linux
func WithBundleDirectory(dir string) Option {
	return func(l *Locator) {
		l.bundleDir = dir
	}
}

// WithCacheDirectory sets where bundled builds are installed
func WithCacheDirectory(dir string) Option {
	return func(l *Locator) {
		l.cacheDir = dir
	}
}

// WithPlatform overrides the detected operating system and architecture (for testing)
func WithPlatform(goos, goarch string) Option {
	return func(l *Locator) {
		l.goos = goos
		l.goarch = goarch
	}
}

// WithLookPath sets a custom PATH lookup (for testing)
func WithLookPath(lookPath func(file string) (string, error)) Option {
	return func(l *Locator) {
		l.lookPath = lookPath
	}
}

// NewLocator creates a new Locator
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
		lookPath: exec.LookPath,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.cacheDir == "" {
		l.cacheDir = defaultCacheDir()
	}

	return l
}

// Resolve returns the executable to use: the configured path, else a
// platform build installed from the bundle directory, else yt-dlp on PATH.
func (l *Locator) Resolve() (Resolution, error) {
	if l.path != "" {
		if _, err := os.Stat(l.path); err != nil {
			return Resolution{}, fmt.Errorf("%w: %s", ErrNotFound, l.path)
		}
		return Resolution{Path: l.path, Source: SourceConfig}, nil
	}

	if l.bundleDir != "" {
		path, err := l.install()
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Path: path, Source: SourceBundle}, nil
	}

	path, err := l.lookPath(DefaultName)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w on PATH: %v", ErrNotFound, err)
	}
	return Resolution{Path: path, Source: SourcePath}, nil
}

// install copies the platform build into the cache directory with mode 0755.
// An installed copy at least as new as the bundled one is reused.
func (l *Locator) install() (string, error) {
	name, err := PlatformBinaryName(l.goos, l.goarch)
	if err != nil {
		return "", err
	}

	src := filepath.Join(l.bundleDir, name)
	srcInfo, err := os.Stat(src)
	if err != nil || srcInfo.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrBundleMissing, src)
	}

	dst := filepath.Join(l.cacheDir, name)
	if dstInfo, err := os.Stat(dst); err == nil &&
		dstInfo.Size() == srcInfo.Size() &&
		!dstInfo.ModTime().Before(srcInfo.ModTime()) {
		return dst, nil
	}

	if err := copyExecutable(src, dst); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}
	return dst, nil
}

// PlatformBinaryName returns the bundled build name for goos/goarch
func PlatformBinaryName(goos, goarch string) (string, error) {
	switch goos {
	case "darwin":
		return "yt-dlp_macos", nil
	case "linux", "aix":
		if goarch == "arm64" {
			return "yt-dlp_linux_aarch64", nil
		}
		return "yt-dlp_linux", nil
	case "windows":
		return "yt-dlp.exe", nil
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
}

func copyExecutable(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".yt-dlp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "yt-subtitles-loader", "bin")
}
