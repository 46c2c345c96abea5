package filesystem

import (
	"errors"
	"io/fs"
	"os"

	"yt-subtitles-loader/domain/subtitles"
)

// Checker implements subtitles.FileStore using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if the file exists
func (c *Checker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile returns the contents of path
func (c *Checker) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes path. A file that is already gone is not an error.
func (c *Checker) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Ensure Checker implements subtitles.FileStore
var _ subtitles.FileStore = (*Checker)(nil)
