package subtitles

import "context"

// ProcessOutput is what an external tool invocation produced
type ProcessOutput struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Download is the outcome of a subtitle download invocation.
// Path is where the tool was asked to write the subtitle file; it may not exist.
type Download struct {
	ProcessOutput
	Path string
}

// TrackLister enumerates the subtitle tracks available for a video.
// An error means the tool could not be run at all; a non-zero exit is reported in ProcessOutput.
type TrackLister interface {
	ListTracks(ctx context.Context, link string) (*ProcessOutput, error)
}

// SubtitleDownloader writes the selected track to a uniquely named file
type SubtitleDownloader interface {
	Download(ctx context.Context, link string, track SelectedTrack) (*Download, error)
}

// FileStore abstracts the filesystem operations needed on downloaded artifacts
type FileStore interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	Remove(path string) error
}

// TempSweeper removes stale artifacts left behind by earlier runs
type TempSweeper interface {
	Sweep(ctx context.Context) error
}
