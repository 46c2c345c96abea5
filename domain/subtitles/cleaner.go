package subtitles

import (
	"regexp"
	"strings"
)

// Cleanup patterns, applied to every line in this order
var (
	tagRegex        = regexp.MustCompile(`<[^>]+>`)
	timestampRegex  = regexp.MustCompile(`\d{2}:\d{2}:\d{2}\.\d{3}`)
	cueArrowRegex   = regexp.MustCompile(`-->.*`)
	cueSettingRegex = regexp.MustCompile(`align:\w+ position:\d+%`)
	controlRegex    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	spaceRunRegex   = regexp.MustCompile(`\s{2,}`)
)

// WebVTT header markers expected on the first three lines of a yt-dlp download
const (
	headerMarker   = "WEBVTT"
	kindMarker     = "Kind: "
	languageMarker = "Language: "
	headerLines    = 3
)

// CleanLine strips markup, timing and control characters from a single line
func CleanLine(line string) string {
	line = tagRegex.ReplaceAllString(line, "")
	line = timestampRegex.ReplaceAllString(line, "")
	line = cueArrowRegex.ReplaceAllString(line, "")
	line = cueSettingRegex.ReplaceAllString(line, "")
	line = controlRegex.ReplaceAllString(line, "")
	line = spaceRunRegex.ReplaceAllString(line, " ")
	return trimLine(line)
}

// CleanLines turns raw WebVTT lines into the text lines worth keeping.
// The input slice is not modified.
//
// When the document starts with the WEBVTT/Kind/Language header, the first
// three and the last surviving lines are dropped by position, after empty
// lines have already been filtered out. The positions therefore need not
// line up with the header itself; downstream consumers rely on this output.
func CleanLines(lines []string) []string {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if c := CleanLine(line); c != "" {
			cleaned = append(cleaned, c)
		}
	}

	if hasHeader(lines) {
		if len(cleaned) <= headerLines {
			return nil
		}
		cleaned = cleaned[headerLines : len(cleaned)-1]
	}

	return cleaned
}

// Clean returns the plain text of a WebVTT document, lines joined by a single space
func Clean(lines []string) string {
	return strings.Join(CleanLines(lines), " ")
}

// SplitLines trims downloaded content and splits it into lines the way CleanLines expects
func SplitLines(content string) []string {
	return strings.Split(strings.TrimSpace(content), "\n")
}

func hasHeader(lines []string) bool {
	return len(lines) > headerLines &&
		strings.HasPrefix(lines[0], headerMarker) &&
		strings.HasPrefix(lines[1], kindMarker) &&
		strings.HasPrefix(lines[2], languageMarker)
}

// trimLine trims ASCII whitespace and control characters from both ends
func trimLine(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
}
