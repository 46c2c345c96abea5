package subtitles

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a subtitle language supported by the loader
type Language string

const (
	LanguageRU Language = "ru"
	LanguageEN Language = "en"
)

// Code returns the language code passed to yt-dlp
func (l Language) Code() string {
	return string(l)
}

// DisplayName returns the English name of the language, e.g. "Russian"
func (l Language) DisplayName() string {
	tag, err := language.Parse(string(l))
	if err != nil {
		return string(l)
	}
	return display.English.Languages().Name(tag)
}

// Upper returns the enum-style representation used by the HTTP API ("RU", "EN")
func (l Language) Upper() string {
	return strings.ToUpper(string(l))
}

// SelectedTrack identifies the single track chosen for download
type SelectedTrack struct {
	Language Language
	Auto     bool
}

// Origin describes whether the track was authored or machine generated
func (t SelectedTrack) Origin() string {
	if t.Auto {
		return "auto"
	}
	return "manual"
}

// Result is the outcome of a successful extraction
type Result struct {
	Link     string
	Title    string // Always empty: video metadata is not fetched
	Language Language
	Auto     bool
	Text     string
}
