package subtitles

import "strings"

const (
	automaticSectionMarker = "automatic captions"
	manualSectionMarker    = "available subtitles"
	requiredFormat         = "vtt"
)

// TrackAvailability records which (language, origin) pairs offer a vtt track
type TrackAvailability struct {
	RuManual bool
	RuAuto   bool
	EnManual bool
	EnAuto   bool
}

// ParseTrackListing reads the output of `yt-dlp --list-subs`.
//
// The listing has an optional "Available subtitles" section and an optional
// "Automatic captions" section, each made of "<code> <formats>" rows. Rows
// without vtt among their formats, and languages other than ru/en (including
// regional variants such as en-GB), are ignored.
func ParseTrackListing(listing string) TrackAvailability {
	var avail TrackAvailability
	automatic := false

	for _, line := range strings.Split(listing, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, automaticSectionMarker) {
			automatic = true
			continue
		}
		if strings.Contains(lower, manualSectionMarker) {
			automatic = false
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		code, formats, ok := strings.Cut(trimmed, " ")
		if !ok || code == "" {
			continue
		}
		code = strings.TrimSpace(code)

		// Column header row: "Language Formats"
		if strings.EqualFold(code, "language") {
			continue
		}

		if !strings.Contains(strings.ToLower(formats), requiredFormat) {
			continue
		}

		switch {
		case matchesLanguage(code, LanguageRU):
			if automatic {
				avail.RuAuto = true
			} else {
				avail.RuManual = true
			}
		case matchesLanguage(code, LanguageEN):
			if automatic {
				avail.EnAuto = true
			} else {
				avail.EnManual = true
			}
		}
	}

	return avail
}

// Select picks a track by fixed priority: ru manual, ru auto, en manual, en auto.
// It returns false when nothing is available.
func (a TrackAvailability) Select() (SelectedTrack, bool) {
	switch {
	case a.RuManual:
		return SelectedTrack{Language: LanguageRU}, true
	case a.RuAuto:
		return SelectedTrack{Language: LanguageRU, Auto: true}, true
	case a.EnManual:
		return SelectedTrack{Language: LanguageEN}, true
	case a.EnAuto:
		return SelectedTrack{Language: LanguageEN, Auto: true}, true
	}
	return SelectedTrack{}, false
}

// Empty returns true if no track qualified
func (a TrackAvailability) Empty() bool {
	_, ok := a.Select()
	return !ok
}

func matchesLanguage(code string, lang Language) bool {
	return code == string(lang) || strings.HasPrefix(code, string(lang)+"-")
}
