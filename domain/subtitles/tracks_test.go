package subtitles

import (
	"strings"
	"testing"
)

// listing builds --list-subs output in the layout yt-dlp prints
func listing(ruManual, ruAuto, enManual, enAuto bool) string {
	var b strings.Builder
	if ruAuto || enAuto {
		b.WriteString("[info] Available automatic captions for dQw4w9WgXcQ:\n")
		b.WriteString("Language Name                     Formats\n")
		if ruAuto {
			b.WriteString("ru       Russian                  vtt, ttml, srv3, srv2, srv1, json3\n")
		}
		if enAuto {
			b.WriteString("en       English                  vtt, ttml, srv3, srv2, srv1, json3\n")
		}
	}
	if ruManual || enManual {
		b.WriteString("[info] Available subtitles for dQw4w9WgXcQ:\n")
		b.WriteString("Language Name                     Formats\n")
		if ruManual {
			b.WriteString("ru       Russian                  vtt, ttml, srv3, srv2, srv1, json3\n")
		}
		if enManual {
			b.WriteString("en       English                  vtt, ttml, srv3, srv2, srv1, json3\n")
		}
	}
	return b.String()
}

func TestParseTrackListing(t *testing.T) {
	tests := []struct {
		name    string
		listing string
		want    TrackAvailability
	}{
		{
			name:    "all four categories",
			listing: listing(true, true, true, true),
			want:    TrackAvailability{RuManual: true, RuAuto: true, EnManual: true, EnAuto: true},
		},
		{
			name:    "only english auto",
			listing: listing(false, false, false, true),
			want:    TrackAvailability{EnAuto: true},
		},
		{
			name:    "empty listing",
			listing: "",
			want:    TrackAvailability{},
		},
		{
			name:    "formats without vtt",
			listing: "Available subtitles for dQw4w9WgXcQ:\nLanguage  formats\nru        json3, srv1, srv2, srv3, ttml\nen        json3, srv1, srv2, srv3, ttml",
			want:    TrackAvailability{},
		},
		{
			name:    "regional variant counts as base language",
			listing: "Available subtitles for dQw4w9WgXcQ:\nLanguage  formats\nen-GB     vtt, json3, srv1",
			want:    TrackAvailability{EnManual: true},
		},
		{
			name:    "other languages ignored",
			listing: "Available subtitles for x:\nLanguage formats\nde vtt\nrue vtt\nenx vtt\nfr-FR vtt",
			want:    TrackAvailability{},
		},
		{
			name:    "rows before any section header are manual",
			listing: "ru vtt, json3",
			want:    TrackAvailability{RuManual: true},
		},
		{
			name:    "upper case format and header",
			listing: "AUTOMATIC CAPTIONS:\nLANGUAGE FORMATS\nru VTT",
			want:    TrackAvailability{RuAuto: true},
		},
		{
			name:    "section switch back to manual",
			listing: "Automatic captions for x:\nen vtt\nAvailable subtitles for x:\nru vtt",
			want:    TrackAvailability{EnAuto: true, RuManual: true},
		},
		{
			name:    "repeated rows are idempotent",
			listing: "Available subtitles for x:\nru vtt\nru-RU vtt\nru vtt",
			want:    TrackAvailability{RuManual: true},
		},
		{
			name:    "code without formats skipped",
			listing: "Available subtitles for x:\nru\n\n   \n",
			want:    TrackAvailability{},
		},
		{
			name:    "crlf line endings",
			listing: "Available subtitles for x:\r\nLanguage formats\r\nen vtt, json3\r\n",
			want:    TrackAvailability{EnManual: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTrackListing(tt.listing)
			if got != tt.want {
				t.Errorf("ParseTrackListing() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTrackAvailability_Select(t *testing.T) {
	tests := []struct {
		name   string
		avail  TrackAvailability
		want   SelectedTrack
		wantOK bool
	}{
		{
			name:   "ru manual wins over everything",
			avail:  TrackAvailability{RuManual: true, RuAuto: true, EnManual: true, EnAuto: true},
			want:   SelectedTrack{Language: LanguageRU},
			wantOK: true,
		},
		{
			name:   "ru auto beats en manual",
			avail:  TrackAvailability{RuAuto: true, EnManual: true, EnAuto: true},
			want:   SelectedTrack{Language: LanguageRU, Auto: true},
			wantOK: true,
		},
		{
			name:   "en manual beats en auto",
			avail:  TrackAvailability{EnManual: true, EnAuto: true},
			want:   SelectedTrack{Language: LanguageEN},
			wantOK: true,
		},
		{
			name:   "en auto last",
			avail:  TrackAvailability{EnAuto: true},
			want:   SelectedTrack{Language: LanguageEN, Auto: true},
			wantOK: true,
		},
		{
			name:   "nothing available",
			avail:  TrackAvailability{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.avail.Select()
			if ok != tt.wantOK {
				t.Fatalf("Select() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Select() = %+v, want %+v", got, tt.want)
			}
			if tt.avail.Empty() == tt.wantOK {
				t.Errorf("Empty() = %v, want %v", tt.avail.Empty(), !tt.wantOK)
			}
		})
	}
}

func TestLanguage(t *testing.T) {
	if got := LanguageRU.DisplayName(); got != "Russian" {
		t.Errorf("LanguageRU.DisplayName() = %q, want %q", got, "Russian")
	}
	if got := LanguageEN.Upper(); got != "EN" {
		t.Errorf("LanguageEN.Upper() = %q, want %q", got, "EN")
	}
	if got := (SelectedTrack{Language: LanguageEN, Auto: true}).Origin(); got != "auto" {
		t.Errorf("Origin() = %q, want %q", got, "auto")
	}
}
