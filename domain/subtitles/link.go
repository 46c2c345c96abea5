package subtitles

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	mainDomain  = "youtube.com"
	shortDomain = "youtu.be"
)

// videoIDRegex matches an 11 character YouTube video identifier
var videoIDRegex = regexp.MustCompile(`^[\w-]{11}$`)

// hostSyntaxRegex matches the characters allowed in a lowercased host
var hostSyntaxRegex = regexp.MustCompile(`^[a-z0-9.-]+$`)

// VideoReference is a validated video identifier plus the canonical link it came from
type VideoReference struct {
	ID           string
	CanonicalURL string
}

// IsValidVideoID returns true if id is a well-formed video identifier
func IsValidVideoID(id string) bool {
	return videoIDRegex.MatchString(id)
}

// IsValidReference reports whether raw is an http(s) link to a single YouTube video.
// It never panics; any parse failure yields false.
func IsValidReference(raw string) bool {
	_, ok := videoIDFromURL(raw)
	return ok
}

// Canonicalize strips every query parameter except the first "v" parameter.
// The value of "v" is kept byte for byte, and the fragment is preserved.
func Canonicalize(raw string) (string, error) {
	u, err := parseStrict(raw)
	if err != nil {
		return "", NewMalformedReferenceError(err)
	}

	if u.RawQuery == "" {
		return raw, nil
	}

	value, found := firstRawParam(u.RawQuery, "v")

	cleaned := *u
	cleaned.ForceQuery = false
	cleaned.RawQuery = ""
	if found {
		cleaned.RawQuery = "v=" + value
	}

	return cleaned.String(), nil
}

// ParseVideoReference validates raw and returns its identifier and canonical link
func ParseVideoReference(raw string) (VideoReference, error) {
	id, ok := videoIDFromURL(raw)
	if !ok {
		return VideoReference{}, NewInvalidLinkError(raw)
	}

	canonical, err := Canonicalize(raw)
	if err != nil {
		return VideoReference{}, err
	}

	return VideoReference{ID: id, CanonicalURL: canonical}, nil
}

func videoIDFromURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	u, err := parseStrict(raw)
	if err != nil {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if !isValidHostSyntax(host) || !isPlatformHost(host) {
		return "", false
	}

	if host == shortDomain {
		id := strings.TrimPrefix(u.Path, "/")
		return id, IsValidVideoID(id)
	}

	switch {
	case strings.HasPrefix(u.Path, "/watch"):
		if u.RawQuery == "" {
			return "", false
		}
		for _, param := range strings.Split(u.RawQuery, "&") {
			if id, ok := strings.CutPrefix(param, "v="); ok {
				return id, IsValidVideoID(id)
			}
		}
	case strings.HasPrefix(u.Path, "/shorts/"), strings.HasPrefix(u.Path, "/live/"):
		segments := strings.Split(u.Path, "/")
		if len(segments) >= 3 {
			return segments[2], IsValidVideoID(segments[2])
		}
	}

	return "", false
}

func isValidHostSyntax(host string) bool {
	if host == "" || strings.HasPrefix(host, ".") {
		return false
	}
	return hostSyntaxRegex.MatchString(host)
}

// isPlatformHost accepts the bare domains and any subdomain of youtube.com,
// but not look-alikes such as fakeyoutube.com.
func isPlatformHost(host string) bool {
	if host == mainDomain || host == shortDomain {
		return true
	}
	if !strings.HasSuffix(host, "."+mainDomain) {
		return false
	}
	parts := strings.Split(host, ".")
	n := len(parts)
	return n >= 3 && parts[n-2] == "youtube" && parts[n-1] == "com"
}

// firstRawParam scans &-separated pairs in order and returns the undecoded
// value of the first one whose key is exactly name.
func firstRawParam(rawQuery, name string) (string, bool) {
	for _, param := range strings.Split(rawQuery, "&") {
		key, value, ok := strings.Cut(param, "=")
		if ok && key == name {
			return value, true
		}
	}
	return "", false
}

// parseStrict parses an absolute or relative URI and rejects what net/url
// tolerates but a strict URI grammar does not: whitespace and broken escapes.
func parseStrict(raw string) (*url.URL, error) {
	if strings.ContainsAny(raw, " \t\r\n\"<>\\^`{|}") {
		return nil, fmt.Errorf("parse %q: %w", raw, errIllegalCharacter)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	if _, err := url.QueryUnescape(u.RawQuery); err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}

	return u, nil
}

var errIllegalCharacter = errors.New("illegal character in URI")
