package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	appsubtitles "yt-subtitles-loader/application/subtitles"
	"yt-subtitles-loader/domain/subtitles"
)

const (
	// LoadSubtitlesPath is the extraction endpoint
	LoadSubtitlesPath = "/api/v1/load-subtitles"

	// HealthPath answers liveness probes
	HealthPath = "/healthz"

	maxRequestBytes = 64 << 10
)

// Request-level error codes, next to the extraction codes from domain/subtitles
const (
	CodeBadRequest  = "bad_request"
	CodeRateLimited = "rate_limited"
)

// linkPattern is the coarse request check; the extractor validates the link fully
var linkPattern = regexp.MustCompile(`^https?://(www\.)?(youtube\.com|youtu\.be)/.*$`)

// LoadRequest is the body of POST /api/v1/load-subtitles
type LoadRequest struct {
	YoutubeLink string `json:"youtubeLink"`
}

// LoadResponse is returned on success
type LoadResponse struct {
	Link      string `json:"link"`
	Title     string `json:"title"`
	Lang      string `json:"lang"`
	Subtitles string `json:"subtitles"`
}

// ErrorResponse is returned for every failure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewHandler returns the HTTP API. limiter may be nil to disable rate limiting.
func NewHandler(extractor appsubtitles.Extractor, limiter *rate.Limiter, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mux := http.NewServeMux()
	mux.Handle("POST "+LoadSubtitlesPath, limit(limiter, loadSubtitlesHandler(extractor, logger)))
	mux.HandleFunc("GET "+HealthPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func loadSubtitlesHandler(extractor appsubtitles.Extractor, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoadRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "request body must be a JSON object with youtubeLink")
			return
		}

		link := strings.TrimSpace(req.YoutubeLink)
		if link == "" {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "youtubeLink must not be blank")
			return
		}
		if !linkPattern.MatchString(link) {
			writeError(w, http.StatusBadRequest, subtitles.CodeInvalidLink, "youtubeLink must be a youtube.com or youtu.be link")
			return
		}

		result, err := extractor.Extract(r.Context(), link)
		if err != nil {
			status, body := errorBody(err)
			if status >= http.StatusInternalServerError {
				logger.Error("subtitle extraction failed", "link", link, "error", err)
			} else {
				logger.Info("subtitle extraction rejected", "link", link, "code", body.Code)
			}
			writeJSON(w, status, body)
			return
		}

		writeJSON(w, http.StatusOK, LoadResponse{
			Link:      result.Link,
			Title:     result.Title,
			Lang:      result.Language.Upper(),
			Subtitles: result.Text,
		})
	}
}

// errorBody maps extraction errors to a status and a message safe to show clients
func errorBody(err error) (int, ErrorResponse) {
	var loadErr *subtitles.LoadError
	if !errors.As(err, &loadErr) {
		return http.StatusInternalServerError, ErrorResponse{
			Code:    subtitles.CodeExtractionFailed,
			Message: "failed to extract subtitles from video",
		}
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, subtitles.ErrInvalidLink), errors.Is(err, subtitles.ErrMalformedReference):
		status = http.StatusBadRequest
	case errors.Is(err, subtitles.ErrNoEligibleTrack):
		status = http.StatusNotFound
	}
	return status, ErrorResponse{Code: loadErr.Code, Message: loadErr.Message}
}

func limit(limiter *rate.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, CodeRateLimited, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
