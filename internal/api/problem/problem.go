// Package problem renders RFC 7807 problem responses.
package problem

import (
	"encoding/json"
	"net/http"
)

const (
	contentType = "application/problem+json"
	baseTypeURL = "https://errors.bankcards.dev/"
	traceHeader = "X-Trace-ID"
)

// Details is the RFC 7807 body, extended with the request trace id.
type Details struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	Instance  string `json:"instance"`
	RequestID string `json:"request_id"`
}

// Type turns a short slug into a fully qualified problem type URI.
func Type(slug string) string {
	return baseTypeURL + slug
}

// Write sends a problem response with the given status and detail.
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail string) {
	if title == "" {
		title = http.StatusText(status)
	}
	if problemType == "" {
		problemType = "about:blank"
	}

	details := Details{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	}
	if r != nil {
		details.Instance = r.URL.Path
		details.RequestID = r.Header.Get(traceHeader)
	}
	if details.RequestID == "" {
		details.RequestID = w.Header().Get(traceHeader)
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(details)
}
