package models

import (
	"fmt"
	"net/http"
	"unicode/utf8"
)

// ErrorKind classifies a pipeline failure so callers can map it to an HTTP
// status and a user-facing message without string matching.
type ErrorKind string

const (
	ErrModerationRejected  ErrorKind = "moderation_rejected"
	ErrInvalidInput        ErrorKind = "invalid_input"
	ErrUpstreamUnavailable ErrorKind = "upstream_unavailable"
	ErrMalformedResponse   ErrorKind = "malformed_response"
	ErrUnconfigured        ErrorKind = "unconfigured"
	ErrNotFound            ErrorKind = "not_found"
)

const maxSnippetLen = 200

// PipelineError is the typed failure for every analysis and lookup stage.
// Message is safe to show to users; Snippet is a bounded excerpt of a raw
// upstream payload kept for server logs only.
type PipelineError struct {
	Kind    ErrorKind
	Service string
	Reason  ModerationReason
	Message string
	Snippet string
	Err     error
}

func (e *PipelineError) Error() string {
	switch {
	case e.Kind == ErrModerationRejected:
		return fmt.Sprintf("moderation rejected image: %s", e.Reason)
	case e.Err != nil && e.Service != "":
		return fmt.Sprintf("%s: %s: %v", e.Service, e.Kind, e.Err)
	case e.Service != "":
		return fmt.Sprintf("%s: %s: %s", e.Service, e.Kind, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *PipelineError) Unwrap() error { return e.Err }

// HTTPStatus maps the error class onto the wire contract: user-caused
// failures are 4xx, everything upstream or misconfigured is 5xx.
func (e *PipelineError) HTTPStatus() int {
	switch e.Kind {
	case ErrModerationRejected, ErrInvalidInput:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Rejected builds the moderation refusal for the given category.
func Rejected(reason ModerationReason) *PipelineError {
	msg := "Image rejected: Inappropriate content detected"
	switch reason {
	case ReasonWeapons:
		msg = "Image rejected: Weapons detected"
	case ReasonSubstances:
		msg = "Image rejected: Alcohol or drugs detected"
	case ReasonOffensive:
		msg = "Image rejected: Offensive content detected"
	}
	return &PipelineError{Kind: ErrModerationRejected, Reason: reason, Message: msg}
}

func InvalidInput(message string) *PipelineError {
	return &PipelineError{Kind: ErrInvalidInput, Message: message}
}

func Unavailable(service string, err error) *PipelineError {
	return &PipelineError{
		Kind:    ErrUpstreamUnavailable,
		Service: service,
		Message: "Service temporarily unavailable. Please try again.",
		Err:     err,
	}
}

// Malformed records an undecodable upstream reply, keeping a bounded excerpt
// of the raw text for diagnostics. The cut lands on a rune boundary so the
// excerpt stays valid UTF-8.
func Malformed(service, raw string, err error) *PipelineError {
	snippet := raw
	if len(snippet) > maxSnippetLen {
		cut := maxSnippetLen
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut]
	}
	return &PipelineError{
		Kind:    ErrMalformedResponse,
		Service: service,
		Message: "Something went wrong. Please try again.",
		Snippet: snippet,
		Err:     err,
	}
}

func Unconfigured(service string) *PipelineError {
	return &PipelineError{
		Kind:    ErrUnconfigured,
		Service: service,
		Message: "This feature is not configured on the server.",
	}
}

func NotFound(message string) *PipelineError {
	return &PipelineError{Kind: ErrNotFound, Message: message}
}
