package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnreadableJobDescription = errors.New("could not extract text from job description")
	ErrInvalidArchive           = errors.New("invalid resume archive")
	ErrEmptyResponse            = errors.New("empty response from model")
)

// LLMCallError wraps a failed model call.
type LLMCallError struct {
	Message string
	Cause   error
}

func (e *LLMCallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LLM call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("LLM call failed: %s", e.Message)
}

func (e *LLMCallError) Unwrap() error {
	return e.Cause
}

// ParseError means the model answered but the payload could not be used.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ErrorKind classifies a per-candidate soft failure.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindExtraction ErrorKind = "extraction"
	KindLLM        ErrorKind = "llm"
	KindParse      ErrorKind = "parse"
	KindValidation ErrorKind = "validation"
	KindEmbedding  ErrorKind = "embedding"
)

// KindOf maps an error onto its ErrorKind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var llmErr *LLMCallError
	if errors.As(err, &llmErr) {
		return KindLLM
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return KindParse
	}
	return KindValidation
}

// CandidateOutcome carries a per-candidate value together with the soft
// failure that produced it, if any. Value always holds a usable fallback.
type CandidateOutcome[T any] struct {
	Ref   string
	Value T
	Err   error
	Kind  ErrorKind
}

func (o CandidateOutcome[T]) Failed() bool {
	return o.Err != nil
}

func succeeded[T any](ref string, v T) CandidateOutcome[T] {
	return CandidateOutcome[T]{Ref: ref, Value: v}
}

func degraded[T any](ref string, fallback T, err error) CandidateOutcome[T] {
	return CandidateOutcome[T]{Ref: ref, Value: fallback, Err: err, Kind: KindOf(err)}
}
