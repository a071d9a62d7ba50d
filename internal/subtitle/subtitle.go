package subtitle

import (
	"errors"
	"fmt"
	"strings"
)

// single timed subtitle entry
type Cue struct {
	// label as it appeared in the source; not required to be numeric
	Sequence    string `json:"sequence"`
	StartTimeMs int64  `json:"startTime"`
	EndTimeMs   int64  `json:"endTime"`
	Text        string `json:"text"`
}

func (c Cue) DurationMs() int64 {
	return c.EndTimeMs - c.StartTimeMs
}

// represents supported export formats
type Format string

const (
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatASS  Format = "ass"
	FormatJSON Format = "json"
)

// classifies a failed parse or load
type ErrorKind string

const (
	// non-empty input produced zero cues
	EmptyOrInvalidFormat ErrorKind = "EmptyOrInvalidFormat"
	// the text never reached the parser (upload, read or transport failure)
	UpstreamIOFailure ErrorKind = "UpstreamIOFailure"
)

const emptyOrInvalidMessage = "could not parse subtitles: the file might be empty or in an invalid SRT format"

type ParseError struct {
	Kind        ErrorKind
	Diagnostics []string
}

func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 0 {
		return string(e.Kind)
	}
	return strings.Join(e.Diagnostics, "; ")
}

func newEmptyOrInvalid() *ParseError {
	return &ParseError{
		Kind:        EmptyOrInvalidFormat,
		Diagnostics: []string{emptyOrInvalidMessage},
	}
}

// wraps a collaborator failure so it can be surfaced verbatim
func NewUpstreamError(err error) *ParseError {
	return &ParseError{
		Kind:        UpstreamIOFailure,
		Diagnostics: []string{err.Error()},
	}
}

func IsEmptyOrInvalid(err error) bool {
	return kindOf(err) == EmptyOrInvalidFormat
}

func IsUpstream(err error) bool {
	return kindOf(err) == UpstreamIOFailure
}

func kindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// flattens any error into the diagnostics list shown to users
func Diagnostics(err error) []string {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if errors.As(err, &pe) && len(pe.Diagnostics) > 0 {
		return append([]string(nil), pe.Diagnostics...)
	}
	return []string{fmt.Sprint(err)}
}
