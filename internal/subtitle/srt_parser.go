package subtitle

import (
	"fmt"
	"io"
	"strings"
)

// why a block was dropped from the output
type SkipReason string

const (
	SkipTooFewLines     SkipReason = "too few lines"
	SkipInvalidTimecode SkipReason = "invalid timecode"
)

type SkippedBlock struct {
	// zero-based block position in the document
	Index  int
	Reason SkipReason
	Block  string
}

// result of a permissive parse; malformed blocks never abort the document
type Report struct {
	Cues    []Cue
	Skipped []SkippedBlock
	// true when the document held nothing but whitespace
	Blank bool
}

// Parse converts raw SubRip text into cues in document order.
//
// Blocks that do not match the grammar are skipped. The call only fails
// when a non-blank document yields zero cues.
func Parse(raw string) ([]Cue, error) {
	return ParseReport(raw).Result()
}

// applies the empty-document rule to a report
func (r Report) Result() ([]Cue, error) {
	if len(r.Cues) == 0 && !r.Blank {
		return nil, newEmptyOrInvalid()
	}
	return r.Cues, nil
}

// reads the whole document from a request body, upload or pipe and
// parses it with the same rules as Parse
func ParseReader(r io.Reader) ([]Cue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, NewUpstreamError(fmt.Errorf("error reading subtitles: %w", err))
	}
	return Parse(string(data))
}

func ParseReport(raw string) Report {
	raw = strings.TrimPrefix(raw, "\ufeff")
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	trimmed := strings.TrimSpace(normalized)
	report := Report{
		Cues:  []Cue{},
		Blank: trimmed == "",
	}
	if report.Blank {
		return report
	}

	for i, block := range strings.Split(trimmed, "\n\n") {
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			if strings.TrimSpace(block) != "" {
				report.Skipped = append(report.Skipped, SkippedBlock{
					Index:  i,
					Reason: SkipTooFewLines,
					Block:  block,
				})
			}
			continue
		}

		start, end, ok := parseTimecodeLine(lines[1])
		if !ok {
			report.Skipped = append(report.Skipped, SkippedBlock{
				Index:  i,
				Reason: SkipInvalidTimecode,
				Block:  block,
			})
			continue
		}

		report.Cues = append(report.Cues, Cue{
			Sequence:    strings.TrimSpace(lines[0]),
			StartTimeMs: start,
			EndTimeMs:   end,
			Text:        strings.TrimSpace(strings.Join(lines[2:], "\n")),
		})
	}

	return report
}
