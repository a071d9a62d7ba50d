package subtitle

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// serializes a cue sequence in one export format
type Writer interface {
	Write(w io.Writer, cues []Cue) error
}

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
}

// indented JSON, same field names as the HTTP endpoint
type JSONWriter struct{}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return &ASSWriter{
			Title:    "Subclock Export",
			FontName: "Arial",
			FontSize: 20,
		}, nil
	case FormatJSON:
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// writes cues keeping their original sequence labels
func (w *SRTWriter) Write(out io.Writer, cues []Cue) error {
	var sb strings.Builder
	for i, cue := range cues {
		sb.WriteString(sequenceLabel(cue, i))
		sb.WriteString("\n")

		// timestamps: 00:00:00,000 --> 00:00:00,000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			MsToTimecode(cue.StartTimeMs),
			MsToTimecode(cue.EndTimeMs)))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

func (w *VTTWriter) Write(out io.Writer, cues []Cue) error {
	var sb strings.Builder

	// VTT header
	sb.WriteString("WEBVTT\n\n")

	for i, cue := range cues {
		// optional cue identifier
		sb.WriteString(sequenceLabel(cue, i))
		sb.WriteString("\n")

		// timestamps: 00:00:00.000 --> 00:00:00.000
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatVTTTime(cue.StartTimeMs),
			formatVTTTime(cue.EndTimeMs)))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

func (w *ASSWriter) Write(out io.Writer, cues []Cue) error {
	var sb strings.Builder

	// script info section
	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", w.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	// v4+ styles section
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize))

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, cue := range cues {
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(cue.StartTimeMs),
			formatASSTime(cue.EndTimeMs),
			escapeASSText(cue.Text)))
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

func (w *JSONWriter) Write(out io.Writer, cues []Cue) error {
	if cues == nil {
		cues = []Cue{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(cues)
}

// blank labels would produce an unparsable block, fall back to position
func sequenceLabel(cue Cue, i int) string {
	if cue.Sequence != "" {
		return cue.Sequence
	}
	return fmt.Sprintf("%d", i+1)
}

func formatVTTTime(ms int64) string {
	return strings.Replace(MsToTimecode(ms), ",", ".", 1)
}

func formatASSTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / msPerHour
	minutes := (ms % msPerHour) / msPerMinute
	seconds := (ms % msPerMinute) / msPerSecond
	centis := (ms % msPerSecond) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\n", "\\N")
	return text
}

// subtitle format based on file extension
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	case ".json":
		return FormatJSON
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	case FormatJSON:
		return ".json"
	default:
		return ".srt"
	}
}
