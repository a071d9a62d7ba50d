package subtitle

import (
	"fmt"
	"regexp"
)

// HH:MM:SS,mmm --> HH:MM:SS,mmm
var timecodeLineRegex = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2}),(\d{3}) --> (\d{2}):(\d{2}):(\d{2}),(\d{3})`,
)

var timecodeRegex = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3})$`)

const (
	msPerHour   = 3_600_000
	msPerMinute = 60_000
	msPerSecond = 1_000
)

// converts a single HH:MM:SS,mmm timecode to milliseconds
func TimecodeToMs(timecode string) (int64, error) {
	m := timecodeRegex.FindStringSubmatch(timecode)
	if m == nil {
		return 0, fmt.Errorf("invalid timecode format: %q", timecode)
	}
	return fieldsToMs(m[1], m[2], m[3], m[4]), nil
}

// formats milliseconds as HH:MM:SS,mmm; negative input is treated as zero
func MsToTimecode(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / msPerHour
	minutes := (ms % msPerHour) / msPerMinute
	seconds := (ms % msPerMinute) / msPerSecond
	millis := ms % msPerSecond

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// extracts start and end from a timecode line; ok is false when the line
// does not carry the arrow grammar
func parseTimecodeLine(line string) (start, end int64, ok bool) {
	m := timecodeLineRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, false
	}
	start = fieldsToMs(m[1], m[2], m[3], m[4])
	end = fieldsToMs(m[5], m[6], m[7], m[8])
	return start, end, true
}

// fields are guaranteed to be ASCII digits by the regex
func fieldsToMs(hours, minutes, seconds, millis string) int64 {
	return digits(hours)*msPerHour +
		digits(minutes)*msPerMinute +
		digits(seconds)*msPerSecond +
		digits(millis)
}

func digits(s string) int64 {
	var n int64
	for i := 0; i < len(s); i++ {
		n = n*10 + int64(s[i]-'0')
	}
	return n
}
