package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// true for names the viewer accepts as SubRip documents
func IsSRTFile(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".srt"
}

// reads a local SubRip file through fs and parses it
func OpenFile(fs afero.Fs, path string) ([]Cue, error) {
	if !IsSRTFile(path) {
		return nil, fmt.Errorf("unsupported subtitle format: %s", filepath.Ext(path))
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, NewUpstreamError(fmt.Errorf("failed to read subtitle file: %w", err))
	}
	return Parse(string(data))
}
