package media

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// ErrFFmpegNotFound is returned when no ffmpeg/ffprobe pair could be located.
var ErrFFmpegNotFound = errors.New("ffmpeg and ffprobe not found: install them or set media.ffmpeg_path and media.ffprobe_path")

// resolves binaries once per locator: configured paths first, then PATH
type locator struct {
	ffmpeg  string
	ffprobe string

	lookPath func(string) (string, error)

	once  sync.Once
	paths BinaryPaths
	err   error
}

func newLocator(ffmpegPath, ffprobePath string) *locator {
	return &locator{
		ffmpeg:   ffmpegPath,
		ffprobe:  ffprobePath,
		lookPath: exec.LookPath,
	}
}

func (l *locator) Ensure() (BinaryPaths, error) {
	l.once.Do(func() {
		l.paths, l.err = l.ensure()
	})
	return l.paths, l.err
}

func (l *locator) ensure() (BinaryPaths, error) {
	ffmpegPath, err := l.resolve(l.ffmpeg, "ffmpeg")
	if err != nil {
		return BinaryPaths{}, err
	}
	ffprobePath, err := l.resolve(l.ffprobe, "ffprobe")
	if err != nil {
		return BinaryPaths{}, err
	}
	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

func (l *locator) resolve(configured, name string) (string, error) {
	if configured != "" {
		if !fileExists(configured) {
			return "", fmt.Errorf("configured %s binary not found: %s", name, configured)
		}
		return configured, nil
	}
	found, err := l.lookPath(name)
	if err != nil {
		return "", ErrFFmpegNotFound
	}
	return found, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
