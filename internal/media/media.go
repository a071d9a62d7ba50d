// Package media pulls embedded subtitle streams out of media containers so
// they can be fed to the SubRip parser like any other loaded document.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subclock/internal/config"
)

// one subtitle stream as reported by ffprobe
type Stream struct {
	// position among subtitle streams, as used by the 0:s:N selector
	Index    int    `json:"index"`
	Codec    string `json:"codec"`
	Language string `json:"language,omitempty"`
	Title    string `json:"title,omitempty"`
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecName string            `json:"codec_name"`
		Tags      map[string]string `json:"tags"`
	} `json:"streams"`
}

type Extractor struct {
	bins *locator
}

func NewExtractor(cfg config.MediaConfig) *Extractor {
	return &Extractor{
		bins: newLocator(cfg.FFmpegPath, cfg.FFprobePath),
	}
}

// lists the subtitle streams of a media container
func (x *Extractor) ListSubtitleStreams(ctx context.Context, mediaPath string) ([]Stream, error) {
	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("media file not found: %s", mediaPath)
	}

	paths, err := x.bins.Ensure()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, paths.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "s",
		mediaPath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeOutput(out.Bytes())
}

func parseProbeOutput(data []byte) ([]Stream, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	streams := make([]Stream, 0, len(probe.Streams))
	for i, s := range probe.Streams {
		streams = append(streams, Stream{
			Index:    i,
			Codec:    s.CodecName,
			Language: s.Tags["language"],
			Title:    s.Tags["title"],
		})
	}
	return streams, nil
}

// converts subtitle stream N of mediaPath to SubRip text
func (x *Extractor) ExtractSubtitles(ctx context.Context, mediaPath string, stream int) (string, error) {
	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return "", fmt.Errorf("media file not found: %s", mediaPath)
	}
	if stream < 0 {
		return "", fmt.Errorf("invalid subtitle stream index %d", stream)
	}

	paths, err := x.bins.Ensure()
	if err != nil {
		return "", err
	}

	cmd := ffmpeg.Input(mediaPath).
		Output("pipe:", subtitleKwArgs(stream)).
		SetFfmpegPath(paths.FFmpeg).
		Compile()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := runContext(ctx, cmd); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("ffmpeg subtitle extraction failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("ffmpeg subtitle extraction failed: %w", err)
	}

	return stdout.String(), nil
}

func subtitleKwArgs(stream int) ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"map":      fmt.Sprintf("0:s:%d", stream),
		"f":        "srt",
		"loglevel": "error",
	}
}

// starts cmd and kills it if ctx ends first
func runContext(ctx context.Context, cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
		".ts":   true,
	}
	return videoExts[ext]
}
