package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mgpai22/subclock/internal/media"
	"github.com/mgpai22/subclock/internal/subtitle"
)

// subtitle text embedded in a media container
type MediaSource interface {
	ExtractSubtitles(ctx context.Context, mediaPath string, stream int) (string, error)
}

// fetches document text for a path: SubRip files are read through fs,
// video containers through the media source
type Reader struct {
	fs     afero.Fs
	media  MediaSource
	stream int
}

type ReaderOption func(*Reader)

func WithMediaSource(src MediaSource, stream int) ReaderOption {
	return func(r *Reader) {
		r.media = src
		r.stream = stream
	}
}

func NewReader(fs afero.Fs, opts ...ReaderOption) *Reader {
	r := &Reader{fs: fs}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reader) Read(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch {
	case subtitle.IsSRTFile(path):
		data, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return "", fmt.Errorf("error reading file: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return string(data), nil
	case media.IsVideoFile(path) && r.media != nil:
		return r.media.ExtractSubtitles(ctx, path, r.stream)
	default:
		return "", fmt.Errorf("invalid file type %q: only .srt files are allowed", filepath.Ext(path))
	}
}
