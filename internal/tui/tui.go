// Package tui renders a playback session in the terminal: a cue list centered
// on the active cue, a seek bar and transport keys, refreshed every tick.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgpai22/subclock/internal/config"
	"github.com/mgpai22/subclock/internal/logging"
	"github.com/mgpai22/subclock/internal/session"
)

type Options struct {
	Path    string
	Session *session.Session
	Reader  *session.Reader
	Player  config.PlayerConfig
	Logger  *logging.Logger
}

// Run loads opts.Path into the session and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := newModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
