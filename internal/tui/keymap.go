package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keymap struct {
	playPause, back, forward, restart, reload,
	quit, forceQuit,
	showHelp key.Binding
}

func newKeymap() keymap {
	return keymap{
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "back"),
		),
		forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "forward"),
		),
		restart: key.NewBinding(
			key.WithKeys("home", "0"),
			key.WithHelp("home", "restart"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.back, k.forward, k.quit, k.showHelp}
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.back, k.forward, k.restart},
		{k.reload, k.showHelp, k.quit, k.forceQuit},
	}
}
