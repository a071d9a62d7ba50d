package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgpai22/subclock/internal/config"
	"github.com/mgpai22/subclock/internal/logging"
	"github.com/mgpai22/subclock/internal/playback"
	"github.com/mgpai22/subclock/internal/session"
	"github.com/mgpai22/subclock/internal/subtitle"
)

type tickMsg time.Time

// result of an asynchronous load
type loadedMsg struct {
	result session.LoadResult
	err    error
}

type model struct {
	ctx     context.Context
	path    string
	session *session.Session
	reader  *session.Reader
	player  config.PlayerConfig
	logger  *logging.Logger

	keymap   keymap
	help     help.Model
	progress progress.Model

	width, height int

	snap    playback.Snapshot
	cues    []subtitle.Cue
	loading bool
	status  string
	err     error
}

func newModel(ctx context.Context, opts Options) *model {
	player := opts.Player
	defaults := config.Default().Player
	if player.Tick <= 0 {
		player.Tick = defaults.Tick
	}
	if player.SeekStep <= 0 {
		player.SeekStep = defaults.SeekStep
	}
	if player.VisibleCues <= 0 {
		player.VisibleCues = defaults.VisibleCues
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	m := &model{
		ctx:      ctx,
		path:     opts.Path,
		session:  opts.Session,
		reader:   opts.Reader,
		player:   player,
		logger:   logger,
		keymap:   newKeymap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.progress.Width = 40
	m.snap = m.engine().Snapshot()
	return m
}

func (m *model) engine() *playback.Engine {
	return m.session.Engine()
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m *model) tick() tea.Cmd {
	return tea.Tick(m.player.Tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// load begins a new load attempt synchronously so any attempt still in
// flight is superseded before the read starts
func (m *model) load() tea.Cmd {
	ticket, ctx := m.session.Begin(m.ctx)
	m.loading = true
	m.status = "Loading " + m.path
	path, reader, sess := m.path, m.reader, m.session

	return func() tea.Msg {
		text, err := reader.Read(ctx, path)
		result, err := sess.Complete(ticket, path, text, err)
		return loadedMsg{result: result, err: err}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.snap = m.engine().Tick()
		return m, m.tick()
	case loadedMsg:
		m.handleLoaded(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleLoaded(msg loadedMsg) {
	if errors.Is(msg.err, session.ErrSuperseded) {
		return
	}
	m.loading = false
	if msg.err != nil {
		m.logger.Debugw("Load failed", "path", m.path, "error", msg.err)
		m.err = msg.err
		m.status = ""
		return
	}

	m.err = nil
	m.cues = m.engine().Cues()
	m.snap = m.engine().Tick()
	switch {
	case !msg.result.Loaded:
		m.status = "Nothing to play"
	case msg.result.Skipped > 0:
		m.status = pluralize(msg.result.Skipped, "block", "blocks") + " skipped"
	default:
		m.status = ""
	}
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	engine := m.engine()
	step := m.player.SeekStep.Milliseconds()

	switch {
	case key.Matches(msg, m.keymap.forceQuit), key.Matches(msg, m.keymap.quit):
		return tea.Quit
	case key.Matches(msg, m.keymap.showHelp):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keymap.reload):
		return m.load()
	case key.Matches(msg, m.keymap.playPause):
		if engine.IsPlaying() {
			engine.Pause()
		} else {
			engine.Play()
		}
	case key.Matches(msg, m.keymap.back):
		playback.Scrub(engine, engine.CurrentElapsedMs()-step)
	case key.Matches(msg, m.keymap.forward):
		playback.Scrub(engine, engine.CurrentElapsedMs()+step)
	case key.Matches(msg, m.keymap.restart):
		playback.Scrub(engine, 0)
	default:
		return nil
	}

	m.snap = engine.Tick()
	return nil
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	// room for the "HH:MM:SS,mmm / HH:MM:SS,mmm" label
	barWidth := width - 2*horizontalPadding - len(" 00:00:00,000 / 00:00:00,000")
	if barWidth < 10 {
		barWidth = 10
	}
	m.progress.Width = barWidth
}
