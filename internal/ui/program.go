package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yourusername/kubmonitor/internal/dashboard"
	"github.com/yourusername/kubmonitor/internal/input"
	"go.uber.org/zap"
)

const defaultTickInterval = 100 * time.Millisecond

// Stepper is the part of dashboard.Controller the drivers need
type Stepper interface {
	Step(ctx context.Context, cmd input.Command, now time.Time) (dashboard.ViewModel, bool)
	SetViewport(listHeight, logHeight int)
}

// Model is the bubbletea front end. Key messages are buffered between
// ticks; each tick resolves the burst into one command and steps the
// controller once.
type Model struct {
	ctx      context.Context
	ctrl     Stepper
	renderer *Renderer
	keys     input.KeyMap
	logger   *zap.Logger
	interval time.Duration

	pending  []input.Command
	vm       dashboard.ViewModel
	stepped  bool
	quitting bool
}

// NewModel creates the bubbletea model around a controller
func NewModel(ctx context.Context, ctrl Stepper, renderer *Renderer, interval time.Duration, logger *zap.Logger) *Model {
	if interval <= 0 {
		interval = defaultTickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		ctx:      ctx,
		ctrl:     ctrl,
		renderer: renderer,
		keys:     input.DefaultKeyMap(),
		logger:   logger,
		interval: interval,
	}
}

type tickMsg time.Time

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init steps once right away so the first frame has data
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		return tickMsg(time.Now())
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.renderer.SetSize(msg.Width, msg.Height)
		m.ctrl.SetViewport(m.renderer.Viewport())
		return m, nil

	case tea.KeyMsg:
		if cmd := m.keys.Command(msg); cmd != input.None {
			m.pending = append(m.pending, cmd)
		}
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		if err := m.ctx.Err(); err != nil {
			m.logger.Info("Context cancelled, stopping", zap.Error(err))
			m.quitting = true
			return m, tea.Quit
		}

		cmd := input.Latest(m.pending)
		m.pending = m.pending[:0]
		vm, running := m.ctrl.Step(m.ctx, cmd, time.Time(msg))
		if !running {
			m.quitting = true
			return m, tea.Quit
		}
		m.vm = vm
		m.stepped = true
		return m, m.tick()
	}
	return m, nil
}

// View renders the latest view model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.stepped {
		return StyleTextMuted.Render(m.renderer.T("header.never"))
	}
	return m.renderer.Render(m.vm)
}

// Quitting reports whether the user has quit
func (m *Model) Quitting() bool {
	return m.quitting
}

// RunProgram runs the bubbletea front end until the user quits or ctx is done
func RunProgram(ctx context.Context, ctrl Stepper, renderer *Renderer, interval time.Duration, logger *zap.Logger) error {
	m := NewModel(ctx, ctrl, renderer, interval, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
