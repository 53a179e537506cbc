package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/kubmonitor/internal/input"
	"go.uber.org/zap"
)

// Screen is a raw terminal the plain loop reads bytes from and draws on
type Screen interface {
	Drain() []byte
	Err() error
	Size() (int, int, error)
	Render(frame string, height int) error
}

// RunPlain drives the controller with a single cooperative loop: drain
// input, decode one command, step, render, sleep. It returns nil when the
// user quits or ctx is done.
func RunPlain(ctx context.Context, ctrl Stepper, screen Screen, renderer *Renderer, poll time.Duration, logger *zap.Logger) error {
	if poll <= 0 {
		poll = defaultTickInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	width, height := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			logger.Info("Context cancelled, stopping", zap.Error(err))
			return nil
		}
		if err := screen.Err(); err != nil {
			return fmt.Errorf("reading terminal input: %w", err)
		}

		if w, h, err := screen.Size(); err == nil && (w != width || h != height) {
			width, height = w, h
			renderer.SetSize(w, h)
			ctrl.SetViewport(renderer.Viewport())
			logger.Debug("Terminal resized", zap.Int("width", w), zap.Int("height", h))
		}

		cmd := input.Decode(screen.Drain())
		vm, running := ctrl.Step(ctx, cmd, time.Now())
		if !running {
			return nil
		}

		_, rows := renderer.Size()
		if err := screen.Render(renderer.Render(vm), rows); err != nil {
			return fmt.Errorf("drawing frame: %w", err)
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}
