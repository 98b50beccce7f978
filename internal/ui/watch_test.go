package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mediagrab/internal/models"
	"github.com/desertthunder/mediagrab/internal/tasks"
)

// drive feeds the model the messages produced by cmd until the job reports completion.
func drive(t *testing.T, m *WatchModel, cmd tea.Cmd) {
	t.Helper()
	for range 32 {
		msg := cmd()
		_, cmd = m.Update(msg)
		if _, ok := msg.(jobDoneMsg); ok {
			if cmd == nil {
				t.Fatal("expected quit command after completion")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Fatal("expected tea.Quit after completion")
			}
			return
		}
		if cmd == nil {
			t.Fatalf("model stopped waiting after %T", msg)
		}
	}
	t.Fatal("job never completed")
}

func TestWatchModel(t *testing.T) {
	t.Run("Runs Job To Completion", func(t *testing.T) {
		want := &models.Job{ID: "job-1", Status: models.StatusReady}
		run := func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error) {
			progress <- tasks.ProgressUpdate{Phase: tasks.AttemptStrategy, Step: 1, Total: 2, Message: "[1/2] Trying SpotifyDown..."}
			progress <- tasks.ProgressUpdate{Phase: tasks.StrategySucceeded, Step: 1, Total: 2, Message: "[1/2] ✓ SpotifyDown resolved \"Song\""}
			return want, nil
		}

		m := NewWatchModel(context.Background(), PlainPalette(), run)
		drive(t, m, m.start())

		job, err := m.Result()
		if err != nil || job != want {
			t.Fatalf("expected job-1, got %v, %v", job, err)
		}

		view := m.View()
		if !strings.Contains(view, "[1/2] Trying SpotifyDown...\n[1/2] ✓ SpotifyDown resolved") {
			t.Errorf("expected both steps in view, got %q", view)
		}
		if strings.Contains(view, "cancel") {
			t.Errorf("expected help to be hidden once done, got %q", view)
		}
	})

	t.Run("Reports Failure", func(t *testing.T) {
		boom := errors.New("boom")
		m := NewWatchModel(context.Background(), PlainPalette(), func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error) {
			return nil, boom
		})
		drive(t, m, m.start())

		if _, err := m.Result(); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})

	t.Run("Quit Cancels Job", func(t *testing.T) {
		started := make(chan struct{})
		m := NewWatchModel(context.Background(), PlainPalette(), func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.Job, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
		cmd := m.start()
		<-started

		m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if !strings.Contains(m.View(), "Cancelling...") {
			t.Errorf("expected cancelling status, got %q", m.View())
		}

		drive(t, m, cmd)
		if _, err := m.Result(); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Pending View", func(t *testing.T) {
		m := NewWatchModel(context.Background(), PlainPalette(), nil)
		view := m.View()
		if !strings.Contains(view, "Starting...") || !strings.Contains(view, "cancel") {
			t.Errorf("expected spinner line and help, got %q", view)
		}
	})
}
