package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/protimer/internal/tracker"
	"golang.org/x/sync/errgroup"
)

// run issues a batch's backend calls off the update goroutine. Grouped
// effects report back in one message once all of them have settled.
func (a App) run(b tracker.Batch) tea.Cmd {
	if len(b.Effects) == 0 {
		return nil
	}
	if b.Grouped {
		return a.runGroup(b)
	}
	cmds := make([]tea.Cmd, len(b.Effects))
	for i, e := range b.Effects {
		cmds[i] = a.effectCmd(e, b.Refresh)
	}
	return tea.Batch(cmds...)
}

func (a App) effectCmd(e tracker.Effect, refresh bool) tea.Cmd {
	call := a.call
	return func() tea.Msg {
		return effectsDoneMsg{
			results: []effectResult{{effect: e, err: call(e)}},
			refresh: refresh,
		}
	}
}

func (a App) runGroup(b tracker.Batch) tea.Cmd {
	call := a.call
	return func() tea.Msg {
		results := make([]effectResult, len(b.Effects))
		var g errgroup.Group
		for i, e := range b.Effects {
			g.Go(func() error {
				err := call(e)
				results[i] = effectResult{effect: e, err: err}
				return err
			})
		}
		// Failures are reported per effect in results.
		_ = g.Wait()
		return effectsDoneMsg{results: results, refresh: b.Refresh}
	}
}

func (a App) call(e tracker.Effect) error {
	ctx, cancel := context.WithTimeout(a.ctx, a.opts.FetchTimeout)
	defer cancel()
	if e.Kind == tracker.EffectStart {
		return a.backend.StartTracking(ctx, e.ProjectID)
	}
	return a.backend.StopTracking(ctx, e.ProjectID, e.End)
}
