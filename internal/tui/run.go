package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmsort/internal/organizer"
	"github.com/nikbrunner/bmsort/internal/runctl"
)

// Run starts org.OrganizeAll and shows its progress until the user quits.
// Quitting while the run is active requests a stop and waits for it.
func Run(ctx context.Context, org *organizer.Organizer, opts ...tea.ProgramOption) (*organizer.Summary, error) {
	m := NewModel(Params{Controller: org.Controller()})
	p := tea.NewProgram(m, opts...)

	unsubscribe := org.Controller().Subscribe(func(ev runctl.Event) {
		p.Send(EventMsg(ev))
	})
	defer unsubscribe()

	result := make(chan DoneMsg, 1)
	go func() {
		sum, err := org.OrganizeAll(ctx)
		done := DoneMsg{Summary: sum, Err: err}
		result <- done
		p.Send(done)
	}()

	if _, err := p.Run(); err != nil {
		org.Controller().RequestStop()
		<-result
		return nil, fmt.Errorf("run progress view: %w", err)
	}

	// The view may have been force-quit while a stop was still pending.
	org.Controller().RequestStop()
	done := <-result
	return done.Summary, done.Err
}
