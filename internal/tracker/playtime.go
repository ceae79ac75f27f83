package tracker

import (
	"time"

	"github.com/torchtrack/torchtrack/internal/domain"
)

// defaultPauseViews are the UI views during which the play-time clock stops:
// anything outside an actual play session. Matching is by view name, never
// by numeric view id.
var defaultPauseViews = []string{
	"LoginView",
	"SelectRoleView",
	"CreateRoleView",
	"SettlementView",
}

// PlayTime accumulates active play duration from ViewEvent transitions.
// The clock starts on the first non-pause view and stops while any pause
// view is current.
type PlayTime struct {
	pauseViews  map[string]struct{}
	currentView string
	paused      bool
	started     bool
	since       time.Time
	active      time.Duration
	now         func() time.Time
}

// NewPlayTime creates a play-time tracker. An empty view list selects the
// default pause views.
func NewPlayTime(pauseViews []string) *PlayTime {
	if len(pauseViews) == 0 {
		pauseViews = defaultPauseViews
	}
	views := make(map[string]struct{}, len(pauseViews))
	for _, v := range pauseViews {
		views[v] = struct{}{}
	}
	return &PlayTime{
		pauseViews: views,
		now:        time.Now,
	}
}

// Apply folds one event into timer state. Events other than ViewEvent are
// ignored.
func (p *PlayTime) Apply(ev domain.Event) {
	e, ok := ev.(domain.ViewEvent)
	if !ok {
		return
	}
	p.currentView = e.ViewName
	_, pause := p.pauseViews[e.ViewName]

	switch {
	case !p.started && !pause:
		p.started = true
		p.paused = false
		p.since = p.now()
	case p.started && pause && !p.paused:
		p.active += p.now().Sub(p.since)
		p.paused = true
	case p.started && !pause && p.paused:
		p.paused = false
		p.since = p.now()
	}
}

// Active returns total accumulated play time, including the currently open
// span when the clock is running.
func (p *PlayTime) Active() time.Duration {
	if p.started && !p.paused {
		return p.active + p.now().Sub(p.since)
	}
	return p.active
}

// Paused reports whether the clock is currently stopped.
func (p *PlayTime) Paused() bool {
	return !p.started || p.paused
}

// CurrentView returns the last seen view name.
func (p *PlayTime) CurrentView() string {
	return p.currentView
}
