package tracker

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/torchtrack/torchtrack/internal/domain"
)

// Session is one continuous play period on a single character.
type Session struct {
	ID        string
	Name      string
	HeroID    int
	Level     int
	SeasonID  int
	PlayerID  int64
	Contracts map[string]bool
	StartedAt time.Time
	EndedAt   time.Time
}

// Sessions folds PlayerDataEvent snapshots into session state and detects
// character switches: a new name or hero id on an already-identified
// session closes it and opens a fresh one.
type Sessions struct {
	current   *Session
	completed []Session
	now       func() time.Time
}

// NewSessions creates a session tracker.
func NewSessions() *Sessions {
	return &Sessions{now: time.Now}
}

// Apply folds one event into session state. PlayerDataEvent drives identity
// and switching; ContractSettingEvent toggles a named contract on the
// current session. Everything else is ignored.
func (t *Sessions) Apply(ev domain.Event) {
	switch e := ev.(type) {
	case domain.PlayerDataEvent:
		t.applyPlayerData(e)
	case domain.ContractSettingEvent:
		t.applyContract(e)
	}
}

func (t *Sessions) applyPlayerData(e domain.PlayerDataEvent) {
	if t.current != nil && t.isSwitch(e) {
		log.Info().
			Str("from", t.current.Name).
			Str("to", e.Name).
			Msg("Character switch detected")
		t.closeCurrent()
	}

	if t.current == nil {
		t.current = &Session{
			ID:        uuid.NewString(),
			Contracts: make(map[string]bool),
			StartedAt: t.now(),
		}
	}

	// Snapshots may carry any subset of fields; merge what is present.
	if e.Name != "" {
		t.current.Name = e.Name
	}
	if e.Level != 0 {
		t.current.Level = e.Level
	}
	if e.SeasonID != 0 {
		t.current.SeasonID = e.SeasonID
	}
	if e.HeroID != 0 {
		t.current.HeroID = e.HeroID
	}
	if e.PlayerID != 0 {
		t.current.PlayerID = e.PlayerID
	}
}

func (t *Sessions) isSwitch(e domain.PlayerDataEvent) bool {
	if e.Name != "" && t.current.Name != "" && e.Name != t.current.Name {
		return true
	}
	if e.HeroID != 0 && t.current.HeroID != 0 && e.HeroID != t.current.HeroID {
		return true
	}
	return false
}

func (t *Sessions) applyContract(e domain.ContractSettingEvent) {
	if t.current == nil {
		return
	}
	t.current.Contracts[e.ContractName] = !t.current.Contracts[e.ContractName]
}

func (t *Sessions) closeCurrent() {
	if t.current == nil {
		return
	}
	t.current.EndedAt = t.now()
	t.completed = append(t.completed, *t.current)
	t.current = nil
}

// Current returns the open session, or nil before the first player
// snapshot.
func (t *Sessions) Current() *Session {
	return t.current
}

// DrainCompleted returns closed sessions in order and clears them.
func (t *Sessions) DrainCompleted() []Session {
	sessions := t.completed
	t.completed = nil
	return sessions
}
