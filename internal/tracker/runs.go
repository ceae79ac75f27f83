package tracker

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/torchtrack/torchtrack/internal/domain"
)

// defaultHubTokens are the zone-name fragments that identify non-combat
// areas (town, hideout, outposts). A level path containing any of them is a
// hub; everything else is a playable map. Numeric view ids and level ids
// shift between client versions, these name fragments do not.
var defaultHubTokens = []string{
	"ZhuChengShi",
	"ChuShengDian",
	"YiZhan",
	"Hideout",
	"MainTown",
}

// Run is one map-run segment: from entering a playable map to returning to
// a hub (or entering a different map).
type Run struct {
	ID        string
	LevelPath string
	ZoneName  string
	LevelUID  int
	LevelType int
	LevelID   int
	StartedAt time.Time
	EndedAt   time.Time
}

// Segmenter folds LevelEvent and LevelIDEvent into map-run boundaries.
type Segmenter struct {
	hubTokens []string
	current   *Run
	completed []Run
	now       func() time.Time
}

// NewSegmenter creates a run segmenter. An empty token list selects the
// default hub zone tokens.
func NewSegmenter(hubTokens []string) *Segmenter {
	if len(hubTokens) == 0 {
		hubTokens = defaultHubTokens
	}
	return &Segmenter{
		hubTokens: hubTokens,
		now:       time.Now,
	}
}

// IsHub reports whether a level path names a non-combat zone, by substring
// containment against the configured zone-name tokens.
func (s *Segmenter) IsHub(levelInfo string) bool {
	for _, token := range s.hubTokens {
		if strings.Contains(levelInfo, token) {
			return true
		}
	}
	return false
}

// Apply folds one event into run state. Events other than LevelEvent and
// LevelIDEvent are ignored.
func (s *Segmenter) Apply(ev domain.Event) {
	switch e := ev.(type) {
	case domain.LevelEvent:
		s.applyLevel(e)
	case domain.LevelIDEvent:
		s.applyLevelID(e)
	}
}

func (s *Segmenter) applyLevel(e domain.LevelEvent) {
	if s.IsHub(e.LevelInfo) {
		s.closeCurrent()
		return
	}

	// Re-entering the level we are already running (e.g. after a death
	// checkpoint reload) does not start a new run.
	if s.current != nil && s.current.LevelPath == e.LevelInfo {
		return
	}

	s.closeCurrent()
	s.current = &Run{
		ID:        uuid.NewString(),
		LevelPath: e.LevelInfo,
		ZoneName:  zoneName(e.LevelInfo),
		StartedAt: s.now(),
	}
	log.Debug().
		Str("run_id", s.current.ID).
		Str("zone", s.current.ZoneName).
		Msg("Run started")
}

func (s *Segmenter) applyLevelID(e domain.LevelIDEvent) {
	if s.current == nil {
		return
	}
	s.current.LevelUID = e.LevelUID
	s.current.LevelType = e.LevelType
	s.current.LevelID = e.LevelID
}

func (s *Segmenter) closeCurrent() {
	if s.current == nil {
		return
	}
	s.current.EndedAt = s.now()
	s.completed = append(s.completed, *s.current)
	log.Debug().
		Str("run_id", s.current.ID).
		Str("zone", s.current.ZoneName).
		Dur("duration", s.current.EndedAt.Sub(s.current.StartedAt)).
		Msg("Run ended")
	s.current = nil
}

// Current returns the open run, or nil when the player is in a hub.
func (s *Segmenter) Current() *Run {
	return s.current
}

// DrainCompleted returns finished runs in order and clears them.
func (s *Segmenter) DrainCompleted() []Run {
	runs := s.completed
	s.completed = nil
	return runs
}

// zoneName extracts the final path segment of a level path.
func zoneName(levelPath string) string {
	if idx := strings.LastIndex(levelPath, "/"); idx >= 0 {
		return levelPath[idx+1:]
	}
	return levelPath
}
