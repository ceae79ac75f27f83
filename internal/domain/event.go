package domain

// EventKind identifies one of the closed set of event variants extracted
// from the game client log.
type EventKind string

const (
	KindBag             EventKind = "bag"
	KindContextMarker   EventKind = "context_marker"
	KindLevel           EventKind = "level"
	KindLevelID         EventKind = "level_id"
	KindPlayerData      EventKind = "player_data"
	KindView            EventKind = "view"
	KindContractSetting EventKind = "contract_setting"
)

// Event is a single structured event extracted from one log line.
// Every variant carries the verbatim source line for diagnostics and replay.
// Exactly one event is produced per matched line; lines matching no pattern
// produce no event at all.
type Event interface {
	Kind() EventKind
	Raw() string
}

// BagEvent reports that an inventory slot now holds Num units of item
// ConfigBaseID on page PageID at SlotID. IsInit distinguishes a full
// snapshot line (bag sort/open) from an incremental change.
type BagEvent struct {
	PageID       int
	SlotID       int
	ConfigBaseID int
	Num          int
	IsInit       bool
	RawLine      string
}

func (e BagEvent) Kind() EventKind { return KindBag }
func (e BagEvent) Raw() string     { return e.RawLine }

// ContextMarker brackets a burst of BagEvents caused by one game action
// (e.g. "PickItems"). Consumers use the start/end pair to fold the enclosed
// slot changes into one atomic delta group.
type ContextMarker struct {
	ProtoName string
	IsStart   bool
	RawLine   string
}

func (e ContextMarker) Kind() EventKind { return KindContextMarker }
func (e ContextMarker) Raw() string     { return e.RawLine }

// LevelEvent is a zone/world transition. LevelInfo is the raw path-like
// string from the log; hub vs. map classification of it is a consumer
// concern (see tracker/runs).
type LevelEvent struct {
	EventType string
	LevelInfo string
	RawLine   string
}

func (e LevelEvent) Kind() EventKind { return KindLevel }
func (e LevelEvent) Raw() string     { return e.RawLine }

// LevelIDEvent carries the numeric identity of a zone instance,
// disambiguating zones that share a level path.
type LevelIDEvent struct {
	LevelUID  int
	LevelType int
	LevelID   int
	RawLine   string
}

func (e LevelIDEvent) Kind() EventKind { return KindLevelID }
func (e LevelIDEvent) Raw() string     { return e.RawLine }

// PlayerDataEvent is a player identity snapshot. Any field may be absent;
// zero values mean the field was not present in the line.
type PlayerDataEvent struct {
	Name     string
	Level    int
	SeasonID int
	HeroID   int
	PlayerID int64
	RawLine  string
}

func (e PlayerDataEvent) Kind() EventKind { return KindPlayerData }
func (e PlayerDataEvent) Raw() string     { return e.RawLine }

// ViewEvent reports the currently shown UI view. The textual ViewName, not
// the numeric id, is the stable key consumers use for pause/resume policy:
// numeric view ids shift between client versions, names do not.
type ViewEvent struct {
	ViewID   int
	ViewName string
	RawLine  string
}

func (e ViewEvent) Kind() EventKind { return KindView }
func (e ViewEvent) Raw() string     { return e.RawLine }

// ContractSettingEvent reports that a named contract toggle changed.
type ContractSettingEvent struct {
	ContractName string
	RawLine      string
}

func (e ContractSettingEvent) Kind() EventKind { return KindContractSetting }
func (e ContractSettingEvent) Raw() string     { return e.RawLine }
