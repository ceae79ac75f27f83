package gamelog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/torchtrack/torchtrack/internal/domain"
)

// A recognizer inspects one already-stripped log line and either commits to
// producing its event or reports no match. Recognizers never partially
// match: a malformed field simply fails the recognizer and the line falls
// through to the next candidate.
type recognizer func(line string) (domain.Event, bool)

// recognizers is the fixed classification order. Each pattern keys off a
// unique literal marker token, so the patterns are structurally disjoint and
// the order is a safety net rather than a semantic dependency.
var recognizers = []recognizer{
	matchBagModify,
	matchBagInit,
	matchContextMarker,
	matchLevel,
	matchLevelID,
	matchPlayerData,
	matchView,
	matchContractSetting,
}

// Classify returns the event extracted from line, or nil when no pattern
// matches. Unknown lines are expected noise from unrelated game subsystems,
// so a nil result is not an error and is not logged.
func Classify(line string) domain.Event {
	for _, match := range recognizers {
		if ev, ok := match(line); ok {
			return ev
		}
	}
	return nil
}

var (
	bagModifyRe = regexp.MustCompile(`BagMgr@:Modfy\s+BagItem\s+PageId\s*=\s*(\d+)\s+SlotId\s*=\s*(\d+)\s+ConfigBaseId\s*=\s*(\d+)\s+Num\s*=\s*(\d+)`)
	bagInitRe   = regexp.MustCompile(`BagMgr@:InitBagData\s+PageId\s*=\s*(\d+)\s+SlotId\s*=\s*(\d+)\s+ConfigBaseId\s*=\s*(\d+)\s+Num\s*=\s*(\d+)`)
	contextRe   = regexp.MustCompile(`ItemChange@\s+ProtoName=(\w+)\s+(start|end)\s*$`)
	levelRe     = regexp.MustCompile(`SceneLevelMgr@\s+(\w+)\s+END!\s+InMainLevelPath\s*=\s*(.+)$`)
	levelIDRe   = regexp.MustCompile(`LevelMgr@\s.*?LevelUid\s*=\s*(\d+)\s+LevelType\s*=\s*(\d+)\s+LevelId\s*=\s*(\d+)`)
	viewRe      = regexp.MustCompile(`CurRunView\s*=?\s*(\d+)_(\w+)`)
	contractRe  = regexp.MustCompile(`ContractMgr@\s.*?ContractName\s*=\s*(\S+)`)

	playerMarker   = "PlayerDataMgr@"
	playerNameRe   = regexp.MustCompile(`\bName\s*=\s*(\S+)`)
	playerLevelRe  = regexp.MustCompile(`\bLevel\s*=\s*(\d+)`)
	playerSeasonRe = regexp.MustCompile(`\bSeasonId\s*=\s*(\d+)`)
	playerHeroRe   = regexp.MustCompile(`\bHeroId\s*=\s*(\d+)`)
	playerIDRe     = regexp.MustCompile(`\bPlayerId\s*=\s*(\d+)`)
)

func matchBagModify(line string) (domain.Event, bool) {
	return matchBag(bagModifyRe, line, false)
}

func matchBagInit(line string) (domain.Event, bool) {
	return matchBag(bagInitRe, line, true)
}

func matchBag(re *regexp.Regexp, line string, isInit bool) (domain.Event, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	page, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	slot, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false
	}
	config, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, false
	}
	num, err := strconv.Atoi(m[4])
	if err != nil {
		return nil, false
	}
	return domain.BagEvent{
		PageID:       page,
		SlotID:       slot,
		ConfigBaseID: config,
		Num:          num,
		IsInit:       isInit,
		RawLine:      line,
	}, true
}

func matchContextMarker(line string) (domain.Event, bool) {
	m := contextRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return domain.ContextMarker{
		ProtoName: m[1],
		IsStart:   m[2] == "start",
		RawLine:   line,
	}, true
}

func matchLevel(line string) (domain.Event, bool) {
	m := levelRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return domain.LevelEvent{
		EventType: m[1],
		LevelInfo: strings.TrimSpace(m[2]),
		RawLine:   line,
	}, true
}

func matchLevelID(line string) (domain.Event, bool) {
	m := levelIDRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	uid, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	typ, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false
	}
	id, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, false
	}
	return domain.LevelIDEvent{
		LevelUID:  uid,
		LevelType: typ,
		LevelID:   id,
		RawLine:   line,
	}, true
}

// matchPlayerData is deliberately more permissive than the other
// recognizers: the client logs player identity with whatever subset of
// fields it has at that moment, so each field is scanned independently.
// A marker line carrying none of the known fields yields no event.
func matchPlayerData(line string) (domain.Event, bool) {
	idx := strings.Index(line, playerMarker)
	if idx < 0 {
		return nil, false
	}
	rest := line[idx+len(playerMarker):]

	ev := domain.PlayerDataEvent{RawLine: line}
	found := false

	if m := playerNameRe.FindStringSubmatch(rest); m != nil {
		ev.Name = m[1]
		found = true
	}
	if m := playerLevelRe.FindStringSubmatch(rest); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			ev.Level = v
			found = true
		}
	}
	if m := playerSeasonRe.FindStringSubmatch(rest); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			ev.SeasonID = v
			found = true
		}
	}
	if m := playerHeroRe.FindStringSubmatch(rest); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			ev.HeroID = v
			found = true
		}
	}
	if m := playerIDRe.FindStringSubmatch(rest); m != nil {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			ev.PlayerID = v
			found = true
		}
	}

	if !found {
		return nil, false
	}
	return ev, true
}

func matchView(line string) (domain.Event, bool) {
	m := viewRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	return domain.ViewEvent{
		ViewID:   id,
		ViewName: m[2],
		RawLine:  line,
	}, true
}

func matchContractSetting(line string) (domain.Event, bool) {
	m := contractRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	return domain.ContractSettingEvent{
		ContractName: m[1],
		RawLine:      line,
	}, true
}
