package tracker

import (
	"github.com/rs/zerolog/log"

	"github.com/torchtrack/torchtrack/internal/domain"
)

// Slot is the current content of one inventory slot.
type Slot struct {
	ConfigBaseID int
	Num          int
}

// ItemChange is one item-quantity movement inside a delta group.
type ItemChange struct {
	ConfigBaseID int
	Delta        int
}

// ItemDelta is an atomic group of item changes caused by one game action.
// ProtoName is the action that produced the group (e.g. "PickItems"); it is
// empty for slot changes that arrived outside any ItemChange bracket.
type ItemDelta struct {
	ProtoName string
	Changes   []ItemChange
}

// Inventory folds BagEvents into current per-page slot state and groups the
// resulting quantity deltas by ContextMarker brackets. Init snapshots
// replace page state without emitting deltas, since they restate what is
// already held rather than reporting a change.
type Inventory struct {
	pages     map[int]map[int]Slot
	snapshot  map[int]bool
	pending   *deltaGroup
	completed []ItemDelta
}

type deltaGroup struct {
	proto   string
	changes map[int]int
	order   []int
}

// NewInventory creates an empty inventory tracker.
func NewInventory() *Inventory {
	return &Inventory{
		pages:    make(map[int]map[int]Slot),
		snapshot: make(map[int]bool),
	}
}

// Apply folds one event into inventory state. Events other than BagEvent
// and ContextMarker are ignored.
func (inv *Inventory) Apply(ev domain.Event) {
	switch e := ev.(type) {
	case domain.ContextMarker:
		inv.applyMarker(e)
	case domain.BagEvent:
		inv.applyBag(e)
	}
}

func (inv *Inventory) applyMarker(m domain.ContextMarker) {
	if m.IsStart {
		if inv.pending != nil {
			// The client never nests brackets; an unclosed group means
			// the end marker was lost. Flush it rather than drop it.
			log.Debug().
				Str("proto", inv.pending.proto).
				Msg("Item change group never closed, flushing before new group")
			inv.flushPending()
		}
		inv.pending = &deltaGroup{
			proto:   m.ProtoName,
			changes: make(map[int]int),
		}
		return
	}
	inv.flushPending()
}

func (inv *Inventory) flushPending() {
	if inv.pending == nil {
		return
	}
	group := inv.pending
	inv.pending = nil
	if len(group.order) == 0 {
		return
	}

	delta := ItemDelta{ProtoName: group.proto}
	for _, configID := range group.order {
		if d := group.changes[configID]; d != 0 {
			delta.Changes = append(delta.Changes, ItemChange{ConfigBaseID: configID, Delta: d})
		}
	}
	if len(delta.Changes) > 0 {
		inv.completed = append(inv.completed, delta)
	}
}

func (inv *Inventory) applyBag(e domain.BagEvent) {
	if e.IsInit {
		// The first init line of a snapshot generation replaces the
		// whole page: slots the client no longer reports are gone, and
		// keeping them would leave phantom items after a bag sort.
		if !inv.snapshot[e.PageID] {
			inv.pages[e.PageID] = make(map[int]Slot)
			inv.snapshot[e.PageID] = true
		}
		inv.pages[e.PageID][e.SlotID] = Slot{ConfigBaseID: e.ConfigBaseID, Num: e.Num}
		return
	}

	// A normal change means the snapshot burst for this page is over.
	delete(inv.snapshot, e.PageID)

	page := inv.pages[e.PageID]
	if page == nil {
		page = make(map[int]Slot)
		inv.pages[e.PageID] = page
	}
	prev := page[e.SlotID]
	page[e.SlotID] = Slot{ConfigBaseID: e.ConfigBaseID, Num: e.Num}

	// When the slot changes item type, the old item left the slot and the
	// new one arrived: two movements, not one.
	if prev.ConfigBaseID != 0 && prev.ConfigBaseID != e.ConfigBaseID {
		inv.recordChange(prev.ConfigBaseID, -prev.Num)
		inv.recordChange(e.ConfigBaseID, e.Num)
		return
	}
	inv.recordChange(e.ConfigBaseID, e.Num-prev.Num)
}

func (inv *Inventory) recordChange(configID, delta int) {
	if delta == 0 {
		return
	}
	if inv.pending != nil {
		if _, seen := inv.pending.changes[configID]; !seen {
			inv.pending.order = append(inv.pending.order, configID)
		}
		inv.pending.changes[configID] += delta
		return
	}
	// Ungrouped change: emit as its own single-change group.
	inv.completed = append(inv.completed, ItemDelta{
		Changes: []ItemChange{{ConfigBaseID: configID, Delta: delta}},
	})
}

// EndBurst marks the end of one read burst. Init lines of a snapshot arrive
// contiguously within a burst, so any snapshot generation still open when
// the burst ends is complete; a later init for the same page starts a fresh
// snapshot and replaces the page again.
func (inv *Inventory) EndBurst() {
	for pageID := range inv.snapshot {
		delete(inv.snapshot, pageID)
	}
}

// Quantity returns the current total count of an item across all pages.
func (inv *Inventory) Quantity(configID int) int {
	total := 0
	for _, page := range inv.pages {
		for _, slot := range page {
			if slot.ConfigBaseID == configID {
				total += slot.Num
			}
		}
	}
	return total
}

// Quantities returns current totals for every held item, keyed by
// ConfigBaseID. This is the price-calculation input view.
func (inv *Inventory) Quantities() map[int]int {
	totals := make(map[int]int)
	for _, page := range inv.pages {
		for _, slot := range page {
			if slot.ConfigBaseID != 0 && slot.Num != 0 {
				totals[slot.ConfigBaseID] += slot.Num
			}
		}
	}
	return totals
}

// DrainDeltas returns completed delta groups in arrival order and clears
// them from the tracker.
func (inv *Inventory) DrainDeltas() []ItemDelta {
	deltas := inv.completed
	inv.completed = nil
	return deltas
}
