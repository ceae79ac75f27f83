package tracker

import (
	"testing"

	"github.com/torchtrack/torchtrack/internal/domain"
)

func bag(page, slot, config, num int, init bool) domain.BagEvent {
	return domain.BagEvent{PageID: page, SlotID: slot, ConfigBaseID: config, Num: num, IsInit: init}
}

func marker(proto string, start bool) domain.ContextMarker {
	return domain.ContextMarker{ProtoName: proto, IsStart: start}
}

func TestInventoryGroupsDeltasByContext(t *testing.T) {
	inv := NewInventory()

	inv.Apply(marker("PickItems", true))
	inv.Apply(bag(102, 0, 100300, 671, false))
	inv.Apply(bag(102, 1, 6153, 14, false))
	inv.Apply(bag(102, 0, 100300, 700, false))
	inv.Apply(marker("PickItems", false))

	deltas := inv.DrainDeltas()
	if len(deltas) != 1 {
		t.Fatalf("expected 1 delta group, got %d", len(deltas))
	}
	group := deltas[0]
	if group.ProtoName != "PickItems" {
		t.Errorf("expected proto PickItems, got %s", group.ProtoName)
	}
	if len(group.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %+v", group.Changes)
	}
	// 671 into an empty slot, then 671 -> 700 in the same slot: net 700.
	if group.Changes[0] != (ItemChange{ConfigBaseID: 100300, Delta: 700}) {
		t.Errorf("unexpected first change %+v", group.Changes[0])
	}
	if group.Changes[1] != (ItemChange{ConfigBaseID: 6153, Delta: 14}) {
		t.Errorf("unexpected second change %+v", group.Changes[1])
	}

	if inv.Quantity(100300) != 700 {
		t.Errorf("expected 700 units of 100300, got %d", inv.Quantity(100300))
	}
}

func TestInventoryInitSnapshotEmitsNoDeltas(t *testing.T) {
	inv := NewInventory()

	inv.Apply(bag(103, 57, 6153, 14, true))
	inv.Apply(bag(103, 58, 220045, 3, true))

	if deltas := inv.DrainDeltas(); len(deltas) != 0 {
		t.Errorf("init snapshot must not emit deltas, got %+v", deltas)
	}
	if inv.Quantity(6153) != 14 || inv.Quantity(220045) != 3 {
		t.Errorf("snapshot must still set state: %+v", inv.Quantities())
	}
}

func TestInventorySnapshotReplacesPageState(t *testing.T) {
	inv := NewInventory()

	inv.Apply(bag(102, 0, 100300, 10, true))
	inv.EndBurst()

	// Next burst: the client restates the page without slot 0. The old
	// item must be gone, not linger at its pre-sort quantity.
	inv.Apply(bag(102, 1, 6153, 5, true))
	inv.EndBurst()

	if got := inv.Quantity(100300); got != 0 {
		t.Errorf("expected item dropped from snapshot to read 0, got %d", got)
	}
	if got := inv.Quantity(6153); got != 5 {
		t.Errorf("expected 5 units of 6153, got %d", got)
	}
	if deltas := inv.DrainDeltas(); len(deltas) != 0 {
		t.Errorf("snapshot replacement must not emit deltas, got %+v", deltas)
	}
}

func TestInventoryContiguousInitsAccumulate(t *testing.T) {
	inv := NewInventory()

	// One snapshot generation: every init line within the burst adds to
	// the same page, only the first one clears it.
	inv.Apply(bag(103, 57, 6153, 14, true))
	inv.Apply(bag(103, 58, 220045, 3, true))
	inv.Apply(bag(103, 59, 6153, 6, true))

	if got := inv.Quantity(6153); got != 20 {
		t.Errorf("expected 20 units across slots, got %d", got)
	}
	if got := inv.Quantity(220045); got != 3 {
		t.Errorf("expected 3 units of 220045, got %d", got)
	}
}

func TestInventoryInitAfterChangeStartsFreshSnapshot(t *testing.T) {
	inv := NewInventory()

	inv.Apply(bag(102, 0, 100300, 10, true))
	// A normal change closes the snapshot generation; the next init is a
	// fresh snapshot and replaces the page even within the same burst.
	inv.Apply(bag(102, 1, 6153, 2, false))
	inv.DrainDeltas()
	inv.Apply(bag(102, 2, 220045, 1, true))

	if got := inv.Quantity(100300); got != 0 {
		t.Errorf("expected pre-snapshot item gone, got %d", got)
	}
	if got := inv.Quantity(220045); got != 1 {
		t.Errorf("expected 1 unit of 220045, got %d", got)
	}
}

func TestInventoryUngroupedChangeEmitsStandaloneDelta(t *testing.T) {
	inv := NewInventory()

	inv.Apply(bag(102, 0, 100300, 5, false))

	deltas := inv.DrainDeltas()
	if len(deltas) != 1 {
		t.Fatalf("expected 1 standalone delta, got %d", len(deltas))
	}
	if deltas[0].ProtoName != "" {
		t.Errorf("ungrouped delta must have empty proto, got %q", deltas[0].ProtoName)
	}
	if deltas[0].Changes[0] != (ItemChange{ConfigBaseID: 100300, Delta: 5}) {
		t.Errorf("unexpected change %+v", deltas[0].Changes[0])
	}
}

func TestInventorySlotItemTypeChange(t *testing.T) {
	inv := NewInventory()

	inv.Apply(bag(102, 0, 100300, 10, true))
	inv.Apply(marker("DropItems", true))
	inv.Apply(bag(102, 0, 6153, 2, false))
	inv.Apply(marker("DropItems", false))

	deltas := inv.DrainDeltas()
	if len(deltas) != 1 {
		t.Fatalf("expected 1 delta group, got %d", len(deltas))
	}
	changes := deltas[0].Changes
	if len(changes) != 2 {
		t.Fatalf("expected old item out and new item in, got %+v", changes)
	}
	if changes[0] != (ItemChange{ConfigBaseID: 100300, Delta: -10}) {
		t.Errorf("expected old item removed, got %+v", changes[0])
	}
	if changes[1] != (ItemChange{ConfigBaseID: 6153, Delta: 2}) {
		t.Errorf("expected new item added, got %+v", changes[1])
	}
}

func TestInventoryEmptyGroupIsDropped(t *testing.T) {
	inv := NewInventory()

	inv.Apply(marker("PickItems", true))
	inv.Apply(marker("PickItems", false))

	if deltas := inv.DrainDeltas(); len(deltas) != 0 {
		t.Errorf("expected no delta for empty group, got %+v", deltas)
	}
}

func TestInventoryUnclosedGroupFlushedOnNextStart(t *testing.T) {
	inv := NewInventory()

	inv.Apply(marker("PickItems", true))
	inv.Apply(bag(102, 0, 100300, 1, false))
	// End marker lost; a new start must flush the old group.
	inv.Apply(marker("OpenChest", true))
	inv.Apply(bag(102, 1, 6153, 4, false))
	inv.Apply(marker("OpenChest", false))

	deltas := inv.DrainDeltas()
	if len(deltas) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(deltas), deltas)
	}
	if deltas[0].ProtoName != "PickItems" || deltas[1].ProtoName != "OpenChest" {
		t.Errorf("unexpected group order: %+v", deltas)
	}
}

func TestInventoryDrainClears(t *testing.T) {
	inv := NewInventory()
	inv.Apply(bag(102, 0, 100300, 5, false))

	if deltas := inv.DrainDeltas(); len(deltas) != 1 {
		t.Fatalf("expected 1 delta on first drain, got %d", len(deltas))
	}
	if deltas := inv.DrainDeltas(); len(deltas) != 0 {
		t.Errorf("expected empty second drain, got %+v", deltas)
	}
}
