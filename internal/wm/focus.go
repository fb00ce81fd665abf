package wm

import (
	"sort"

	"github.com/samber/lo"
)

// Focus derives focus from z-rank: the focused window of a desktop is its
// highest ranked window that is not minimized.
//
// Cycling walks a stacking snapshot taken when a cycle sequence starts, from
// the top of the stack downwards, so repeated steps visit every window
// instead of bouncing between the top two. Any focus change made outside the
// cycle invalidates the snapshot.
type Focus struct {
	store    *Store
	desktops *Desktops

	cycle        []WindowID
	cycleDesktop int
	cyclePos     int
	cycleZ       uint64
}

// NewFocus creates a focus manager over a store and desktop registry.
func NewFocus(store *Store, desktops *Desktops) *Focus {
	return &Focus{store: store, desktops: desktops}
}

// Stacking returns the visible windows of a desktop from bottom to top.
func (f *Focus) Stacking(desktop int) []WindowRecord {
	ids, err := f.desktops.Windows(desktop)
	if err != nil {
		return nil
	}
	recs := lo.FilterMap(ids, func(id WindowID, _ int) (WindowRecord, bool) {
		rec, err := f.store.Get(id)
		return rec, err == nil && rec.State != StateMinimized
	})
	sort.Slice(recs, func(i, j int) bool { return recs[i].ZRank < recs[j].ZRank })
	return recs
}

// Focused returns the focused window on a desktop, if any.
func (f *Focus) Focused(desktop int) (WindowID, bool) {
	stack := f.Stacking(desktop)
	if len(stack) == 0 {
		return 0, false
	}
	return stack[len(stack)-1].ID, true
}

// Raise moves a window to the top of the global stack.
func (f *Focus) Raise(id WindowID) error {
	return f.store.Raise(id)
}

// Cycle focuses the next window of the active desktop. ok is false when the
// desktop has fewer than two visible windows.
func (f *Focus) Cycle() (WindowID, bool) {
	desktop := f.desktops.Active()
	if !f.cycleValid(desktop) {
		stack := f.Stacking(desktop)
		if len(stack) < 2 {
			f.cycle = nil
			return 0, false
		}
		f.cycle = make([]WindowID, 0, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			f.cycle = append(f.cycle, stack[i].ID)
		}
		f.cycleDesktop = desktop
		f.cyclePos = 0
	}

	f.cyclePos = (f.cyclePos + 1) % len(f.cycle)
	next := f.cycle[f.cyclePos]
	if err := f.store.Raise(next); err != nil {
		f.cycle = nil
		return 0, false
	}
	rec, _ := f.store.Get(next)
	f.cycleZ = rec.ZRank
	return next, true
}

// Reset drops any cycle in progress.
func (f *Focus) Reset() {
	f.cycle = nil
}

// cycleValid reports whether the last cycle step is still the current focus
// and the desktop's visible set has not changed since the snapshot.
func (f *Focus) cycleValid(desktop int) bool {
	if len(f.cycle) < 2 || f.cycleDesktop != desktop {
		return false
	}
	stack := f.Stacking(desktop)
	if len(stack) != len(f.cycle) {
		return false
	}
	top := stack[len(stack)-1]
	if top.ID != f.cycle[f.cyclePos] || top.ZRank != f.cycleZ {
		return false
	}
	members := lo.Map(stack, func(r WindowRecord, _ int) WindowID { return r.ID })
	return len(lo.Intersect(members, f.cycle)) == len(f.cycle)
}
