package wm

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Desktop is one virtual desktop.
type Desktop struct {
	Index   int
	Name    string
	windows map[WindowID]struct{}
}

// Desktops is the ordered registry of virtual desktops and their windows.
// A window is a member of exactly one desktop.
type Desktops struct {
	list   []*Desktop
	owner  map[WindowID]int
	active int
}

// NewDesktops creates n desktops (at least one) with desktop 0 active.
func NewDesktops(n int) *Desktops {
	if n < 1 {
		n = 1
	}
	d := &Desktops{owner: make(map[WindowID]int)}
	for i := 0; i < n; i++ {
		d.Add()
	}
	return d
}

// Add appends an empty desktop and returns its index.
func (d *Desktops) Add() int {
	idx := len(d.list)
	d.list = append(d.list, &Desktop{
		Index:   idx,
		Name:    fmt.Sprintf("Desktop %d", idx+1),
		windows: make(map[WindowID]struct{}),
	})
	return idx
}

// Count returns the number of desktops.
func (d *Desktops) Count() int {
	return len(d.list)
}

// Active returns the active desktop index.
func (d *Desktops) Active() int {
	return d.active
}

// Name returns a desktop's display name.
func (d *Desktops) Name(index int) (string, error) {
	if err := d.check(index); err != nil {
		return "", err
	}
	return d.list[index].Name, nil
}

// SwitchTo makes index the active desktop. The active desktop is unchanged
// on error.
func (d *Desktops) SwitchTo(index int) error {
	if err := d.check(index); err != nil {
		return err
	}
	d.active = index
	return nil
}

// Next moves to the following desktop. It does not wrap; changed is false
// on the last desktop.
func (d *Desktops) Next() (index int, changed bool) {
	if d.active >= len(d.list)-1 {
		return d.active, false
	}
	d.active++
	return d.active, true
}

// Previous moves to the preceding desktop without wrapping.
func (d *Desktops) Previous() (index int, changed bool) {
	if d.active == 0 {
		return d.active, false
	}
	d.active--
	return d.active, true
}

// Insert places a window that has no desktop yet.
func (d *Desktops) Insert(id WindowID, index int) error {
	if err := d.check(index); err != nil {
		return err
	}
	if cur, ok := d.owner[id]; ok {
		return fmt.Errorf("window %d already on desktop %d", id, cur)
	}
	d.list[index].windows[id] = struct{}{}
	d.owner[id] = index
	return nil
}

// Assign moves a window from its current desktop to index in one step.
func (d *Desktops) Assign(id WindowID, index int) error {
	if err := d.check(index); err != nil {
		return err
	}
	cur, ok := d.owner[id]
	if !ok {
		return fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	if cur == index {
		return nil
	}
	delete(d.list[cur].windows, id)
	d.list[index].windows[id] = struct{}{}
	d.owner[id] = index
	return nil
}

// Remove drops a window from whichever desktop holds it.
func (d *Desktops) Remove(id WindowID) error {
	cur, ok := d.owner[id]
	if !ok {
		return fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	delete(d.list[cur].windows, id)
	delete(d.owner, id)
	return nil
}

// DesktopOf returns the desktop holding a window.
func (d *Desktops) DesktopOf(id WindowID) (int, error) {
	cur, ok := d.owner[id]
	if !ok {
		return 0, fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	return cur, nil
}

// Windows returns the members of a desktop ordered by id.
func (d *Desktops) Windows(index int) ([]WindowID, error) {
	if err := d.check(index); err != nil {
		return nil, err
	}
	ids := lo.Keys(d.list[index].windows)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// List returns a copy of the desktop descriptors.
func (d *Desktops) List() []Desktop {
	return lo.Map(d.list, func(desk *Desktop, _ int) Desktop {
		return Desktop{Index: desk.Index, Name: desk.Name}
	})
}

func (d *Desktops) check(index int) error {
	if index < 0 || index >= len(d.list) {
		return fmt.Errorf("desktop %d (have %d): %w", index, len(d.list), ErrOutOfRange)
	}
	return nil
}
