package models

import (
	"fmt"
	"time"
)

// SlotGrid is the set of bookable start times in a day: every Step minutes
// from First through Last inclusive.
type SlotGrid struct {
	First int
	Last  int
	Step  int
}

// DefaultSlotGrid is the half-hour grid from 08:00 to 17:30.
var DefaultSlotGrid = SlotGrid{First: 8 * 60, Last: 17*60 + 30, Step: 30}

// NewSlotGrid builds a grid from HH:MM bounds and a step in minutes.
// Empty bounds and a zero step fall back to DefaultSlotGrid's values.
func NewSlotGrid(first, last string, step int) (SlotGrid, error) {
	g := DefaultSlotGrid
	var err error
	if first != "" {
		if g.First, err = minuteOfDay(first); err != nil {
			return SlotGrid{}, err
		}
	}
	if last != "" {
		if g.Last, err = minuteOfDay(last); err != nil {
			return SlotGrid{}, err
		}
	}
	if step != 0 {
		g.Step = step
	}

	switch {
	case g.Step <= 0 || g.Step > 24*60:
		return SlotGrid{}, fmt.Errorf("slot step must be between 1 and 1440 minutes, got %d", g.Step)
	case g.Last < g.First:
		return SlotGrid{}, fmt.Errorf("last slot %s is before first slot %s", formatMinute(g.Last), formatMinute(g.First))
	case (g.Last-g.First)%g.Step != 0:
		return SlotGrid{}, fmt.Errorf("last slot %s is not on the %d minute grid from %s", formatMinute(g.Last), g.Step, formatMinute(g.First))
	}
	return g, nil
}

// Contains reports whether clock, in HH:MM form, is a bookable start time.
func (g SlotGrid) Contains(clock string) bool {
	m, err := minuteOfDay(clock)
	if err != nil {
		return false
	}
	return m >= g.First && m <= g.Last && (m-g.First)%g.Step == 0
}

func (g SlotGrid) String() string {
	return fmt.Sprintf("every %d minutes from %s to %s", g.Step, formatMinute(g.First), formatMinute(g.Last))
}

func minuteOfDay(clock string) (int, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
