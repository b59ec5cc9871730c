package router

import (
	"strconv"
	"strings"
)

// ScrollHeader carries the saved scroll offset ("left,top") on back/forward
// navigations issued by the page shell.
const ScrollHeader = "X-Scroll-Position"

// Position is a scroll offset in pixels.
type Position struct {
	Left int `json:"left"`
	Top  int `json:"top"`
}

// ScrollFunc picks the scroll position for a navigation. saved is non-nil
// only for history navigations with a remembered offset.
type ScrollFunc func(to, from Location, saved *Position) Position

// DefaultScrollBehavior restores the saved offset when there is one and
// scrolls to the top otherwise.
func DefaultScrollBehavior(_, _ Location, saved *Position) Position {
	if saved != nil {
		return *saved
	}
	return Position{}
}

// Scroll applies the router's scroll behaviour.
func (r *Router) Scroll(to, from Location, saved *Position) Position {
	return r.scroll(to, from, saved)
}

// ParsePosition parses "left,top". Malformed input yields nil.
func ParsePosition(raw string) *Position {
	left, top, ok := strings.Cut(strings.TrimSpace(raw), ",")
	if !ok {
		return nil
	}
	l, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil || l < 0 {
		return nil
	}
	t, err := strconv.Atoi(strings.TrimSpace(top))
	if err != nil || t < 0 {
		return nil
	}
	return &Position{Left: l, Top: t}
}
