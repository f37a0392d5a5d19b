package service

import "time"

// DefaultTimeLayout renders capture times as dd/mm/yyyy hh:mm:ss.
const DefaultTimeLayout = "02/01/2006 15:04:05"

// Clock stamps readings with a display string. The zero value uses time.Now,
// DefaultTimeLayout and the local zone.
type Clock struct {
	Now      func() time.Time
	Layout   string
	Location *time.Location
}

// Time returns the current time.
func (c Clock) Time() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Format renders t for display.
func (c Clock) Format(t time.Time) string {
	layout := c.Layout
	if layout == "" {
		layout = DefaultTimeLayout
	}
	if c.Location != nil {
		t = t.In(c.Location)
	}
	return t.Format(layout)
}

// Stamp formats the current time.
func (c Clock) Stamp() string {
	return c.Format(c.Time())
}
