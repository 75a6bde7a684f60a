package calendar

import "time"

// Cursor tracks the month currently shown by a calendar view. Navigation is
// unbounded in both directions; every move is followed by a full grid
// rebuild by the caller, which is cheap at 42 cells.
type Cursor struct {
	Year  int
	Month time.Month
}

// NewCursor anchors a cursor at the month containing now.
func NewCursor(now time.Time) Cursor {
	return Cursor{Year: now.Year(), Month: now.Month()}
}

// Prev moves back exactly one month, rolling the year over at January.
func (c *Cursor) Prev() {
	t := time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	c.Year, c.Month = t.Year(), t.Month()
}

// Next moves forward exactly one month, rolling the year over at December.
func (c *Cursor) Next() {
	t := time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	c.Year, c.Month = t.Year(), t.Month()
}

// Contains reports whether d falls inside the cursor's month.
func (c Cursor) Contains(d Date) bool {
	return d.Year == c.Year && d.Month == c.Month
}

// String renders the cursor as "January 2006".
func (c Cursor) String() string {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}
