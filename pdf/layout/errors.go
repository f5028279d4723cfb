package layout

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidCellIndexes reports two explicitly placed grid items that
	// claim the same cell.
	ErrInvalidCellIndexes = errors.New("invalid cell indexes")
	// ErrInvalidColumnProperties reports an unusable multi-column setup.
	ErrInvalidColumnProperties = errors.New("invalid column properties")
	// ErrInvalidFlexFactor reports a negative flex-grow or flex-shrink.
	ErrInvalidFlexFactor = errors.New("invalid flex factor")
	// ErrInvalidGap reports a negative row or column gap.
	ErrInvalidGap = errors.New("invalid gap")
	// ErrInvalidTrackSize reports a negative grid track size.
	ErrInvalidTrackSize = errors.New("invalid track size")
	// ErrNoProgress reports a pagination step that placed nothing on a
	// fresh page.
	ErrNoProgress = errors.New("layout made no progress")
	// ErrTooManyPages reports that pagination hit its page limit.
	ErrTooManyPages = errors.New("too many pages")
)

// PropertyError is a rejected property value on a node.
type PropertyError struct {
	Node     string
	Property string
	Value    any
	Err      error
}

func (e *PropertyError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%v: node '%s': %s = %v", e.Err, e.Node, e.Property, e.Value)
	}
	return fmt.Sprintf("%v: %s = %v", e.Err, e.Property, e.Value)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

// PlacementError is raised when an explicitly positioned grid item claims a
// cell that is already taken. Row and Column are 1-based track indexes.
type PlacementError struct {
	Container string
	Item      string
	Other     string
	Row       int
	Column    int
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("%v: grid '%s': item '%s' overlaps item '%s' at row %d, column %d",
		ErrInvalidCellIndexes, e.Container, e.Item, e.Other, e.Row, e.Column)
}

func (e *PlacementError) Unwrap() error {
	return ErrInvalidCellIndexes
}
