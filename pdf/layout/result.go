package layout

import "fmt"

// Status is the outcome of laying a node out in an area.
type Status int

const (
	// Full means the node fit entirely.
	Full Status = iota
	// Partial means part of the node was placed; the rest is in
	// Result.Overflow.
	Partial
	// Nothing means no part of the node could be placed in the area.
	Nothing
)

func (s Status) String() string {
	switch s {
	case Full:
		return "full"
	case Partial:
		return "partial"
	case Nothing:
		return "nothing"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is returned by every layout call.
type Result struct {
	Status Status

	// Fragment is the geometry placed in the area. It is nil when Status
	// is Nothing.
	Fragment *Fragment

	// Overflow is the continuation to lay out on the next area when Status
	// is Partial, or the whole node when Status is Nothing.
	Overflow *Node

	// Width and Height are the margin-box extent consumed in the area.
	Width, Height float64

	// Diagnostics lists the fit failures recorded during a top-level call.
	Diagnostics []Diagnostic
}

// Fragment is the placed geometry of one node, or of the part of a node that
// went on the current page.
type Fragment struct {
	Node *Node
	// Rect is the border box.
	Rect Rectangle
	// Content is the content box.
	Content  Rectangle
	Children []*Fragment
	// Rules are decorative column rules.
	Rules []Rectangle
	// Clipped marks a fragment that was forced into an area too small for
	// it.
	Clipped bool
}

// Walk calls fn for f and every descendant in depth-first order.
func (f *Fragment) Walk(fn func(*Fragment) error) error {
	if f == nil {
		return nil
	}
	if err := fn(f); err != nil {
		return err
	}
	for _, c := range f.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// DiagnosticKind classifies a soft layout failure.
type DiagnosticKind int

const (
	// FitFailure means content had to be forced onto an area that was too
	// small, for example KeepTogether content taller than a page.
	FitFailure DiagnosticKind = iota
	// Clipped means content was cut off by a hard size constraint.
	Clipped
)

func (k DiagnosticKind) String() string {
	if k == Clipped {
		return "clipped"
	}
	return "fit-failure"
}

// Diagnostic records a soft failure. Diagnostics never abort layout.
type Diagnostic struct {
	Kind    DiagnosticKind
	NodeID  string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.NodeID, d.Message)
}
