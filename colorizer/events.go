package colorizer

import (
	"github.com/flanksource/colorize/config"
	"github.com/flanksource/colorize/models"
)

// State is a document's position in the colorization lifecycle.
type State int

const (
	// Uncolorized means no live annotations are held for the document.
	Uncolorized State = iota
	// Computing means an extraction for the document has been scheduled or
	// is running.
	Computing
	// Displayed means the document's live annotations are painted.
	Displayed
)

func (s State) String() string {
	switch s {
	case Computing:
		return "computing"
	case Displayed:
		return "displayed"
	default:
		return "uncolorized"
	}
}

// EventKind is the external trigger kind feeding the orchestrator.
type EventKind int

const (
	// EventOpened fires when a document becomes visible for the first time.
	EventOpened EventKind = iota
	// EventActivated fires when a previously backgrounded document regains
	// focus.
	EventActivated
	// EventEdited fires on every content change; the document is dirty
	// afterwards.
	EventEdited
	// EventSaved fires after the buffer is written to disk.
	EventSaved
	// EventSelectionMoved fires when the cursor or selection moves.
	EventSelectionMoved
	// EventHidden fires when the document loses visibility (tab switch).
	EventHidden
	// EventClosed fires when the document is closed.
	EventClosed
	// EventConfigChanged fires when the configuration provider reports new
	// settings; it invalidates the whole cache.
	EventConfigChanged
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventActivated:
		return "activated"
	case EventEdited:
		return "edited"
	case EventSaved:
		return "saved"
	case EventSelectionMoved:
		return "selection-moved"
	case EventHidden:
		return "hidden"
	case EventClosed:
		return "closed"
	case EventConfigChanged:
		return "config-changed"
	default:
		return "unknown"
	}
}

// Event is one external trigger. Which fields are meaningful depends on the
// kind: Content accompanies Opened/Edited/Saved, CursorLines accompanies
// SelectionMoved, Config accompanies ConfigChanged.
type Event struct {
	Kind        EventKind
	Doc         models.DocKey
	Content     string
	CursorLines []int
	Config      *config.Config
}

// Status is a point-in-time view of a document's lifecycle, including the
// last extraction failure if the document fell back to Uncolorized.
type Status struct {
	State State
	Err   error
}
