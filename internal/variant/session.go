package variant

import "slices"

// Change describes what a transition altered.
type Change struct {
	ChangedSections []DimensionID `json:"changed_sections"`
	ResolvedChanged bool          `json:"resolved_changed"`
	MediaChanged    bool          `json:"media_changed"`
	View            View          `json:"view"`
	Media           []string      `json:"media"`
}

type Observer func(Change)

type subscription struct {
	id int
	fn Observer
}

// Session is the stateful wrapper around ApplyChoice for a single owner. It
// keeps the current selection, the last published media and notifies
// observers with a diff after every transition that changed something.
//
// A Session is not safe for concurrent use; hosts serialize calls.
type Session struct {
	index     *Index
	selection Selection
	view      View
	media     []string
	observers []subscription
	nextID    int
}

// NewSession starts a session on the default selection.
func NewSession(x *Index) *Session {
	return RestoreSession(x, x.DefaultSelection(), nil)
}

// RestoreSession resumes a session from a stored selection and media list.
// The selection is re-validated against x.
func RestoreSession(x *Index, ids []ValueID, media []string) *Session {
	s := &Session{index: x}
	s.selection = x.SelectionFrom(ids)
	s.view = NewView(x, s.selection)
	s.media = slices.Clone(media)
	if s.view.ResolvedSKU != nil {
		s.media = s.view.ResolvedMediaURLs
	}
	return s
}

func (s *Session) Index() *Index { return s.index }

func (s *Session) Selection() Selection { return slices.Clone(s.selection) }

func (s *Session) View() View { return s.view }

// Media returns the media of the most recently resolved SKU. It survives
// transitions that leave the selection unresolved.
func (s *Session) Media() []string { return slices.Clone(s.media) }

// Subscribe registers fn and returns a function that removes it.
func (s *Session) Subscribe(fn Observer) func() {
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, subscription{id: id, fn: fn})
	return func() {
		s.observers = slices.DeleteFunc(s.observers, func(o subscription) bool { return o.id == id })
	}
}

// Choose applies a shopper's pick. It reports whether anything changed.
func (s *Session) Choose(value ValueID, dimensionIndex int) bool {
	next := ApplyChoice(s.index, s.selection, Choice{ValueID: value, DimensionIndex: dimensionIndex})
	return s.transition(next)
}

// Reset returns to the default selection.
func (s *Session) Reset() bool {
	return s.transition(s.index.DefaultSelection())
}

func (s *Session) transition(next Selection) bool {
	if next.Equal(s.selection) {
		return false
	}
	prev := s.view
	s.selection = slices.Clone(next)
	s.view = NewView(s.index, s.selection)

	change := Change{View: s.view}
	for i, section := range s.view.Sections {
		if i >= len(prev.Sections) || !slices.Equal(section.Items, prev.Sections[i].Items) {
			change.ChangedSections = append(change.ChangedSections, section.DimensionID)
		}
	}
	change.ResolvedChanged = resolvedID(prev) != resolvedID(s.view)
	if s.view.ResolvedSKU != nil && !slices.Equal(s.view.ResolvedMediaURLs, s.media) {
		s.media = s.view.ResolvedMediaURLs
		change.MediaChanged = true
	}
	change.Media = slices.Clone(s.media)

	for _, o := range slices.Clone(s.observers) {
		o.fn(change)
	}
	return true
}

func resolvedID(v View) SKUID {
	if v.ResolvedSKU == nil {
		return -1
	}
	return v.ResolvedSKU.ID
}
