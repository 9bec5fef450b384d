package subtitle

// EditManager tracks the single in-progress text edit. It is idle until
// Start binds a draft to a stored subtitle.
type EditManager struct {
	draft *DraftSubtitle
}

func NewEditManager() *EditManager {
	return &EditManager{}
}

// Start begins editing s. A previous edit is replaced without being
// committed; callers finish it first.
func (m *EditManager) Start(s *StoredSubtitle) *DraftSubtitle {
	m.draft = s.Draft()
	return m.draft
}

// Draft returns the live draft, nil when idle.
func (m *EditManager) Draft() *DraftSubtitle {
	return m.draft
}

func (m *EditManager) InProgress() bool {
	return m.draft != nil
}

func (m *EditManager) IsForSubtitle(s *StoredSubtitle) bool {
	return m.draft != nil && m.draft.stored == s
}

// Finish ends the edit, committing the draft's text when commit is true
// and the text changed. Only content is committed, never timing. Returns
// whether the list was updated; finishing while idle returns false.
func (m *EditManager) Finish(commit bool, list *List) bool {
	if m.draft == nil {
		return false
	}
	draft := m.draft
	m.draft = nil

	if !commit || !draft.Changed() || draft.stored.IsRemoved() {
		return false
	}
	list.UpdateSubtitleContent(draft.stored, draft.markdown)
	return true
}
