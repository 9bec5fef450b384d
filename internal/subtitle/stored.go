package subtitle

import (
	"fmt"

	"github.com/mgpai22/tala/internal/dfxp"
)

// StoredSubtitle is a subtitle owned by a List and backed by a document
// node. It has no setters: all changes go through the owning List.
type StoredSubtitle struct {
	content
	node  dfxp.Node
	id    int
	list  *List
	index int
}

// ID is unique for the lifetime of the owning list.
func (s *StoredSubtitle) ID() int {
	return s.id
}

// Key is a stable string form of ID for views.
func (s *StoredSubtitle) Key() string {
	return fmt.Sprintf("sub-%d", s.id)
}

func (s *StoredSubtitle) IsRemoved() bool {
	return s.index < 0
}

// Draft returns a detached copy for editing.
func (s *StoredSubtitle) Draft() *DraftSubtitle {
	return &DraftSubtitle{content: s.content, stored: s}
}

// DraftSubtitle is a freely mutable copy of a StoredSubtitle; changes stay
// invisible to the list until committed.
type DraftSubtitle struct {
	content
	stored *StoredSubtitle
}

func (d *DraftSubtitle) Stored() *StoredSubtitle {
	return d.stored
}

func (d *DraftSubtitle) SetMarkdown(text string) {
	d.markdown = text
}

func (d *DraftSubtitle) SetStartTime(ms int) {
	d.startTime = ms
}

func (d *DraftSubtitle) SetEndTime(ms int) {
	d.endTime = ms
}

func (d *DraftSubtitle) SetStartOfParagraph(start bool) {
	d.startOfParagraph = start
}

// Changed reports whether the draft's text differs from the stored text.
func (d *DraftSubtitle) Changed() bool {
	return d.markdown != d.stored.markdown
}

var (
	_ Subtitle = (*StoredSubtitle)(nil)
	_ Subtitle = (*DraftSubtitle)(nil)
)
