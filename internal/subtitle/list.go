package subtitle

import (
	"fmt"
	"sort"

	"github.com/mgpai22/tala/internal/dfxp"
)

// List is the ordered collection of subtitles for one version being
// edited. Synced subtitles form a prefix sorted by start time; unsynced
// ones follow in insertion order. Every mutation is applied to the
// backing document before the method returns.
//
// A List is not safe for concurrent use.
type List struct {
	doc         *dfxp.Document
	subtitles   []*StoredSubtitle
	syncedCount int
	nextID      int
	strict      bool

	callbacks      []callback
	nextCallbackID CallbackID
	dispatching    bool
	pending        []Change
}

type Option func(*List)

// WithStrictOrdering makes UpdateSubtitleTime panic when a change breaks
// the synced prefix ordering against the subtitle's neighbours.
func WithStrictOrdering() Option {
	return func(l *List) {
		l.strict = true
	}
}

// NewList returns an empty list with no language.
func NewList(opts ...Option) *List {
	l := &List{}
	for _, opt := range opts {
		opt(l)
	}
	l.load(dfxp.NewEmpty(""))
	return l
}

// LoadXML replaces the list's contents with doc. A nil doc loads an empty
// document. Emits a single reload.
func (l *List) LoadXML(doc *dfxp.Document) {
	if doc == nil {
		doc = dfxp.NewEmpty("")
	}
	l.load(doc)
	l.emit(Change{Type: ChangeReload})
}

func (l *List) LoadXMLString(xml string) error {
	doc, err := dfxp.Parse(xml)
	if err != nil {
		return fmt.Errorf("failed to load subtitles: %w", err)
	}
	l.LoadXML(doc)
	return nil
}

// LoadEmptySubs loads an empty document for lang.
func (l *List) LoadEmptySubs(lang string) {
	l.LoadXML(dfxp.NewEmpty(lang))
}

func (l *List) load(doc *dfxp.Document) {
	for _, s := range l.subtitles {
		s.index = -1
	}
	l.doc = doc

	var synced, unsynced []*StoredSubtitle
	for _, node := range doc.Subtitles() {
		s := l.newStored(node)
		if s.IsSynced() {
			synced = append(synced, s)
		} else {
			unsynced = append(unsynced, s)
		}
	}
	sort.SliceStable(synced, func(i, j int) bool {
		return synced[i].startTime < synced[j].startTime
	})

	l.subtitles = append(synced, unsynced...)
	l.syncedCount = len(synced)
	l.renumber(0)
}

func (l *List) newStored(node dfxp.Node) *StoredSubtitle {
	l.nextID++
	return &StoredSubtitle{
		content: content{
			startTime:        l.doc.StartTime(node),
			endTime:          l.doc.EndTime(node),
			markdown:         l.doc.Markdown(node),
			startOfParagraph: l.doc.StartOfParagraph(node),
		},
		node: node,
		id:   l.nextID,
		list: l,
	}
}

func (l *List) renumber(from int) {
	for i := from; i < len(l.subtitles); i++ {
		l.subtitles[i].index = i
	}
}

func (l *List) Len() int {
	return len(l.subtitles)
}

func (l *List) SyncedCount() int {
	return l.syncedCount
}

func (l *List) Language() string {
	return l.doc.Language()
}

func (l *List) Title() string {
	return l.doc.Title()
}

func (l *List) SetTitle(title string) {
	l.doc.SetTitle(title)
}

func (l *List) Description() string {
	return l.doc.Description()
}

func (l *List) SetDescription(description string) {
	l.doc.SetDescription(description)
}

// Subtitles returns a snapshot of the list order.
func (l *List) Subtitles() []*StoredSubtitle {
	return append([]*StoredSubtitle(nil), l.subtitles...)
}

// At panics when i is out of range.
func (l *List) At(i int) *StoredSubtitle {
	if i < 0 || i >= len(l.subtitles) {
		panic(fmt.Sprintf("subtitle: index %d out of range (0-%d)", i, len(l.subtitles)-1))
	}
	return l.subtitles[i]
}

// Index returns s's position, -1 once removed.
func (l *List) Index(s *StoredSubtitle) int {
	l.checkOwner(s)
	return s.index
}

func (l *List) FirstSubtitle() *StoredSubtitle {
	if len(l.subtitles) == 0 {
		return nil
	}
	return l.subtitles[0]
}

func (l *List) LastSubtitle() *StoredSubtitle {
	if len(l.subtitles) == 0 {
		return nil
	}
	return l.subtitles[len(l.subtitles)-1]
}

func (l *List) NextSubtitle(s *StoredSubtitle) *StoredSubtitle {
	l.checkOwner(s)
	if s.IsRemoved() || s.index+1 >= len(l.subtitles) {
		return nil
	}
	return l.subtitles[s.index+1]
}

func (l *List) PrevSubtitle(s *StoredSubtitle) *StoredSubtitle {
	l.checkOwner(s)
	if s.index <= 0 {
		return nil
	}
	return l.subtitles[s.index-1]
}

func (l *List) LastSyncedSubtitle() *StoredSubtitle {
	if l.syncedCount == 0 {
		return nil
	}
	return l.subtitles[l.syncedCount-1]
}

func (l *List) FirstUnsyncedSubtitle() *StoredSubtitle {
	if l.syncedCount >= len(l.subtitles) {
		return nil
	}
	return l.subtitles[l.syncedCount]
}

func (l *List) SecondUnsyncedSubtitle() *StoredSubtitle {
	if l.syncedCount+1 >= len(l.subtitles) {
		return nil
	}
	return l.subtitles[l.syncedCount+1]
}

// IndexOfFirstSubtitleAfter binary-searches the synced prefix for the first
// subtitle ending after t. Returns -1 when there is none.
func (l *List) IndexOfFirstSubtitleAfter(t int) int {
	i := sort.Search(l.syncedCount, func(i int) bool {
		return l.subtitles[i].endTime > t
	})
	if i >= l.syncedCount {
		return -1
	}
	return i
}

// SubtitleAt returns the synced subtitle showing at t, or nil.
func (l *List) SubtitleAt(t int) *StoredSubtitle {
	i := l.IndexOfFirstSubtitleAfter(t)
	if i < 0 {
		return nil
	}
	if s := l.subtitles[i]; s.IsAt(t) {
		return s
	}
	return nil
}

// SubtitlesForTime returns the synced subtitles visible in [start, end):
// the scan begins at the first subtitle ending after start and stops at
// the first one starting at or after end.
func (l *List) SubtitlesForTime(start, end int) []*StoredSubtitle {
	i := l.IndexOfFirstSubtitleAfter(start)
	if i < 0 {
		return nil
	}
	var out []*StoredSubtitle
	for ; i < l.syncedCount; i++ {
		s := l.subtitles[i]
		if s.startTime >= end {
			break
		}
		out = append(out, s)
	}
	return out
}

func (l *List) NeedsAnyTranscribed() bool {
	for _, s := range l.subtitles {
		if s.IsEmpty() {
			return true
		}
	}
	return false
}

func (l *List) NeedsAnySynced() bool {
	return l.syncedCount < len(l.subtitles)
}

func (l *List) IsComplete() bool {
	return len(l.subtitles) > 0 && !l.NeedsAnyTranscribed() && !l.NeedsAnySynced()
}

// ToXMLString serializes the current state; safe to call at any time.
func (l *List) ToXMLString() (string, error) {
	return l.doc.String()
}

// checkOwner panics for subtitles that belong to another list.
func (l *List) checkOwner(s *StoredSubtitle) {
	if s == nil {
		panic("subtitle: nil subtitle")
	}
	if s.list != l {
		panic(fmt.Sprintf("subtitle: %s does not belong to this list", s.Key()))
	}
}
