// Package srv3 parses the SRV3/YTT timed-text format used by YouTube caption
// exports. The format is XML based and has no official documentation, so
// parsing is best effort: malformed or unknown attributes are reported and
// skipped, never aborting the document. Known details largely come from
// reading YTSubConverter sources.
// https://github.com/arcusmaximus/YTSubConverter
package srv3

// Pen attribute bits.
const (
	PenAttrItalic = 1 << iota
	PenAttrBold
)

// Text edge (outline) effects a pen can request.
const (
	EdgeNone = iota
	EdgeHardShadow
	EdgeBevel
	EdgeGlow
	EdgeSoftShadow
)

// Ruby text parts. Value 3 is a hole in the upstream enum.
const (
	RubyNone        = 0
	RubyBase        = 1
	RubyParenthesis = 2
	RubyBefore      = 4
	RubyAfter       = 5
)

// Pen is a named style definition declared in the document head and
// referenced by id from events and segments. Immutable once parsed.
type Pen struct {
	ID int

	FontSize  int // percent of the base size
	FontStyle int
	Attrs     int

	EdgeType  int
	EdgeColor int

	RubyPart int

	ForegroundColor int
	ForegroundAlpha int
	BackgroundColor int
	BackgroundAlpha int
}

// DefaultPen mirrors the style YouTube players apply when no pen is
// referenced. It is process wide and must never be modified.
var DefaultPen = &Pen{
	ID: -1,

	FontSize:  100,
	FontStyle: 0,

	EdgeType:  EdgeNone,
	EdgeColor: 0x020202,

	RubyPart: RubyNone,

	ForegroundColor: 0xFFFFFF,
	ForegroundAlpha: 254,
	BackgroundColor: 0x080808,
	BackgroundAlpha: 192,
}

// WindowPos is a named anchor point with percentage coordinates. There is no
// implicit default: events without a resolvable reference stay unpositioned
// and the renderer decides what that means.
type WindowPos struct {
	ID    int
	Point int // 0-8 anchor index, row major from top-left
	X, Y  int // percent
}

// Segment is a contiguous styled run of text within one event. Size counts
// bytes of the event's cleaned text; segments partition that text in order.
type Segment struct {
	Size int
	Pen  *Pen
}

// EventMeta is the per-cue style metadata carried out-of-band next to the
// cue text. Orphaned counts trailing line-break bytes that belong to the
// text but to no segment (see the whitespace handling in the builder).
type EventMeta struct {
	Segments []Segment
	Pos      *WindowPos
	Orphaned int
}

// Document is the style catalog of one parsed file. Pens and positions are
// keyed by id; a later declaration reusing an id overwrites the earlier one.
type Document struct {
	Pens      map[int]*Pen
	Positions map[int]*WindowPos
}

// Pen resolves a pen reference, nil when the id was never declared.
// DefaultPen is always present under its reserved id.
func (d *Document) Pen(id int) *Pen {
	return d.Pens[id]
}

// Position resolves a window position reference, nil when unknown.
func (d *Document) Position(id int) *WindowPos {
	return d.Positions[id]
}

func newDocument() *Document {
	return &Document{
		Pens:      map[int]*Pen{DefaultPen.ID: DefaultPen},
		Positions: map[int]*WindowPos{},
	}
}
