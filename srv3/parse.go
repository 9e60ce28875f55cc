package srv3

import (
	"fmt"
	"math"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"yttc/subtitles"
)

// Parse walks the etree DOM of an SRV3 document, builds the style catalog
// from the head section and inserts one cue per body event into q, with
// EventMeta attached as side data. Only a missing or alien root is fatal;
// everything below that level degrades to warnings and defaults.
func Parse(doc *etree.Document, q *subtitles.Queue, log *zap.Logger) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if root.Tag != "timedtext" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}
	if v := root.SelectAttrValue("format", ""); v != FormatVersion {
		log.Warn("Unexpected timedtext format version, parsing anyway", zap.String("format", v))
	}

	d := newDocument()

	// Pens and positions first: body events reference them by id no matter
	// where the head sits in the file.
	for _, child := range root.ChildElements() {
		if child.Tag == "head" {
			d.parseHead(child, log)
		}
	}
	for _, child := range root.ChildElements() {
		if child.Tag == "body" {
			d.parseBody(child, q, log)
		}
	}

	return d, nil
}

func (d *Document) parseHead(el *etree.Element, log *zap.Logger) {
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "pen":
			d.parsePen(child, log)
		case "wp":
			d.parseWindowPos(child, log)
		default:
			log.Warn("Unexpected tag in head, ignoring", zap.String("tag", child.Tag))
		}
	}
}

func (d *Document) parsePen(el *etree.Element, log *zap.Logger) {
	pen := *DefaultPen

	defs := []attrDef{
		{"id", 0, math.MaxInt, func(v int) { pen.ID = v }},
		{"sz", 0, math.MaxInt, func(v int) { pen.FontSize = v }},
		{"fs", 1, 7, func(v int) { pen.FontStyle = v }},
		{"et", 1, 4, func(v int) { pen.EdgeType = v }},
		{"ec", colorAttr, colorAttr, func(v int) { pen.EdgeColor = v }},
		{"fc", colorAttr, colorAttr, func(v int) { pen.ForegroundColor = v }},
		{"fo", 0, 0xFF, func(v int) { pen.ForegroundAlpha = v }},
		{"bc", colorAttr, colorAttr, func(v int) { pen.BackgroundColor = v }},
		{"bo", 0, 0xFF, func(v int) { pen.BackgroundAlpha = v }},
	}

	for _, attr := range el.Attr {
		if applySimpleAttr(log, "pen", defs, attr) {
			continue
		}
		switch attr.Key {
		case "rb":
			if v, ok := parseNumericAttr(log, "pen", attr, 0, 5); ok {
				pen.RubyPart = v
			}
			// For whatever reason three seems to be an unused value for
			// this enum. A range check cannot express the hole.
			if pen.RubyPart == 3 {
				pen.RubyPart = RubyNone
				log.Warn("Encountered unknown ruby part 3")
			}
		case "i":
			if attr.Value == "1" {
				pen.Attrs |= PenAttrItalic
			}
		case "b":
			if attr.Value == "1" {
				pen.Attrs |= PenAttrBold
			}
		default:
			log.Warn("Unhandled pen property", zap.String("attr", attr.Key))
		}
	}

	if pen.ID == DefaultPen.ID {
		log.Warn("Pen declared without a usable id, ignoring")
		return
	}
	// Later declaration with the same id shadows the earlier one.
	d.Pens[pen.ID] = &pen
}

func (d *Document) parseWindowPos(el *etree.Element, log *zap.Logger) {
	var wp WindowPos
	wp.ID = -1

	defs := []attrDef{
		{"id", 0, math.MaxInt, func(v int) { wp.ID = v }},
		{"ap", 0, 8, func(v int) { wp.Point = v }},
		{"ah", 0, 100, func(v int) { wp.X = v }},
		{"av", 0, 100, func(v int) { wp.Y = v }},
	}

	for _, attr := range el.Attr {
		if !applySimpleAttr(log, "window pos", defs, attr) {
			log.Warn("Unhandled window pos property", zap.String("attr", attr.Key))
		}
	}

	if wp.ID < 0 {
		log.Warn("Window pos declared without a usable id, ignoring")
		return
	}
	d.Positions[wp.ID] = &wp
}

func (d *Document) parseBody(el *etree.Element, q *subtitles.Queue, log *zap.Logger) {
	for _, child := range el.ChildElements() {
		if child.Tag != "p" {
			log.Warn("Unexpected tag in body, ignoring", zap.String("tag", child.Tag))
			continue
		}
		d.parseEvent(child, q, log)
	}
}

func (d *Document) parseEvent(el *etree.Element, q *subtitles.Queue, log *zap.Logger) {
	var start, duration int
	meta := &EventMeta{}
	eventPen := DefaultPen

	for _, attr := range el.Attr {
		switch attr.Key {
		case "t":
			if v, ok := parseNumericAttr(log, "event", attr, 0, math.MaxInt); ok {
				start = v
			}
		case "d":
			if v, ok := parseNumericAttr(log, "event", attr, 0, math.MaxInt); ok {
				duration = v
			}
		case "wp":
			if id, ok := parseNumericAttr(log, "event", attr, 0, math.MaxInt); ok {
				if wp := d.Position(id); wp != nil {
					meta.Pos = wp
				} else {
					log.Warn("Non-existent window pos assigned to event", zap.Int("id", id))
				}
			}
		case "p":
			if id, ok := parseNumericAttr(log, "event", attr, 0, math.MaxInt); ok {
				if pen := d.Pen(id); pen != nil {
					eventPen = pen
				} else {
					log.Warn("Non-existent pen assigned to event", zap.Int("id", id))
				}
			}
		case "ws":
			// Window styles are recognized but intentionally not handled.
		default:
			log.Warn("Unhandled event property", zap.String("attr", attr.Key))
		}
	}

	text, segments, orphaned := d.buildSegments(el, eventPen, log)
	meta.Segments = segments
	meta.Orphaned = orphaned

	cue := q.Insert(text, int64(start), int64(duration))
	cue.Meta = meta
}

// buildSegments turns an event's children into the cleaned concatenated
// text and its styled segments. Runs consisting purely of line breaks never
// open a segment of their own: a style reset across a line break is not
// observable. When the neighbouring segment uses the same font size the run
// is merged into it, otherwise its bytes ride along until the next real
// segment, or stay orphaned at the end of the event.
func (d *Document) buildSegments(el *etree.Element, eventPen *Pen, log *zap.Logger) (string, []Segment, int) {
	var (
		buf      strings.Builder
		segments []Segment
		pending  int
	)

	for _, node := range el.Child {
		var raw string
		pen := eventPen

		switch child := node.(type) {
		case *etree.CharData:
			raw = child.Data
		case *etree.Element:
			if child.Tag != "s" {
				log.Warn("Unknown event child node name", zap.String("tag", child.Tag))
				continue
			}
			if len(child.Child) == 0 {
				continue
			}
			raw = child.Text()
			for _, attr := range child.Attr {
				if attr.Key != "p" {
					log.Warn("Unhandled segment property", zap.String("attr", attr.Key))
					continue
				}
				if id, ok := parseNumericAttr(log, "segment", attr, 0, math.MaxInt); ok {
					if p := d.Pen(id); p != nil {
						pen = p
					} else {
						log.Warn("Non-existent pen assigned to segment", zap.Int("id", id))
					}
				}
			}
		default:
			log.Warn("Unexpected event child node type", zap.String("type", fmt.Sprintf("%T", node)))
			continue
		}

		text := CleanText(raw)
		if len(text) == 0 {
			continue
		}
		buf.WriteString(text)

		if lineBreaksOnly(text) {
			// Merging into the previous segment is only safe while no
			// deferred bytes sit between it and this run.
			if pending == 0 && len(segments) > 0 && segments[len(segments)-1].Pen.FontSize == pen.FontSize {
				segments[len(segments)-1].Size += len(text)
			} else {
				pending += len(text)
			}
			continue
		}

		segments = append(segments, Segment{Size: len(text) + pending, Pen: pen})
		pending = 0
	}

	return buf.String(), segments, pending
}

func lineBreaksOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			return false
		}
	}
	return true
}
