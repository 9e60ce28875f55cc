// Package ass renders parsed SRV3 documents as Advanced SubStation Alpha
// scripts: a style section built once from the pen catalog, then one
// Dialogue line per cue with inline position and style override tags.
package ass

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"yttc/srv3"
	"yttc/subtitles"
)

// Script canvas the position and size math is tuned for.
const (
	PlayResX     = 1280
	PlayResY     = 720
	BaseFontSize = 38
)

// LineSink accepts finished event lines together with a running sequence
// number. The default implementation writes to an io.Writer, tests collect
// lines in memory.
type LineSink interface {
	WriteLine(line string, readOrder int) error
}

// FontName maps an SRV3 font style code to the family name YouTube players
// use. https://github.com/arcusmaximus/YTSubConverter (YttDocument.cs)
func FontName(fontStyle int) string {
	switch fontStyle {
	case 1:
		return "Courier New"
	case 2:
		return "Times New Roman"
	case 3:
		return "Lucida Console"
	case 4:
		return "Comic Sans Ms"
	case 6:
		return "Monotype Corsiva"
	case 7:
		return "Carrois Gothic Sc"
	default:
		return "Roboto"
	}
}

// Alignment remaps the 0-8 row-major anchor grid (top-left origin) onto the
// 1-9 numpad alignment codes ASS uses (bottom-left origin).
func Alignment(point int) int {
	if point >= 6 {
		return point - 5
	}
	if point < 3 {
		return point + 7
	}
	return point + 1
}

// Coord converts a 0-100 percent coordinate to script pixels, compressing
// the range into the roughly 2%-98% band players actually render into.
func Coord(coord, max int) float64 {
	return (2.0 + float64(coord)*0.96) / 100.0 * float64(max)
}

// FontSize converts a pen's percentage size into script points. The format
// applies only a quarter of the deviation from 100%.
func FontSize(size int) float64 {
	return BaseFontSize * (1.0 + (float64(size)/100.0-1.0)/4.0)
}

// assColor packs color and opacity into the &HAABBGGRR value ASS expects:
// channels reversed, opacity inverted (0 is fully opaque there).
func assColor(color, alpha int) uint32 {
	bgr := (color&0x0000FF)<<16 | color&0x00FF00 | (color&0xFF0000)>>16
	return uint32(bgr) | uint32(0xFF-alpha)<<24
}

func assBool(set bool) int {
	if set {
		return -1
	}
	return 0
}

// styleName derives the style name from a pen id. The reserved default pen
// comes out as P0, declared pens as P<id+1>.
func styleName(pen *srv3.Pen) string {
	return fmt.Sprintf("P%d", pen.ID+1)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Timestamp renders milliseconds in the H:MM:SS.CC form Dialogue lines use.
func Timestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	cs := (ms / 10) % 100
	s := (ms / 1000) % 60
	m := (ms / 60000) % 60
	h := ms / 3600000
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// Renderer turns one parsed document into script text. Not safe for
// concurrent use; rendering is strictly one cue after another.
type Renderer struct {
	sink      LineSink
	readOrder int
	log       *zap.Logger
}

func NewRenderer(sink LineSink, log *zap.Logger) *Renderer {
	return &Renderer{sink: sink, log: log}
}

// Header produces the script preamble and one style record per pen in the
// catalog, default pen included, ordered by id so output is reproducible.
func (r *Renderer) Header(doc *srv3.Document) string {
	var buf strings.Builder

	fmt.Fprintf(&buf,
		"[Script Info]\r\n"+
			"ScriptType: v4.00+\r\n"+
			"PlayResX: %d\r\n"+
			"PlayResY: %d\r\n"+
			"WrapStyle: 0\r\n"+
			"ScaledBorderAndShadow: yes\r\n"+
			"YCbCr Matrix: None\r\n"+
			"\r\n"+
			"[V4+ Styles]\r\n"+
			"Format: Name, "+
			"Fontname, Fontsize, "+
			"PrimaryColour, SecondaryColour, OutlineColour, BackColour, "+
			"Bold, Italic, Underline, StrikeOut, "+
			"ScaleX, ScaleY, "+
			"Spacing, Angle, "+
			"BorderStyle, Outline, Shadow, "+
			"Alignment, MarginL, MarginR, MarginV, "+
			"Encoding\r\n",
		PlayResX, PlayResY)

	for _, id := range slices.Sorted(maps.Keys(doc.Pens)) {
		r.writeStyle(&buf, doc.Pens[id])
	}

	buf.WriteString(
		"[Events]\r\n" +
			"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\r\n")

	return buf.String()
}

func (r *Renderer) writeStyle(buf *strings.Builder, pen *srv3.Pen) {
	// The outline and back slots double as the opaque box color: when the
	// pen has a visible background it wins over the edge color.
	outline := assColor(pen.EdgeColor, pen.ForegroundAlpha)
	borderStyle := 0
	boxed := 0
	if pen.BackgroundAlpha > 0 {
		outline = assColor(pen.BackgroundColor, pen.BackgroundAlpha)
		borderStyle = 3
		boxed = 1
	} else if pen.EdgeType > 0 {
		borderStyle = 1
	}

	fmt.Fprintf(buf,
		"Style: "+
			"%s,"+ /* Name */
			"%s,%s,"+ /* Font{name,size} */
			"&H%x,&H0,&H%x,&H%x,"+ /* {Primary,Secondary,Outline,Back}Colour */
			"%d,%d,0,0,"+ /* Bold, Italic, Underline, StrikeOut */
			"100,100,"+ /* Scale{X,Y} */
			"0,0,"+ /* Spacing, Angle */
			"%d,%d,0,"+ /* BorderStyle, Outline, Shadow */
			"2,0,0,0,"+ /* Alignment, Margin[LRV] */
			"1\r\n", /* Encoding */
		styleName(pen),
		FontName(pen.FontStyle), formatFloat(FontSize(pen.FontSize)),
		assColor(pen.ForegroundColor, pen.ForegroundAlpha),
		outline, outline,
		assBool(pen.Attrs&srv3.PenAttrBold != 0), assBool(pen.Attrs&srv3.PenAttrItalic != 0),
		borderStyle, boxed)
}

// RenderCue emits one Dialogue line for a cue. Cues with no remaining text
// are stored but produce no output.
func (r *Renderer) RenderCue(cue *subtitles.Cue) error {
	if len(cue.Text) == 0 {
		return nil
	}

	meta, _ := cue.Meta.(*srv3.EventMeta)
	if meta == nil {
		meta = &srv3.EventMeta{}
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "Dialogue: 0,%s,%s,P0,,0,0,0,,", Timestamp(cue.Start), Timestamp(cue.Start+cue.Duration))

	x, y, align := position(meta)
	fmt.Fprintf(&buf, "{\\an%d\\pos(%s,%s)}", align, formatFloat(x), formatFloat(y))

	text := cue.Text
	for _, segment := range meta.Segments {
		r.styleSegment(&buf, segment.Pen)
		appendText(&buf, text[:segment.Size])
		text = text[segment.Size:]
	}
	// Whatever remains is orphaned line-break bytes, never rendered.

	err := r.sink.WriteLine(buf.String(), r.readOrder)
	r.readOrder++
	return err
}

func position(meta *srv3.EventMeta) (x, y float64, align int) {
	if meta.Pos != nil {
		return Coord(meta.Pos.X, PlayResX), Coord(meta.Pos.Y, PlayResY), Alignment(meta.Pos.Point)
	}
	// Unpositioned events sit bottom-center like plain captions.
	return Coord(50, PlayResX), Coord(100, PlayResY), 2
}

func (r *Renderer) styleSegment(buf *strings.Builder, pen *srv3.Pen) {
	fmt.Fprintf(buf, "{\\r%s}", styleName(pen))

	if pen.BackgroundAlpha == 0 {
		switch pen.EdgeType {
		case srv3.EdgeHardShadow, srv3.EdgeBevel:
			buf.WriteString("{\\shad2}")
		case srv3.EdgeSoftShadow:
			// A glow reads closer to a soft shadow than a plain shadow
			// does, even if YTSubConverter disagrees.
			buf.WriteString("{\\bord2\\blur3}")
		case srv3.EdgeGlow:
			buf.WriteString("{\\bord1\\blur1}")
		case srv3.EdgeNone:
		default:
			r.log.Warn("bug: unhandled edge type in renderer", zap.Int("edge", pen.EdgeType))
		}
	}
	// With BorderStyle 3 the box replaces any edge effect; ASS cannot
	// express both at once.
}

func appendText(buf *strings.Builder, text string) {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
		case '\n':
			buf.WriteString("\\N")
		default:
			buf.WriteByte(text[i])
		}
	}
}
