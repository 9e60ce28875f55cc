package ass

import (
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"yttc/srv3"
	"yttc/subtitles"
)

type memSink struct {
	lines  []string
	orders []int
}

func (s *memSink) WriteLine(line string, readOrder int) error {
	s.lines = append(s.lines, line)
	s.orders = append(s.orders, readOrder)
	return nil
}

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func TestAlignmentBijection(t *testing.T) {
	seen := map[int]int{}
	for point := 0; point <= 8; point++ {
		a := Alignment(point)
		if a < 1 || a > 9 {
			t.Fatalf("Alignment(%d) = %d, outside 1-9", point, a)
		}
		if prev, dup := seen[a]; dup {
			t.Fatalf("Alignment maps both %d and %d to %d", prev, point, a)
		}
		seen[a] = point
	}

	cases := map[int]int{0: 7, 6: 1, 4: 5, 2: 9, 8: 3}
	for point, want := range cases {
		if got := Alignment(point); got != want {
			t.Fatalf("Alignment(%d) = %d, want %d", point, got, want)
		}
	}
}

func TestCoord(t *testing.T) {
	cases := []struct {
		coord, max int
		want       float64
	}{
		{0, 1280, 25.6},
		{100, 1280, 1254.4},
		{50, 720, 360},
		{100, 720, 705.6},
	}
	for _, tc := range cases {
		if got := Coord(tc.coord, tc.max); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Coord(%d, %d) = %v, want %v", tc.coord, tc.max, got, tc.want)
		}
	}
}

func TestFontSize(t *testing.T) {
	if got := FontSize(100); got != BaseFontSize {
		t.Fatalf("FontSize(100) = %v, want %v", got, float64(BaseFontSize))
	}
	// only a quarter of the deviation from 100% applies
	if got := FontSize(200); got != 1.25*BaseFontSize {
		t.Fatalf("FontSize(200) = %v, want %v", got, 1.25*BaseFontSize)
	}
}

func TestFontName(t *testing.T) {
	if got := FontName(4); got != "Comic Sans Ms" {
		t.Fatalf("FontName(4) = %q", got)
	}
	// 0 and 5 have no family of their own
	if got := FontName(0); got != "Roboto" {
		t.Fatalf("FontName(0) = %q", got)
	}
	if got := FontName(5); got != "Roboto" {
		t.Fatalf("FontName(5) = %q", got)
	}
}

func TestASSColor(t *testing.T) {
	// channels reorder RGB -> BGR, opacity inverts into alpha
	if got := assColor(0xFF0000, 0xFF); got != 0x0000FF {
		t.Fatalf("assColor(red, opaque) = %#x", got)
	}
	if got := assColor(0x0000FF, 0); got != 0xFFFF0000 {
		t.Fatalf("assColor(blue, transparent) = %#x", got)
	}
	if got := assColor(0xFFFFFF, 254); got != 0x01FFFFFF {
		t.Fatalf("assColor(white, 254) = %#x", got)
	}
}

func TestTimestamp(t *testing.T) {
	cases := map[int64]string{
		0:       "0:00:00.00",
		1000:    "0:00:01.00",
		3000:    "0:00:03.00",
		61230:   "0:01:01.23",
		3661009: "1:01:01.00",
		-5:      "0:00:00.00",
	}
	for ms, want := range cases {
		if got := Timestamp(ms); got != want {
			t.Fatalf("Timestamp(%d) = %q, want %q", ms, got, want)
		}
	}
}

func catalogWith(pens ...*srv3.Pen) *srv3.Document {
	d := &srv3.Document{
		Pens:      map[int]*srv3.Pen{srv3.DefaultPen.ID: srv3.DefaultPen},
		Positions: map[int]*srv3.WindowPos{},
	}
	for _, pen := range pens {
		d.Pens[pen.ID] = pen
	}
	return d
}

func TestHeader(t *testing.T) {
	r := NewRenderer(&memSink{}, testLogger(t))
	header := r.Header(catalogWith())

	for _, want := range []string{
		"ScriptType: v4.00+\r\n",
		"PlayResX: 1280\r\n",
		"PlayResY: 720\r\n",
		"ScaledBorderAndShadow: yes\r\n",
		"[V4+ Styles]\r\n",
		// default pen: white text at alpha 1, opaque box from the dark background
		"Style: P0,Roboto,38,&H1ffffff,&H0,&H3f080808,&H3f080808,0,0,0,0,100,100,0,0,3,1,0,2,0,0,0,1\r\n",
		"[Events]\r\n",
	} {
		if !strings.Contains(header, want) {
			t.Fatalf("header missing %q:\n%s", want, header)
		}
	}
}

func TestHeaderStyleVariants(t *testing.T) {
	bold := &srv3.Pen{ID: 0, FontSize: 200, FontStyle: 4, Attrs: srv3.PenAttrBold | srv3.PenAttrItalic,
		ForegroundColor: 0xFF0000, ForegroundAlpha: 0xFF, EdgeColor: 0x00FF00}
	outlined := &srv3.Pen{ID: 1, FontSize: 100, EdgeType: srv3.EdgeGlow,
		ForegroundColor: 0xFFFFFF, ForegroundAlpha: 0xFF, EdgeColor: 0x0000FF}

	r := NewRenderer(&memSink{}, testLogger(t))
	header := r.Header(catalogWith(bold, outlined))

	// no background: edge color fills outline/back slots, border style stays flat
	if !strings.Contains(header, "Style: P1,Comic Sans Ms,47.5,&Hff,&H0,&Hff00,&Hff00,-1,-1,0,0,100,100,0,0,0,0,0,2,0,0,0,1\r\n") {
		t.Fatalf("unexpected bold style record:\n%s", header)
	}
	// an edge effect without background selects the outlined border style
	if !strings.Contains(header, "Style: P2,Roboto,38,&Hffffff,&H0,&Hff0000,&Hff0000,0,0,0,0,100,100,0,0,1,0,0,2,0,0,0,1\r\n") {
		t.Fatalf("unexpected outlined style record:\n%s", header)
	}
}

func cue(text string, start, duration int64, meta *srv3.EventMeta) *subtitles.Cue {
	return &subtitles.Cue{Start: start, Duration: duration, Text: text, Meta: meta}
}

func TestRenderCueDefaults(t *testing.T) {
	sink := &memSink{}
	r := NewRenderer(sink, testLogger(t))

	meta := &srv3.EventMeta{Segments: []srv3.Segment{{Size: 5, Pen: srv3.DefaultPen}}}
	if err := r.RenderCue(cue("Hello", 1000, 2000, meta)); err != nil {
		t.Fatalf("RenderCue: %v", err)
	}

	if len(sink.lines) != 1 {
		t.Fatalf("expected one line, got %d", len(sink.lines))
	}
	want := `Dialogue: 0,0:00:01.00,0:00:03.00,P0,,0,0,0,,{\an2\pos(640,705.6)}{\rP0}Hello`
	if sink.lines[0] != want {
		t.Fatalf("unexpected line:\n got %q\nwant %q", sink.lines[0], want)
	}
	if sink.orders[0] != 0 {
		t.Fatalf("unexpected read order %d", sink.orders[0])
	}
}

func TestRenderCuePositioned(t *testing.T) {
	sink := &memSink{}
	r := NewRenderer(sink, testLogger(t))

	meta := &srv3.EventMeta{
		Pos:      &srv3.WindowPos{ID: 0, Point: 0, X: 0, Y: 0},
		Segments: []srv3.Segment{{Size: 2, Pen: srv3.DefaultPen}},
	}
	if err := r.RenderCue(cue("hi", 0, 1000, meta)); err != nil {
		t.Fatalf("RenderCue: %v", err)
	}
	if !strings.Contains(sink.lines[0], `{\an7\pos(25.6,14.4)}`) {
		t.Fatalf("unexpected position tag: %q", sink.lines[0])
	}
}

func TestRenderCueSegments(t *testing.T) {
	sink := &memSink{}
	r := NewRenderer(sink, testLogger(t))

	shadowed := &srv3.Pen{ID: 1, FontSize: 100, EdgeType: srv3.EdgeHardShadow}
	glowing := &srv3.Pen{ID: 2, FontSize: 100, EdgeType: srv3.EdgeGlow, BackgroundAlpha: 128}
	meta := &srv3.EventMeta{Segments: []srv3.Segment{
		{Size: 3, Pen: shadowed},
		{Size: 2, Pen: glowing},
	}}
	if err := r.RenderCue(cue("ab\ncd", 0, 1000, meta)); err != nil {
		t.Fatalf("RenderCue: %v", err)
	}

	line := sink.lines[0]
	// edge tag only while the background is fully transparent
	if !strings.Contains(line, `{\rP2}{\shad2}ab\N{\rP3}cd`) {
		t.Fatalf("unexpected segment markup: %q", line)
	}
}

func TestRenderCueEdgeTags(t *testing.T) {
	cases := map[int]string{
		srv3.EdgeHardShadow: `{\shad2}`,
		srv3.EdgeBevel:      `{\shad2}`,
		srv3.EdgeSoftShadow: `{\bord2\blur3}`,
		srv3.EdgeGlow:       `{\bord1\blur1}`,
	}
	for edge, tag := range cases {
		sink := &memSink{}
		r := NewRenderer(sink, testLogger(t))
		pen := &srv3.Pen{ID: 0, FontSize: 100, EdgeType: edge}
		meta := &srv3.EventMeta{Segments: []srv3.Segment{{Size: 1, Pen: pen}}}
		if err := r.RenderCue(cue("x", 0, 1, meta)); err != nil {
			t.Fatalf("RenderCue: %v", err)
		}
		if !strings.Contains(sink.lines[0], tag) {
			t.Fatalf("edge %d: missing %q in %q", edge, tag, sink.lines[0])
		}
	}
}

func TestRenderCueSkipsEmptyText(t *testing.T) {
	sink := &memSink{}
	r := NewRenderer(sink, testLogger(t))
	if err := r.RenderCue(cue("", 0, 1000, &srv3.EventMeta{})); err != nil {
		t.Fatalf("RenderCue: %v", err)
	}
	if len(sink.lines) != 0 {
		t.Fatalf("empty cue produced output: %v", sink.lines)
	}
}

func TestRenderCueOrphanedBytesStayHidden(t *testing.T) {
	sink := &memSink{}
	r := NewRenderer(sink, testLogger(t))

	meta := &srv3.EventMeta{
		Segments: []srv3.Segment{{Size: 3, Pen: srv3.DefaultPen}},
		Orphaned: 1,
	}
	if err := r.RenderCue(cue("one\n", 0, 1000, meta)); err != nil {
		t.Fatalf("RenderCue: %v", err)
	}
	if strings.Contains(sink.lines[0], `one\N`) {
		t.Fatalf("orphaned line break rendered: %q", sink.lines[0])
	}
	if !strings.HasSuffix(sink.lines[0], "one") {
		t.Fatalf("unexpected line: %q", sink.lines[0])
	}
}
