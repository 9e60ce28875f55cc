package convert

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

const sampleDoc = `<?xml version="1.0" encoding="utf-8"?>
<timedtext format="3">
<head>
<pen id="1" fc="#FF0000" fo="255" bo="0" et="1"/>
<wp id="1" ap="4" ah="50" av="50"/>
</head>
<body>
<p t="1000" d="2000" wp="1" p="1">Hello</p>
<p t="4000" d="1000"></p>
</body>
</timedtext>
`

func TestConvert(t *testing.T) {
	var out bytes.Buffer
	if err := Convert([]byte(sampleDoc), &out, testLogger(t)); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	script := out.String()

	for _, want := range []string{
		"[Script Info]\r\n",
		"PlayResX: 1280\r\n",
		"Style: P0,Roboto,38,&H1ffffff,&H0,&H3f080808,&H3f080808,0,0,0,0,100,100,0,0,3,1,0,2,0,0,0,1\r\n",
		"Style: P2,Roboto,38,&Hff,&H0,&H20202,&H20202,0,0,0,0,100,100,0,0,1,0,0,2,0,0,0,1\r\n",
		"[Events]\r\n",
		`Dialogue: 0,0:00:01.00,0:00:03.00,P0,,0,0,0,,{\an5\pos(640,360)}{\rP2}{\shad2}Hello` + "\r\n",
	} {
		if !strings.Contains(script, want) {
			t.Fatalf("script missing %q:\n%s", want, script)
		}
	}

	// The second event carries no text and must not surface as a Dialogue.
	if got := strings.Count(script, "Dialogue:"); got != 1 {
		t.Fatalf("expected exactly one Dialogue line, found %d:\n%s", got, script)
	}
}

func TestParseAlienRoot(t *testing.T) {
	_, _, err := Parse([]byte(`<transcript><text start="1">hi</text></transcript>`), testLogger(t))
	if err == nil {
		t.Fatal("expected error for alien root element")
	}
}

func TestParseGarbage(t *testing.T) {
	_, _, err := Parse([]byte("not xml at all"), testLogger(t))
	if err == nil {
		t.Fatal("expected error for input without a root element")
	}
}

func TestParseCollectsCues(t *testing.T) {
	catalog, q, err := Parse([]byte(sampleDoc), testLogger(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if catalog.Pen(1) == nil {
		t.Fatal("declared pen missing from catalog")
	}
	// both the real event and the empty one are stored
	if q.Len() != 2 {
		t.Fatalf("expected 2 cues, got %d", q.Len())
	}
}
