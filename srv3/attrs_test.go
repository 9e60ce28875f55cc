package srv3

import (
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func TestParseNumericValue(t *testing.T) {
	log := testLogger(t)

	cases := []struct {
		name     string
		value    string
		base     int
		min, max int
		want     int
		ok       bool
	}{
		{"decimal", "42", 10, 0, 100, 42, true},
		{"at min", "0", 10, 0, 100, 0, true},
		{"at max", "100", 10, 0, 100, 100, true},
		{"below min", "-1", 10, 0, 100, 0, false},
		{"above max", "101", 10, 0, 100, 0, false},
		{"trailing garbage", "42a", 10, 0, 100, 0, false},
		{"empty", "", 10, 0, 100, 0, false},
		{"hex", "ff00ff", 16, 0, 0xFFFFFF, 0xFF00FF, true},
		{"hex out of range", "1000000", 16, 0, 0xFFFFFF, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseNumericValue(log, "test", "attr", tc.value, tc.base, tc.min, tc.max)
			if ok != tc.ok {
				t.Fatalf("parseNumericValue(%q) ok = %v, want %v", tc.value, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("parseNumericValue(%q) = %d, want %d", tc.value, got, tc.want)
			}
		})
	}
}

func TestApplySimpleAttrKeepsDestinationOnFailure(t *testing.T) {
	log := testLogger(t)

	dst := 7
	defs := []attrDef{{"v", 0, 10, func(v int) { dst = v }}}

	if !applySimpleAttr(log, "test", defs, etree.Attr{Key: "v", Value: "11"}) {
		t.Fatalf("recognized attribute reported as unhandled")
	}
	if dst != 7 {
		t.Fatalf("out-of-range value modified destination: %d", dst)
	}
	if !applySimpleAttr(log, "test", defs, etree.Attr{Key: "v", Value: "junk"}) {
		t.Fatalf("recognized attribute reported as unhandled")
	}
	if dst != 7 {
		t.Fatalf("malformed value modified destination: %d", dst)
	}
	if !applySimpleAttr(log, "test", defs, etree.Attr{Key: "v", Value: "3"}) {
		t.Fatalf("recognized attribute reported as unhandled")
	}
	if dst != 3 {
		t.Fatalf("in-range value did not update destination: %d", dst)
	}
}

func TestApplySimpleAttrColorSentinel(t *testing.T) {
	log := testLogger(t)

	dst := 0x020202
	defs := []attrDef{{"c", colorAttr, colorAttr, func(v int) { dst = v }}}

	if !applySimpleAttr(log, "test", defs, etree.Attr{Key: "c", Value: "#FF8000"}) {
		t.Fatalf("color attribute reported as unhandled")
	}
	if dst != 0xFF8000 {
		t.Fatalf("color with # prefix not parsed: %#x", dst)
	}
	if !applySimpleAttr(log, "test", defs, etree.Attr{Key: "c", Value: "123abc"}) {
		t.Fatalf("color attribute reported as unhandled")
	}
	if dst != 0x123ABC {
		t.Fatalf("bare hex color not parsed: %#x", dst)
	}
	if !applySimpleAttr(log, "test", defs, etree.Attr{Key: "c", Value: "1234567"}) {
		t.Fatalf("color attribute reported as unhandled")
	}
	if dst != 0x123ABC {
		t.Fatalf("out-of-range color modified destination: %#x", dst)
	}
}

func TestApplySimpleAttrUnknownName(t *testing.T) {
	log := testLogger(t)

	defs := []attrDef{{"v", 0, 10, func(int) { t.Fatalf("setter called for unknown attribute") }}}
	if applySimpleAttr(log, "test", defs, etree.Attr{Key: "other", Value: "1"}) {
		t.Fatalf("unknown attribute reported as handled")
	}
}
