package srv3

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// colorAttr marks a hex color field in an attribute table: min == max is
// meaningless for a range check, so the pair doubles as the base-16 flag.
const colorAttr = math.MaxInt

// attrDef describes one recognized attribute: its name, the accepted value
// range and where the parsed value goes. All failures are local, the
// destination keeps its previous (default derived) value.
type attrDef struct {
	name     string
	min, max int
	set      func(int)
}

// parseNumericValue parses value in the given base and range checks it.
// Anything wrong is a warning, never an error: the format is undocumented
// and documents in the wild do carry garbage.
func parseNumericValue(log *zap.Logger, parent, name, value string, base, min, max int) (int, bool) {
	parsed, err := strconv.ParseInt(value, base, 64)
	if err != nil {
		log.Warn("Failed to parse attribute value as an integer",
			zap.String("parent", parent), zap.String("attr", name), zap.String("value", value))
		return 0, false
	}
	if parsed < int64(min) || parsed > int64(max) {
		log.Warn("Attribute value out of range",
			zap.String("parent", parent), zap.String("attr", name),
			zap.Int64("value", parsed), zap.Int("min", min), zap.Int("max", max))
		return 0, false
	}
	return int(parsed), true
}

func parseNumericAttr(log *zap.Logger, parent string, attr etree.Attr, min, max int) (int, bool) {
	return parseNumericValue(log, parent, attr.Key, attr.Value, 10, min, max)
}

func parseColorAttr(log *zap.Logger, parent string, attr etree.Attr) (int, bool) {
	return parseNumericValue(log, parent, attr.Key, strings.TrimPrefix(attr.Value, "#"), 16, 0, 0xFFFFFF)
}

// applySimpleAttr runs one attribute through a declarative table. Returns
// false when the name is not in the table so the caller can handle its
// special cases and decide whether to warn.
func applySimpleAttr(log *zap.Logger, parent string, defs []attrDef, attr etree.Attr) bool {
	for _, def := range defs {
		if def.name != attr.Key {
			continue
		}
		if def.min == colorAttr && def.max == colorAttr {
			if v, ok := parseColorAttr(log, parent, attr); ok {
				def.set(v)
			}
		} else if v, ok := parseNumericAttr(log, parent, attr, def.min, def.max); ok {
			def.set(v)
		}
		return true
	}
	return false
}
