package convert

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	cli "github.com/urfave/cli/v3"

	"yttc/ass"
	"yttc/srv3"
	"yttc/state"
)

// Info implements the info subcommand: parse a document and print what the
// converter sees in it, useful when a file renders unexpectedly.
func Info(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("info")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read source file: %w", err)
	}

	catalog, q, err := Parse(data, log)
	if err != nil {
		return err
	}

	pens := table.NewWriter()
	pens.SetOutputMirror(os.Stdout)
	pens.SetTitle("Pens")
	pens.AppendHeader(table.Row{"ID", "Font", "Size %", "Bold", "Italic", "Edge", "FG", "BG", "Ruby"})
	for _, id := range slices.Sorted(maps.Keys(catalog.Pens)) {
		pen := catalog.Pens[id]
		pens.AppendRow(table.Row{
			pen.ID,
			ass.FontName(pen.FontStyle),
			pen.FontSize,
			pen.Attrs&srv3.PenAttrBold != 0,
			pen.Attrs&srv3.PenAttrItalic != 0,
			edgeName(pen.EdgeType),
			fmt.Sprintf("#%06X/%d", pen.ForegroundColor, pen.ForegroundAlpha),
			fmt.Sprintf("#%06X/%d", pen.BackgroundColor, pen.BackgroundAlpha),
			pen.RubyPart,
		})
	}
	pens.Render()

	positions := table.NewWriter()
	positions.SetOutputMirror(os.Stdout)
	positions.SetTitle("Window positions")
	positions.AppendHeader(table.Row{"ID", "Anchor", "X %", "Y %", "Alignment"})
	for _, id := range slices.Sorted(maps.Keys(catalog.Positions)) {
		wp := catalog.Positions[id]
		positions.AppendRow(table.Row{wp.ID, wp.Point, wp.X, wp.Y, ass.Alignment(wp.Point)})
	}
	positions.Render()

	events := table.NewWriter()
	events.SetOutputMirror(os.Stdout)
	events.SetTitle("Events")
	events.AppendHeader(table.Row{"#", "Start", "End", "Segments", "Text bytes"})
	for i := 0; ; i++ {
		cue, ok := q.ReadNext()
		if !ok {
			break
		}
		meta, _ := cue.Meta.(*srv3.EventMeta)
		segments := 0
		if meta != nil {
			segments = len(meta.Segments)
		}
		events.AppendRow(table.Row{i, ass.Timestamp(cue.Start), ass.Timestamp(cue.Start + cue.Duration), segments, len(cue.Text)})
	}
	events.Render()

	return nil
}

func edgeName(edge int) string {
	switch edge {
	case srv3.EdgeNone:
		return "none"
	case srv3.EdgeHardShadow:
		return "hard shadow"
	case srv3.EdgeBevel:
		return "bevel"
	case srv3.EdgeGlow:
		return "glow"
	case srv3.EdgeSoftShadow:
		return "soft shadow"
	default:
		return fmt.Sprintf("unknown (%d)", edge)
	}
}
