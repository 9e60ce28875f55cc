// Package convert wires the conversion pipeline together: tolerant XML
// loading, SRV3 parsing into the cue store, ASS rendering to destination.
package convert

import (
	"bytes"
	"fmt"
	"io"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"yttc/ass"
	"yttc/srv3"
	"yttc/subtitles"
)

// loadDocument parses raw bytes into an XML tree. Caption files in the wild
// are not always clean UTF-8, so reading is charset aware and permissive.
func loadDocument(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		ValidateInput: false,
		Permissive:    true,
	}
	if _, err := doc.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("unable to read XML: %w", err)
	}
	return doc, nil
}

// Parse runs the parse half of the pipeline and returns the style catalog
// along with the finalized cue store.
func Parse(data []byte, log *zap.Logger) (*srv3.Document, *subtitles.Queue, error) {
	if !srv3.Probe(data) {
		log.Warn("Input does not carry the expected timedtext format markers, trying anyway")
	}

	doc, err := loadDocument(data)
	if err != nil {
		return nil, nil, err
	}

	q := subtitles.NewQueue()
	catalog, err := srv3.Parse(doc, q, log)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse SRV3 document: %w", err)
	}
	q.Finalize()
	return catalog, q, nil
}

// Convert transforms one SRV3 document into a complete ASS script written
// to w.
func Convert(data []byte, w io.Writer, log *zap.Logger) error {
	catalog, q, err := Parse(data, log)
	if err != nil {
		return err
	}

	renderer := ass.NewRenderer(ass.NewWriterSink(w), log)
	if _, err := io.WriteString(w, renderer.Header(catalog)); err != nil {
		return fmt.Errorf("unable to write script header: %w", err)
	}
	for {
		cue, ok := q.ReadNext()
		if !ok {
			break
		}
		if err := renderer.RenderCue(cue); err != nil {
			return fmt.Errorf("unable to write event: %w", err)
		}
	}
	return nil
}
