package ass

import "io"

// WriterSink terminates event lines and forwards them to an io.Writer. The
// sequence number is implicit in file output, lines arrive already ordered.
type WriterSink struct {
	w io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteLine(line string, _ int) error {
	_, err := io.WriteString(s.w, line+"\r\n")
	return err
}
