package jsonw

import (
	"bufio"
	"io"
)

// Format controls the layout of emitted JSON. The zero value writes
// everything on one line with no spacing.
type Format struct {
	// Indent is written once per nesting level after each newline.
	Indent []byte
	// NewLine separates elements; empty disables line breaks.
	NewLine []byte
	// SpaceAfterLabel writes "name": value instead of "name":value.
	SpaceAfterLabel bool
	// CompactEmptyElement writes {} and [] instead of breaking the
	// line between empty brackets.
	CompactEmptyElement bool
}

// MinimalFormat writes JSON without any whitespace.
func MinimalFormat() Format {
	return Format{CompactEmptyElement: true}
}

// PrettyFormat breaks lines between elements and indents two spaces
// per level.
func PrettyFormat() Format {
	return Format{
		Indent:          []byte("  "),
		NewLine:         []byte("\n"),
		SpaceAfterLabel: true,
	}
}

// CompactFormat is PrettyFormat with empty composites collapsed to {}.
func CompactFormat() Format {
	f := PrettyFormat()
	f.CompactEmptyElement = true
	return f
}

// Option configures a Writer.
type Option func(*config)

type config struct {
	mode   Mode
	format Format
}

// WithMode sets the structural mode flags.
func WithMode(m Mode) Option {
	return func(c *config) { c.mode = m }
}

// WithFormat sets the layout.
func WithFormat(f Format) Option {
	return func(c *config) { c.format = f }
}

// Writer emits a value tree as JSON. It implements hio.Writer; I/O is
// buffered and any write error is sticky, surfacing at Flush.
type Writer struct {
	*FSM
	sink *jsonSink
}

// NewWriter returns a JSON writer over w. Default is minimal layout
// and no mode flags.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	c := config{format: MinimalFormat()}
	for _, o := range opts {
		o(&c)
	}
	s := &jsonSink{
		out:    bufio.NewWriter(w),
		format: c.format,
	}
	if c.mode&ModeDropRoot == 0 || c.mode&ModeExplicit != 0 {
		// The root wrapper occupies depth zero, so indentation of the
		// payload starts one level down.
		s.depth = -1
	}
	return &Writer{FSM: NewFSM(s, c.mode), sink: s}
}

type jsonSink struct {
	out      *bufio.Writer
	format   Format
	depth    int
	proposed bool
	err      error
}

func (s *jsonSink) Flush() error {
	if s.err != nil {
		return s.err
	}
	return s.out.Flush()
}

func (s *jsonSink) write(b []byte) {
	if s.err != nil {
		return
	}
	_, s.err = s.out.Write(b)
}

func (s *jsonSink) writeByte(b byte) {
	if s.err != nil {
		return
	}
	s.err = s.out.WriteByte(b)
}

func (s *jsonSink) StartObject() {
	if s.proposed {
		s.writeNewLine()
	}
	s.writeByte('{')
	s.startNewLine()
}

func (s *jsonSink) AddLabel(name string) {
	if s.proposed {
		s.writeNewLine()
	}
	s.writeByte('"')
	s.writeEscaped(name)
	s.write([]byte(`":`))
	if s.format.SpaceAfterLabel {
		s.writeByte(' ')
	}
}

func (s *jsonSink) AddValue(value string, t ValueType) {
	if s.proposed {
		s.writeNewLine()
	}
	if t == String {
		s.writeByte('"')
		s.writeEscaped(value)
		s.writeByte('"')
		return
	}
	s.write([]byte(value))
}

func (s *jsonSink) StartArray() {
	if s.proposed {
		s.writeNewLine()
	}
	s.writeByte('[')
	s.startNewLine()
}

func (s *jsonSink) NextElement() {
	s.writeByte(',')
	s.writeNewLine()
}

func (s *jsonSink) EndArray() {
	s.endNewLine()
	s.writeByte(']')
}

func (s *jsonSink) EndObject() {
	s.endNewLine()
	s.writeByte('}')
}

// startNewLine does not break immediately: the break is proposed and
// only materializes when content follows, so closers can cancel it and
// collapse empty composites.
func (s *jsonSink) startNewLine() {
	s.depth++
	if s.depth > 0 {
		s.proposed = true
	}
}

func (s *jsonSink) endNewLine() {
	d := s.depth
	s.depth--
	if d > 0 {
		if s.format.CompactEmptyElement && s.proposed {
			s.proposed = false
		} else {
			s.writeNewLine()
		}
	}
}

func (s *jsonSink) writeNewLine() {
	s.proposed = false
	if len(s.format.NewLine) == 0 {
		return
	}
	s.write(s.format.NewLine)
	for i := 0; i < s.depth; i++ {
		s.write(s.format.Indent)
	}
}

const hexDigits = "0123456789abcdef"

func (s *jsonSink) writeEscaped(v string) {
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch c {
		case '"':
			s.write([]byte(`\"`))
		case '\\':
			s.write([]byte(`\\`))
		case '\b':
			s.write([]byte(`\b`))
		case '\f':
			s.write([]byte(`\f`))
		case '\n':
			s.write([]byte(`\n`))
		case '\r':
			s.write([]byte(`\r`))
		case '\t':
			s.write([]byte(`\t`))
		default:
			if c < 0x20 {
				s.write([]byte{'\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf]})
				continue
			}
			s.writeByte(c)
		}
	}
}
