package hio

import (
	"reflect"

	"github.com/j2eeguys/xstream/treepath"
)

// TrackingWriter decorates a Writer with a treepath.Tracker so the
// marshaller can ask where the element currently being written lives.
type TrackingWriter struct {
	Writer
	tracker *treepath.Tracker
}

func NewTrackingWriter(w Writer, t *treepath.Tracker) *TrackingWriter {
	return &TrackingWriter{Writer: w, tracker: t}
}

func (w *TrackingWriter) StartNode(name string, typ reflect.Type) error {
	w.tracker.PushElement(name)
	return w.Writer.StartNode(name, typ)
}

func (w *TrackingWriter) EndNode() error {
	if err := w.Writer.EndNode(); err != nil {
		return err
	}
	w.tracker.PopElement()
	return nil
}

// Path returns the path of the currently open element.
func (w *TrackingWriter) Path() *treepath.Path {
	return w.tracker.Path()
}

// TrackingReader decorates a Reader with a treepath.Tracker. The root
// element is pushed at construction time, mirroring the cursor's
// initial position.
type TrackingReader struct {
	Reader
	tracker *treepath.Tracker
}

func NewTrackingReader(r Reader, t *treepath.Tracker) *TrackingReader {
	t.PushElement(r.NodeName())
	return &TrackingReader{Reader: r, tracker: t}
}

func (r *TrackingReader) MoveDown() {
	r.Reader.MoveDown()
	r.tracker.PushElement(r.Reader.NodeName())
}

func (r *TrackingReader) MoveUp() {
	r.Reader.MoveUp()
	r.tracker.PopElement()
}

// Path returns the path of the element the cursor is on.
func (r *TrackingReader) Path() *treepath.Path {
	return r.tracker.Path()
}
