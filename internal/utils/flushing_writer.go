package utils

import (
	"io"
	"sync"
)

type errorFlusher interface {
	Flush() error
}

type plainFlusher interface {
	Flush()
}

// FlushingWriter serializes writes from concurrent output drains and flushes the
// destination after each one, so streamed process output appears as it arrives.
type FlushingWriter struct {
	mutex       sync.Mutex
	destination io.Writer
}

// NewFlushingWriter wraps destination. Writers that are already flushing are returned unchanged.
func NewFlushingWriter(destination io.Writer) io.Writer {
	switch typedDestination := destination.(type) {
	case nil:
		return nil
	case *FlushingWriter:
		return typedDestination
	default:
		return &FlushingWriter{destination: destination}
	}
}

// Write forwards data and flushes the destination when it buffers.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	if writer == nil || writer.destination == nil {
		return 0, nil
	}

	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	writtenCount, writeError := writer.destination.Write(data)
	if writeError != nil {
		return writtenCount, writeError
	}
	return writtenCount, writer.flushLocked()
}

// WriteString behaves like Write for callers using io.WriteString.
func (writer *FlushingWriter) WriteString(text string) (int, error) {
	return writer.Write([]byte(text))
}

func (writer *FlushingWriter) flushLocked() error {
	switch flusher := writer.destination.(type) {
	case errorFlusher:
		return flusher.Flush()
	case plainFlusher:
		flusher.Flush()
	}
	return nil
}
