package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter serializes writes from streamed child processes and flushes buffered destinations after every write.
type FlushingWriter struct {
	destination io.Writer
	mutex       sync.Mutex
}

// NewFlushingWriter wraps destination; a nil destination yields nil and an existing FlushingWriter is returned unchanged.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return nil
	}
	if _, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return destination
	}
	return &FlushingWriter{destination: destination}
}

// Write delegates to the destination and flushes it when it buffers.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	if writer == nil || writer.destination == nil {
		return 0, nil
	}

	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	bytesWritten, writeError := writer.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if bufferedDestination, buffers := writer.destination.(flusher); buffers {
		if flushError := bufferedDestination.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}

	return bytesWritten, nil
}
