package hw5800

import "fmt"

// Status is a decoded Honeywell 5800 message: a 24-bit device ID plus one
// status byte whose meaning depends on the device type. Immutable once
// constructed.
type Status struct {
	id   uint32
	bits uint8
}

// NewStatus constructs a Status from a validated frame buffer. The buffer
// must hold at least 4 bytes: the first 3 are the big-endian device ID and
// the 4th is the status byte. It panics if fewer than 4 bytes are supplied —
// this is a programmer error, not a recoverable decode failure.
func NewStatus(m []byte) Status {
	if len(m) < 4 {
		panic(fmt.Sprintf("hw5800: NewStatus needs at least 4 bytes, got %d", len(m)))
	}
	return Status{
		id:   uint32(m[0])<<16 | uint32(m[1])<<8 | uint32(m[2]),
		bits: m[3],
	}
}

// ID returns the 24-bit device identifier.
func (s Status) ID() uint32 {
	return s.id
}

// Bits returns the raw status byte. No interpretation of its meaning
// happens here; that is device-type-specific and is the concern of
// downstream collaborators (see the devices package).
func (s Status) Bits() uint8 {
	return s.bits
}

// Sink receives decoded Status values as the pipeline emits them. Invoked
// synchronously on the sample-processing goroutine.
type Sink interface {
	Accept(status Status)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(status Status)

// Accept implements Sink.
func (f SinkFunc) Accept(status Status) {
	f(status)
}
