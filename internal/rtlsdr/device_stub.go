//go:build !cgo

package rtlsdr

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Device is a stub for builds without cgo (and hence without librtlsdr).
type Device struct{}

// NewDevice always fails on a non-cgo build; the rest of the program still
// compiles and can be exercised against synthetic samples without the
// native library present.
func NewDevice(index int, logger *logrus.Logger) (*Device, error) {
	return nil, fmt.Errorf("rtlsdr: hardware support requires a cgo build with librtlsdr installed")
}

// Configure always fails on the stub device.
func (d *Device) Configure(cfg Config) error {
	return fmt.Errorf("rtlsdr: hardware support requires a cgo build with librtlsdr installed")
}

// StartCapture always fails on the stub device.
func (d *Device) StartCapture(ctx context.Context, sink func([]byte)) error {
	return fmt.Errorf("rtlsdr: hardware support requires a cgo build with librtlsdr installed")
}

// Close always fails on the stub device.
func (d *Device) Close() error {
	return fmt.Errorf("rtlsdr: hardware support requires a cgo build with librtlsdr installed")
}
