//go:build cgo

// Package rtlsdr wraps librtlsdr (via github.com/jpoirier/gortlsdr) to
// acquire the raw I/Q byte stream the hw5800 pipeline consumes.
package rtlsdr

import (
	"context"
	"errors"
	"fmt"

	rtlsdr "github.com/jpoirier/gortlsdr"
	"github.com/sirupsen/logrus"
)

// bufferChunkSize is the async read chunk size.
const bufferChunkSize = 16384

// Device wraps an RTL-SDR dongle.
type Device struct {
	dev      *rtlsdr.Context
	logger   *logrus.Logger
	index    int
	isOpen   bool
	cancelFn context.CancelFunc
}

// NewDevice opens the RTL-SDR device at index.
func NewDevice(index int, logger *logrus.Logger) (*Device, error) {
	count := rtlsdr.GetDeviceCount()
	if count == 0 {
		return nil, errors.New("rtlsdr: no devices found")
	}
	if index >= count {
		return nil, fmt.Errorf("rtlsdr: device index %d out of range (0-%d)", index, count-1)
	}

	dev, err := rtlsdr.Open(index)
	if err != nil {
		return nil, fmt.Errorf("rtlsdr: failed to open device %d: %w", index, err)
	}

	return &Device{dev: dev, logger: logger, index: index, isOpen: true}, nil
}

// Configure tunes the device per cfg.
func (d *Device) Configure(cfg Config) error {
	if err := d.dev.SetCenterFreq(int(cfg.Frequency)); err != nil {
		return fmt.Errorf("rtlsdr: failed to set frequency: %w", err)
	}
	if err := d.dev.SetSampleRate(int(cfg.SampleRate)); err != nil {
		return fmt.Errorf("rtlsdr: failed to set sample rate: %w", err)
	}
	if err := d.dev.SetFreqCorrection(cfg.PPM); err != nil {
		return fmt.Errorf("rtlsdr: failed to set PPM correction: %w", err)
	}

	if cfg.AGC {
		if err := d.dev.SetTunerGainMode(false); err != nil {
			return fmt.Errorf("rtlsdr: failed to enable AGC: %w", err)
		}
	} else {
		if err := d.dev.SetTunerGainMode(true); err != nil {
			return fmt.Errorf("rtlsdr: failed to enable manual gain mode: %w", err)
		}
		if err := d.dev.SetTunerGain(cfg.Gain); err != nil {
			return fmt.Errorf("rtlsdr: failed to set gain: %w", err)
		}
	}

	if err := d.dev.ResetBuffer(); err != nil {
		return fmt.Errorf("rtlsdr: failed to reset buffer: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"device_index": d.index,
		"frequency":    cfg.Frequency,
		"sample_rate":  cfg.SampleRate,
		"ppm":          cfg.PPM,
		"agc":          cfg.AGC,
	}).Info("rtlsdr: device configured")

	return nil
}

// StartCapture starts an async read loop, handing each raw byte buffer to
// sink until ctx is canceled. Blocks until canceled.
func (d *Device) StartCapture(ctx context.Context, sink func([]byte)) error {
	if !d.isOpen {
		return errors.New("rtlsdr: device not open")
	}

	captureCtx, cancel := context.WithCancel(ctx)
	d.cancelFn = cancel

	callback := func(data []byte) {
		select {
		case <-captureCtx.Done():
			return
		default:
			sink(data)
		}
	}

	d.logger.Info("rtlsdr: starting capture")

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.WithField("panic", r).Error("rtlsdr: capture panic")
			}
		}()
		done <- d.dev.ReadAsync(callback, nil, 0, bufferChunkSize*16)
	}()

	<-captureCtx.Done()

	if err := d.dev.CancelAsync(); err != nil {
		d.logger.WithError(err).Warn("rtlsdr: failed to cancel async read")
	}

	return <-done
}

// Close releases the device.
func (d *Device) Close() error {
	if d.cancelFn != nil {
		d.cancelFn()
	}
	if d.dev != nil && d.isOpen {
		if err := d.dev.Close(); err != nil {
			return fmt.Errorf("rtlsdr: failed to close device: %w", err)
		}
		d.isOpen = false
		d.logger.Info("rtlsdr: device closed")
	}
	return nil
}
