package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"hw5800/internal/devices"
	"hw5800/internal/hw5800"
	"hw5800/internal/logging"
	"hw5800/internal/publish"
	"hw5800/internal/rtlsdr"
)

// Application wires the SDR device, decode pipeline, device registry, log
// rotator and optional MQTT publisher together and manages their lifecycle.
type Application struct {
	config Config
	logger *logrus.Logger

	device     *rtlsdr.Device
	pipeline   *hw5800.Pipeline
	registry   *devices.Registry
	logRotator *logging.LogRotator
	publisher  *publish.Publisher

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	verbose bool
}

// NewApplication creates a new application instance.
func NewApplication(config Config) *Application {
	ctx, cancel := context.WithCancel(context.Background())

	logger := logrus.New()
	if config.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Application{
		config:  config,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		verbose: config.Verbose,
	}
}

// Accept implements hw5800.Sink: it looks up the device's type, formats the
// status and writes it to the rotated log and stdout, then publishes it over
// MQTT if a publisher is configured.
func (app *Application) Accept(status hw5800.Status) {
	deviceType := app.registry.Lookup(status.ID())
	payload := devices.FormatStatus(status, deviceType)

	line := append(append([]byte(nil), payload...), '\n')
	if writer, err := app.logRotator.GetWriter(); err != nil {
		app.logger.WithError(err).Warn("app: failed to get log writer")
	} else if _, err := writer.Write(line); err != nil {
		app.logger.WithError(err).Warn("app: failed to write status log")
	}
	os.Stdout.Write(line)

	if app.publisher != nil {
		app.publisher.Publish(status, deviceType)
	}
}

// Start initializes all components, begins capture, and blocks until a
// termination signal arrives, then shuts down gracefully.
func (app *Application) Start() error {
	app.logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("app: starting hw5800 decoder")

	if err := app.initializeComponents(); err != nil {
		return fmt.Errorf("app: failed to initialize components: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.run(); err != nil {
		app.logger.WithError(err).Error("app: startup error")
		return err
	}

	<-sigChan
	app.logger.Info("app: received shutdown signal")
	app.shutdown()

	return nil
}

// initializeComponents constructs every collaborator the application wires
// together. The MQTT publisher is only constructed when a broker address was
// configured; without one, decoded status lines go to the rotated log and
// stdout only.
func (app *Application) initializeComponents() error {
	var err error

	app.registry = devices.NewRegistry()
	if app.config.DeviceFile != "" {
		f, err := os.Open(app.config.DeviceFile)
		if err != nil {
			return fmt.Errorf("failed to open device file: %w", err)
		}
		defer f.Close()

		app.registry, err = devices.Load(f)
		if err != nil {
			return fmt.Errorf("failed to load device file: %w", err)
		}
	}

	app.logRotator, err = logging.NewLogRotator(app.config.LogDir, app.config.LogRotateUTC, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize log rotator: %w", err)
	}

	app.pipeline = hw5800.NewPipeline(app, app.logger)

	if app.config.MQTTBroker != "" {
		pubCfg := publish.Config{
			Broker:      fmt.Sprintf("tcp://%s:%d", app.config.MQTTBroker, app.config.MQTTPort),
			ClientID:    app.config.MQTTClientID,
			Username:    app.config.MQTTUsername,
			Password:    app.config.MQTTPassword,
			QoS:         app.config.MQTTQoS,
			Retain:      app.config.MQTTRetain,
			TopicPrefix: app.config.MQTTTopicPrefix,
			TLS: publish.TLSConfig{
				Enabled:    app.config.MQTTCACert != "" || app.config.MQTTClientCert != "",
				CACert:     app.config.MQTTCACert,
				ClientCert: app.config.MQTTClientCert,
				ClientKey:  app.config.MQTTClientKey,
			},
		}
		app.publisher, err = publish.NewPublisher(pubCfg, app.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize MQTT publisher: %w", err)
		}
	}

	app.device, err = rtlsdr.NewDevice(app.config.DeviceIndex, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize rtlsdr device: %w", err)
	}

	sdrCfg := rtlsdr.Config{
		Frequency:  app.config.Frequency,
		SampleRate: app.config.SampleRate,
		PPM:        app.config.PPM,
		AGC:        app.config.AGC,
		Gain:       app.config.Gain,
	}
	if err := app.device.Configure(sdrCfg); err != nil {
		return fmt.Errorf("failed to configure rtlsdr device: %w", err)
	}

	return nil
}

// run starts capture, log rotation and statistics reporting as background
// goroutines.
func (app *Application) run() error {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		if err := app.device.StartCapture(app.ctx, app.pipeline.AddIQBytes); err != nil {
			app.logger.WithError(err).Error("app: capture failed")
		}
	}()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.logRotator.Start(app.ctx)
	}()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.reportStatistics()
	}()

	app.logger.Info("app: all components started")
	return nil
}

// reportStatistics logs cumulative pipeline counters periodically.
func (app *Application) reportStatistics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			stats := app.pipeline.Stats()
			app.logger.WithFields(logrus.Fields{
				"windows_examined": stats.WindowsExamined,
				"windows_gated":    stats.WindowsGated,
				"frames_accepted":  stats.FramesAccepted,
				"frames_rejected":  stats.FramesRejected,
			}).Info("app: pipeline statistics")
		}
	}
}

// shutdown cancels the context, waits for goroutines with a timeout, then
// releases components in order: device, log rotator, MQTT publisher.
func (app *Application) shutdown() {
	app.logger.Info("app: shutting down")
	app.cancel()

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		app.logger.Info("app: all goroutines finished")
	case <-time.After(5 * time.Second):
		app.logger.Warn("app: shutdown timeout, forcing exit")
	}

	if app.device != nil {
		if err := app.device.Close(); err != nil {
			app.logger.WithError(err).Warn("app: failed to close device")
		}
	}
	if app.logRotator != nil {
		if err := app.logRotator.Close(); err != nil {
			app.logger.WithError(err).Warn("app: failed to close log rotator")
		}
	}
	if app.publisher != nil {
		app.publisher.Disconnect()
	}

	app.logger.Info("app: shutdown complete")
}
