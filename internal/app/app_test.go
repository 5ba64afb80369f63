package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hw5800/internal/hw5800"
	"hw5800/internal/logging"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name: "Default configuration",
			config: Config{
				Frequency:    DefaultFrequency,
				SampleRate:   DefaultSampleRate,
				PPM:          DefaultPPM,
				AGC:          true,
				DeviceIndex:  0,
				LogDir:       "./logs",
				LogRotateUTC: true,
				Verbose:      false,
				ShowVersion:  false,
			},
		},
		{
			name: "Custom configuration",
			config: Config{
				Frequency:    345_000_000,
				SampleRate:   1_000_000,
				PPM:          30,
				Gain:         300,
				DeviceIndex:  1,
				LogDir:       "/tmp/logs",
				LogRotateUTC: false,
				Verbose:      true,
				ShowVersion:  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.config.Frequency, tt.config.Frequency)
			assert.Equal(t, tt.config.SampleRate, tt.config.SampleRate)
			assert.Equal(t, tt.config.PPM, tt.config.PPM)
		})
	}
}

func TestConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant interface{}
		expected interface{}
	}{
		{name: "DefaultFrequency", constant: uint32(DefaultFrequency), expected: uint32(345_000_000)},
		{name: "DefaultSampleRate", constant: uint32(DefaultSampleRate), expected: uint32(1_000_000)},
		{name: "DefaultPPM", constant: DefaultPPM, expected: 60},
		{name: "DefaultQoS", constant: DefaultQoS, expected: 1},
		{name: "DefaultTopic", constant: DefaultTopic, expected: "hw5800"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.constant)
		})
	}
}

func TestShowVersion(t *testing.T) {
	assert.NotPanics(t, func() {
		ShowVersion()
	})
}

func TestNewApplication(t *testing.T) {
	config := Config{
		Frequency:    DefaultFrequency,
		SampleRate:   DefaultSampleRate,
		PPM:          DefaultPPM,
		AGC:          true,
		DeviceIndex:  0,
		LogDir:       "./test_logs",
		LogRotateUTC: true,
		Verbose:      false,
		ShowVersion:  false,
	}

	app := NewApplication(config)

	assert.NotNil(t, app)
	assert.NotNil(t, app.logger)
}

func TestApplication_LoggerConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
	}{
		{name: "Verbose logging", verbose: true},
		{name: "Normal logging", verbose: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Config{
				Frequency:    DefaultFrequency,
				SampleRate:   DefaultSampleRate,
				DeviceIndex:  0,
				LogDir:       "./test_logs",
				LogRotateUTC: true,
				Verbose:      tt.verbose,
			}

			app := NewApplication(config)
			assert.NotNil(t, app.logger)
		})
	}
}

// TestApplication_Accept exercises the Sink wiring directly with a log
// rotator but no publisher or registry configured, and checks that Accept
// does not panic. It does not inspect the log file or stdout.
func TestApplication_Accept(t *testing.T) {
	config := Config{
		Frequency:    DefaultFrequency,
		SampleRate:   DefaultSampleRate,
		DeviceIndex:  0,
		LogDir:       "./test_logs",
		LogRotateUTC: true,
	}
	app := NewApplication(config)

	rotator, err := logging.NewLogRotator(config.LogDir, config.LogRotateUTC, app.logger)
	require.NoError(t, err)
	app.logRotator = rotator
	defer rotator.Close()

	status := hw5800.NewStatus([]byte{0x12, 0x34, 0x56, 0x20})
	assert.NotPanics(t, func() {
		app.Accept(status)
	})
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.RemoveAll("./test_logs")
	os.Exit(code)
}
