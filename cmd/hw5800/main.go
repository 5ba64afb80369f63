package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hw5800/internal/app"
)

func main() {
	var config app.Config

	rootCmd := &cobra.Command{
		Use:   "hw5800",
		Short: "Honeywell 5800 security sensor decoder",
		Long: `Decodes Honeywell 5800-series 345MHz wireless security sensor
transmissions from an RTL-SDR dongle: decimates raw I/Q samples, gates and
peak-tracks candidate transmission windows, decodes on-cut bits and validates
6-byte frames by CRC-16/BUYPASS, then emits door/motion status as JSON to a
rotated log, stdout, and optionally an MQTT broker.

Example usage:
  hw5800 --device 0 --device-file sensors.txt --mqtt-broker localhost --mqtt-port 1883`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ShowVersion {
				app.ShowVersion()
				return nil
			}

			application := app.NewApplication(config)
			return application.Start()
		},
	}

	flags := rootCmd.Flags()
	flags.Uint32VarP(&config.Frequency, "frequency", "f", app.DefaultFrequency, "Frequency to tune to (Hz)")
	flags.Uint32VarP(&config.SampleRate, "sample-rate", "s", app.DefaultSampleRate, "Sample rate (Hz)")
	flags.IntVar(&config.PPM, "ppm", app.DefaultPPM, "Frequency correction (parts per million)")
	flags.BoolVar(&config.AGC, "agc", true, "Enable tuner AGC")
	flags.IntVarP(&config.Gain, "gain", "g", 0, "Manual tuner gain in tenths of dB, ignored if --agc")
	flags.IntVarP(&config.DeviceIndex, "device", "d", 0, "RTL-SDR device index")
	flags.StringVar(&config.DeviceFile, "device-file", "", "Device identification file (\"<hex-id> door|motion\" per line)")

	flags.StringVar(&config.MQTTBroker, "mqtt-broker", "", "MQTT broker host (e.g. localhost); leave empty to disable publishing")
	flags.Uint16Var(&config.MQTTPort, "mqtt-port", app.DefaultMQTTPort, "MQTT broker port")
	flags.StringVar(&config.MQTTClientID, "mqtt-client-id", "", "MQTT client ID (generated if empty)")
	flags.StringVar(&config.MQTTUsername, "mqtt-user", "", "MQTT username")
	flags.StringVar(&config.MQTTPassword, "mqtt-password", "", "MQTT password")
	flags.StringVar(&config.MQTTTopicPrefix, "mqtt-topic-prefix", app.DefaultTopic, "MQTT topic prefix; status is published to \"<prefix>/<6-hex-id>\"")
	qos := uint8(app.DefaultQoS)
	config.MQTTQoS = qos
	flags.Uint8Var(&config.MQTTQoS, "mqtt-qos", qos, "MQTT QoS level (0, 1, or 2)")
	flags.BoolVar(&config.MQTTRetain, "mqtt-retain", false, "Set the MQTT retain flag on published messages")
	flags.StringVar(&config.MQTTCACert, "mqtt-ca-cert", "", "Path to a CA certificate for MQTT TLS")
	flags.StringVar(&config.MQTTClientCert, "mqtt-client-cert", "", "Path to a client certificate for MQTT TLS")
	flags.StringVar(&config.MQTTClientKey, "mqtt-client-key", "", "Path to a client private key for MQTT TLS")

	flags.StringVarP(&config.LogDir, "log-dir", "l", "./logs", "Log directory")
	flags.BoolVarP(&config.LogRotateUTC, "utc", "u", true, "Use UTC for log rotation")
	flags.BoolVarP(&config.Verbose, "verbose", "v", false, "Verbose logging")
	flags.BoolVar(&config.ShowVersion, "version", false, "Show version information")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
