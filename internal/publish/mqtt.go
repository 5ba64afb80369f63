// Package publish wires decoded Honeywell 5800 status messages to an MQTT
// broker, with optional TLS client/CA certificate configuration.
package publish

import (
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"hw5800/internal/devices"
	"hw5800/internal/hw5800"
)

// TLSConfig configures an optional TLS connection to the broker.
type TLSConfig struct {
	Enabled    bool
	CACert     string
	ClientCert string
	ClientKey  string
}

// Config configures the MQTT publisher.
type Config struct {
	Broker       string // e.g. "tcp://localhost:1883"
	ClientID     string // generated if empty
	Username     string
	Password     string
	QoS          byte
	Retain       bool
	TopicPrefix  string // topic is "<prefix>/<6-hex-id>"
	TLS          TLSConfig
}

// Publisher publishes formatted Status payloads to an MQTT broker.
type Publisher struct {
	client mqtt.Client
	config Config
	logger *logrus.Logger
}

// generateClientID returns a random client ID used when Config.ClientID is
// left blank.
func generateClientID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "hw5800_" + hex.EncodeToString(b)
}

// loadTLSConfig builds a *tls.Config from the configured CA and client
// certificate files. Returns nil if TLS is not enabled.
func loadTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	tlsConfig := &tls.Config{}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("publish: failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("publish: failed to parse CA certificate")
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("publish: failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// NewPublisher connects to the configured MQTT broker and returns a
// Publisher ready to publish Status events.
func NewPublisher(cfg Config, logger *logrus.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = generateClientID()
	}
	opts.SetClientID(clientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	if cfg.TLS.Enabled {
		tlsConfig, err := loadTLSConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsConfig)
	}

	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.WithField("broker", cfg.Broker).Info("mqtt: connected to broker")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.WithError(err).Warn("mqtt: connection lost")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("publish: failed to connect to broker: %w", token.Error())
	}

	return &Publisher{client: client, config: cfg, logger: logger}, nil
}

// Publish formats status for deviceType and publishes it to
// "<topic-prefix>/<6-hex-id>". Publish failures are logged, not returned: a
// dropped publish must never block or corrupt the pipeline's DSP state.
func (p *Publisher) Publish(status hw5800.Status, deviceType devices.Type) {
	payload := devices.FormatStatus(status, deviceType)
	topic := fmt.Sprintf("%s/%06X", p.config.TopicPrefix, status.ID())

	token := p.client.Publish(topic, p.config.QoS, p.config.Retain, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			p.logger.WithError(token.Error()).WithField("topic", topic).Warn("mqtt: publish failed")
		}
	}()
}

// Disconnect gracefully disconnects from the broker, waiting up to 250ms
// for in-flight work to quiesce.
func (p *Publisher) Disconnect() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
