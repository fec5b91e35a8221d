package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/hunter-rf-core/internal/infrastructure/config"
)

const (
	// connectTimeout bounds the initial broker connection.
	connectTimeout = 10 * time.Second

	// ackTimeout bounds publish and subscribe acknowledgements.
	ackTimeout = 5 * time.Second

	// disconnectQuiesce is the grace period, in milliseconds, for
	// in-flight messages on Close.
	disconnectQuiesce = 1000

	// keepAlive is the MQTT keepalive interval. A dead link is
	// detected within roughly 1.5 intervals.
	keepAlive = 60 * time.Second

	// maxQoS is the highest valid MQTT QoS level.
	maxQoS = 2
)

// System status values published on Topics{}.SystemStatus().
const (
	statusOnline  = "online"
	statusOffline = "offline"
)

// statusPayload is the retained system-status document. The same
// shape serves as the broker-published LWT body.
type statusPayload struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// statusJSON renders a system-status payload. Reason is only set for
// offline states ("graceful_shutdown", "unexpected_disconnect").
func statusJSON(status, clientID, reason string) []byte {
	b, _ := json.Marshal(statusPayload{ //nolint:errcheck // Fixed struct cannot fail
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return b
}

// clientOptions maps the mqtt section of config.yaml onto paho
// options. The LWT is registered here so the broker announces an
// unexpected drop of this receiver on the system status topic.
func clientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second).
		SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	lwt := statusJSON(statusOffline, cfg.Broker.ClientID, "unexpected_disconnect")
	opts.SetWill(Topics{}.SystemStatus(), string(lwt), 1, true)

	return opts
}
