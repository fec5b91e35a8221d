package mqtt

import "fmt"

// Topic prefixes for the Hunter RF Core topic hierarchy.
//
// The receiver sits between an external demodulator publishing raw pulse
// trains and consumers of decoded remote events:
//
//	demodulator → hunterrf/radio/pulses → hunterrf → hunterrf/event/remote/{id}
const (
	// TopicPrefix is the base for all Hunter RF Core topics.
	TopicPrefix = "hunterrf"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "hunterrf/system"
)

// Topics provides builders for Hunter RF Core MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	eventTopic := topics.RemoteEvent("0102030405")
//	// Returns: "hunterrf/event/remote/0102030405"
type Topics struct{}

// RadioPulses returns the topic the external demodulator publishes raw
// pulse trains to. The receiver subscribes here.
//
// Example: hunterrf/radio/pulses
func (Topics) RadioPulses() string {
	return fmt.Sprintf("%s/radio/pulses", TopicPrefix)
}

// RemoteEvent returns the topic decoded command events are published to,
// keyed by the remote's hex identifier.
//
// Example: hunterrf/event/remote/0102030405
func (Topics) RemoteEvent(remoteID string) string {
	return fmt.Sprintf("%s/event/remote/%s", TopicPrefix, remoteID)
}

// BridgeHealth returns the topic for bridge health status.
//
// Example: hunterrf/health/rf433
func (Topics) BridgeHealth(bridge string) string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, bridge)
}

// SystemStatus returns the system status topic used for online/offline
// announcements and the Last Will message.
//
// Example: hunterrf/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
