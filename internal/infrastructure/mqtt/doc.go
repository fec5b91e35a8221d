// Package mqtt connects the receiver daemon to its broker.
//
// MQTT is both the input and the output of the daemon: the external
// demodulator publishes raw pulse trains that the bridge subscribes
// to, and decoded remote events, bridge health and system status flow
// back out.
//
//	demodulator → broker → hunterrf → broker → consumers
//
// The client reconnects automatically, replays subscriptions after
// every reconnect, and registers a retained last-will so consumers
// see an offline status when the daemon dies without a clean
// shutdown. Topic names are centralised in the Topics builder.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.RadioPulses(), 1, handlePulses)
//
// Enable TLS (broker.tls) for anything beyond local development.
package mqtt
