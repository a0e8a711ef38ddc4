// Package mqtt provides MQTT client connectivity for Benchline Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Benchline uses MQTT as the station event bus: the controller announces
// device registrations, environment check verdicts, and its own lifecycle
// so that lab dashboards and CI listeners can react without polling the
// HTTP API.
//
//	Benchline Core → MQTT Broker → Dashboards / CI listeners
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.Events)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Announce a composed device
//	client.PublishDeviceRegistered(mqtt.DeviceRegisteredEvent{
//	    Name:  "lan-client-1",
//	    Model: "debian",
//	})
//
//	// Watch every device event
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceEvents(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt
