//go:build integration

package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benchline/benchline-core/internal/infrastructure/config"
)

// Integration tests for broker connectivity and reconnection behaviour.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig() config.EventsConfig {
	return config.EventsConfig{
		Enabled: true,
		Broker: config.EventsBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "benchline-integration-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.EventsReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestIntegration_ConnectAndClose(t *testing.T) {
	client, err := Connect(integrationConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close(), want false")
	}
}

func TestIntegration_ConnectInvalidBroker(t *testing.T) {
	cfg := integrationConfig()
	cfg.Broker.Port = 19999

	_, err := Connect(cfg)
	if err == nil {
		t.Fatal("Connect() expected error for invalid broker")
	}

	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestIntegration_PublishSubscribe(t *testing.T) {
	client, err := Connect(integrationConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	received := make(chan []byte, 1)
	topic := Topics{}.DeviceRegistered("integration-device")

	err = client.Subscribe(topic, 1, func(_ string, payload []byte) error {
		received <- payload
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	evt := DeviceRegisteredEvent{Name: "integration-device", Model: "debian"}
	if err := client.PublishDeviceRegistered(evt); err != nil {
		t.Fatalf("PublishDeviceRegistered() error = %v", err)
	}

	select {
	case payload := <-received:
		if len(payload) == 0 {
			t.Error("received empty payload")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}
