package caps

import (
	"context"
	"fmt"

	"github.com/benchline/benchline-core/internal/device"
)

// defaultSSHPort is used when a composition does not name a management port.
const defaultSSHPort = 22

// debianHost is the base Linux host capability. It validates the management
// address and records the connection target under the "shell" member.
type debianHost struct{}

func (debianHost) Setup(_ context.Context, dev *device.Composite, cfg device.Config) error {
	addr, _ := cfg["ipaddr"].(string)
	if addr == "" {
		return fmt.Errorf("debian: ipaddr is required")
	}

	port := defaultSSHPort
	switch p := cfg["port"].(type) {
	case int:
		port = p
	case float64:
		port = int(p)
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("debian: port %d out of range", port)
	}

	dev.State()["shell"] = device.Config{
		"ipaddr": addr,
		"port":   port,
	}
	return nil
}

func (debianHost) Prompt() []string {
	return []string{
		`root@[\w-]+:[\w/~.-]+#`,
		`[\w-]+@[\w-]+:[\w/~.-]+\$`,
	}
}

// lanClient configures the host as a LAN-side test client.
type lanClient struct{}

func (lanClient) Setup(_ context.Context, dev *device.Composite, cfg device.Config) error {
	gateway, _ := cfg["lan_gateway"].(string)
	if gateway == "" {
		return fmt.Errorf("lan: lan_gateway is required")
	}

	iface, _ := cfg["lan_iface"].(string)
	if iface == "" {
		iface = "eth1"
	}

	dev.State()["lan"] = device.Config{
		"gateway": gateway,
		"iface":   iface,
	}
	return nil
}

// wanHost configures the host as the WAN-side peer: upstream interface,
// optional static routes, and the dante SOCKS proxy flag.
type wanHost struct{}

func (wanHost) Setup(_ context.Context, dev *device.Composite, cfg device.Config) error {
	iface, _ := cfg["wan_iface"].(string)
	if iface == "" {
		iface = "eth0"
	}

	routes, _ := cfg["static_routes"].([]any)
	dante, _ := cfg["dante"].(bool)

	dev.State()["wan"] = device.Config{
		"iface":  iface,
		"routes": routes,
		"dante":  dante,
	}
	return nil
}

// wifiClient adds a wireless interface to the host.
type wifiClient struct{}

func (wifiClient) Setup(_ context.Context, dev *device.Composite, cfg device.Config) error {
	iface, _ := cfg["wifi_iface"].(string)
	if iface == "" {
		iface = "wlan0"
	}

	dev.State()["wlan"] = device.Config{
		"iface": iface,
	}
	return nil
}
