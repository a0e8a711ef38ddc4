package caps

import (
	"github.com/benchline/benchline-core/internal/device"
)

// sourceName identifies this package in the capability catalog.
const sourceName = "benchline.caps"

// source contributes the built-in capability descriptors.
type source struct{}

func (source) Name() string { return sourceName }

func (source) Devices() []device.Descriptor {
	return []device.Descriptor{
		{
			Name:    "debian",
			Models:  []string{"debian"},
			Members: []string{"shell"},
			New:     func() device.Capability { return &debianHost{} },
		},
		{
			Name:    "lan",
			Models:  []string{"debian_lan"},
			Members: []string{"lan"},
			Profiles: map[string]device.Config{
				"debian_lan": {
					"lan_gateway": "192.168.1.1",
					"lan_iface":   "eth1",
				},
			},
			New: func() device.Capability { return &lanClient{} },
		},
		{
			Name:    "wan",
			Models:  []string{"debian_wan"},
			Members: []string{"wan"},
			Profiles: map[string]device.Config{
				"debian_wan": {
					"wan_iface":     "eth0",
					"static_routes": []any{},
					"dante":         false,
				},
			},
			New: func() device.Capability { return &wanHost{} },
		},
		{
			Name:    "wifi",
			Models:  []string{"debian_wifi"},
			Members: []string{"wlan"},
			Profiles: map[string]device.Config{
				"debian_wifi": {
					"wifi_iface": "wlan0",
				},
			},
			New: func() device.Capability { return &wifiClient{} },
		},
	}
}

func init() {
	device.RegisterSource(source{})
}
