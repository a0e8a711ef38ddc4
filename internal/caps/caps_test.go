package caps

import (
	"context"
	"errors"
	"testing"

	"github.com/benchline/benchline-core/internal/device"
)

func newTestCatalog() *device.Catalog {
	catalog := device.NewCatalog()
	catalog.Discover([]device.Source{source{}})
	return catalog
}

func TestSourceRegistered(t *testing.T) {
	for _, src := range device.DefaultSources() {
		if src.Name() == sourceName {
			return
		}
	}
	t.Fatalf("source %q not registered at init", sourceName)
}

func TestDiscoverDescriptors(t *testing.T) {
	catalog := newTestCatalog()

	if got := catalog.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}

	models := catalog.Models()
	want := []string{"debian", "debian_lan", "debian_wan", "debian_wifi"}
	if len(models) != len(want) {
		t.Fatalf("Models() = %v, want %v", models, want)
	}
	for i, m := range want {
		if models[i] != m {
			t.Errorf("Models()[%d] = %q, want %q", i, models[i], m)
		}
	}
}

func TestComposeDebian(t *testing.T) {
	composer := device.NewComposer(newTestCatalog())

	dev, err := composer.Build(context.Background(), "debian", nil, device.Config{
		"name":   "host-1",
		"ipaddr": "10.0.0.5",
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if got := dev.Name(); got != "host-1" {
		t.Errorf("Name() = %q, want %q", got, "host-1")
	}
	if got := dev.Members(); len(got) != 1 || got[0] != "shell" {
		t.Errorf("Members() = %v, want [shell]", got)
	}

	shell, ok := dev.State()["shell"].(device.Config)
	if !ok {
		t.Fatalf("shell state not recorded: %v", dev.State())
	}
	if shell["ipaddr"] != "10.0.0.5" {
		t.Errorf("shell ipaddr = %v, want 10.0.0.5", shell["ipaddr"])
	}
	if shell["port"] != defaultSSHPort {
		t.Errorf("shell port = %v, want %d", shell["port"], defaultSSHPort)
	}
}

func TestComposeDebianWithLANProfile(t *testing.T) {
	composer := device.NewComposer(newTestCatalog())

	dev, err := composer.Build(context.Background(), "debian", nil, device.Config{
		"ipaddr":  "10.0.0.5",
		"profile": map[string]any{"debian_lan": map[string]any{}},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	members := dev.Members()
	if len(members) != 2 || members[0] != "lan" || members[1] != "shell" {
		t.Fatalf("Members() = %v, want [lan shell]", members)
	}

	lan, ok := dev.State()["lan"].(device.Config)
	if !ok {
		t.Fatalf("lan state not recorded: %v", dev.State())
	}
	if lan["gateway"] != "192.168.1.1" {
		t.Errorf("lan gateway = %v, want 192.168.1.1", lan["gateway"])
	}
	if lan["iface"] != "eth1" {
		t.Errorf("lan iface = %v, want eth1", lan["iface"])
	}
}

func TestComposeProfileOverrides(t *testing.T) {
	composer := device.NewComposer(newTestCatalog())

	// Per-alias overrides replace the descriptor's declared defaults.
	dev, err := composer.Build(context.Background(), "debian", nil, device.Config{
		"ipaddr": "10.0.0.5",
		"profile": map[string]any{
			"debian_lan": map[string]any{"lan_gateway": "172.16.0.1"},
		},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	lan := dev.State()["lan"].(device.Config)
	if lan["gateway"] != "172.16.0.1" {
		t.Errorf("lan gateway = %v, want 172.16.0.1", lan["gateway"])
	}
}

func TestComposeExplicitConfigWinsOverProfile(t *testing.T) {
	composer := device.NewComposer(newTestCatalog())

	// lan_gateway set explicitly; the profile default for the same key is
	// dropped during the merge.
	dev, err := composer.Build(context.Background(), "debian", nil, device.Config{
		"ipaddr":      "10.0.0.5",
		"lan_gateway": "10.1.1.1",
		"profile":     map[string]any{"debian_lan": map[string]any{}},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	lan := dev.State()["lan"].(device.Config)
	if lan["gateway"] != "10.1.1.1" {
		t.Errorf("lan gateway = %v, want 10.1.1.1", lan["gateway"])
	}
}

func TestComposeStackedProfiles(t *testing.T) {
	composer := device.NewComposer(newTestCatalog())

	dev, err := composer.Build(context.Background(), "debian", nil, device.Config{
		"ipaddr": "10.0.0.5",
		"profile": map[string]any{
			"debian_lan":  map[string]any{},
			"debian_wan":  map[string]any{},
			"debian_wifi": map[string]any{},
		},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	members := dev.Members()
	want := []string{"lan", "shell", "wan", "wlan"}
	if len(members) != len(want) {
		t.Fatalf("Members() = %v, want %v", members, want)
	}
	for i, m := range want {
		if members[i] != m {
			t.Errorf("Members()[%d] = %q, want %q", i, members[i], m)
		}
	}

	// The base host initializes before any profile layer.
	if got := dev.Descriptors()[0]; got != "debian" {
		t.Errorf("Descriptors()[0] = %q, want debian", got)
	}
}

func TestSetupValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  device.Config
	}{
		{
			name: "missing ipaddr",
			cfg:  device.Config{},
		},
		{
			name: "port out of range",
			cfg:  device.Config{"ipaddr": "10.0.0.5", "port": 70000},
		},
		{
			name: "lan gateway cleared by override",
			cfg: device.Config{
				"ipaddr": "10.0.0.5",
				"profile": map[string]any{
					"debian_lan": map[string]any{"lan_gateway": ""},
				},
			},
		},
	}

	composer := device.NewComposer(newTestCatalog())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := composer.Build(context.Background(), "debian", nil, tt.cfg)
			if !errors.Is(err, device.ErrSetupFailed) {
				t.Fatalf("Build() error = %v, want ErrSetupFailed", err)
			}
		})
	}
}

func TestComposePortFromJSONDecode(t *testing.T) {
	composer := device.NewComposer(newTestCatalog())

	// JSON decodes numbers as float64.
	dev, err := composer.Build(context.Background(), "debian", nil, device.Config{
		"ipaddr": "10.0.0.5",
		"port":   float64(2222),
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	shell := dev.State()["shell"].(device.Config)
	if shell["port"] != 2222 {
		t.Errorf("shell port = %v, want 2222", shell["port"])
	}
}

func TestPromptPatterns(t *testing.T) {
	composer := device.NewComposer(newTestCatalog())

	dev, err := composer.Build(context.Background(), "debian", nil, device.Config{
		"ipaddr": "10.0.0.5",
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	prompts := dev.Prompt()
	if len(prompts) != 2 {
		t.Fatalf("Prompt() = %v, want 2 patterns", prompts)
	}
}

func TestManagerRegistration(t *testing.T) {
	composer := device.NewComposer(newTestCatalog())
	mgr := device.NewManager()

	dev, err := composer.Build(context.Background(), "debian", mgr, device.Config{
		"name":   "host-1",
		"ipaddr": "10.0.0.5",
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	got, ok := mgr.ByName("host-1")
	if !ok || got.ID() != dev.ID() {
		t.Fatalf("ByName(host-1) = %v, %v; want the composed device", got, ok)
	}
	if prompts := mgr.Prompts(); len(prompts) == 0 {
		t.Error("Prompts() empty, want shell patterns")
	}
}
