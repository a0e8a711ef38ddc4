package device

import (
	"context"
	"errors"
	"testing"
)

// composeFor builds an unregistered composite from a single descriptor.
func composeFor(t *testing.T, d Descriptor, model string, cfg Config) *Composite {
	t.Helper()
	composer := NewComposer(buildCatalog(d))
	dev, err := composer.Build(context.Background(), model, nil, cfg)
	if err != nil {
		t.Fatalf("Build(%q) error = %v", model, err)
	}
	return dev
}

func TestManagerRegisterAndLookup(t *testing.T) {
	mgr := NewManager()

	lan := composeFor(t, desc("Lan", []string{"debian-lan"}, "dhcp"), "debian-lan", Config{"name": "lan1"})
	wan := composeFor(t, desc("Wan", []string{"debian-wan"}, "nat"), "debian-wan", Config{"name": "wan"})

	if err := mgr.Register(lan, false, false); err != nil {
		t.Fatalf("Register(lan) error = %v", err)
	}
	if err := mgr.Register(wan, false, true); err != nil {
		t.Fatalf("Register(wan) error = %v", err)
	}

	devices := mgr.Devices()
	if len(devices) != 2 || devices[0] != lan || devices[1] != wan {
		t.Error("Devices() lost registration order")
	}
	if got, ok := mgr.ByName("wan"); !ok || got != wan {
		t.Error("ByName(wan) did not return the registered device")
	}
	if got := mgr.ByModel("debian-lan"); len(got) != 1 || got[0] != lan {
		t.Error("ByModel(debian-lan) did not return the registered device")
	}
	if mgr.IsPlugin("lan1") {
		t.Error("IsPlugin(lan1) = true, want false")
	}
	if !mgr.IsPlugin("wan") {
		t.Error("IsPlugin(wan) = false, want true")
	}
}

func TestManagerDuplicateName(t *testing.T) {
	mgr := NewManager()
	d := desc("Lan", []string{"debian-lan"}, "dhcp")

	first := composeFor(t, d, "debian-lan", Config{"name": "lan1"})
	second := composeFor(t, d, "debian-lan", Config{"name": "lan1"})

	if err := mgr.Register(first, false, false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := mgr.Register(second, false, false); !errors.Is(err, ErrDeviceExists) {
		t.Fatalf("Register() duplicate error = %v, want ErrDeviceExists", err)
	}

	if err := mgr.Register(second, true, false); err != nil {
		t.Fatalf("Register() with override error = %v", err)
	}
	if got, _ := mgr.ByName("lan1"); got != second {
		t.Error("override registration did not replace the device")
	}
	if mgr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", mgr.Len())
	}
}

func TestManagerPrompts(t *testing.T) {
	mgr := NewManager()

	withPrompt := func(name, model string, prompts ...string) Descriptor {
		return Descriptor{
			Name:   name,
			Models: []string{model},
			New: func() Capability {
				return &stubCapability{id: name, prompts: prompts}
			},
		}
	}

	lan := composeFor(t, withPrompt("Lan", "debian-lan", `root@lan:~#`, `\$`), "debian-lan", Config{"name": "lan1"})
	wan := composeFor(t, withPrompt("Wan", "debian-wan", `root@wan:~#`, `\$`), "debian-wan", Config{"name": "wan"})

	if err := mgr.Register(lan, false, false); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Register(wan, false, false); err != nil {
		t.Fatal(err)
	}

	prompts := mgr.Prompts()
	want := []string{`root@lan:~#`, `\$`, `root@wan:~#`}
	if len(prompts) != len(want) {
		t.Fatalf("Prompts() = %v, want deduplicated %v", prompts, want)
	}
	for i := range want {
		if prompts[i] != want[i] {
			t.Fatalf("Prompts() = %v, want %v", prompts, want)
		}
	}
}

func TestCompositeNameFallsBackToModel(t *testing.T) {
	dev := composeFor(t, desc("Lan", []string{"debian-lan"}, "dhcp"), "debian-lan", nil)
	if dev.Name() != "debian-lan" {
		t.Errorf("Name() = %q, want the model name", dev.Name())
	}
}

func TestConfigDeepCopy(t *testing.T) {
	orig := Config{
		"name": "lan1",
		"opts": map[string]any{"vlan": 7},
		"list": []any{"a", map[string]any{"b": 1}},
	}

	cpy := orig.DeepCopy()
	cpy["name"] = "changed"
	cpy["opts"].(Config)["vlan"] = 9
	cpy["list"].([]any)[0] = "z"

	if orig["name"] != "lan1" {
		t.Error("DeepCopy shares top-level values")
	}
	if orig["opts"].(map[string]any)["vlan"] != 7 {
		t.Error("DeepCopy shares nested maps")
	}
	if orig["list"].([]any)[0] != "a" {
		t.Error("DeepCopy shares nested slices")
	}
}
