package env

import (
	"errors"
	"testing"
)

const stationEnv = `{
	"environment_def": {
		"board": {
			"model": "F5685LGB",
			"flash_strategy": "bootloader",
			"software": {
				"bootloader_image": "none",
				"load_image": "img.bin",
				"image_uri": "release/img.bin",
				"upgrade_images": ["up.bin"],
				"downgrade_images": ["down.bin"],
				"dependent_software": {
					"load_image": "dep.bin",
					"version": "3.1"
				}
			},
			"lan_clients": [
				{"device_type": "lan", "name": "lan1"}
			]
		}
	},
	"version": "1.1"
}`

func newTestHelper(t *testing.T, doc, mirror string) *Helper {
	t.Helper()
	h, err := NewHelper(mustJSON(t, doc), mirror)
	if err != nil {
		t.Fatalf("NewHelper() error = %v", err)
	}
	return h
}

func TestNewHelperVersionWhitelist(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"version 1.0", `{"version":"1.0"}`, false},
		{"version 1.1", `{"version":"1.1"}`, false},
		{"version 1.2", `{"version":"1.2"}`, false},
		{"version 2.0 string", `{"version":"2.0"}`, false},
		{"version 2.0 numeric", `{"version":2.0}`, false},
		{"unsupported version", `{"version":"9.9"}`, true},
		{"missing version", `{"environment_def":{}}`, true},
		{"version not a scalar", `{"version":{"major":1}}`, true},
		{"document not a map", `["1.0"]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHelper(mustJSON(t, tt.doc), "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewHelper() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrVersion) {
				t.Errorf("NewHelper() error = %v, want ErrVersion", err)
			}
		})
	}
}

func TestHelperImage(t *testing.T) {
	h := newTestHelper(t, stationEnv, "http://mirror.lab/")

	img, err := h.Image()
	if err != nil {
		t.Fatalf("Image() error = %v", err)
	}
	if want := "http://mirror.lab/img.bin"; img != want {
		t.Errorf("Image() = %q, want %q", img, want)
	}
	if !h.HasImage() {
		t.Error("HasImage() = false, want true")
	}
}

func TestHelperImageAbsent(t *testing.T) {
	h := newTestHelper(t, `{"environment_def":{"board":{}},"version":"1.0"}`, "")

	_, err := h.Image()
	if !errors.Is(err, ErrKeyAbsent) {
		t.Errorf("Image() error = %v, want ErrKeyAbsent", err)
	}
	if h.HasImage() {
		t.Error("HasImage() = true, want false")
	}
}

func TestHelperUpgradeDowngradeImages(t *testing.T) {
	h := newTestHelper(t, stationEnv, "")

	up, err := h.UpgradeImage()
	if err != nil || up != "up.bin" {
		t.Errorf("UpgradeImage() = %q, %v, want \"up.bin\", nil", up, err)
	}
	down, err := h.DowngradeImage()
	if err != nil || down != "down.bin" {
		t.Errorf("DowngradeImage() = %q, %v, want \"down.bin\", nil", down, err)
	}
	if !h.HasUpgradeImage() || !h.HasDowngradeImage() {
		t.Error("Has{Upgrade,Downgrade}Image() = false, want true")
	}

	bare := newTestHelper(t, `{"environment_def":{"board":{"software":{"upgrade_images":[]}}},"version":"1.0"}`, "")
	if bare.HasUpgradeImage() {
		t.Error("HasUpgradeImage() = true for empty list, want false")
	}
	if bare.HasDowngradeImage() {
		t.Error("HasDowngradeImage() = true for absent list, want false")
	}
}

func TestHelperSoftware(t *testing.T) {
	h := newTestHelper(t, stationEnv, "http://mirror.lab/")

	sw, err := h.Software()
	if err != nil {
		t.Fatalf("Software() error = %v", err)
	}
	if _, ok := sw["dependent_software"]; ok {
		t.Error("Software() includes dependent_software, want excluded")
	}
	if got := sw["load_image"]; got != "http://mirror.lab/img.bin" {
		t.Errorf("Software()[load_image] = %v, want mirror-prefixed image", got)
	}
	if got := sw["image_uri"]; got != "http://mirror.lab/release/img.bin" {
		t.Errorf("Software()[image_uri] = %v, want mirror-prefixed uri", got)
	}
	if got := sw["bootloader_image"]; got != "none" {
		t.Errorf("Software()[bootloader_image] = %v, want passthrough value", got)
	}

	dep, err := h.DependentSoftware()
	if err != nil {
		t.Fatalf("DependentSoftware() error = %v", err)
	}
	if got := dep["load_image"]; got != "http://mirror.lab/dep.bin" {
		t.Errorf("DependentSoftware()[load_image] = %v, want mirror-prefixed image", got)
	}
	if got := dep["version"]; got != "3.1" {
		t.Errorf("DependentSoftware()[version] = %v, want \"3.1\"", got)
	}
}

func TestHelperSoftwareMissingSection(t *testing.T) {
	h := newTestHelper(t, `{"environment_def":{"board":{}},"version":"1.0"}`, "")

	sw, err := h.Software()
	if err != nil || len(sw) != 0 {
		t.Errorf("Software() = %v, %v, want empty map", sw, err)
	}
	dep, err := h.DependentSoftware()
	if err != nil || len(dep) != 0 {
		t.Errorf("DependentSoftware() = %v, %v, want empty map", dep, err)
	}

	noBoard := newTestHelper(t, `{"environment_def":{},"version":"1.0"}`, "")
	if _, err := noBoard.Software(); !errors.Is(err, ErrKeyAbsent) {
		t.Errorf("Software() error = %v, want ErrKeyAbsent", err)
	}
}

func TestHelperFlashStrategy(t *testing.T) {
	h := newTestHelper(t, stationEnv, "")

	strategy, err := h.FlashStrategy()
	if err != nil || strategy != "bootloader" {
		t.Errorf("FlashStrategy() = %q, %v, want \"bootloader\", nil", strategy, err)
	}

	bare := newTestHelper(t, `{"environment_def":{"board":{}},"version":"1.0"}`, "")
	if _, err := bare.FlashStrategy(); !errors.Is(err, ErrKeyAbsent) {
		t.Errorf("FlashStrategy() error = %v, want ErrKeyAbsent", err)
	}
}

func TestHelperCheck(t *testing.T) {
	h := newTestHelper(t, stationEnv, "")

	ok := mustJSON(t, `{"environment_def":{"board":{"software":{"load_image":null}}}}`)
	if err := h.Check(ok); err != nil {
		t.Fatalf("Check() error = %v, want nil", err)
	}

	bad := mustJSON(t, `{"environment_def":{"board":{"model":"other"}}}`)
	err := h.Check(bad)
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("Check() error = %v, want ErrMismatch", err)
	}

	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatal("Check() error is not a *MismatchError")
	}
	if mismatch.Required != bad || mismatch.Available != h.Tree() {
		t.Error("MismatchError does not carry both trees")
	}
}
