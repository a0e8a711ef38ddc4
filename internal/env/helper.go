package env

import (
	"fmt"
	"strconv"
)

// supportedVersions is the whitelist of environment schema versions this
// build understands. Documents carrying any other version are rejected at
// construction so a typo in a lab declaration fails loudly, not at match
// time.
var supportedVersions = []string{"1.0", "1.1", "1.2", "2.0"}

// Helper wraps an available environment tree, as declared by a lab or
// board configuration, and answers questions about it.
//
// A Helper is immutable after construction apart from the mirror prefix
// recorded at construction time, which is substituted when deriving image
// and software locations. All methods are safe for concurrent use.
type Helper struct {
	env    *Tree
	mirror string
}

// NewHelper validates the environment document and wraps it.
//
// The document must be a map carrying a "version" scalar drawn from the
// supported whitelist; anything else fails with ErrVersion. The optional
// mirror is prepended to image and software locations by the accessors.
func NewHelper(doc *Tree, mirror string) (*Helper, error) {
	if doc == nil || doc.Kind() != Map {
		return nil, fmt.Errorf("%w: document is not a map", ErrVersion)
	}
	v, ok := doc.Get("version")
	if !ok || v.Kind() != Scalar || !versionSupported(v.ScalarValue()) {
		return nil, fmt.Errorf("%w: %v", ErrVersion, scalarOrNil(v))
	}
	return &Helper{env: doc, mirror: mirror}, nil
}

// versionSupported accepts both string versions and numeric ones, since
// JSON authors write "2.0" and 2.0 interchangeably.
func versionSupported(v any) bool {
	switch val := v.(type) {
	case string:
		for _, s := range supportedVersions {
			if s == val {
				return true
			}
		}
	case float64:
		for _, s := range supportedVersions {
			if f, err := strconv.ParseFloat(s, 64); err == nil && f == val {
				return true
			}
		}
	}
	return false
}

func scalarOrNil(t *Tree) any {
	if t == nil {
		return nil
	}
	return t.ScalarValue()
}

// Tree returns the wrapped environment document.
func (h *Helper) Tree() *Tree {
	return h.env
}

// Check reports whether the required tree is satisfied by this environment.
// On failure it returns a *MismatchError carrying both trees; it never
// partially matches silently.
func (h *Helper) Check(required *Tree) error {
	if !Contained(required, h.env) {
		return &MismatchError{Required: required, Available: h.env}
	}
	return nil
}

// lookup walks a fixed path of map keys from the document root.
func (h *Helper) lookup(path ...string) (*Tree, error) {
	node := h.env
	for _, key := range path {
		next, ok := node.Get(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrKeyAbsent, key)
		}
		node = next
	}
	return node, nil
}

// scalarAt resolves a path that must end in a string scalar.
func (h *Helper) scalarAt(path ...string) (string, error) {
	node, err := h.lookup(path...)
	if err != nil {
		return "", err
	}
	s, ok := node.ScalarValue().(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrKeyAbsent, path[len(path)-1])
	}
	return s, nil
}

// firstAt resolves a path that must end in a non-empty sequence and returns
// its first element as a string.
func (h *Helper) firstAt(path ...string) (string, error) {
	node, err := h.lookup(path...)
	if err != nil {
		return "", err
	}
	items := node.Items()
	if node.Kind() != Sequence || len(items) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrKeyAbsent, path[len(path)-1])
	}
	s, ok := items[0].ScalarValue().(string)
	if !ok {
		return "", fmt.Errorf("%w: %s holds no image name", ErrKeyAbsent, path[len(path)-1])
	}
	return s, nil
}

// Image returns the image this environment should run against, prefixed
// with the mirror so it can be flashed without further argument plumbing.
func (h *Helper) Image() (string, error) {
	img, err := h.scalarAt("environment_def", "board", "software", "load_image")
	if err != nil {
		return "", err
	}
	return h.mirror + img, nil
}

// HasImage reports whether the environment specifies an image to load.
func (h *Helper) HasImage() bool {
	_, err := h.Image()
	return err == nil
}

// UpgradeImage returns the image to upgrade to during upgrade tests.
func (h *Helper) UpgradeImage() (string, error) {
	return h.firstAt("environment_def", "board", "software", "upgrade_images")
}

// HasUpgradeImage reports whether the environment specifies an upgrade image.
func (h *Helper) HasUpgradeImage() bool {
	_, err := h.UpgradeImage()
	return err == nil
}

// DowngradeImage returns the image to downgrade to during downgrade tests.
func (h *Helper) DowngradeImage() (string, error) {
	return h.firstAt("environment_def", "board", "software", "downgrade_images")
}

// HasDowngradeImage reports whether the environment specifies a downgrade image.
func (h *Helper) HasDowngradeImage() bool {
	_, err := h.DowngradeImage()
	return err == nil
}

// FlashStrategy returns the declared flash strategy for the board.
func (h *Helper) FlashStrategy() (string, error) {
	return h.scalarAt("environment_def", "board", "flash_strategy")
}

// Software returns the board software map with image locations prefixed by
// the mirror. The dependent_software subtree is excluded; fetch it with
// DependentSoftware. A board without a software section yields an empty map.
func (h *Helper) Software() (map[string]any, error) {
	board, err := h.lookup("environment_def", "board")
	if err != nil {
		return nil, err
	}
	sw, ok := board.Get("software")
	if !ok || sw.Kind() != Map {
		return map[string]any{}, nil
	}
	out := make(map[string]any, sw.Len())
	for _, k := range sw.Keys() {
		if k == "dependent_software" {
			continue
		}
		v, _ := sw.Get(k)
		out[k] = h.mirrored(k, v)
	}
	return out, nil
}

// DependentSoftware returns the dependent_software map of the board
// software section, image locations prefixed by the mirror. Missing
// sections yield an empty map.
func (h *Helper) DependentSoftware() (map[string]any, error) {
	board, err := h.lookup("environment_def", "board")
	if err != nil {
		return nil, err
	}
	sw, ok := board.Get("software")
	if !ok || sw.Kind() != Map {
		return map[string]any{}, nil
	}
	dep, ok := sw.Get("dependent_software")
	if !ok || dep.Kind() != Map {
		return map[string]any{}, nil
	}
	out := make(map[string]any, dep.Len())
	for _, k := range dep.Keys() {
		v, _ := dep.Get(k)
		out[k] = h.mirrored(k, v)
	}
	return out, nil
}

// mirrored prefixes image-location values with the mirror and passes
// everything else through as a plain value.
func (h *Helper) mirrored(key string, v *Tree) any {
	if key == "load_image" || key == "image_uri" {
		if s, ok := v.ScalarValue().(string); ok {
			return h.mirror + s
		}
	}
	return v.Value()
}
