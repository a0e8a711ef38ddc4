package env

// DevicesByType extracts every device declaration from an environment tree.
//
// A device declaration is a map carrying a "device_type" key, or a sequence
// whose map elements all carry one. Declarations are returned keyed by the
// map key they sit under, wherever they appear in the tree. This is used
// for device discovery within an environment document and is independent of
// requirement matching.
func DevicesByType(t *Tree) map[string]*Tree {
	out := make(map[string]*Tree)
	collectDevices(t, out)
	return out
}

func collectDevices(t *Tree, out map[string]*Tree) {
	if t == nil {
		return
	}
	switch t.Kind() {
	case Map:
		for _, k := range t.Keys() {
			v, _ := t.Get(k)
			switch v.Kind() {
			case Map:
				if _, ok := v.Get("device_type"); ok {
					out[k] = v
				}
				collectDevices(v, out)
			case Sequence:
				if deviceList(v) {
					out[k] = v
					continue
				}
				collectDevices(v, out)
			}
		}
	case Sequence:
		for _, it := range t.Items() {
			collectDevices(it, out)
		}
	}
}

// deviceList reports whether the sequence is non-empty and every element is
// a map carrying a device_type key.
func deviceList(t *Tree) bool {
	items := t.Items()
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if it.Kind() != Map {
			return false
		}
		if _, ok := it.Get("device_type"); !ok {
			return false
		}
	}
	return true
}
