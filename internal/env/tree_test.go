package env

import (
	"testing"
)

func TestFromJSONShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Kind
	}{
		{"object", `{"a":1}`, Map},
		{"array", `[1,2]`, Sequence},
		{"string", `"x"`, Scalar},
		{"number", `4.2`, Scalar},
		{"bool", `true`, Scalar},
		{"null is the wildcard", `null`, Null},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustJSON(t, tt.doc)
			if tree.Kind() != tt.want {
				t.Errorf("Kind() = %v, want %v", tree.Kind(), tt.want)
			}
		})
	}
}

func TestFromJSONErrors(t *testing.T) {
	for _, doc := range []string{``, `{`, `{"a":}`, `[1,]`, `{"a":1} trailing`} {
		if _, err := FromJSON([]byte(doc)); err == nil {
			t.Errorf("FromJSON(%q) error = nil, want parse failure", doc)
		}
	}
}

func TestFromJSONPreservesKeyOrder(t *testing.T) {
	tree := mustJSON(t, `{"zulu":1,"alpha":2,"mike":3}`)

	want := []string{"zulu", "alpha", "mike"}
	got := tree.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestScalarNormalisation(t *testing.T) {
	if !NewScalar(5).Equal(NewScalar(5.0)) {
		t.Error("NewScalar(5) != NewScalar(5.0)")
	}
	if !NewScalar(int64(7)).Equal(mustJSON(t, `7`)) {
		t.Error("NewScalar(int64) does not match JSON-decoded number")
	}
	if NewScalar(nil).Kind() != Null {
		t.Error("NewScalar(nil) is not the wildcard")
	}
}

func TestFromValueRoundTrip(t *testing.T) {
	src := map[string]any{
		"board": map[string]any{
			"model": "X1",
			"modes": []any{"a", "b"},
			"extra": nil,
		},
		"count": 2,
	}

	tree := FromValue(src)
	if tree.Kind() != Map {
		t.Fatalf("FromValue() kind = %v, want Map", tree.Kind())
	}

	out, ok := tree.Value().(map[string]any)
	if !ok {
		t.Fatalf("Value() = %T, want map[string]any", tree.Value())
	}
	board, ok := out["board"].(map[string]any)
	if !ok {
		t.Fatal("Value() lost the board map")
	}
	if board["model"] != "X1" {
		t.Errorf("board.model = %v, want X1", board["model"])
	}
	if board["extra"] != nil {
		t.Errorf("board.extra = %v, want nil", board["extra"])
	}
	if out["count"] != 2.0 {
		t.Errorf("count = %v (%T), want normalised 2.0", out["count"], out["count"])
	}
}

func TestTreeEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal maps ignore key order", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"sequences are order sensitive", `[1,2]`, `[2,1]`, false},
		{"length mismatch", `[1]`, `[1,1]`, false},
		{"kind mismatch", `{"a":1}`, `[1]`, false},
		{"nested equality", `{"a":{"b":[1,null]}}`, `{"a":{"b":[1,null]}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := mustJSON(t, tt.a), mustJSON(t, tt.b)
			if got := a.Equal(b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}
