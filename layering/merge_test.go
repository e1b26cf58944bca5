package layering

import (
	"encoding/json"
	"testing"
)

func TestMergeDocumentsStrongestWins(t *testing.T) {
	strong := map[string]any{
		"user":  map[string]any{"name": "Ada"},
		"theme": "dark",
		"tags":  []any{"a"},
	}
	weak := map[string]any{
		"user":  map[string]any{"name": "Grace", "lang": "en"},
		"theme": "light",
		"tags":  []any{"b", "c"},
		"count": float64(3),
	}

	got := MergeDocuments(strong, weak)
	want := map[string]any{
		"user":  map[string]any{"name": "Ada", "lang": "en"},
		"theme": "dark",
		"tags":  []any{"a"},
		"count": float64(3),
	}
	if diff := cmpJSON(want, got); diff != "" {
		t.Fatalf("merge mismatch: %s", diff)
	}
}

func TestMergeDocumentsNilStrongKeepsWeak(t *testing.T) {
	weak := map[string]any{"a": float64(1)}
	got := MergeDocuments(nil, weak)
	if diff := cmpJSON(weak, got); diff != "" {
		t.Fatalf("expected weak layer, %s", diff)
	}
	if MergeDocuments() != nil {
		t.Fatalf("expected nil for no layers")
	}
}

func TestMergeDocumentsDoesNotAliasInputs(t *testing.T) {
	inner := map[string]any{"name": "Ada"}
	weak := map[string]any{"user": inner}

	got := MergeDocuments(map[string]any{}, weak).(map[string]any)
	got["user"].(map[string]any)["name"] = "changed"

	if inner["name"] != "Ada" {
		t.Fatalf("merge must not mutate inputs, got %v", inner["name"])
	}
}

func TestCloneDocumentCopiesArrays(t *testing.T) {
	original := []any{map[string]any{"k": "v"}}
	clone := CloneDocument(original).([]any)
	clone[0].(map[string]any)["k"] = "changed"
	if original[0].(map[string]any)["k"] != "v" {
		t.Fatalf("expected deep copy")
	}
}

func cmpJSON(want, got any) string {
	wantRaw, err := json.Marshal(want)
	if err != nil {
		return "marshal want: " + err.Error()
	}
	gotRaw, err := json.Marshal(got)
	if err != nil {
		return "marshal got: " + err.Error()
	}
	if string(wantRaw) == string(gotRaw) {
		return ""
	}
	return "want=" + string(wantRaw) + " got=" + string(gotRaw)
}
