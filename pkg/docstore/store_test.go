package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/goliatone/go-artificial-world/pkg/activity"
)

func newTestStore(t *testing.T, opts ...Option) (*FileStore, Layout) {
	t.Helper()
	base := t.TempDir()
	layout := Layout{
		Root:    filepath.Join(base, "indicators"),
		Inputs:  filepath.Join(base, "inputs"),
		Archive: filepath.Join(base, "archive"),
	}
	return New(layout, opts...), layout
}

func TestWriteReadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	cases := map[string]any{
		"object.json": map[string]any{"user": map[string]any{"name": "Ada", "age": float64(36)}},
		"array.json":  []any{"a", float64(1), true, nil},
		"scalar.json": "plain <text> & more",
		"nested/deep/doc.json": map[string]any{
			"list": []any{map[string]any{"k": "v"}},
		},
	}

	for name, value := range cases {
		if !store.Write(ctx, name, value) {
			t.Fatalf("write %s failed", name)
		}
		got, err := store.Read(ctx, name, ScopePrimary)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		cmpJSON(t, value, got)
	}
}

func TestReadMissingInitializesEmptyObject(t *testing.T) {
	store, layout := newTestStore(t)
	ctx := context.Background()

	got, err := store.Read(ctx, "fresh.json", ScopePrimary)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	cmpJSON(t, map[string]any{}, got)
	if _, err := os.Stat(filepath.Join(layout.Root, "fresh.json")); err != nil {
		t.Fatalf("expected file to be created: %v", err)
	}
}

func TestReadMissingInputsStaysInInputsRoot(t *testing.T) {
	store, layout := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Read(ctx, "prompt.json", ScopeInputs); err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, err := os.Stat(filepath.Join(layout.Inputs, "prompt.json")); err != nil {
		t.Fatalf("expected inputs document: %v", err)
	}
	if _, err := os.Stat(filepath.Join(layout.Root, "prompt.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no primary document, got %v", err)
	}
}

func TestReadInvalidJSONReturnsParseError(t *testing.T) {
	store, layout := newTestStore(t)
	if err := os.MkdirAll(layout.Root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(layout.Root, "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := store.Read(context.Background(), "broken.json", ScopePrimary)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Path != path {
		t.Fatalf("expected path %q, got %q", path, parseErr.Path)
	}
}

func TestReadUnknownScope(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Read(context.Background(), "x.json", Scope("elsewhere"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestWriteFailureLeavesPreviousDocument(t *testing.T) {
	store, layout := newTestStore(t)
	ctx := context.Background()

	if !store.Write(ctx, "settings.json", map[string]any{"v": "committed"}) {
		t.Fatalf("initial write failed")
	}
	if store.Write(ctx, "settings.json", map[string]any{"bad": make(chan int)}) {
		t.Fatalf("expected write of unencodable value to fail")
	}

	got, err := store.Read(ctx, "settings.json", ScopePrimary)
	if err != nil {
		t.Fatalf("read after failed write: %v", err)
	}
	cmpJSON(t, map[string]any{"v": "committed"}, got)

	entries, err := os.ReadDir(layout.Root)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".docstore-") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestArchiveFailureDoesNotBlockWrite(t *testing.T) {
	store, layout := newTestStore(t)
	ctx := context.Background()

	if !store.Write(ctx, "settings.json", map[string]any{"v": "first"}) {
		t.Fatalf("initial write failed")
	}
	if err := os.WriteFile(layout.Archive, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("block archive dir: %v", err)
	}

	if !store.Write(ctx, "settings.json", map[string]any{"v": "second"}) {
		t.Fatalf("expected write to succeed despite archive failure")
	}
	cmpJSON(t, map[string]any{"v": "second"}, readFileJSON(t, filepath.Join(layout.Root, "settings.json")))

	if err := store.Archive(ctx, "settings.json", 3); err == nil {
		t.Fatalf("expected direct archive call to report the failure")
	}
}

func TestWriteKeepsExistingPermissions(t *testing.T) {
	store, layout := newTestStore(t)
	ctx := context.Background()

	if !store.Write(ctx, "secret.json", map[string]any{"v": float64(1)}) {
		t.Fatalf("initial write failed")
	}
	path := filepath.Join(layout.Root, "secret.json")
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if !store.Write(ctx, "secret.json", map[string]any{"v": float64(2)}) {
		t.Fatalf("second write failed")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 to survive the write, got %v", info.Mode().Perm())
	}
}

func TestWriteEmptyNameFails(t *testing.T) {
	store, _ := newTestStore(t)
	if store.Write(context.Background(), " ", map[string]any{}) {
		t.Fatalf("expected empty name to fail")
	}
}

func TestArchiveSlotsFollowWrites(t *testing.T) {
	const keep = 3
	store, layout := newTestStore(t, WithArchiveCount(keep))
	ctx := context.Background()

	for k := 1; k <= 9; k++ {
		if !store.Write(ctx, "world.json", map[string]any{"v": float64(k)}) {
			t.Fatalf("write %d failed", k)
		}

		for i := 0; i <= keep+1; i++ {
			path := filepath.Join(layout.Archive, "world"+strconv.Itoa(i)+".json")
			want := k - 1 - i
			if want < 1 || i > keep {
				if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
					t.Fatalf("after %d writes expected slot %d absent, got %v", k, i, err)
				}
				continue
			}
			cmpJSON(t, map[string]any{"v": float64(want)}, readFileJSON(t, path))
		}
	}
}

func TestArchiveMirrorsNestedPath(t *testing.T) {
	store, layout := newTestStore(t)
	ctx := context.Background()

	store.Write(ctx, "people/ada.json", map[string]any{"v": float64(1)})
	store.Write(ctx, "people/ada.json", map[string]any{"v": float64(2)})

	cmpJSON(t, map[string]any{"v": float64(1)}, readFileJSON(t, filepath.Join(layout.Archive, "people", "ada0.json")))
}

func TestInputsScopeArchivesSeparately(t *testing.T) {
	store, layout := newTestStore(t)
	ctx := context.Background()

	store.WriteScope(ctx, "prompt.json", ScopeInputs, map[string]any{"v": "a"})
	store.WriteScope(ctx, "prompt.json", ScopeInputs, map[string]any{"v": "b"})

	cmpJSON(t, map[string]any{"v": "a"}, readFileJSON(t, filepath.Join(layout.Archive, "inputs", "prompt0.json")))
	if _, err := os.Stat(filepath.Join(layout.Archive, "prompt0.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no primary archive for inputs document, got %v", err)
	}
}

func TestArchiveDisabled(t *testing.T) {
	store, layout := newTestStore(t, WithArchiveCount(-1))
	ctx := context.Background()

	store.Write(ctx, "a.json", map[string]any{})
	store.Write(ctx, "a.json", map[string]any{})

	if _, err := os.Stat(layout.Archive); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no archive directory, got %v", err)
	}
}

func TestHistoryListsSlots(t *testing.T) {
	store, _ := newTestStore(t, WithArchiveCount(2))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store.Write(ctx, "log.json", map[string]any{"i": float64(i)})
	}

	slots, err := store.History(ctx, "log.json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %+v", slots)
	}
	for i, slot := range slots {
		if slot.Index != i {
			t.Fatalf("expected slot %d at position %d, got %d", i, i, slot.Index)
		}
	}
	cmpJSON(t, map[string]any{"i": float64(3)}, readFileJSON(t, slots[0].Path))
}

func TestPatchMergesIntoDocument(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.Write(ctx, "settings.json", map[string]any{
		"user":  map[string]any{"name": "Ada", "voice": "calm"},
		"alarm": "07:00",
	})
	ok := store.Patch(ctx, "settings.json", map[string]any{
		"user": map[string]any{"voice": "bright"},
		"tags": []any{"a"},
	})
	if !ok {
		t.Fatalf("patch failed")
	}

	got, _ := store.Read(ctx, "settings.json", ScopePrimary)
	cmpJSON(t, map[string]any{
		"user":  map[string]any{"name": "Ada", "voice": "bright"},
		"alarm": "07:00",
		"tags":  []any{"a"},
	}, got)
}

func TestQuerySelectsValues(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.Write(ctx, "schedule.json", map[string]any{
		"alarms": []any{
			map[string]any{"time": "07:00"},
			map[string]any{"time": "08:30"},
		},
	})

	got, err := store.Query(ctx, "schedule.json", ScopePrimary, "$.alarms[*].time")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	cmpJSON(t, []any{"07:00", "08:30"}, got)

	if _, err := store.Query(ctx, "schedule.json", ScopePrimary, "$.alarms["); err == nil {
		t.Fatalf("expected invalid jsonpath error")
	}
}

func TestReadIntoHydratesStruct(t *testing.T) {
	type settings struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}

	store, _ := newTestStore(t)
	ctx := context.Background()
	store.Write(ctx, "settings.json", map[string]any{"user": map[string]any{"name": "Ada"}})

	got, err := ReadInto[settings](ctx, store, "settings.json", ScopePrimary)
	if err != nil {
		t.Fatalf("read into: %v", err)
	}
	if got.User.Name != "Ada" {
		t.Fatalf("expected Ada, got %q", got.User.Name)
	}
}

func TestWriteEmitsActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})
	store, _ := newTestStore(t, WithActivity(emitter), WithActor("cli"))
	ctx := context.Background()

	if _, err := store.Read(ctx, "a.json", ScopePrimary); err != nil {
		t.Fatalf("read: %v", err)
	}
	store.Write(ctx, "a.json", map[string]any{"v": "x"})

	want := []string{
		activity.VerbDocumentWritten,
		activity.VerbDocumentCreated,
		activity.VerbDocumentArchived,
		activity.VerbDocumentWritten,
	}
	if got := capture.Verbs(); !reflect.DeepEqual(want, got) {
		t.Fatalf("unexpected verbs:\nwant %v\n got %v", want, got)
	}

	written := capture.Events[3]
	if written.ActorID != "cli" || written.ObjectID != "a.json" || written.Channel != activity.DefaultChannel {
		t.Fatalf("unexpected written event: %+v", written)
	}
	if id, _ := written.Metadata["snapshot_id"].(string); id == "" {
		t.Fatalf("expected snapshot id, got %+v", written.Metadata)
	}
	if capture.Events[2].Metadata["slot"] != 0 {
		t.Fatalf("expected slot metadata, got %+v", capture.Events[2].Metadata)
	}
}

func TestWriteSurvivesActivityFailure(t *testing.T) {
	capture := &activity.CaptureHook{Err: errors.New("sink down")}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})
	store, _ := newTestStore(t, WithActivity(emitter))

	if !store.Write(context.Background(), "a.json", map[string]any{}) {
		t.Fatalf("expected write to succeed despite hook error")
	}
}

func TestInitializeCreatesDirectories(t *testing.T) {
	_, layout := newTestStore(t)
	images := filepath.Join(filepath.Dir(layout.Root), "images")

	if err := Initialize(layout, images); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for _, dir := range []string{layout.Root, layout.Inputs, layout.Archive, images} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func readFileJSON(t *testing.T, path string) any {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return out
}

func cmpJSON(t *testing.T, want, got any) {
	t.Helper()
	wantJSON, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal want: %v", err)
	}
	gotJSON, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal got: %v", err)
	}
	if string(wantJSON) != string(gotJSON) {
		t.Fatalf("unexpected json:\nwant: %s\n got: %s", wantJSON, gotJSON)
	}
}
