package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cheertower/pkg/cache"
	"github.com/matzehuels/cheertower/pkg/errors"
	"github.com/matzehuels/cheertower/pkg/formation"
	"github.com/matzehuels/cheertower/pkg/render"
	"github.com/matzehuels/cheertower/pkg/routine"
)

var quiet = log.NewWithOptions(io.Discard, log.Options{})

func baseRequest() routine.Request {
	return routine.Request{Level: "beginner", TeamSize: 12, LengthMinutes: 2, Focus: "stunts"}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil, quiet)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return r
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{Request: baseRequest()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", opts.Format, DefaultFormat)
	}
	if opts.Request.Level != routine.LevelBeginner || opts.Request.Focus != routine.FocusStunts {
		t.Errorf("request not normalized: %+v", opts.Request)
	}
	if len(opts.Request.Sections) != len(routine.SectionNames()) {
		t.Errorf("Sections = %v, want full catalog", opts.Request.Sections)
	}
}

func TestOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{name: "bad format", opts: Options{Request: baseRequest(), Format: "pdf"}, code: errors.ErrCodeInvalidFormat},
		{name: "bad team", opts: Options{Request: routine.Request{Level: "Beginner", TeamSize: 0, LengthMinutes: 2, Focus: "Dance"}}, code: errors.ErrCodeInvalidTeamSize},
		{name: "bad section", opts: Options{Request: routine.Request{Level: "Beginner", TeamSize: 5, LengthMinutes: 2, Focus: "Dance", Sections: []string{"halftime"}}}, code: errors.ErrCodeInvalidSection},
	}

	r := NewRunner(nil, nil, nil, quiet)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRoutineKeyOptsNormalized(t *testing.T) {
	a := Options{Request: baseRequest()}
	b := Options{Request: routine.Request{Level: "BEGINNER", TeamSize: 12, LengthMinutes: 2, Focus: " Stunts ",
		Sections: []string{"finale", "opening", "jumps", "feature", "stunts", "pyramid"}}, Format: "text"}
	if err := a.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if err := b.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	k := cache.NewDefaultKeyer()
	if k.RoutineKey(a.RoutineKeyOpts()) != k.RoutineKey(b.RoutineKeyOpts()) {
		t.Error("equivalent requests produce different cache keys")
	}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	first, err := r.Execute(ctx, Options{Request: baseRequest()})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}
	if !strings.Contains(string(first.Artifact), "Difficulty") {
		t.Errorf("artifact does not look like a routine sheet:\n%s", first.Artifact)
	}

	second, err := r.Execute(ctx, Options{Request: baseRequest()})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit")
	}
	if string(second.Artifact) != string(first.Artifact) {
		t.Error("cached artifact differs")
	}
	if second.Routine.Difficulty != first.Routine.Difficulty {
		t.Error("cached routine differs")
	}

	refreshed, err := r.Execute(ctx, Options{Request: baseRequest(), Refresh: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if refreshed.CacheInfo.RenderHit {
		t.Error("refresh should bypass cache")
	}

	other, _ := r.Execute(ctx, Options{Request: baseRequest(), Format: render.FormatJSON})
	if other.CacheInfo.RenderHit {
		t.Error("different format should miss")
	}
}

func TestExecuteSave(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	r.newID = func() string { return "0b6c1e7e-8d4c-4a5f-9f0e-3c2a1b0d9e8f" }

	res, err := r.Execute(ctx, Options{Request: baseRequest(), Format: render.FormatJSON, Save: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Saved || res.Routine.ID == "" {
		t.Fatalf("routine not saved: %+v", res)
	}

	var doc struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(res.Artifact, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.ID != res.Routine.ID {
		t.Errorf("artifact id = %q, want %q", doc.ID, res.Routine.ID)
	}
	if !doc.CreatedAt.Equal(r.now()) {
		t.Errorf("created_at = %v", doc.CreatedAt)
	}

	loaded, err := r.Load(ctx, res.Routine.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Difficulty != res.Routine.Difficulty {
		t.Errorf("loaded difficulty = %d", loaded.Difficulty)
	}

	list, err := r.List(ctx, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %d, %v", len(list), err)
	}

	if err := r.Delete(ctx, res.Routine.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Load(ctx, res.Routine.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load after Delete = %v, want NOT_FOUND", err)
	}
	if err := r.Delete(ctx, res.Routine.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Delete again = %v, want NOT_FOUND", err)
	}
}

func TestLoadInvalidID(t *testing.T) {
	r := NewRunner(nil, nil, nil, quiet)
	if _, err := r.Load(context.Background(), "not-a-uuid"); !errors.Is(err, errors.ErrCodeInvalidID) {
		t.Errorf("Load(bad id) = %v, want INVALID_ID", err)
	}
}

func TestFormation(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	d, hit, err := r.Formation(ctx, 9, formation.Stunts)
	if err != nil {
		t.Fatalf("Formation: %v", err)
	}
	if hit {
		t.Error("first call should miss")
	}
	if d.String() != formation.Layout(9, formation.Stunts) {
		t.Errorf("diagram differs from Layout:\n%s", d)
	}

	cached, hit, err := r.Formation(ctx, 9, formation.Stunts)
	if err != nil || !hit {
		t.Fatalf("second call = %v, %v, want hit", hit, err)
	}
	if cached.String() != d.String() || cached.Category != formation.Stunts || cached.Pods != d.Pods {
		t.Errorf("cached diagram differs: %+v", cached)
	}

	if _, _, err := r.Formation(ctx, 0, formation.Block); !errors.Is(err, errors.ErrCodeInvalidTeamSize) {
		t.Errorf("Formation(0) = %v, want INVALID_TEAM_SIZE", err)
	}
	if _, _, err := r.Formation(ctx, 61, formation.Block); !errors.Is(err, errors.ErrCodeInvalidTeamSize) {
		t.Errorf("Formation(61) = %v, want INVALID_TEAM_SIZE", err)
	}
}
