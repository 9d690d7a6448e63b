package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cheertower/pkg/cache"
	"github.com/matzehuels/cheertower/pkg/config"
	"github.com/matzehuels/cheertower/pkg/errors"
	"github.com/matzehuels/cheertower/pkg/formation"
	"github.com/matzehuels/cheertower/pkg/observability"
	"github.com/matzehuels/cheertower/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(c, nil, nil, logger)
	srv := New(runner, config.Default().Server, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, contentType, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, string(data)
}

func decodeError(t *testing.T, body string) errorBody {
	t.Helper()
	var e errorBody
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("error body is not JSON: %v\n%s", err, body)
	}
	return e
}

const validJSON = `{"level":"Intermediate","team_size":14,"length":2,"focus":"Jumps"}`

func TestIndex(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(body, `<form method="post"`) || strings.Contains(body, "Difficulty") {
		t.Errorf("unexpected page:\n%s", body)
	}
}

func TestComposeForm(t *testing.T) {
	ts := newTestServer(t)

	form := url.Values{
		"level":     {"Beginner"},
		"team_size": {"9"},
		"length":    {"1"},
		"focus":     {"Stunts"},
		"sections":  {"opening", "stunts"},
	}
	resp, body := do(t, http.MethodPost, ts.URL+"/", "application/x-www-form-urlencoded", form.Encode())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d\n%s", resp.StatusCode, body)
	}
	// Beginner 2 + team of 9 +1 + stunts focus +2
	if !strings.Contains(body, "Difficulty 5/10") {
		t.Errorf("page missing difficulty:\n%s", body)
	}
	if !strings.Contains(body, "30 sec | 2×8") {
		t.Errorf("page missing section label:\n%s", body)
	}
	if strings.Contains(body, "Pyramid build") {
		t.Error("unselected section rendered")
	}
}

func TestComposeFormErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{
			name:    "team size not a number",
			form:    url.Values{"level": {"Beginner"}, "team_size": {"lots"}, "length": {"2"}, "focus": {"Dance"}},
			wantMsg: "team size must be a whole number",
		},
		{
			name:    "team too large",
			form:    url.Values{"level": {"Beginner"}, "team_size": {"61"}, "length": {"2"}, "focus": {"Dance"}},
			wantMsg: "team size must be between 1 and 60",
		},
		{
			name:    "unknown focus",
			form:    url.Values{"level": {"Beginner"}, "team_size": {"6"}, "length": {"2"}, "focus": {"Juggling"}},
			wantMsg: "unknown focus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, ts.URL+"/", "application/x-www-form-urlencoded", tt.form.Encode())
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if !strings.Contains(body, tt.wantMsg) {
				t.Errorf("page missing %q:\n%s", tt.wantMsg, body)
			}
			if !strings.Contains(body, `<form method="post"`) {
				t.Error("error page lost the form")
			}
		})
	}
}

func TestCreateRoutine(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/routines", "application/json", validJSON)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d\n%s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Cache") != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", resp.Header.Get("X-Cache"))
	}

	var doc struct {
		ID         string `json:"id"`
		Difficulty int    `json:"difficulty"`
		Sections   []struct {
			Name      string `json:"name"`
			Formation string `json:"formation"`
			Label     string `json:"label"`
		} `json:"sections"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatal(err)
	}
	// Intermediate 4 + team of 14 +1 + jumps focus +1
	if doc.Difficulty != 6 {
		t.Errorf("difficulty = %d, want 6", doc.Difficulty)
	}
	if doc.ID != "" {
		t.Errorf("unsaved routine has id %q", doc.ID)
	}
	if len(doc.Sections) != 6 || doc.Sections[2].Formation != "wide" {
		t.Errorf("sections = %+v", doc.Sections)
	}

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/routines", "application/json", validJSON)
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", resp.Header.Get("X-Cache"))
	}

	resp, body = do(t, http.MethodPost, ts.URL+"/api/routines?format=text", "application/json", validJSON)
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") || !strings.Contains(body, "Routine Breakdown") {
		t.Errorf("text format: %s\n%s", resp.Header.Get("Content-Type"), body)
	}
}

func TestCreateRoutineErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode errors.Code
	}{
		{name: "malformed json", path: "/api/routines", body: `{"level":`, wantCode: errors.ErrCodeInvalidInput},
		{name: "unknown field", path: "/api/routines", body: `{"level":"Beginner","colour":"red"}`, wantCode: errors.ErrCodeInvalidInput},
		{name: "bad length", path: "/api/routines", body: `{"level":"Beginner","team_size":5,"length":11,"focus":"Dance"}`, wantCode: errors.ErrCodeInvalidLength},
		{name: "bad format", path: "/api/routines?format=svg", body: validJSON, wantCode: errors.ErrCodeInvalidFormat},
		{name: "bad save flag", path: "/api/routines?save=maybe", body: validJSON, wantCode: errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, ts.URL+tt.path, "application/json", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			e := decodeError(t, body)
			if e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
			if e.RequestID == "" {
				t.Error("error body missing requestId")
			}
		})
	}
}

func TestSavedRoutineLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/routines?save=true", "application/json", validJSON)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d\n%s", resp.StatusCode, body)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/api/routines/") {
		t.Fatalf("Location = %q", loc)
	}
	id := strings.TrimPrefix(loc, "/api/routines/")

	resp, body = do(t, http.MethodGet, ts.URL+loc, "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, id) {
		t.Fatalf("GET saved = %d\n%s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/api/routines", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, id) {
		t.Errorf("list = %d\n%s", resp.StatusCode, body)
	}

	resp, _ = do(t, http.MethodDelete, ts.URL+loc, "", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", resp.StatusCode)
	}

	resp, body = do(t, http.MethodGet, ts.URL+loc, "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET deleted = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, body); e.Code != errors.ErrCodeNotFound {
		t.Errorf("code = %q", e.Code)
	}
}

func TestGetRoutineInvalidID(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/routines/not-a-uuid", "", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if e := decodeError(t, body); e.Code != errors.ErrCodeInvalidID {
		t.Errorf("code = %q", e.Code)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/routines?limit=0", "", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", resp.StatusCode)
	}
}

func TestFormation(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/formations/stunts?team_size=7", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d\n%s", resp.StatusCode, body)
	}
	if want := formation.Layout(7, formation.Stunts) + "\n"; body != want {
		t.Errorf("body =\n%q\nwant\n%q", body, want)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/api/formations/Pyramid?team_size=25&format=json", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("json status = %d", resp.StatusCode)
	}
	var fr struct {
		Category string   `json:"category"`
		Dropped  int      `json:"dropped"`
		Markers  int      `json:"markers"`
		Lines    []string `json:"lines"`
	}
	if err := json.Unmarshal([]byte(body), &fr); err != nil {
		t.Fatal(err)
	}
	if fr.Category != "pyramid" || fr.Dropped != 1 || fr.Markers != 24 {
		t.Errorf("formation = %+v", fr)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/formations/fight-song?team_size=3", "", "")
	if got := resp.Header.Get("X-Formation-Category"); got != "block" {
		t.Errorf("unknown category resolved to %q, want block", got)
	}

	for _, q := range []string{"", "?team_size=many", "?team_size=0", "?team_size=99"} {
		resp, body := do(t, http.MethodGet, ts.URL+"/api/formations/wide"+q, "", "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%q status = %d, want 400", q, resp.StatusCode)
		}
		if e := decodeError(t, body); e.Code != errors.ErrCodeInvalidTeamSize {
			t.Errorf("%q code = %q", q, e.Code)
		}
	}
}

func TestTime(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path string
		want string
	}{
		{path: "/api/time/60", want: "60 sec | 4×8\n"},
		{path: "/api/time/15", want: "15 sec | 1×8\n"},
		{path: "/api/time/0", want: "0 sec | 1×8\n"},
	}
	for _, tt := range tests {
		resp, body := do(t, http.MethodGet, ts.URL+tt.path, "", "")
		if resp.StatusCode != http.StatusOK || body != tt.want {
			t.Errorf("GET %s = %d %q, want %q", tt.path, resp.StatusCode, body, tt.want)
		}
	}

	_, body := do(t, http.MethodGet, ts.URL+"/api/time/23?format=json", "", "")
	var tr struct {
		Counts int    `json:"counts"`
		Label  string `json:"label"`
	}
	if err := json.Unmarshal([]byte(body), &tr); err != nil {
		t.Fatal(err)
	}
	if tr.Counts != 2 || tr.Label != "23 sec | 2×8" {
		t.Errorf("time json = %+v", tr)
	}

	for _, p := range []string{"/api/time/-5", "/api/time/soon"} {
		if resp, _ := do(t, http.MethodGet, ts.URL+p, "", ""); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", p, resp.StatusCode)
		}
	}
}

func TestHealthAndNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"status": "ok"`) {
		t.Errorf("healthz = %d\n%s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, ts.URL+"/nope", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, body); e.RequestID == "" {
		t.Error("404 body missing requestId")
	}

	resp, _ = do(t, http.MethodPut, ts.URL+"/healthz", "", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("PUT /healthz = %d, want 405", resp.StatusCode)
	}
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := New(pipeline.NewRunner(nil, nil, nil, logger), config.Default().Server, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get(url); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t)
	if resp, _ := do(t, http.MethodGet, ts.URL+"/metrics", "", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("metrics disabled: status = %d, want 404", resp.StatusCode)
	}

	observability.Reset()
	defer observability.Reset()
	m := observability.NewMetricsHooks("cheertower")
	observability.Register(m)

	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := New(pipeline.NewRunner(nil, nil, nil, logger), config.Default().Server, logger).
		EnableMetrics(m.Handler())
	mts := httptest.NewServer(srv.Handler())
	defer mts.Close()

	do(t, http.MethodGet, mts.URL+"/api/time/30", "", "")
	do(t, http.MethodGet, mts.URL+"/api/formations/block?team_size=6", "", "")

	resp, body := do(t, http.MethodGet, mts.URL+"/metrics", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		`cheertower_http_requests_total{method="GET",route="/api/time/{seconds}",status="200"} 1`,
		`cheertower_cache_events_total{event="miss",key_type="formation"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
