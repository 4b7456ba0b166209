package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stardom/internal/game"
	"stardom/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir, err := store.OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := game.NewService(dir, game.NewEngine(game.DefaultTuning(), logger), logger)
	svc.Seed(1)
	srv := httptest.NewServer(New(logger, svc).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func newGame(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	var out struct {
		ID string `json:"id"`
	}
	if code := do(t, srv, http.MethodPost, "/v1/games", `{"player_name":"Test Artist"}`, &out); code != http.StatusCreated {
		t.Fatalf("new game status %d", code)
	}
	if out.ID == "" {
		t.Fatalf("no game id")
	}
	return out.ID
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	if code := do(t, srv, http.MethodGet, "/healthz", "", nil); code != http.StatusOK {
		t.Fatalf("healthz status %d", code)
	}
}

func TestGameLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id := newGame(t, srv)
	base := "/v1/games/" + id

	var st game.State
	if code := do(t, srv, http.MethodGet, base, "", &st); code != http.StatusOK || st.PlayerName != "Test Artist" {
		t.Fatalf("get game: status %d player %q", code, st.PlayerName)
	}

	var song game.Song
	if code := do(t, srv, http.MethodPost, base+"/songs", `{"title":"First Light","tier":1}`, &song); code != http.StatusCreated {
		t.Fatalf("create song status %d", code)
	}
	if code := do(t, srv, http.MethodPost, base+"/songs/"+song.ID+"/release", "", nil); code != http.StatusOK {
		t.Fatalf("release status %d", code)
	}
	if code := do(t, srv, http.MethodPost, base+"/songs/"+song.ID+"/release", "", nil); code != http.StatusConflict {
		t.Fatalf("second release status %d", code)
	}

	var report game.WeekReport
	if code := do(t, srv, http.MethodPost, base+"/week", "", &report); code != http.StatusOK || report.Week != 2 {
		t.Fatalf("advance: status %d week %d", code, report.Week)
	}

	var list struct {
		Games []string `json:"games"`
	}
	if code := do(t, srv, http.MethodGet, "/v1/games", "", &list); code != http.StatusOK || len(list.Games) != 1 {
		t.Fatalf("list: status %d games %v", code, list.Games)
	}
}

func TestDomainErrorStatus(t *testing.T) {
	srv := newTestServer(t)
	id := newGame(t, srv)
	base := "/v1/games/" + id

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"missing game", http.MethodGet, "/v1/games/nope", "", http.StatusNotFound},
		{"bad tier", http.MethodPost, base + "/songs", `{"title":"X","tier":9}`, http.StatusBadRequest},
		{"locked tier", http.MethodPost, base + "/songs", `{"title":"X","tier":5}`, http.StatusForbidden},
		{"unknown field", http.MethodPost, base + "/songs", `{"title":"X","tier":1,"genre":"drill"}`, http.StatusBadRequest},
		{"missing song", http.MethodPost, base + "/songs/nope/release", "", http.StatusNotFound},
		{"missing rapper", http.MethodPost, base + "/features", `{"rapper_id":"nobody","tier":1}`, http.StatusNotFound},
		{"past target", http.MethodPost, base + "/hype", `{"type":"single","title":"Soon","target_week":1}`, http.StatusBadRequest},
		{"bad import", http.MethodPost, "/v1/games/import", `{not json`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		var out map[string]any
		if code := do(t, srv, tc.method, tc.path, tc.body, &out); code != tc.want {
			t.Fatalf("%s: status %d want %d (%v)", tc.name, code, tc.want, out)
		}
		if out["error"] == nil {
			t.Fatalf("%s: no error message", tc.name)
		}
	}
}

func TestExportImport(t *testing.T) {
	srv := newTestServer(t)
	id := newGame(t, srv)

	resp, err := srv.Client().Get(srv.URL + "/v1/games/" + id + "/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status %d", resp.StatusCode)
	}

	var out struct {
		ID    string     `json:"id"`
		State game.State `json:"state"`
	}
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/games/import", bytes.NewReader(data))
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("import status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID == id || out.State.PlayerName != "Test Artist" {
		t.Fatalf("import = %s %q", out.ID, out.State.PlayerName)
	}
}

func TestFeatureAccess(t *testing.T) {
	srv := newTestServer(t)
	var out struct {
		Allowed bool `json:"allowed"`
	}
	if code := do(t, srv, http.MethodGet, "/v1/features/access?feature=tier5_songs&subscription=free", "", &out); code != http.StatusOK || out.Allowed {
		t.Fatalf("free tier 5: status %d allowed %v", code, out.Allowed)
	}
	if code := do(t, srv, http.MethodGet, "/v1/features/access", "", nil); code != http.StatusBadRequest {
		t.Fatalf("missing feature status %d", code)
	}
}
