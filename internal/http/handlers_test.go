package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"pet-progress-api/internal/catalog"
	"pet-progress-api/internal/config"
	"pet-progress-api/internal/hiscores"
	"pet-progress-api/internal/service"
	"pet-progress-api/internal/store"
	"pet-progress-api/internal/temple"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("loading catalogue: %v", err)
	}
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	svc := service.New(st, temple.New(cat, ""), hiscores.New(cat, ""), cat, config.Config{})
	return NewRouter(svc)
}

func do(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStatus(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestCatalogue(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/api/v1/catalogue", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		TotalPets  int     `json:"total_pets"`
		TotalHours float64 `json:"total_hours"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.TotalPets != 64 {
		t.Errorf("expected 64 pets, got %d", body.TotalPets)
	}
	if body.TotalHours != 5370 {
		t.Errorf("expected 5370 hours, got %v", body.TotalHours)
	}
}

func TestCataloguePet(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/v1/catalogue/"+url.PathEscape("Lil' zik"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Pet struct {
			Name     string `json:"name"`
			ItemID   int    `json:"item_id"`
			Category string `json:"category"`
		} `json:"pet"`
		Rates map[string]struct {
			Rate float64 `json:"rate"`
			Main string  `json:"main"`
		} `json:"rates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Pet.Name != "Lil' zik" || body.Pet.ItemID != 22473 || body.Pet.Category != "Raids" {
		t.Errorf("unexpected pet: %+v", body.Pet)
	}
	if body.Rates["Lil' zik"].Rate != 650 {
		t.Errorf("expected normal rate 650, got %v", body.Rates["Lil' zik"].Rate)
	}
	if body.Rates["Lil' zik (Hard Mode)"].Rate != 500 {
		t.Errorf("expected hard mode rate 500, got %v", body.Rates["Lil' zik (Hard Mode)"].Rate)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/catalogue/Nonexistent", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLikelihoodViaInputs(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/likelihood/inputs",
		`{"pet": "Jal-nib-rek", "channel": "offTask", "value": "50"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Display string `json:"display"`
		Band    string `json:"band"`
		HasData bool   `json:"has_data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !res.HasData {
		t.Fatal("expected data")
	}
	if res.Display != "0.50x" {
		t.Errorf("expected 0.50x, got %q", res.Display)
	}
	if res.Band != "lucky" {
		t.Errorf("expected lucky, got %q", res.Band)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/likelihood/"+url.PathEscape("Jal-nib-rek"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "0.50x") {
		t.Errorf("expected 0.50x in %s", rec.Body.String())
	}
}

func TestToggleOutsideManualMode(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodPost, "/api/v1/manual/toggle?pet=Hellpuppy", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestManualToggleFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/manual?on=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = do(t, r, http.MethodPost, "/api/v1/manual/toggle?pet=Hellpuppy", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/api/v1/progress", "")
	var sum struct {
		Obtained int     `json:"obtained"`
		Hours    float64 `json:"hours"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if sum.Obtained != 1 {
		t.Errorf("expected 1 obtained, got %d", sum.Obtained)
	}
	if sum.Hours != 50 {
		t.Errorf("expected 50 hours, got %v", sum.Hours)
	}
}

func TestImportMalformed(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodPost, "/api/v1/import", "not json at all")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExportShape(t *testing.T) {
	r := newTestRouter(t)

	do(t, r, http.MethodPost, "/api/v1/manual?on=true", "")
	do(t, r, http.MethodPost, "/api/v1/manual/toggle?pet=Hellpuppy", "")

	rec := do(t, r, http.MethodGet, "/api/v1/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	for _, key := range []string{"pets", "likelihoodKcValues", "player"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("export missing %q", key)
		}
	}
}

func TestRefreshRequiresPlayer(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodPost, "/api/v1/refresh", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/preferences",
		`{"petCountColor": "#123456", "player": "Zezima", "isCompact": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/preferences", "")
	var prefs struct {
		PetCountColor string `json:"petCountColor"`
		Player        string `json:"player"`
		IsCompact     bool   `json:"isCompact"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &prefs); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if prefs.PetCountColor != "#123456" || prefs.Player != "Zezima" || !prefs.IsCompact {
		t.Errorf("unexpected preferences: %+v", prefs)
	}
}

func TestHistoryRequiresPlayer(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/api/v1/history", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
