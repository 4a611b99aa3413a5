package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"pet-progress-api/internal/catalog"
	"pet-progress-api/internal/service"
	"pet-progress-api/internal/snapshot"

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	svc *service.Service
}

func NewHandlers(svc *service.Service) *Handlers { return &Handlers{svc: svc} }

func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": "v0.1.0",
	})
}

func (h *Handlers) Catalogue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":  h.svc.Catalog().Categories(),
		"total_pets":  h.svc.Catalog().TotalPets(),
		"total_hours": h.svc.Catalog().TotalHours(),
	})
}

func (h *Handlers) CataloguePet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "pet")
	if name == "" {
		writeError(w, http.StatusBadRequest, errMissing("pet"))
		return
	}
	cat := h.svc.Catalog()
	pet, ok := cat.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, badReq("unknown pet: "+name))
		return
	}
	rates := make(map[string]catalog.DropRate)
	for _, ch := range cat.Channels(name) {
		if dr, ok := cat.DropRate(ch.Variant); ok {
			rates[ch.Variant] = dr
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pet":   pet,
		"rates": rates,
	})
}

func (h *Handlers) Progress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Progress())
}

func (h *Handlers) RefreshPlayer(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		writeError(w, http.StatusBadRequest, errMissing("player"))
		return
	}
	prog, err := h.svc.RefreshPlayer(r.Context(), player)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (h *Handlers) RefreshGroup(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")
	if group == "" {
		writeError(w, http.StatusBadRequest, errMissing("group"))
		return
	}
	count := 0
	if s := r.URL.Query().Get("count"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			count = v
		}
	}
	members, err := h.svc.RefreshGroup(r.Context(), group, count)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handlers) ManualMode(w http.ResponseWriter, r *http.Request) {
	on := r.URL.Query().Get("on") == "true"
	h.svc.SetManualMode(on)
	writeJSON(w, http.StatusOK, map[string]any{"manual_mode": on})
}

func (h *Handlers) Toggle(w http.ResponseWriter, r *http.Request) {
	pet := r.URL.Query().Get("pet")
	if pet == "" {
		writeError(w, http.StatusBadRequest, errMissing("pet"))
		return
	}
	flag, err := h.svc.Toggle(pet)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pet": pet, "obtained": flag})
}

type kcRequest struct {
	Source string `json:"source"`
	Pet    string `json:"pet"`
	Value  string `json:"value"`
}

func (h *Handlers) SetKC(w http.ResponseWriter, r *http.Request) {
	var req kcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Pet == "" {
		writeError(w, http.StatusBadRequest, errMissing("pet"))
		return
	}
	h.svc.SetKC(req.Source, req.Pet, req.Value)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type rateInputRequest struct {
	Pet     string `json:"pet"`
	Channel string `json:"channel"`
	Value   string `json:"value"`
}

func (h *Handlers) SetRateInput(w http.ResponseWriter, r *http.Request) {
	var req rateInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Pet == "" {
		writeError(w, http.StatusBadRequest, errMissing("pet"))
		return
	}
	h.svc.SetRateInput(req.Pet, req.Channel, req.Value)
	writeJSON(w, http.StatusOK, h.svc.Likelihood(req.Pet))
}

func (h *Handlers) Likelihood(w http.ResponseWriter, r *http.Request) {
	pet := chi.URLParam(r, "pet")
	if pet == "" {
		writeError(w, http.StatusBadRequest, errMissing("pet"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Likelihood(pet))
}

func (h *Handlers) Likelihoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Likelihoods())
}

func (h *Handlers) Preferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Preferences())
}

func (h *Handlers) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs snapshot.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.svc.SetPreferences(prefs)
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	blob, persisted, err := h.svc.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if !persisted {
		w.Header().Set("X-Persisted", "false")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.svc.Import(body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handlers) SeedKC(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		writeError(w, http.StatusBadRequest, errMissing("player"))
		return
	}
	seeded, err := h.svc.SeedFromHiscores(r.Context(), player)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	out := make(map[string]string, len(seeded))
	for k, v := range seeded {
		key := k.Pet
		if k.Channel != "" {
			key += "/" + k.Channel
		}
		out[key] = v
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		writeError(w, http.StatusBadRequest, errMissing("player"))
		return
	}
	limit := 25
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	list, err := h.svc.History(player, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type badReq string

func (e badReq) Error() string { return string(e) }

func errMissing(p string) error { return badReq("missing parameter: " + p) }
