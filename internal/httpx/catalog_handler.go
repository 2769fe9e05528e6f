package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"aleenascuisine/internal/repository"
	"aleenascuisine/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	Svc *service.CatalogService
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/cakes", h.listCakes)
	r.Get("/cakes/{ref}", h.getCake)
	r.Post("/admin/cakes", h.createCake)
	r.Patch("/admin/cakes/{id}", h.updateCake)
	r.Post("/admin/cakes/{id}/availability", h.setAvailability)
	r.Post("/admin/cakes/{id}/inventory", h.adjustInventory)
}

func (h *CatalogHandler) listCakes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.CakeListFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Page:     atoiOrZero(q.Get("page")),
		PageSize: atoiOrZero(q.Get("page_size")),
	}
	if v := q.Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_price"})
			return
		}
		f.MinPrice = &d
	}
	if v := q.Get("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid max_price"})
			return
		}
		f.MaxPrice = &d
	}

	cakes, total, err := h.Svc.ListCakes(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": cakes, "total": total})
}

// getCake accepts either the cake id or its slug.
func (h *CatalogHandler) getCake(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if id, err := uuid.Parse(ref); err == nil {
		cake, err := h.Svc.GetCake(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cake)
		return
	}
	cake, err := h.Svc.GetCakeBySlug(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cake)
}

func (h *CatalogHandler) createCake(w http.ResponseWriter, r *http.Request) {
	var in service.CakeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if in.Name == "" || in.Slug == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and slug are required"})
		return
	}
	cake, err := h.Svc.CreateCake(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cake)
}

func (h *CatalogHandler) updateCake(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cake id"})
		return
	}
	var patch service.CakePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	cake, err := h.Svc.UpdateCake(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cake)
}

func (h *CatalogHandler) setAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cake id"})
		return
	}
	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	cake, err := h.Svc.SetAvailability(r.Context(), id, req.Available)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cake)
}

func (h *CatalogHandler) adjustInventory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cake id"})
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	cake, err := h.Svc.AdjustInventory(r.Context(), id, req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cake)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
