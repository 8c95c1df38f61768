package consultation

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/clinicore/department-service/internal/pagination"
	"github.com/gorilla/mux"
)

type Handler struct {
	store StoreInterface
}

func NewHandler(store StoreInterface) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ListConsultations(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Fetch(r.Context()); err != nil {
		log.Printf("Failed to list consultations: %v", err)
		http.Error(w, "failed to list consultations", http.StatusInternalServerError)
		return
	}

	all := h.store.Consultations()
	params := pagination.ParseParams(r)
	page := pagination.Slice(len(all), params)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"consultations": all[page.Start:page.End],
		"pagination":    params.CalculateMeta(len(all)),
	})
}

func (h *Handler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	var req NewConsultation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.store.Add(r.Context(), req)
	if err != nil {
		log.Printf("Failed to create consultation: %v", err)

		switch err {
		case ErrMissingMRN, ErrMissingSpecialty:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "failed to create consultation", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) UpdateConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid consultation id", http.StatusBadRequest)
		return
	}

	var req UpdateConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.store.Update(r.Context(), id, req)
	if err != nil {
		log.Printf("Failed to update consultation: %v", err)
		http.Error(w, "failed to update consultation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *Handler) DeleteConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid consultation id", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		log.Printf("Failed to delete consultation: %v", err)
		http.Error(w, "failed to delete consultation", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
