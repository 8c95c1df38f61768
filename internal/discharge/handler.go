package discharge

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type Handler struct {
	store StoreInterface
}

func NewHandler(store StoreInterface) *Handler {
	return &Handler{store: store}
}

// ProcessRequest identifies the admission to discharge plus the
// discharge form fields.
type ProcessRequest struct {
	AdmissionID int64 `json:"admission_id"`
	DischargeRequest
}

func (h *Handler) ListActivePatients(w http.ResponseWriter, r *http.Request) {
	if err := h.store.FetchActive(r.Context()); err != nil {
		log.Printf("Failed to list active patients: %v", err)
		http.Error(w, "failed to list active patients", http.StatusInternalServerError)
		return
	}

	active := h.store.ActivePatients()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"active_patients": active,
		"count":           len(active),
	})
}

func (h *Handler) ProcessDischarge(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AdmissionID == 0 {
		http.Error(w, "admission_id is required", http.StatusBadRequest)
		return
	}

	// The discharge is keyed by the explicit admission id so a
	// concurrent request cannot redirect it through the shared
	// selection slot. One refresh gives a cold cache a chance to
	// learn the admission before rejecting it.
	err := h.store.ProcessDischargeByID(r.Context(), req.AdmissionID, req.DischargeRequest)
	if errors.Is(err, ErrAdmissionNotActive) {
		if err := h.store.FetchActive(r.Context()); err != nil {
			log.Printf("Failed to refresh active patients: %v", err)
			http.Error(w, "failed to process discharge", http.StatusInternalServerError)
			return
		}
		err = h.store.ProcessDischargeByID(r.Context(), req.AdmissionID, req.DischargeRequest)
	}
	if errors.Is(err, ErrAdmissionNotActive) {
		http.Error(w, "admission not found in active set", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Failed to process discharge: %v", err)
		http.Error(w, "failed to process discharge", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"discharged":      req.AdmissionID,
		"active_patients": h.store.ActivePatients(),
	})
}
