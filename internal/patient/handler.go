package patient

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type Handler struct {
	store StoreInterface
}

func NewHandler(store StoreInterface) *Handler {
	return &Handler{store: store}
}

// AdmitRequest is the admission form payload: the patient's
// demographics plus the admission details.
type AdmitRequest struct {
	Patient   NewPatient   `json:"patient"`
	Admission NewAdmission `json:"admission"`
}

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Fetch(r.Context()); err != nil {
		log.Printf("Failed to list patients: %v", err)
		http.Error(w, "failed to list patients", http.StatusInternalServerError)
		return
	}

	patients := h.store.Patients()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"patients": patients,
		"count":    len(patients),
	})
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req NewPatient
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.store.Add(r.Context(), req)
	if err != nil {
		log.Printf("Failed to create patient: %v", err)

		switch err {
		case ErrMissingMRN, ErrMissingName:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "failed to create patient", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) AdmitPatient(w http.ResponseWriter, r *http.Request) {
	var req AdmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.store.Admit(r.Context(), req.Patient, req.Admission)
	if err != nil {
		log.Printf("Failed to admit patient: %v", err)

		switch err {
		case ErrMissingMRN, ErrMissingName:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "failed to admit patient", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}

	var req UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.store.Update(r.Context(), id, req)
	if err != nil {
		log.Printf("Failed to update patient: %v", err)
		http.Error(w, "failed to update patient", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		log.Printf("Failed to delete patient: %v", err)
		http.Error(w, "failed to delete patient", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
