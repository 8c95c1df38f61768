package appointment

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// SweepMetricsRecorder interface for recording sweep health metrics
type SweepMetricsRecorder interface {
	RecordSweep(ctx context.Context, succeeded bool)
}

type Handler struct {
	store   StoreInterface
	metrics SweepMetricsRecorder
}

func NewHandler(store StoreInterface, metrics SweepMetricsRecorder) *Handler {
	return &Handler{store: store, metrics: metrics}
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Fetch(r.Context()); err != nil {
		log.Printf("Failed to list appointments: %v", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	appointments := h.store.Appointments()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req NewAppointment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.store.Add(r.Context(), req)
	if err != nil {
		log.Printf("Failed to create appointment: %v", err)

		switch err {
		case ErrMissingPatientName, ErrMissingMedicalNumber, ErrMissingSpecialty:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	var req UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.store.Update(r.Context(), id, req)
	if err != nil {
		log.Printf("Failed to update appointment: %v", err)
		http.Error(w, "failed to update appointment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// SweepAppointments triggers a best-effort expiry sweep. The response
// is 202 regardless of sweep outcome; the outcome itself lands in
// logs and metrics.
func (h *Handler) SweepAppointments(w http.ResponseWriter, r *http.Request) {
	result := h.store.Sweep(r.Context())

	if h.metrics != nil {
		h.metrics.RecordSweep(r.Context(), !result.Failed())
	}
	if result.Failed() {
		log.Printf("Appointment sweep finished with errors (cutoff %s)", result.CutOff)
	} else {
		log.Printf("Appointment sweep completed (cutoff %s)", result.CutOff)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cut_off":   result.CutOff,
		"succeeded": !result.Failed(),
	})
}
