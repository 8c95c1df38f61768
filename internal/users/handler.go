package users

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/clinicore/department-service/internal/auth"
	"github.com/clinicore/department-service/internal/pagination"
	"github.com/gorilla/mux"
)

type Handler struct {
	store    StoreInterface
	verifier *auth.Verifier
}

func NewHandler(store StoreInterface, verifier *auth.Verifier) *Handler {
	return &Handler{store: store, verifier: verifier}
}

// LoginRequest is the login form payload
type LoginRequest struct {
	MedicalCode string `json:"medical_code"`
}

// LoginResponse carries the session token and the logged-in user
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.MedicalCode == "" {
		http.Error(w, "medical code is required", http.StatusBadRequest)
		return
	}

	user, err := h.store.Login(r.Context(), req.MedicalCode)
	if err != nil {
		log.Printf("Failed login attempt: %v", err)

		if err == ErrUserNotFound {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, "login failed", http.StatusInternalServerError)
		}
		return
	}

	token, err := h.verifier.IssueToken(auth.Principal{
		UserID:      user.ID,
		MedicalCode: user.MedicalCode,
		Name:        user.Name,
		Role:        user.Role,
	})
	if err != nil {
		log.Printf("Failed to issue session token: %v", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{Token: token, User: *user})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Fetch(r.Context()); err != nil {
		log.Printf("Failed to list users: %v", err)
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	all := h.store.Users()
	params := pagination.ParseParams(r)
	page := pagination.Slice(len(all), params)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"users":      all[page.Start:page.End],
		"pagination": params.CalculateMeta(len(all)),
	})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req NewUser
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.Add(r.Context(), req)
	if err != nil {
		log.Printf("Failed to create user: %v", err)

		switch err {
		case ErrMissingMedicalCode, ErrMissingName, ErrMissingDepartment, ErrInvalidRole:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "failed to create user", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.Update(r.Context(), id, req)
	if err != nil {
		log.Printf("Failed to update user: %v", err)
		http.Error(w, "failed to update user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		log.Printf("Failed to delete user: %v", err)
		http.Error(w, "failed to delete user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
