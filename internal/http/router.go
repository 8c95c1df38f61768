package http

import (
	"net/http"

	"github.com/clinicore/department-service/internal/appointment"
	"github.com/clinicore/department-service/internal/auth"
	"github.com/clinicore/department-service/internal/consultation"
	"github.com/clinicore/department-service/internal/discharge"
	"github.com/clinicore/department-service/internal/gateway"
	"github.com/clinicore/department-service/internal/messaging"
	"github.com/clinicore/department-service/internal/patient"
	"github.com/clinicore/department-service/internal/telemetry"
	"github.com/clinicore/department-service/internal/users"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// SetupRouter initializes all routes for the application
func SetupRouter(gw gateway.Gateway, publisher messaging.PublisherInterface, verifier *auth.Verifier, perms auth.Permissions, metrics *telemetry.Metrics) *mux.Router {
	// Initialize user components
	userStore := users.NewStore(gw, publisher)
	userHandler := users.NewHandler(userStore, verifier)

	// Initialize patient components
	patientStore := patient.NewStore(gw, publisher)
	patientHandler := patient.NewHandler(patientStore)

	// Initialize consultation components
	consultationStore := consultation.NewStore(gw)
	consultationHandler := consultation.NewHandler(consultationStore)

	// Initialize discharge components
	dischargeStore := discharge.NewStore(gw, publisher)
	dischargeHandler := discharge.NewHandler(dischargeStore)

	// Initialize appointment components
	appointmentStore := appointment.NewStore(gw, publisher)
	appointmentHandler := appointment.NewHandler(appointmentStore, metrics)

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("department-service"))
	r.Use(RequestMetrics(metrics))

	authn := auth.MiddlewareWithMetrics(verifier, metrics)
	require := func(permission string) func(http.Handler) http.Handler {
		return auth.RequirePermissionWithMetrics(permission, perms, metrics)
	}

	// Public health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"department-service"}`))
	}).Methods("GET")

	// Session routes
	r.HandleFunc("/auth/login", userHandler.Login).Methods("POST")

	r.Handle("/auth/logout",
		authn(http.HandlerFunc(userHandler.Logout)),
	).Methods("POST")

	// Staff roster routes (administrators only)
	r.Handle("/users",
		authn(require("user:view")(
			http.HandlerFunc(userHandler.ListUsers),
		)),
	).Methods("GET")

	r.Handle("/users",
		authn(require("user:manage")(
			http.HandlerFunc(userHandler.CreateUser),
		)),
	).Methods("POST")

	r.Handle("/users/{id}",
		authn(require("user:manage")(
			http.HandlerFunc(userHandler.UpdateUser),
		)),
	).Methods("PATCH")

	r.Handle("/users/{id}",
		authn(require("user:manage")(
			http.HandlerFunc(userHandler.DeleteUser),
		)),
	).Methods("DELETE")

	// Patient routes
	r.Handle("/patients",
		authn(require("patient:view")(
			http.HandlerFunc(patientHandler.ListPatients),
		)),
	).Methods("GET")

	r.Handle("/patients",
		authn(require("patient:manage")(
			http.HandlerFunc(patientHandler.CreatePatient),
		)),
	).Methods("POST")

	r.Handle("/patients/admit",
		authn(require("patient:manage")(
			http.HandlerFunc(patientHandler.AdmitPatient),
		)),
	).Methods("POST")

	r.Handle("/patients/{id}",
		authn(require("patient:manage")(
			http.HandlerFunc(patientHandler.UpdatePatient),
		)),
	).Methods("PUT")

	r.Handle("/patients/{id}",
		authn(require("patient:manage")(
			http.HandlerFunc(patientHandler.DeletePatient),
		)),
	).Methods("DELETE")

	// Consultation routes
	r.Handle("/consultations",
		authn(require("consultation:view")(
			http.HandlerFunc(consultationHandler.ListConsultations),
		)),
	).Methods("GET")

	r.Handle("/consultations",
		authn(require("consultation:manage")(
			http.HandlerFunc(consultationHandler.CreateConsultation),
		)),
	).Methods("POST")

	r.Handle("/consultations/{id}",
		authn(require("consultation:manage")(
			http.HandlerFunc(consultationHandler.UpdateConsultation),
		)),
	).Methods("PUT")

	r.Handle("/consultations/{id}",
		authn(require("consultation:manage")(
			http.HandlerFunc(consultationHandler.DeleteConsultation),
		)),
	).Methods("DELETE")

	// Discharge routes
	r.Handle("/discharge/active",
		authn(require("discharge:view")(
			http.HandlerFunc(dischargeHandler.ListActivePatients),
		)),
	).Methods("GET")

	r.Handle("/discharge/process",
		authn(require("discharge:process")(
			http.HandlerFunc(dischargeHandler.ProcessDischarge),
		)),
	).Methods("POST")

	// Appointment routes
	r.Handle("/appointments",
		authn(require("appointment:view")(
			http.HandlerFunc(appointmentHandler.ListAppointments),
		)),
	).Methods("GET")

	r.Handle("/appointments",
		authn(require("appointment:manage")(
			http.HandlerFunc(appointmentHandler.CreateAppointment),
		)),
	).Methods("POST")

	r.Handle("/appointments/sweep",
		authn(require("appointment:manage")(
			http.HandlerFunc(appointmentHandler.SweepAppointments),
		)),
	).Methods("POST")

	r.Handle("/appointments/{id}",
		authn(require("appointment:manage")(
			http.HandlerFunc(appointmentHandler.UpdateAppointment),
		)),
	).Methods("PUT")

	return r
}
