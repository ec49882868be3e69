// Package api exposes the ledger over a JSON REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/mmynk/splitpay/internal/auth"
	"github.com/mmynk/splitpay/internal/config"
	"github.com/mmynk/splitpay/internal/ledger"
	"github.com/mmynk/splitpay/internal/middleware"
)

// API wires the HTTP surface: routing, CORS, auth, logging and metrics.
type API struct {
	router        *mux.Router
	ledger        *ledger.Ledger
	authenticator *auth.PasswordAuthenticator
	jwt           *auth.JWTManager
	users         auth.UserStorage
	cfg           *config.Config
}

// New builds the API around a ledger and the dev identity provider.
func New(cfg *config.Config, led *ledger.Ledger, authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager, users auth.UserStorage) *API {
	a := &API{
		router:        mux.NewRouter(),
		ledger:        led,
		authenticator: authenticator,
		jwt:           jwtManager,
		users:         users,
		cfg:           cfg,
	}
	a.setupRoutes()
	return a
}

func (a *API) setupRoutes() {
	a.router.Use(middleware.Metrics)
	a.router.Use(middleware.Logging)

	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Auth endpoints (public)
	a.router.HandleFunc("/api/auth/register", a.handleRegister).Methods("POST")
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("POST")

	// Ledger endpoints (authenticated)
	sec := a.router.PathPrefix("/api").Subrouter()
	sec.Use(middleware.RequireAuth(a.jwt))
	sec.HandleFunc("/users/me", a.handleMe).Methods("GET")
	sec.HandleFunc("/bills", a.handleCreateBill).Methods("POST")
	sec.HandleFunc("/bills", a.handleListBills).Methods("GET")
	sec.HandleFunc("/bills/{id}", a.handleGetBill).Methods("GET")
	sec.HandleFunc("/bills/{id}/status", a.handleBillStatus).Methods("GET")
	sec.HandleFunc("/bills/{id}/payments", a.handleRecordPayment).Methods("POST")
	sec.HandleFunc("/bills/{id}/withdraw", a.handleWithdraw).Methods("POST")
}

// Handler returns the fully wrapped HTTP handler, CORS included.
func (a *API) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})
	return c.Handler(a.router)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "splitpay"})
}
