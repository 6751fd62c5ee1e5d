package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Loan          *LoanHandler
	Client        *ClientHandler
	Book          *BookHandler
	Configuration *ConfigurationHandler
	AuthMW        *AuthMiddleware
}

// NewRouter builds the API routing table. Everything under /api/v1 except
// login, refresh and cover downloads requires a valid access token;
// configuration updates require the admin role.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public
	api.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", h.Auth.Refresh).Methods("POST")
	api.HandleFunc("/covers/{key}", h.Book.ServeCover).Methods("GET")

	// Staff
	staff := api.NewRoute().Subrouter()
	staff.Use(h.AuthMW.Require)

	staff.HandleFunc("/loans", h.Loan.Create).Methods("POST")
	staff.HandleFunc("/loans", h.Loan.List).Methods("GET")
	staff.HandleFunc("/loans/active", h.Loan.ListActive).Methods("GET")
	staff.HandleFunc("/loans/overdue", h.Loan.ListOverdue).Methods("GET")
	staff.HandleFunc("/loans/{id:[0-9]+}", h.Loan.Get).Methods("GET")
	staff.HandleFunc("/loans/{id:[0-9]+}/return", h.Loan.Return).Methods("POST")
	staff.HandleFunc("/loans/{id:[0-9]+}/outstanding", h.Loan.Outstanding).Methods("GET")
	staff.HandleFunc("/loan-items/{itemId:[0-9]+}/return", h.Loan.ReturnItem).Methods("POST")

	staff.HandleFunc("/clients", h.Client.Create).Methods("POST")
	staff.HandleFunc("/clients", h.Client.List).Methods("GET")
	staff.HandleFunc("/clients/{id:[0-9]+}", h.Client.Get).Methods("GET")
	staff.HandleFunc("/clients/{id:[0-9]+}", h.Client.Update).Methods("PUT")
	staff.HandleFunc("/clients/{id:[0-9]+}", h.Client.Deactivate).Methods("DELETE")
	staff.HandleFunc("/clients/{clientId:[0-9]+}/loans", h.Loan.ListByClient).Methods("GET")

	staff.HandleFunc("/books", h.Book.Create).Methods("POST")
	staff.HandleFunc("/books", h.Book.List).Methods("GET")
	staff.HandleFunc("/books/{id:[0-9]+}", h.Book.Get).Methods("GET")
	staff.HandleFunc("/books/{id:[0-9]+}", h.Book.Update).Methods("PUT")
	staff.HandleFunc("/books/{id:[0-9]+}", h.Book.Deactivate).Methods("DELETE")
	staff.HandleFunc("/books/{id:[0-9]+}/cover", h.Book.UploadCover).Methods("POST")
	staff.HandleFunc("/books/{id:[0-9]+}/cover", h.Book.DeleteCover).Methods("DELETE")

	staff.HandleFunc("/configuration", h.Configuration.Get).Methods("GET")

	// Admin
	admin := api.NewRoute().Subrouter()
	admin.Use(h.AuthMW.RequireAdmin)
	admin.HandleFunc("/configuration", h.Configuration.Update).Methods("PUT")
	admin.HandleFunc("/configuration/cache/invalidate", h.Configuration.InvalidateCache).Methods("POST")

	return r
}
