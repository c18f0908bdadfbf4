package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/ambucheck/internal/config"
	"github.com/garnizeh/ambucheck/internal/equipment"
	"github.com/garnizeh/ambucheck/internal/forms"
	"github.com/garnizeh/ambucheck/internal/pdf"
	"github.com/garnizeh/ambucheck/internal/rules"
	"github.com/garnizeh/ambucheck/internal/submissions"
	"github.com/garnizeh/ambucheck/internal/uploads"
	"github.com/garnizeh/ambucheck/pkg/repository"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Store    repository.Store
	Registry *forms.Registry
	Rules    rules.Table
	Uploads  *uploads.Store
	Images   pdf.ImageFetcher
	Logger   *slog.Logger
}

func SetupRoutes(cfg *config.Config, version, buildTime string, deps Deps) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Services
	resolver := forms.NewResolver(deps.Registry, deps.Store, deps.Logger)
	submissionSvc := submissions.NewService(resolver, deps.Store, deps.Logger)
	equipmentSvc := equipment.NewService(deps.Store, deps.Uploads, deps.Logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(deps.Store, cfg.JWTSecret, cfg.TokenDuration)
	formsHandler := NewFormsHandler(resolver, deps.Store, deps.Rules)
	submissionsHandler := NewSubmissionsHandler(submissionSvc, resolver, deps.Images)
	equipmentHandler := NewEquipmentHandler(equipmentSvc, deps.Images, cfg.MaxBodyBytes)
	uploadHandler := NewUploadHandler(deps.Uploads, cfg.MaxBodyBytes)
	adminHandler := NewAdminHandler(deps.Store, deps.Store, deps.Store)
	runsheetHandler := NewRunsheetHandler(deps.Store)

	// Preflight for any path; the CORS middleware answers it.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// Open endpoints
	r.HandleFunc("/api/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/api/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/api/login", authHandler.Login).Methods("POST")
	r.PathPrefix(uploads.PublicPrefix).Handler(
		http.StripPrefix(uploads.PublicPrefix, http.FileServer(http.Dir(deps.Uploads.Dir()))),
	).Methods("GET")

	// Protected routes
	apiR := r.PathPrefix("/api").Subrouter()
	apiR.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	apiR.HandleFunc("/me", authHandler.Me).Methods("GET")
	apiR.HandleFunc("/upload/{fieldName}", uploadHandler.Upload).Methods("POST")
	apiR.HandleFunc("/vehicles", adminHandler.ListVehicles).Methods("GET")

	apiR.HandleFunc("/runsheets", runsheetHandler.List).Methods("GET")
	apiR.HandleFunc("/runsheets/{id}", runsheetHandler.Get).Methods("GET")

	apiR.HandleFunc("/forms", formsHandler.List).Methods("GET")
	apiR.HandleFunc("/forms/config/{formId}", formsHandler.GetConfig).Methods("GET")
	apiR.HandleFunc("/forms/{formId}/schema", formsHandler.Schema).Methods("GET")
	apiR.HandleFunc("/forms/{formId}/view", formsHandler.View).Methods("POST")
	apiR.HandleFunc("/forms/{formId}/submissions", submissionsHandler.Submit).Methods("POST")

	apiR.HandleFunc("/equipment-checks", equipmentHandler.Create).Methods("POST")
	apiR.HandleFunc("/equipment-checks", equipmentHandler.List).Methods("GET")
	apiR.HandleFunc("/equipment-checks/preflight", equipmentHandler.Preflight).Methods("POST")

	// Admin console
	admin := apiR.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAdmin)

	admin.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")

	admin.HandleFunc("/practitioners", adminHandler.ListPractitioners).Methods("GET")
	admin.HandleFunc("/practitioners", adminHandler.CreatePractitioner).Methods("POST")
	admin.HandleFunc("/practitioners/{id}", adminHandler.UpdatePractitioner).Methods("PUT")
	admin.HandleFunc("/practitioners/{id}", adminHandler.DeletePractitioner).Methods("DELETE")

	admin.HandleFunc("/vehicles", adminHandler.ListVehicles).Methods("GET")
	admin.HandleFunc("/vehicles", adminHandler.CreateVehicle).Methods("POST")
	admin.HandleFunc("/vehicles/{id}", adminHandler.UpdateVehicle).Methods("PUT")
	admin.HandleFunc("/vehicles/{id}", adminHandler.DeleteVehicle).Methods("DELETE")

	admin.HandleFunc("/forms/config/{formId}", formsHandler.GetConfig).Methods("GET")
	admin.HandleFunc("/forms/config/{formId}", formsHandler.PutConfig).Methods("PUT")
	admin.HandleFunc("/forms/{formId}/submissions", submissionsHandler.List).Methods("GET")
	admin.HandleFunc("/forms/{formId}/submissions/export", submissionsHandler.Export).Methods("GET")
	admin.HandleFunc("/forms/{formId}/submissions/{submissionId}/pdf", submissionsHandler.PDF).Methods("GET")

	admin.HandleFunc("/equipment-checks", equipmentHandler.List).Methods("GET")
	admin.HandleFunc("/equipment-checks/{id}/pdf", equipmentHandler.PDF).Methods("GET")
	admin.HandleFunc("/equipment-checks/{id}", equipmentHandler.Delete).Methods("DELETE")

	return r
}
