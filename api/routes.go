package api

import (
	"net/http"
	"path"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/splitbook/splitbook-services/api/handlers"
	"github.com/splitbook/splitbook-services/api/middleware"
	"github.com/splitbook/splitbook-services/api/services"
	docs "github.com/splitbook/splitbook-services/docs"
	"github.com/splitbook/splitbook-services/internal/authn"
)

// NewRegistry returns a metrics registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewRouter binds the API to its handlers. Everything under the base path
// requires a bearer token.
func NewRouter(svc *services.Service, authenticator authn.Authenticator, reg *prometheus.Registry) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = middleware.WithLogger(handlers.NotFound())
	r.MethodNotAllowedHandler = middleware.WithLogger(handlers.MethodNotAllowed())

	metrics := middleware.NewMetrics(reg)
	r.Use(middleware.WithLogger)
	r.Use(metrics.Middleware)

	basePath := svc.Config.BasePath

	// Unauthenticated routes
	r.HandleFunc("/", handlers.Index(basePath)).Methods(http.MethodGet)
	r.HandleFunc("/health", handlers.Health()).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Docs
	if docsPath := svc.Config.DocsPath; docsPath != "" {
		docs.SwaggerInfo.Host = svc.Config.Host
		docs.SwaggerInfo.BasePath = basePath
		r.PathPrefix(docsPath).Handler(httpSwagger.Handler(
			httpSwagger.URL(path.Join(docsPath, "/doc.json")),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("none"),
			httpSwagger.DomID("swagger-ui"),
		)).Methods(http.MethodGet)
	}

	// Unmatched paths under the base path still require a token, so callers
	// without one always see 401.
	auth := middleware.AuthMiddleware(authenticator)
	api := r.PathPrefix(basePath).Subrouter()
	api.NotFoundHandler = middleware.WithLogger(auth(handlers.NotFound()))
	api.MethodNotAllowedHandler = middleware.WithLogger(auth(handlers.MethodNotAllowed()))
	api.Use(auth)

	// Group routes
	api.HandleFunc("/groups", handlers.CreateGroup(svc)).Methods(http.MethodPost)
	api.HandleFunc("/groups", handlers.GetGroups(svc)).Methods(http.MethodGet)
	api.HandleFunc("/groups/{group-id:[0-9]+}", handlers.DeleteGroup(svc)).Methods(http.MethodDelete)

	// Expense routes
	api.HandleFunc("/groups/{group-id:[0-9]+}/expenses", handlers.CreateExpense(svc)).Methods(http.MethodPost)
	api.HandleFunc("/groups/{group-id:[0-9]+}/expenses", handlers.GetGroupExpenses(svc)).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{expense-id:[0-9]+}", handlers.GetExpense(svc)).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{expense-id:[0-9]+}", handlers.DeleteExpense(svc)).Methods(http.MethodDelete)

	return r
}

// WithCORS allows browser calls from the given origins. An empty list
// disables cross-origin access.
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Location", middleware.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(h)
}
