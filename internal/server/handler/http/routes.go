package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth"
	"go.uber.org/zap"

	"github.com/atinyakov/travelsite/internal/middleware"
	"github.com/atinyakov/travelsite/internal/models"
)

// RouterOptions carries the cross-cutting settings of the router.
type RouterOptions struct {
	// Tokens verifies bearer tokens on protected routes.
	Tokens *jwtauth.JWTAuth
	// AllowedOrigins is the CORS origin list; "*" allows any.
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter constructs the HTTP handler of the content API.
//
// Public routes:
//
//	POST /api/auth/login
//	GET  /api/packages, /api/high-selling-packages, /api/home-images, /api/about
//	POST /api/enquiries
//	GET  /uploads/{name}
//
// Everything else under /api requires a bearer token.
//
// Middleware chain (applied in order):
//  1. RequestID, Recoverer
//  2. CORS
//  3. AllowContentType(application/json, multipart/form-data)
//  4. WithRequestLogging(logger)
func NewRouter(auth *AuthHandler, content *ContentHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))
	r.Use(middleware.WithRequestLogging(opts.Logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, http.StatusNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	protected := func(r chi.Router) {
		r.Use(jwtauth.Verifier(opts.Tokens))
		r.Use(middleware.Authenticator)
	}

	r.Get("/uploads/{name}", content.ServeMedia)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/login", auth.Login)
		r.Post("/enquiries", content.CreateEnquiry)
		r.Get("/home-images", content.ListHomeImages)
		r.Get("/about", content.GetAbout)

		r.Route("/packages", content.PackageRoutes(models.Standard, protected))
		r.Route("/high-selling-packages", content.PackageRoutes(models.HighSelling, protected))

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			protected(r)

			r.Get("/enquiries", content.ListEnquiries)
			r.Get("/enquiries/export", content.ExportEnquiries)
			r.Delete("/enquiries/{id}", content.DeleteEnquiry)

			r.Post("/home-images", content.UploadHomeImage)
			r.Delete("/home-images/{id}", content.DeleteHomeImage)

			r.Put("/about", content.UpdateAbout)
			r.Post("/about/video", content.UploadAboutVideo)

			r.Get("/users", auth.ListUsers)
			r.Post("/users", auth.CreateUser)
			r.Put("/users/{id}", auth.UpdateUser)
			r.Delete("/users/{id}", auth.DeleteUser)
		})
	})

	return r
}
