package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS admits the configured browser origins for the book and user routes.
// Bearer tokens travel in Authorization, so that header must be allowed;
// X-Request-Id is exposed so clients can quote it in bug reports.
func CORS(allowedOrigins []string, allowCredentials bool) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	})
}
