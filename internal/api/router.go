// Package api provides HTTP router setup.
package api

import (
	"net/http"

	"github.com/factchecker/certverify/internal/config"
	"github.com/factchecker/certverify/internal/verify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg *config.Config, engine *verify.Engine) http.Handler {
	r := chi.NewRouter()

	handler := NewHandler(engine)

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", handler.HealthCheck)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Auth.APIKeys))
			r.Use(RateLimitMiddleware(cfg.RateLimits.RequestsPerMinute))
			r.Use(BodyLimitMiddleware(cfg.Upload.MaxBytes))

			// Analysis endpoints
			r.Post("/analyze", handler.AnalyzeUpload)
			r.Post("/analyze/descriptor", handler.AnalyzeDescriptor)

			// Sample certificates
			r.Get("/samples/{kind}", handler.GetSample)
			r.Post("/samples/{kind}/analyze", handler.AnalyzeSample)
		})
	})

	if cfg.Server.EnableUI {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(indexPage))
		})
	}

	return r
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
    <title>Auto Certificate Verifier</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #1E88E5; }
        code { background: #f1f5f9; padding: 2px 6px; border-radius: 4px; }
        .endpoint { margin: 10px 0; }
        .note { background: #FFF8E1; padding: 10px; border-left: 5px solid #FFC107; }
    </style>
</head>
<body>
    <h1>Auto Certificate Verifier</h1>
    <p>Certificate verification API is running. Use the endpoints below:</p>

    <h2>Endpoints</h2>
    <div class="endpoint"><code>GET /api/v1/health</code> - Health check</div>
    <div class="endpoint"><code>POST /api/v1/analyze</code> - Upload a certificate (multipart field <code>file</code>; PNG, JPG or PDF)</div>
    <div class="endpoint"><code>POST /api/v1/analyze/descriptor</code> - Analyze a file descriptor (<code>{"name","size_bytes","media_type","forced_label"}</code>)</div>
    <div class="endpoint"><code>GET /api/v1/samples/{genuine|fake}</code> - Download a sample certificate (<code>?format=pdf</code> for PDF)</div>
    <div class="endpoint"><code>POST /api/v1/samples/{genuine|fake}/analyze</code> - Test automatic detection on a sample</div>
    <p>Add <code>?format=pdf</code> to analysis requests for a PDF report.</p>

    <h2>Authentication</h2>
    <p>When API keys are configured, use <code>Authorization: Bearer your-api-key</code> for all requests except health check.</p>

    <p class="note">This is a demonstration service. Verdicts are derived from file metadata, not from image forensics.</p>
</body>
</html>`
