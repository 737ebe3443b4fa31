// Package api provides HTTP API handlers.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/factchecker/certverify/internal/certificate"
	"github.com/factchecker/certverify/internal/models"
	"github.com/factchecker/certverify/internal/report"
	"github.com/factchecker/certverify/internal/verify"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	formatPDF = "pdf"

	multipartMemory = 32 << 20
)

// Accepted upload extensions.
var uploadExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
}

// Handler contains all HTTP handlers.
type Handler struct {
	engine *verify.Engine
}

// NewHandler creates a new handler.
func NewHandler(engine *verify.Engine) *Handler {
	return &Handler{engine: engine}
}

// HealthCheck returns the service health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

// AnalyzeUpload handles multipart certificate uploads.
func (h *Handler) AnalyzeUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !uploadExtensions[ext] {
		writeError(w, http.StatusUnsupportedMediaType, "Supported formats: PNG, JPG, PDF")
		return
	}

	desc := models.NewFileDescriptor(header.Filename, header.Size, header.Header.Get("Content-Type"))
	opts := togglesFromForm(r)

	h.analyze(w, r, desc, opts)
}

// AnalyzeDescriptor handles analysis of a JSON file descriptor.
func (h *Handler) AnalyzeDescriptor(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	opts := models.DefaultCheckToggles()
	if req.Options != nil {
		opts = *req.Options
	}

	h.analyze(w, r, req.Descriptor(), opts)
}

// GetSample returns a generated sample certificate as PNG or PDF.
func (h *Handler) GetSample(w http.ResponseWriter, r *http.Request) {
	isGenuine, ok := sampleKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown sample kind")
		return
	}

	asset := h.engine.Sample(isGenuine)
	filename := certificate.Filename(isGenuine)

	var buf bytes.Buffer
	contentType := "image/png"
	if r.URL.Query().Get("format") == formatPDF {
		contentType = "application/pdf"
		filename = strings.TrimSuffix(filename, ".png") + ".pdf"
		if err := report.RenderCertificatePDF(&buf, asset); err != nil {
			log.Error().Err(err).Msg("Certificate rendering failed")
			writeError(w, http.StatusInternalServerError, "Certificate rendering failed")
			return
		}
	} else if err := certificate.EncodePNG(&buf, asset); err != nil {
		log.Error().Err(err).Msg("Certificate encoding failed")
		writeError(w, http.StatusInternalServerError, "Certificate encoding failed")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Certificate-Serial", asset.Serial)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// AnalyzeSample generates a sample certificate and runs detection on it.
func (h *Handler) AnalyzeSample(w http.ResponseWriter, r *http.Request) {
	isGenuine, ok := sampleKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown sample kind")
		return
	}

	resp, asset, err := h.engine.AnalyzeSample(r.Context(), isGenuine, togglesFromQuery(r))
	if err != nil {
		log.Error().Err(err).Msg("Sample analysis failed")
		writeError(w, http.StatusInternalServerError, "Sample analysis failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, models.SampleAnalysisResponse{
		Sample: models.SampleResponse{
			Serial:    asset.Serial,
			IsGenuine: asset.IsGenuine,
			Filename:  certificate.Filename(asset.IsGenuine),
		},
		Analysis: *resp,
	})
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request, desc models.FileDescriptor, opts models.CheckToggles) {
	result, err := h.engine.Analyze(r.Context(), desc, opts)
	if err != nil {
		if errors.Is(err, verify.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("Analysis failed")
		writeError(w, http.StatusInternalServerError, "Analysis failed: "+err.Error())
		return
	}

	if r.URL.Query().Get("format") == formatPDF {
		var buf bytes.Buffer
		if err := report.RenderAnalysisPDF(&buf, result); err != nil {
			log.Error().Err(err).Msg("Report rendering failed")
			writeError(w, http.StatusInternalServerError, "Report rendering failed")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="report-`+result.ID+`.pdf"`)
		w.WriteHeader(http.StatusCreated)
		w.Write(buf.Bytes())
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func sampleKind(kind string) (bool, bool) {
	switch kind {
	case "genuine":
		return true, true
	case "fake":
		return false, true
	default:
		return false, false
	}
}

func togglesFromForm(r *http.Request) models.CheckToggles {
	return models.CheckToggles{
		IDVerification:   parseToggle(r.FormValue("id_verification")),
		QRVerification:   parseToggle(r.FormValue("qr_verification")),
		SecurityFeatures: parseToggle(r.FormValue("security_features")),
		IntegrityCheck:   parseToggle(r.FormValue("integrity_check")),
	}
}

func togglesFromQuery(r *http.Request) models.CheckToggles {
	q := r.URL.Query()
	return models.CheckToggles{
		IDVerification:   parseToggle(q.Get("id_verification")),
		QRVerification:   parseToggle(q.Get("qr_verification")),
		SecurityFeatures: parseToggle(q.Get("security_features")),
		IntegrityCheck:   parseToggle(q.Get("integrity_check")),
	}
}

// parseToggle defaults to enabled when the value is absent or malformed.
func parseToggle(v string) bool {
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
