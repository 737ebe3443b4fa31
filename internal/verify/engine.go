package verify

import (
	"context"
	"time"

	"github.com/factchecker/certverify/internal/certificate"
	"github.com/factchecker/certverify/internal/config"
	"github.com/factchecker/certverify/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Engine wires the scorer and the certificate generator for the outer
// surfaces. The two components never call each other.
type Engine struct {
	scorer    *Scorer
	generator *certificate.Generator
}

// NewEngine creates a new engine from configuration.
func NewEngine(cfg *config.Config) *Engine {
	var scorerOpts []Option
	genOpts := []certificate.Option{
		certificate.WithFontSize(cfg.Generator.FontSize, cfg.Generator.WatermarkFontSize),
	}

	if cfg.Scoring.Seed != 0 {
		log.Warn().Uint64("seed", cfg.Scoring.Seed).Msg("Fixed scoring seed configured - results are reproducible")
		scorerOpts = append(scorerOpts, WithSeed(cfg.Scoring.Seed))
		genOpts = append(genOpts, certificate.WithRand(SeededFactory(cfg.Scoring.Seed)))
	}
	if cfg.Generator.FontPath != "" {
		genOpts = append(genOpts, certificate.WithFontFile(cfg.Generator.FontPath))
	}

	return &Engine{
		scorer:    NewScorer(scorerOpts...),
		generator: certificate.NewGenerator(genOpts...),
	}
}

// NewEngineWith creates an engine from prebuilt components.
func NewEngineWith(scorer *Scorer, generator *certificate.Generator) *Engine {
	return &Engine{scorer: scorer, generator: generator}
}

// Analyze scores a file descriptor and wraps the report in a response.
// The check toggles are recorded but do not affect the result.
func (e *Engine) Analyze(ctx context.Context, file models.FileDescriptor, opts models.CheckToggles) (*models.AnalysisResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	report, err := e.scorer.Analyze(file)
	if err != nil {
		return nil, err
	}

	resp := &models.AnalysisResponse{
		ID:               uuid.New().String(),
		File:             file,
		Options:          opts,
		Report:           *report,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CreatedAt:        time.Now(),
	}

	log.Info().
		Str("id", resp.ID).
		Str("file", file.Name).
		Int64("size", file.SizeBytes).
		Str("type", file.MediaType).
		Bool("forced", file.ForcedLabel != nil).
		Bool("genuine", report.IsGenuine).
		Float64("confidence", report.OverallConfidence).
		Msg("Analysis complete")

	return resp, nil
}

// Sample generates a sample certificate.
func (e *Engine) Sample(isGenuine bool) *models.CertificateAsset {
	return e.generator.Generate(isGenuine)
}

// AnalyzeSample generates a sample certificate and analyzes its descriptor
// with the verdict forced to the sample's label.
func (e *Engine) AnalyzeSample(ctx context.Context, isGenuine bool, opts models.CheckToggles) (*models.AnalysisResponse, *models.CertificateAsset, error) {
	asset := e.Sample(isGenuine)
	resp, err := e.Analyze(ctx, models.NewSampleDescriptor(isGenuine), opts)
	if err != nil {
		return nil, nil, err
	}
	return resp, asset, nil
}
