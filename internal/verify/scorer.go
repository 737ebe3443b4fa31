// Package verify provides the authenticity scoring engine.
package verify

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"unicode/utf8"

	"github.com/factchecker/certverify/internal/models"
	"github.com/rs/zerolog/log"
)

// ErrInvalidInput is returned for malformed file descriptors.
var ErrInvalidInput = errors.New("invalid input")

// RandFactory returns the random source used by a single call.
type RandFactory func() *rand.Rand

// Scorer derives a verdict and per-check report from file metadata.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	newRand RandFactory
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithSeed makes every call draw from a PCG source seeded with seed,
// so repeated calls on the same descriptor return identical reports.
func WithSeed(seed uint64) Option {
	return func(s *Scorer) {
		s.newRand = SeededFactory(seed)
	}
}

// WithRandFactory sets the per-call random source.
func WithRandFactory(f RandFactory) Option {
	return func(s *Scorer) {
		if f != nil {
			s.newRand = f
		}
	}
}

// NewScorer creates a new scorer. Without options each call uses an
// independent randomly seeded source.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{newRand: RandomFactory}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RandomFactory returns a fresh, randomly seeded source.
func RandomFactory() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// SeededFactory returns a factory producing identically seeded sources.
func SeededFactory(seed uint64) RandFactory {
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// Analyze scores the file and builds its report.
func (s *Scorer) Analyze(file models.FileDescriptor) (*models.AnalysisReport, error) {
	return s.AnalyzeWithRand(s.newRand(), file)
}

// AnalyzeWithRand is Analyze against a caller-owned random source.
// Draw order: random factor (unforced only), check confidences in report
// order, issue count, issue permutation.
func (s *Scorer) AnalyzeWithRand(r *rand.Rand, file models.FileDescriptor) (*models.AnalysisReport, error) {
	if err := Validate(file); err != nil {
		return nil, err
	}

	isGenuine := deriveLabel(r, file)
	checks := buildChecks(r, isGenuine)

	issues := []string{}
	if !isGenuine {
		issues = sampleIssues(r)
	}

	report := &models.AnalysisReport{
		IsGenuine:         isGenuine,
		OverallConfidence: meanConfidence(checks),
		Checks:            checks,
		Issues:            issues,
	}

	log.Debug().
		Str("file", file.Name).
		Bool("genuine", report.IsGenuine).
		Float64("confidence", report.OverallConfidence).
		Int("issues", len(report.Issues)).
		Msg("Analysis report built")

	return report, nil
}

// Validate rejects descriptors that violate the caller contract. Empty
// names, zero sizes and unknown media types are accepted.
func Validate(file models.FileDescriptor) error {
	if file.SizeBytes < 0 {
		return fmt.Errorf("%w: negative size %d", ErrInvalidInput, file.SizeBytes)
	}
	if !utf8.ValidString(file.Name) {
		return fmt.Errorf("%w: file name is not valid UTF-8", ErrInvalidInput)
	}
	return nil
}

func deriveLabel(r *rand.Rand, file models.FileDescriptor) bool {
	if file.ForcedLabel != nil {
		return *file.ForcedLabel
	}

	f := ComputeFactors(file.Name, file.SizeBytes, file.MediaType, uniform(r, randomFactorMin, randomFactorMax))

	log.Debug().
		Str("file", file.Name).
		Float64("size_factor", f.Size).
		Float64("name_factor", f.Name).
		Float64("type_factor", f.Type).
		Float64("random_factor", f.Random).
		Float64("score", f.Score()).
		Msg("Authenticity score computed")

	return f.Genuine()
}
