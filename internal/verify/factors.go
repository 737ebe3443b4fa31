package verify

import (
	"strings"
)

// Factor weights and the verdict cutoff. These are fixed; changing any of
// them changes the verdict distribution.
const (
	SizeWeight   = 0.3
	NameWeight   = 0.3
	TypeWeight   = 0.2
	RandomWeight = 0.2

	AuthenticityCutoff = 0.55

	sizeNormalizer = 500000.0

	suspiciousNameFactor = 0.6
	cleanNameFactor      = 0.9

	knownTypeFactor   = 0.9
	unknownTypeFactor = 0.7

	randomFactorMin = 0.7
	randomFactorMax = 0.99
)

var suspiciousKeywords = []string{"copy", "scan", "screenshot", "image", "photo", "edited"}

var knownMediaTypes = map[string]bool{
	"image/png":       true,
	"application/pdf": true,
	"image/jpeg":      true,
}

// Factors holds the four weighted inputs of the authenticity score.
type Factors struct {
	Size   float64
	Name   float64
	Type   float64
	Random float64
}

// ComputeFactors derives the size, name and type factors from the file
// descriptor fields and pairs them with the given random factor.
func ComputeFactors(name string, sizeBytes int64, mediaType string, randomFactor float64) Factors {
	return Factors{
		Size:   sizeFactor(sizeBytes),
		Name:   nameFactor(name),
		Type:   typeFactor(mediaType),
		Random: randomFactor,
	}
}

// Score combines the factors into the authenticity score.
func (f Factors) Score() float64 {
	return f.Size*SizeWeight + f.Name*NameWeight + f.Type*TypeWeight + f.Random*RandomWeight
}

// Genuine reports whether the score reaches the cutoff.
func (f Factors) Genuine() bool {
	return f.Score() >= AuthenticityCutoff
}

func sizeFactor(sizeBytes int64) float64 {
	return min(1.0, float64(sizeBytes)/sizeNormalizer)
}

func nameFactor(name string) float64 {
	lower := strings.ToLower(name)
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			return suspiciousNameFactor
		}
	}
	return cleanNameFactor
}

func typeFactor(mediaType string) float64 {
	if knownMediaTypes[mediaType] {
		return knownTypeFactor
	}
	return unknownTypeFactor
}
