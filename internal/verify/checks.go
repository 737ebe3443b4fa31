package verify

import (
	"math/rand/v2"

	"github.com/factchecker/certverify/internal/models"
)

// outcome is the fixed status, detail and confidence range of one check on
// one side of the verdict.
type outcome struct {
	status  string
	detail  string
	minConf float64
	maxConf float64
}

type checkSpec struct {
	name    models.CheckName
	genuine outcome
	fake    outcome
}

func (c checkSpec) outcome(isGenuine bool) outcome {
	if isGenuine {
		return c.genuine
	}
	return c.fake
}

// checkTable is ordered as models.CheckOrder.
var checkTable = []checkSpec{
	{
		name:    models.CheckIDVerification,
		genuine: outcome{"Passed", "Pattern matches official template", 0.85, 0.99},
		fake:    outcome{"Failed", "Inconsistent formatting detected", 0.40, 0.60},
	},
	{
		name:    models.CheckQRCodeValidation,
		genuine: outcome{"Authentic", "Digital signature verified", 0.80, 0.98},
		fake:    outcome{"Tampered", "Invalid or missing digital signature", 0.30, 0.50},
	},
	{
		name:    models.CheckSecurityFeatures,
		genuine: outcome{"Detected", "All security features present", 0.85, 0.97},
		fake:    outcome{"Missing", "Missing hologram pattern", 0.35, 0.55},
	},
	{
		name:    models.CheckDocumentIntegrity,
		genuine: outcome{"Intact", "No signs of tampering detected", 0.90, 0.99},
		fake:    outcome{"Compromised", "Signs of digital alteration detected", 0.40, 0.60},
	},
}

// issueCatalog lists the fraud indicators reported on a negative verdict.
var issueCatalog = []string{
	"Inconsistent font styles",
	"QR code doesn't match database records",
	"Missing hologram pattern",
	"ID number format is invalid",
	"Signature verification failed",
	"Pixelation suggests digital alteration",
	"Incorrect color profile for official documents",
	"Metadata doesn't match expected patterns",
	"Low image resolution for an official document",
	"Inconsistent serial number formatting",
	"Missing security watermark",
	"Digital signature validation failed",
}

const (
	minIssues = 3
	maxIssues = 5
)

// PassingStatuses are the check statuses of the genuine branch.
var PassingStatuses = map[string]bool{
	"Passed":    true,
	"Authentic": true,
	"Detected":  true,
	"Intact":    true,
}

// IssueCatalog returns a copy of the fraud indicator catalog.
func IssueCatalog() []string {
	out := make([]string, len(issueCatalog))
	copy(out, issueCatalog)
	return out
}

func buildChecks(r *rand.Rand, isGenuine bool) []models.CheckResult {
	checks := make([]models.CheckResult, 0, len(checkTable))
	for _, entry := range checkTable {
		o := entry.outcome(isGenuine)
		checks = append(checks, models.CheckResult{
			Name:       entry.name,
			Status:     o.status,
			Detail:     o.detail,
			Confidence: uniform(r, o.minConf, o.maxConf),
		})
	}
	return checks
}

func sampleIssues(r *rand.Rand) []string {
	k := minIssues + r.IntN(maxIssues-minIssues+1)
	perm := r.Perm(len(issueCatalog))
	issues := make([]string, k)
	for i := 0; i < k; i++ {
		issues[i] = issueCatalog[perm[i]]
	}
	return issues
}

func meanConfidence(checks []models.CheckResult) float64 {
	if len(checks) == 0 {
		return 0
	}
	var sum float64
	for _, c := range checks {
		sum += c.Confidence
	}
	return sum / float64(len(checks))
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
