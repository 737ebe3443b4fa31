// Package models defines the core data structures used throughout the application.
package models

import (
	"image"
	"time"
)

// CheckName identifies one of the four sub-verifications of an analysis.
type CheckName string

const (
	CheckIDVerification    CheckName = "ID Verification"
	CheckQRCodeValidation  CheckName = "QR Code Validation"
	CheckSecurityFeatures  CheckName = "Security Features"
	CheckDocumentIntegrity CheckName = "Document Integrity"
)

// CheckOrder is the fixed order of checks in every report.
var CheckOrder = []CheckName{
	CheckIDVerification,
	CheckQRCodeValidation,
	CheckSecurityFeatures,
	CheckDocumentIntegrity,
}

// Sample file names and sizes used by the sample-testing flow.
const (
	GenuineSampleName = "genuine_certificate.png"
	FakeSampleName    = "fake_certificate.png"
	GenuineSampleSize = 450000
	FakeSampleSize    = 150000
	SampleMediaType   = "image/png"
)

// FileDescriptor describes an uploaded document. It carries metadata only,
// never the document bytes.
type FileDescriptor struct {
	Name        string `json:"name"`
	SizeBytes   int64  `json:"size_bytes"`
	MediaType   string `json:"media_type"`
	ForcedLabel *bool  `json:"forced_label,omitempty"` // bypasses heuristic scoring when set
}

// NewFileDescriptor creates a descriptor without a forced label.
func NewFileDescriptor(name string, size int64, mediaType string) FileDescriptor {
	return FileDescriptor{
		Name:      name,
		SizeBytes: size,
		MediaType: mediaType,
	}
}

// NewSampleDescriptor creates the descriptor used to test a generated sample
// certificate. The verdict is forced to isGenuine.
func NewSampleDescriptor(isGenuine bool) FileDescriptor {
	fd := NewFileDescriptor(FakeSampleName, FakeSampleSize, SampleMediaType)
	if isGenuine {
		fd = NewFileDescriptor(GenuineSampleName, GenuineSampleSize, SampleMediaType)
	}
	return fd.WithForcedLabel(isGenuine)
}

// WithForcedLabel returns a copy of the descriptor carrying the given override.
func (f FileDescriptor) WithForcedLabel(isGenuine bool) FileDescriptor {
	label := isGenuine
	f.ForcedLabel = &label
	return f
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Name       CheckName `json:"name"`
	Status     string    `json:"status"`
	Detail     string    `json:"detail"`
	Confidence float64   `json:"confidence"`
}

// AnalysisReport is the full output of the authenticity scorer.
type AnalysisReport struct {
	IsGenuine         bool          `json:"is_genuine"`
	OverallConfidence float64       `json:"overall_confidence"`
	Checks            []CheckResult `json:"checks"`
	Issues            []string      `json:"issues"`
}

// CertificateAsset is a generated sample certificate.
type CertificateAsset struct {
	Image     image.Image `json:"-"`
	Serial    string      `json:"serial"`
	IsGenuine bool        `json:"is_genuine"`
}

// CheckToggles mirrors the verification options offered to users. The scorer
// accepts them but does not branch on them.
type CheckToggles struct {
	IDVerification   bool `json:"id_verification"`
	QRVerification   bool `json:"qr_verification"`
	SecurityFeatures bool `json:"security_features"`
	IntegrityCheck   bool `json:"integrity_check"`
}

// DefaultCheckToggles returns all checks enabled.
func DefaultCheckToggles() CheckToggles {
	return CheckToggles{
		IDVerification:   true,
		QRVerification:   true,
		SecurityFeatures: true,
		IntegrityCheck:   true,
	}
}

// AnalysisResponse is the API response for an analysis request.
type AnalysisResponse struct {
	ID               string         `json:"id"`
	File             FileDescriptor `json:"file"`
	Options          CheckToggles   `json:"options"`
	Report           AnalysisReport `json:"report"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	CreatedAt        time.Time      `json:"created_at"`
}

// AnalyzeRequest is the request body for descriptor-based analysis.
type AnalyzeRequest struct {
	Name        string        `json:"name"`
	SizeBytes   int64         `json:"size_bytes"`
	MediaType   string        `json:"media_type"`
	ForcedLabel *bool         `json:"forced_label,omitempty"`
	Options     *CheckToggles `json:"options,omitempty"`
}

// Descriptor converts the request into a FileDescriptor.
func (r AnalyzeRequest) Descriptor() FileDescriptor {
	fd := NewFileDescriptor(r.Name, r.SizeBytes, r.MediaType)
	if r.ForcedLabel != nil {
		fd = fd.WithForcedLabel(*r.ForcedLabel)
	}
	return fd
}

// SampleResponse describes a generated sample certificate.
type SampleResponse struct {
	Serial    string `json:"serial"`
	IsGenuine bool   `json:"is_genuine"`
	Filename  string `json:"filename"`
}

// SampleAnalysisResponse is the API response for analyzing a generated sample.
type SampleAnalysisResponse struct {
	Sample   SampleResponse   `json:"sample"`
	Analysis AnalysisResponse `json:"analysis"`
}
