package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/factchecker/certverify/internal/certificate"
	"github.com/factchecker/certverify/internal/models"
)

func sampleResponse(isGenuine bool) *models.AnalysisResponse {
	status, detail := "Failed", "Inconsistent formatting detected"
	issues := []string{"Inconsistent font styles", "Missing security watermark", "ID number format is invalid"}
	if isGenuine {
		status, detail = "Passed", "Pattern matches official template"
		issues = []string{}
	}
	return &models.AnalysisResponse{
		ID:        "7f1c2d9e-0000-4000-8000-000000000001",
		File:      models.NewFileDescriptor("diploma.png", 123456, "image/png"),
		Options:   models.DefaultCheckToggles(),
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Report: models.AnalysisReport{
			IsGenuine:         isGenuine,
			OverallConfidence: 0.9123,
			Checks: []models.CheckResult{
				{Name: models.CheckIDVerification, Status: status, Detail: detail, Confidence: 0.9123},
			},
			Issues: issues,
		},
	}
}

func TestFormatPercent(t *testing.T) {
	cases := map[float64]string{
		0:       "0.00%",
		1:       "100.00%",
		0.93412: "93.41%",
		0.5:     "50.00%",
	}
	for in, want := range cases {
		if got := FormatPercent(in); got != want {
			t.Errorf("FormatPercent(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckLine(t *testing.T) {
	pass := models.CheckResult{Name: models.CheckQRCodeValidation, Status: "Authentic", Detail: "Digital signature verified", Confidence: 0.8}
	want := "QR Code Validation: [PASS] Authentic - Digital signature verified (Confidence: 80.00%)"
	if got := CheckLine(pass); got != want {
		t.Errorf("CheckLine() = %q, want %q", got, want)
	}

	fail := models.CheckResult{Name: models.CheckDocumentIntegrity, Status: "Compromised", Detail: "Signs of digital alteration detected", Confidence: 0.45}
	want = "Document Integrity: [FAIL] Compromised - Signs of digital alteration detected (Confidence: 45.00%)"
	if got := CheckLine(fail); got != want {
		t.Errorf("CheckLine() = %q, want %q", got, want)
	}
}

func TestVerdict(t *testing.T) {
	if Verdict(true) != "Certificate is GENUINE" || Verdict(false) != "Certificate is FRAUDULENT" {
		t.Errorf("unexpected verdict headlines: %q / %q", Verdict(true), Verdict(false))
	}
}

func TestRenderAnalysisPDF(t *testing.T) {
	for _, genuine := range []bool{true, false} {
		var buf bytes.Buffer
		if err := RenderAnalysisPDF(&buf, sampleResponse(genuine)); err != nil {
			t.Fatalf("RenderAnalysisPDF(genuine=%v) error = %v", genuine, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
			t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
		}
	}
}

func TestRenderAnalysisPDFNil(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderAnalysisPDF(&buf, nil); err == nil {
		t.Fatal("expected error for nil response")
	}
}

func TestRenderCertificatePDF(t *testing.T) {
	asset := certificate.NewGenerator().Generate(true)

	var buf bytes.Buffer
	if err := RenderCertificatePDF(&buf, asset); err != nil {
		t.Fatalf("RenderCertificatePDF() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}

	png, err := certificate.PNGBytes(asset)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() < len(png)/4 {
		t.Errorf("pdf size %d looks too small to embed a %d byte image", buf.Len(), len(png))
	}
}

func TestRenderCertificatePDFWithoutImage(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCertificatePDF(&buf, &models.CertificateAsset{Serial: "Serial: 12345"}); err == nil {
		t.Fatal("expected error for asset without image")
	}
}

func TestTextFontCoverage(t *testing.T) {
	tf := textFont{family: unicodeFontFamily, glyphs: defaultUnicodeFont().glyphs}
	core := textFont{family: coreFontFamily}

	cases := []struct {
		in, unicode, core string
	}{
		{"diplôme_证书.png", "diplôme_??.png", "dipl?me_??.png"},
		{"Zertifikat für Jürgen.pdf", "Zertifikat für Jürgen.pdf", "Zertifikat f?r J?rgen.pdf"},
		{"  line\none\ttab\r ", "line one tab", "line one tab"},
		{"plain.png", "plain.png", "plain.png"},
	}
	for _, tc := range cases {
		if got := tf.text(tc.in); got != tc.unicode {
			t.Errorf("unicode text(%q) = %q, want %q", tc.in, got, tc.unicode)
		}
		if got := core.text(tc.in); got != tc.core {
			t.Errorf("core text(%q) = %q, want %q", tc.in, got, tc.core)
		}
	}
}

func TestRenderAnalysisPDFNonASCIIName(t *testing.T) {
	resp := sampleResponse(false)
	resp.File.Name = "diplôme_证书.png"

	var buf bytes.Buffer
	if err := RenderAnalysisPDF(&buf, resp); err != nil {
		t.Fatalf("RenderAnalysisPDF() error = %v", err)
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	// An embedded TrueType font means text is written as glyph ids, not
	// as WinAnsi bytes under a core font.
	if !bytes.Contains(out, []byte("/FontFile2")) {
		t.Error("report does not embed a UTF-8 TrueType font")
	}
	if bytes.Contains(out, []byte("/BaseFont /Helvetica")) {
		t.Error("report still uses the core Helvetica font")
	}
}
