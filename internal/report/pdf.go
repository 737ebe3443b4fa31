// Package report renders analysis results and sample certificates as PDF.
package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/factchecker/certverify/internal/certificate"
	"github.com/factchecker/certverify/internal/models"
	"github.com/factchecker/certverify/internal/verify"
	"github.com/phpdave11/gofpdf"
)

type rgb struct{ r, g, b int }

var (
	colorGenuine = rgb{46, 125, 50}
	colorFake    = rgb{198, 40, 40}
	colorText    = rgb{30, 30, 30}
	colorMuted   = rgb{90, 90, 90}
	colorWarning = rgb{120, 80, 0}
)

// FormatPercent formats a fraction in [0,1] as a percentage with two decimals.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

// Verdict returns the headline for a verdict.
func Verdict(isGenuine bool) string {
	if isGenuine {
		return "Certificate is GENUINE"
	}
	return "Certificate is FRAUDULENT"
}

// CheckLine formats one check as a single report line.
func CheckLine(c models.CheckResult) string {
	marker := "[FAIL]"
	if verify.PassingStatuses[c.Status] {
		marker = "[PASS]"
	}
	return fmt.Sprintf("%s: %s %s - %s (Confidence: %s)", c.Name, marker, c.Status, c.Detail, FormatPercent(c.Confidence))
}

// RenderAnalysisPDF writes a one-page PDF report of an analysis.
func RenderAnalysisPDF(w io.Writer, resp *models.AnalysisResponse) error {
	if resp == nil {
		return fmt.Errorf("analysis response is required")
	}
	rep := resp.Report

	pdf, tf := newDocument("Certificate Verification Report")
	pdf.AddPage()

	pdf.SetFont(tf.family, "B", 16)
	setColor(pdf, colorText)
	pdf.CellFormat(0, 9, "Certificate Verification Report", "", 1, "L", false, 0, "")

	pdf.SetFont(tf.family, "", 10)
	setColor(pdf, colorMuted)
	pdf.CellFormat(0, 6, fmt.Sprintf("Analysis ID: %s", tf.text(resp.ID)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated at: %s", resp.CreatedAt.UTC().Format(time.RFC3339)), "", 1, "L", false, 0, "")
	pdf.MultiCell(0, 6, fmt.Sprintf("File: %s (%d bytes, %s)", tf.text(resp.File.Name), resp.File.SizeBytes, tf.text(resp.File.MediaType)), "", "L", false)
	pdf.Ln(3)

	pdf.SetFont(tf.family, "B", 14)
	if rep.IsGenuine {
		setColor(pdf, colorGenuine)
	} else {
		setColor(pdf, colorFake)
	}
	pdf.CellFormat(0, 8, Verdict(rep.IsGenuine), "", 1, "L", false, 0, "")

	pdf.SetFont(tf.family, "", 11)
	setColor(pdf, colorText)
	pdf.CellFormat(0, 6, fmt.Sprintf("Confidence level: %s", FormatPercent(rep.OverallConfidence)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(tf.family, "B", 11)
	pdf.CellFormat(0, 6, "Verification details:", "", 1, "L", false, 0, "")
	pdf.SetFont(tf.family, "", 10)
	for _, c := range rep.Checks {
		pdf.MultiCell(0, 5, "- "+tf.text(CheckLine(c)), "", "L", false)
	}

	if !rep.IsGenuine && len(rep.Issues) > 0 {
		pdf.Ln(2)
		pdf.SetFont(tf.family, "B", 11)
		setColor(pdf, colorWarning)
		pdf.CellFormat(0, 6, "Potential issues detected:", "", 1, "L", false, 0, "")
		pdf.SetFont(tf.family, "", 10)
		for _, issue := range rep.Issues {
			pdf.MultiCell(0, 5, "- "+tf.text(issue), "", "L", false)
		}
	}

	return output(pdf, w)
}

// RenderCertificatePDF writes a PDF page holding the certificate image and
// its serial.
func RenderCertificatePDF(w io.Writer, asset *models.CertificateAsset) error {
	data, err := certificate.PNGBytes(asset)
	if err != nil {
		return err
	}

	pdf, tf := newDocument("Sample Certificate")
	pdf.AddPage()

	name := certificate.Filename(asset.IsGenuine)
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))

	// 600x400 px scaled to the printable width.
	width := 180.0
	height := width * float64(certificate.Height) / float64(certificate.Width)
	pdf.ImageOptions(name, 15, 20, width, height, false, opts, 0, "")

	pdf.SetY(20 + height + 6)
	pdf.SetFont(tf.family, "", 11)
	setColor(pdf, colorText)
	pdf.CellFormat(0, 6, fmt.Sprintf("Serial Number: %s", tf.text(asset.Serial)), "", 1, "L", false, 0, "")

	return output(pdf, w)
}

func newDocument(title string) (*gofpdf.Fpdf, textFont) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetTitle(title, true)
	pdf.SetCreator("certverify", true)
	return pdf, initUnicodeFont(pdf)
}

func setColor(pdf *gofpdf.Fpdf, c rgb) {
	pdf.SetTextColor(c.r, c.g, c.b)
}

func output(pdf *gofpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
