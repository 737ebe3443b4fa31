package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/factchecker/certverify/internal/certificate"
	"github.com/factchecker/certverify/internal/config"
	"github.com/factchecker/certverify/internal/models"
	"github.com/factchecker/certverify/internal/report"
	"github.com/factchecker/certverify/internal/verify"
)

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	kind := fs.String("kind", "genuine", "genuine or fake")
	out := fs.String("out", "", "output file (.png or .pdf); defaults to the sample file name")
	configPath := fs.String("config", "", "optional config file for generator settings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var isGenuine bool
	switch *kind {
	case "genuine":
		isGenuine = true
	case "fake":
	default:
		return fmt.Errorf("invalid -kind %q (genuine|fake)", *kind)
	}

	cfg, err := loadOptionalConfig(*configPath)
	if err != nil {
		return err
	}

	asset := verify.NewEngine(cfg).Sample(isGenuine)

	path := *out
	if path == "" {
		path = certificate.Filename(isGenuine)
	}
	if err := writeAsset(path, asset); err != nil {
		return err
	}

	fmt.Printf("%s\t%s\n", path, asset.Serial)
	return nil
}

func runAnalyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	path := fs.String("file", "", "certificate file to analyze")
	mediaType := fs.String("type", "", "declared media type (default: from extension)")
	forced := fs.String("forced", "", "force the verdict (true|false)")
	seed := fs.Uint64("seed", 0, "random seed for reproducible results (0 = random)")
	pdfOut := fs.String("pdf", "", "also write a PDF report to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*path) == "" {
		return fmt.Errorf("-file is required")
	}

	st, err := os.Stat(*path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	mt := *mediaType
	if mt == "" {
		mt = mime.TypeByExtension(strings.ToLower(filepath.Ext(*path)))
		if i := strings.Index(mt, ";"); i >= 0 {
			mt = mt[:i]
		}
	}

	desc := models.NewFileDescriptor(filepath.Base(*path), st.Size(), mt)
	if *forced != "" {
		label, err := strconv.ParseBool(*forced)
		if err != nil {
			return fmt.Errorf("invalid -forced %q: %w", *forced, err)
		}
		desc = desc.WithForcedLabel(label)
	}

	cfg := config.DefaultConfig()
	cfg.Scoring.Seed = *seed
	cfg.Logging.Format = "text"
	cfg.Logging.ConfigureLogging()

	resp, err := verify.NewEngine(cfg).Analyze(ctx, desc, models.DefaultCheckToggles())
	if err != nil {
		return err
	}

	if *pdfOut != "" {
		err := writeFile(*pdfOut, func(w io.Writer) error {
			return report.RenderAnalysisPDF(w, resp)
		})
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func runInitConfig(args []string) error {
	fs := flag.NewFlagSet("init-config", flag.ContinueOnError)
	out := fs.String("out", "config.yaml", "path of the config file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := os.Stat(*out); err == nil {
		return fmt.Errorf("%s already exists", *out)
	}
	if err := config.GenerateSample(*out); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Println(*out)
	return nil
}

// writeAsset writes the certificate as PDF when path ends in .pdf, PNG otherwise.
func writeAsset(path string, asset *models.CertificateAsset) error {
	return writeFile(path, func(w io.Writer) error {
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			return report.RenderCertificatePDF(w, asset)
		}
		return certificate.EncodePNG(w, asset)
	})
}

// writeFile creates path and fills it with write. A failed write or close
// removes the partial file.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func loadOptionalConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.DefaultConfig()
		cfg.Logging.Format = "text"
		cfg.Logging.ConfigureLogging()
		return cfg, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.Logging.ConfigureLogging()
	return cfg, nil
}
