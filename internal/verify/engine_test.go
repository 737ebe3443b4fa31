package verify

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/factchecker/certverify/internal/certificate"
	"github.com/factchecker/certverify/internal/config"
	"github.com/factchecker/certverify/internal/models"
	"github.com/google/uuid"
)

func TestEngineAnalyze(t *testing.T) {
	engine := NewEngine(config.DefaultConfig())
	fd := models.NewFileDescriptor("diploma.pdf", 700000, "application/pdf")
	opts := models.CheckToggles{IDVerification: true}

	resp, err := engine.Analyze(context.Background(), fd, opts)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if _, err := uuid.Parse(resp.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", resp.ID, err)
	}
	if resp.File != fd {
		t.Errorf("File = %+v, want %+v", resp.File, fd)
	}
	if resp.Options != opts {
		t.Errorf("Options = %+v, want %+v", resp.Options, opts)
	}
	if !resp.Report.IsGenuine {
		t.Error("large clean pdf should be genuine")
	}
	if resp.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestEngineTogglesDoNotChangeResult(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scoring.Seed = 7
	engine := NewEngine(cfg)
	fd := models.NewFileDescriptor("certificate.png", 120000, "image/png")

	all, err := engine.Analyze(context.Background(), fd, models.DefaultCheckToggles())
	if err != nil {
		t.Fatal(err)
	}
	none, err := engine.Analyze(context.Background(), fd, models.CheckToggles{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(all.Report, none.Report) {
		t.Errorf("toggles changed the report:\n%+v\n%+v", all.Report, none.Report)
	}
}

func TestEngineAnalyzeInvalidInput(t *testing.T) {
	engine := NewEngine(config.DefaultConfig())
	_, err := engine.Analyze(context.Background(), models.NewFileDescriptor("a.png", -10, "image/png"), models.DefaultCheckToggles())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestEngineAnalyzeCanceledContext(t *testing.T) {
	engine := NewEngine(config.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Analyze(ctx, models.NewSampleDescriptor(true), models.DefaultCheckToggles())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestEngineAnalyzeSample(t *testing.T) {
	engine := NewEngine(config.DefaultConfig())

	for _, genuine := range []bool{true, false} {
		resp, asset, err := engine.AnalyzeSample(context.Background(), genuine, models.DefaultCheckToggles())
		if err != nil {
			t.Fatalf("AnalyzeSample(%v) error = %v", genuine, err)
		}
		if resp.Report.IsGenuine != genuine {
			t.Errorf("verdict = %v, want %v", resp.Report.IsGenuine, genuine)
		}
		if asset.IsGenuine != genuine {
			t.Errorf("asset label = %v, want %v", asset.IsGenuine, genuine)
		}
		if !strings.HasPrefix(asset.Serial, "Serial: ") {
			t.Errorf("serial = %q", asset.Serial)
		}
		if resp.File.ForcedLabel == nil || *resp.File.ForcedLabel != genuine {
			t.Errorf("file = %+v, want forced label %v", resp.File, genuine)
		}
	}
}

func TestNewEngineWithSeededComponents(t *testing.T) {
	newEngine := func() *Engine {
		return NewEngineWith(
			NewScorer(WithRandFactory(SeededFactory(11))),
			certificate.NewGenerator(certificate.WithRand(SeededFactory(11))),
		)
	}
	fd := models.NewFileDescriptor("transcript_scan.jpg", 90000, "image/jpeg")

	a, err := newEngine().Analyze(context.Background(), fd, models.DefaultCheckToggles())
	if err != nil {
		t.Fatal(err)
	}
	b, err := newEngine().Analyze(context.Background(), fd, models.DefaultCheckToggles())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Report, b.Report) {
		t.Errorf("seeded engines disagree:\n%+v\n%+v", a.Report, b.Report)
	}
	if a.ID == b.ID {
		t.Error("analysis ids should be unique")
	}

	if s1, s2 := newEngine().Sample(true).Serial, newEngine().Sample(true).Serial; s1 != s2 {
		t.Errorf("seeded serials differ: %q vs %q", s1, s2)
	}
}
