package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Errorf("APIPort = %q, want 8080", cfg.APIPort)
	}
	if cfg.NATSSubject != "documents.ingested" {
		t.Errorf("NATSSubject = %q", cfg.NATSSubject)
	}
	if cfg.ConfidenceThreshold != 0.80 {
		t.Errorf("ConfidenceThreshold = %v, want 0.80", cfg.ConfidenceThreshold)
	}
	if cfg.BulkLimit != 50 {
		t.Errorf("BulkLimit = %d, want 50", cfg.BulkLimit)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.65")
	t.Setenv("BULK_LIMIT", "10")
	t.Setenv("DOCINTEL_RPS", "2.5")

	cfg := Load()
	if cfg.APIPort != "9999" {
		t.Errorf("APIPort = %q, want 9999", cfg.APIPort)
	}
	if cfg.ConfidenceThreshold != 0.65 {
		t.Errorf("ConfidenceThreshold = %v, want 0.65", cfg.ConfidenceThreshold)
	}
	if cfg.BulkLimit != 10 {
		t.Errorf("BulkLimit = %d, want 10", cfg.BulkLimit)
	}
	if cfg.DocIntelRPS != 2.5 {
		t.Errorf("DocIntelRPS = %v, want 2.5", cfg.DocIntelRPS)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("BULK_LIMIT", "lots")
	t.Setenv("CONFIDENCE_THRESHOLD", "high")

	cfg := Load()
	if cfg.BulkLimit != 50 {
		t.Errorf("BulkLimit = %d, want fallback 50", cfg.BulkLimit)
	}
	if cfg.ConfidenceThreshold != 0.80 {
		t.Errorf("ConfidenceThreshold = %v, want fallback 0.80", cfg.ConfidenceThreshold)
	}
}
