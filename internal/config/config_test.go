package config

import (
	"testing"
	"time"
)

func TestGetDurationAcceptsBothForms(t *testing.T) {
	t.Setenv("FOLIO_TEST_DURATION", "2m")
	if d := getDuration("FOLIO_TEST_DURATION", time.Second); d != 2*time.Minute {
		t.Fatalf("duration string: %v", d)
	}

	t.Setenv("FOLIO_TEST_DURATION", "30")
	if d := getDuration("FOLIO_TEST_DURATION", time.Second); d != 30*time.Second {
		t.Fatalf("bare seconds: %v", d)
	}

	t.Setenv("FOLIO_TEST_DURATION", "nonsense")
	if d := getDuration("FOLIO_TEST_DURATION", time.Second); d != time.Second {
		t.Fatalf("garbage should fall back: %v", d)
	}

	if d := getDuration("FOLIO_TEST_UNSET", 5*time.Second); d != 5*time.Second {
		t.Fatalf("unset should fall back: %v", d)
	}
}

func TestHasRemote(t *testing.T) {
	cfg := Config{GithubOwner: "o", GithubRepo: "r", GithubToken: "t"}
	if !cfg.HasRemote() {
		t.Fatal("fully configured remote reported absent")
	}
	cfg.GithubToken = ""
	if cfg.HasRemote() {
		t.Fatal("remote without a token reported present")
	}
}
