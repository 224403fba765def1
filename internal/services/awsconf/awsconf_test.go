package awsconf_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"pptx-translator/internal/config"
	"pptx-translator/internal/services"
	"pptx-translator/internal/services/awsconf"
)

func isolateAWS(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
}

func TestLoadAppliesRetryPolicy(t *testing.T) {
	isolateAWS(t)
	cfg, err := awsconf.Load(context.Background(), config.AWS{
		Region:      "eu-central-1",
		MaxAttempts: 10,
		RetryMode:   "Standard",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Region != "eu-central-1" {
		t.Fatalf("unexpected region %q", cfg.Region)
	}
	if cfg.RetryMaxAttempts != 10 {
		t.Fatalf("unexpected max attempts %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryMode != aws.RetryModeStandard {
		t.Fatalf("unexpected retry mode %q", cfg.RetryMode)
	}
}

func TestLoadRequiresRegion(t *testing.T) {
	isolateAWS(t)
	_, err := awsconf.Load(context.Background(), config.AWS{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOptionsSkipsEmptyValues(t *testing.T) {
	if got := len(awsconf.Options(config.AWS{})); got != 0 {
		t.Fatalf("expected no options, got %d", got)
	}
	if got := len(awsconf.Options(config.AWS{Region: "us-east-1", Profile: "dev", MaxAttempts: 3, RetryMode: "adaptive"})); got != 4 {
		t.Fatalf("expected four options, got %d", got)
	}
}
