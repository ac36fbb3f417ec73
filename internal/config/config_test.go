package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stp-explore/ilha-server/cmd"
	"github.com/stp-explore/ilha-server/internal/config"
)

//nolint:golint,gochecknoglobals
var requiredFlags = []string{
	"--routing.api_key", "changeme",
}

func TestExampleConfig(t *testing.T) {
	t.Parallel()
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags([]string{"--config", "../../config.example.yaml"})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := testConfig.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMissingRoutingAPIKey(t *testing.T) {
	t.Parallel()
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags([]string{"--config", "nonexistent.yaml"})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err = testConfig.Validate()
	if !errors.Is(err, config.ErrRoutingAPIKeyRequired) {
		t.Errorf("expected ErrRoutingAPIKeyRequired, got %v", err)
	}
}

func TestMissingOTLPEndpoint(t *testing.T) {
	t.Parallel()
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags(append([]string{"--config", "nonexistent.yaml", "--http.tracing.enabled"}, requiredFlags...))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err = testConfig.Validate()
	if !errors.Is(err, config.ErrOTLPEndpointRequired) {
		t.Errorf("expected ErrOTLPEndpointRequired, got %v", err)
	}
}

func TestMissingNATSURL(t *testing.T) {
	t.Parallel()
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags(append([]string{"--config", "nonexistent.yaml", "--nats.enabled"}, requiredFlags...))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err = testConfig.Validate()
	if !errors.Is(err, config.ErrNATSURLRequired) {
		t.Errorf("expected ErrNATSURLRequired, got %v", err)
	}
}

func TestMissingDatabaseHost(t *testing.T) {
	t.Parallel()
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags(append([]string{"--config", "nonexistent.yaml", "--persistence.database.driver", "postgres"}, requiredFlags...))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err = testConfig.Validate()
	if !errors.Is(err, config.ErrDBHostRequired) {
		t.Errorf("expected ErrDBHostRequired, got %v", err)
	}
}

func TestMissingS3Bucket(t *testing.T) {
	t.Parallel()
	cmd := cmd.NewCommand("testing", "deadbeef")
	cmd.SetContext(context.Background())
	err := cmd.ParseFlags(append([]string{"--config", "nonexistent.yaml", "--persistence.images.driver", "s3"}, requiredFlags...))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	testConfig, err := config.LoadConfig(cmd)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err = testConfig.Validate()
	if !errors.Is(err, config.ErrImagesS3BucketRequired) {
		t.Errorf("expected ErrImagesS3BucketRequired, got %v", err)
	}
}
