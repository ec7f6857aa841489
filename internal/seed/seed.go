package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"propstack/catalog/internal/config"
	"propstack/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

//go:embed taxonomy.json
var taxonomyJSON []byte

// Default returns the embedded Multifamily taxonomy.
func Default() (*domain.Node, error) {
	root, err := domain.ParseDocument(taxonomyJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded taxonomy: %w", err)
	}
	return root, nil
}

// FromFile reads a taxonomy document from disk.
func FromFile(path string) (*domain.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}

	root, err := domain.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file %s: %w", path, err)
	}
	return root, nil
}

// FromURL downloads a taxonomy document.
func FromURL(ctx context.Context, client *resty.Client, url string) (*domain.Node, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch taxonomy: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	root, err := domain.ParseDocument([]byte(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy from %s: %w", url, err)
	}
	return root, nil
}

// Load picks the seed source from configuration, falling back to the embedded document.
func Load(ctx context.Context, cfg config.SeedConfig) (*domain.Node, error) {
	switch {
	case cfg.File != "":
		log.Infof("🌱 Loading taxonomy from file %s", cfg.File)
		return FromFile(cfg.File)

	case cfg.URL != "":
		log.Infof("🌱 Loading taxonomy from %s", cfg.URL)
		client := resty.New().
			SetTimeout(30 * time.Second).
			SetRetryCount(2)
		return FromURL(ctx, client, cfg.URL)

	default:
		return Default()
	}
}
