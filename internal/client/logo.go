package client

import (
	"context"
	"fmt"
	"time"

	"propstack/catalog/internal/config"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// LogoClient finds a logo for a company website
type LogoClient interface {
	FindLogo(ctx context.Context, pageURL string) (string, error)
}

type logoClient struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client
	parser     *logoParser
	timeout    time.Duration
}

func NewLogoClient(cfg config.EnrichConfig) LogoClient {
	timeout := time.Duration(cfg.Timeout) * time.Second

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5")

	return &logoClient{
		rl:         ratelimit.New(cfg.MaxRequestsPerSecond),
		httpClient: client,
		parser:     newLogoParser(),
		timeout:    timeout,
	}
}

func (c *logoClient) FindLogo(ctx context.Context, pageURL string) (string, error) {
	html, err := c.fetchHTML(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch HTML for %s: %w", pageURL, err)
	}

	logo, err := c.parser.ParseLogo(html, pageURL)
	if err != nil {
		return "", err
	}

	log.Debugf("Found logo for %s: %s", pageURL, logo)
	return logo, nil
}

func (c *logoClient) fetchHTML(ctx context.Context, url string) (string, error) {
	c.rl.Take()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout*3)
	defer cancel()

	resp, err := c.httpClient.R().
		SetContext(reqCtx).
		Get(url)

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return resp.String(), nil
}
