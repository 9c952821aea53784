package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mohamadtout/therapy-platform-sub003/pkg/logger"
)

// UpstreamProxy forwards dashboard CRUD calls verbatim to the external
// platform API. The portal adds the stored bearer token and tracing headers;
// it never rewrites bodies or retries.
type UpstreamProxy struct {
	baseURL string
	client  *http.Client
}

func NewUpstreamProxy(baseURL string, timeout time.Duration) *UpstreamProxy {
	return &UpstreamProxy{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *UpstreamProxy) Forward(ctx context.Context, method, path, bearerToken string, body []byte, headers map[string]string) (*http.Response, error) {
	url := p.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	if requestID := ctx.Value(logger.RequestIDKey); requestID != nil {
		req.Header.Set("X-Request-ID", requestID.(string))
	}
	req.Header.Set("X-Portal-Forwarded", "true")

	logger.DebugContext(ctx, "Forwarding dashboard request",
		"method", method,
		"url", url,
	)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}
