package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobpilot/internal/pkg/logger"

	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20

type httpClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

type analysisRequest struct {
	Data         any    `json:"data"`
	AnalysisType string `json:"analysis_type"`
}

func NewHTTPClient(endpoint, apiKey string, timeout time.Duration, log *zap.Logger) Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &httpClient{
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   strings.TrimSpace(apiKey),
		client:   &http.Client{Timeout: timeout},
		logger:   log,
	}
}

func (c *httpClient) AnalyzeProfile(ctx context.Context, in ProfileInput) (ProfileAnalysis, error) {
	var data any = map[string]any{}
	if len(in.Payload) > 0 {
		data = in.Payload
	}
	raw, err := c.call(ctx, TypeProfileAnalysis, data)
	if err != nil {
		return ProfileAnalysis{}, err
	}
	return decodeProfile(raw)
}

func (c *httpClient) AnalyzeJob(ctx context.Context, in JobInput) (JobAnalysis, error) {
	raw, err := c.call(ctx, TypeJobAnalysis, in)
	if err != nil {
		return JobAnalysis{}, err
	}
	return decodeJob(raw)
}

func (c *httpClient) MatchJobToProfile(ctx context.Context, in MatchInput) (MatchResult, error) {
	raw, err := c.call(ctx, TypeJobMatching, in)
	if err != nil {
		return MatchResult{}, err
	}
	return decodeMatch(raw)
}

// call performs a single POST; there are no retries.
func (c *httpClient) call(ctx context.Context, analysisType string, data any) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("nil analysis client")
	}

	b, err := json.Marshal(analysisRequest{Data: data, AnalysisType: analysisType})
	if err != nil {
		return nil, fmt.Errorf("marshal analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrAnalysisUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("analysis request failed",
			zap.String("analysis_type", analysisType),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrAnalysisUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("analysis service returned error",
			zap.String("analysis_type", analysisType),
			zap.Int("status", resp.StatusCode),
			zap.String("body", logger.TruncateForLog(string(body), 200)),
		)
		return nil, fmt.Errorf("%w: status=%d", ErrAnalysisUnavailable, resp.StatusCode)
	}

	c.logger.Debug("analysis call completed",
		zap.String("analysis_type", analysisType),
		zap.Duration("latency", time.Since(start)),
		zap.Int("response_bytes", len(body)),
	)
	return body, nil
}

var _ Client = (*httpClient)(nil)
