package autorepair

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/upb/llm-gateway/config"
)

// HTTPDispatcher posts repair requests to the collaborator endpoint.
// The collaborator expects fix_code base64-encoded; everything else is
// sent verbatim.
type HTTPDispatcher struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPDispatcher creates an HTTP dispatcher, failing explicitly when
// no endpoint is configured.
func NewHTTPDispatcher(cfg config.AutoRepairConfig, logger *zap.Logger) (*HTTPDispatcher, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("auto-repair: missing endpoint")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &HTTPDispatcher{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Dispatch implements Dispatcher.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, req *RepairRequest) error {
	payload := *req
	payload.FixCode = base64.StdEncoding.EncodeToString([]byte(req.FixCode))

	body, err := json.Marshal(&payload)
	if err != nil {
		return fmt.Errorf("marshal repair request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create repair request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post repair request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 1024))
		return fmt.Errorf("repair endpoint returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	d.logger.Info("repair request dispatched",
		zap.String("issue_title", req.IssueTitle),
		zap.String("file_path", req.FilePath))
	return nil
}
