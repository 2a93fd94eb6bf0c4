package lendingapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"position_aggregator/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client fetches raw lending positions from the lending data HTTP API. It
// implements port.PositionSource for networks whose positions are served by
// the API rather than read on-chain.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a new lending data API client. The rate limiter bounds
// outgoing request throughput across all networks sharing the client.
func NewClient(baseURL string, timeout time.Duration, ratePerSecond float64, burst int, logger *zap.Logger) *Client {
	return &Client{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		logger:  logger.Named("LendingAPIClient"),
	}
}

// positionsEnvelope is the wrapped response shape some API versions return.
type positionsEnvelope struct {
	Positions []entity.RawPosition `json:"positions"`
}

// GetPositions fetches the wallet's raw positions on one network.
func (c *Client) GetPositions(ctx context.Context, wallet entity.Wallet, network entity.NetworkDefinition) ([]entity.RawPosition, error) {
	if network.DataAPIChainID == "" {
		return nil, fmt.Errorf("network %s has no lending data API chain id", network.Identifier)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait aborted for %s: %w", network.Identifier, err)
	}

	requestURL := fmt.Sprintf("%s/v1/positions/%s/%s", c.baseURL, network.DataAPIChainID, wallet.Address)
	c.logger.Debug("Requesting positions from lending data API", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to lending data API", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to lending data API (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Lending data API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("lending data API request to %s failed with status %d: %s", requestURL, resp.StatusCode(), string(rawBody))
	}

	positions, err := parsePositionsBody(rawBody)
	if err != nil {
		c.logger.Error("Failed to unmarshal lending data API response",
			zap.String("url", requestURL),
			zap.String("network", network.Identifier),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to unmarshal positions response from %s: %w", requestURL, err)
	}

	c.logger.Debug("Successfully fetched raw positions",
		zap.String("network", network.Identifier),
		zap.Int("positionCount", len(positions)))
	return positions, nil
}

// parsePositionsBody decodes either the wrapped object shape
// {"positions": [...]} or a direct array of records; both occur in the wild
// depending on API version.
func parsePositionsBody(body []byte) ([]entity.RawPosition, error) {
	var envelope positionsEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Positions != nil {
		return envelope.Positions, nil
	}

	var direct []entity.RawPosition
	if err := json.Unmarshal(body, &direct); err != nil {
		return nil, err
	}
	return direct, nil
}
