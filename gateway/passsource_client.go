package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"walletpass/entity"
)

const (
	createPassPath   = "pass/create.php"
	templateInfoPath = "template/info.php"
)

type PassSourceClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPassSourceClient(baseURL string, timeout time.Duration) PassSourceClient {
	return PassSourceClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/",
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type createPassResponse struct {
	Success            bool   `json:"success"`
	PassURL            string `json:"passUrl"`
	SerialNumber       string `json:"serialNumber"`
	HashedSerialNumber string `json:"hashedSerialNumber"`
	Message            string `json:"message"`
}

type verifyRequest struct {
	ClientHash   string `json:"clientHash"`
	TemplateHash string `json:"templateHash"`
	Action       string `json:"action"`
}

type verifyResponse struct {
	Success  bool           `json:"success"`
	Template map[string]any `json:"template"`
	Message  string         `json:"message"`
}

func (c PassSourceClient) CreatePass(ctx context.Context, request entity.CreatePassRequest) (entity.CreatePassResponse, error) {
	op := "POST " + createPassPath

	var resp createPassResponse
	if err := c.post(ctx, createPassPath, request, &resp); err != nil {
		return entity.CreatePassResponse{}, err
	}

	if !resp.Success || resp.PassURL == "" {
		return entity.CreatePassResponse{}, entity.ApiLogicError{Op: op, Message: messageOrUnknown(resp.Message)}
	}

	return entity.CreatePassResponse{
		PassURL:            resp.PassURL,
		SerialNumber:       resp.SerialNumber,
		HashedSerialNumber: resp.HashedSerialNumber,
	}, nil
}

func (c PassSourceClient) VerifyCredentials(ctx context.Context, clientHash, templateHash string) (entity.VerifyResult, error) {
	op := "POST " + templateInfoPath

	var resp verifyResponse
	err := c.post(ctx, templateInfoPath, verifyRequest{
		ClientHash:   clientHash,
		TemplateHash: templateHash,
		Action:       "verify",
	}, &resp)
	if err != nil {
		return entity.VerifyResult{}, err
	}

	if !resp.Success {
		return entity.VerifyResult{}, entity.ApiLogicError{Op: op, Message: messageOrUnknown(resp.Message)}
	}

	return entity.VerifyResult{
		OK:           true,
		Message:      "API credentials verified successfully",
		TemplateInfo: resp.Template,
	}, nil
}

func (c PassSourceClient) post(ctx context.Context, path string, body any, out any) error {
	op := "POST " + path

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("could not marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("could not create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Correlation-ID", log.CorrelationIDFromContext(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entity.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.NetworkError{Op: op, Err: err}
	}

	log.FromContext(ctx).WithFields(logrus.Fields{
		"path":        path,
		"status_code": resp.StatusCode,
	}).Debug("PassSource API responded")

	if resp.StatusCode != http.StatusOK {
		return entity.ApiStatusError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return entity.ResponseParseError{Op: op, Err: err}
	}

	return nil
}

func messageOrUnknown(message string) string {
	if message == "" {
		return "Unknown error"
	}
	return message
}
