package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
)

// HTTPClient implements Client against the server's JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type errorBody struct {
	Error string `json:"error"`
}

// do performs one JSON round trip. Non-2xx statuses are translated into the
// shared sentinels, carrying the server's message where one was sent.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", common.ErrorInternal, err)
		}
	}
	return nil
}

func statusError(resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	message := eb.Error
	if message == "" {
		message = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrAlreadyFinalized, message)
	default:
		return fmt.Errorf("%w: %s", common.ErrorInternal, message)
	}
}

func entryPath(clientID, month string, index int) string {
	return fmt.Sprintf("/api/protocols/%s/%s/%d", clientID, month, index)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/login",
		map[string]string{"username": username, "password": password}, &out)
	if err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

func (c *HTTPClient) ListProtocols(ctx context.Context) ([]models.ProtocolSummary, error) {
	var out []models.ProtocolSummary
	err := c.do(ctx, http.MethodGet, "/api/protocols", nil, &out)
	return out, err
}

func (c *HTTPClient) GetLedger(ctx context.Context, clientID, month string) (*models.Protocol, error) {
	var out models.Protocol
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/protocols/%s/%s", clientID, month), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, clientID, month string, e *models.Entry) (int, *models.Protocol, error) {
	var out struct {
		Index    int              `json:"index"`
		Protocol *models.Protocol `json:"protocol"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/protocols/%s/%s", clientID, month), e, &out); err != nil {
		return 0, nil, err
	}
	return out.Index, out.Protocol, nil
}

type entryEnvelope struct {
	Entry    *models.Entry    `json:"entry"`
	Protocol *models.Protocol `json:"protocol"`
}

func (c *HTTPClient) PatchEntry(ctx context.Context, clientID, month string, index int, patch models.EntryPatch) (*models.Entry, *models.Protocol, error) {
	var out entryEnvelope
	if err := c.do(ctx, http.MethodPatch, entryPath(clientID, month, index), patch, &out); err != nil {
		return nil, nil, err
	}
	return out.Entry, out.Protocol, nil
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, clientID, month string, index int) (*models.Protocol, error) {
	var out models.Protocol
	if err := c.do(ctx, http.MethodDelete, entryPath(clientID, month, index), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SetQueue(ctx context.Context, clientID, month string, index int, queueType models.QueueType, pending bool, plannedDate string) (*models.Entry, error) {
	payload := map[string]any{"type": queueType, "pending": pending}
	if plannedDate != "" {
		payload["plannedDate"] = plannedDate
	}
	var out entryEnvelope
	if err := c.do(ctx, http.MethodPost, entryPath(clientID, month, index)+"/queue", payload, &out); err != nil {
		return nil, err
	}
	return out.Entry, nil
}

func (c *HTTPClient) Sign(ctx context.Context, clientID, month string, index int, payload SignPayload) (*models.Entry, error) {
	var out entryEnvelope
	if err := c.do(ctx, http.MethodPost, entryPath(clientID, month, index)+"/sign", payload, &out); err != nil {
		return nil, err
	}
	return out.Entry, nil
}

func (c *HTTPClient) DeleteSignature(ctx context.Context, clientID, month string, index int, leg models.Leg, who models.Party) (*models.Entry, error) {
	var out entryEnvelope
	payload := map[string]any{"leg": leg, "who": who}
	if err := c.do(ctx, http.MethodDelete, entryPath(clientID, month, index)+"/sign", payload, &out); err != nil {
		return nil, err
	}
	return out.Entry, nil
}

func (c *HTTPClient) SignQueue(ctx context.Context, queueType models.QueueType, month string) ([]models.SignQueueItem, error) {
	path := "/api/sign-queue?type=" + string(queueType)
	if month != "" {
		path += "&month=" + month
	}
	var out []models.SignQueueItem
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *HTTPClient) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	err := c.do(ctx, http.MethodGet, "/api/clients", nil, &out)
	return out, err
}

func (c *HTTPClient) ListToolNames(ctx context.Context) ([]string, error) {
	var out []string
	err := c.do(ctx, http.MethodGet, "/api/tools", nil, &out)
	return out, err
}

func (c *HTTPClient) CreateExport(ctx context.Context, snap *models.ExportSnapshot) (*ExportRecord, error) {
	var out ExportRecord
	if err := c.do(ctx, http.MethodPost, "/api/exports", snap, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListExports(ctx context.Context, month string) ([]ExportRecord, error) {
	path := "/api/exports"
	if month != "" {
		path += "?month=" + month
	}
	var out []ExportRecord
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *HTTPClient) ExportURL(ctx context.Context, id string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/exports/"+id+"/url", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
