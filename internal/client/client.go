package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/equipctl/equipctl/internal/log"
	"github.com/equipctl/equipctl/internal/model"
)

const defaultTimeout = 30 * time.Second

// StatusUpstreamConfig is the backend status code that signals a
// misconfigured REST endpoint (ORDS proxy convention). It is special-cased
// rather than generalized.
const StatusUpstreamConfig = 555

// upstreamConfigHint is appended verbatim to 555 error messages.
const upstreamConfigHint = " - Verifica la configuración del endpoint REST"

// Generic fallback messages used when the server does not provide one.
const (
	msgListFailed   = "No se pudo cargar la lista de equipos"
	msgCreateFailed = "No se pudo guardar el equipo"
	msgRemoveFailed = "Error al eliminar el equipo"
	msgCreated      = "Equipo registrado correctamente"
	msgRemoved      = "Equipo eliminado correctamente"
)

// APIError is a terminal, user-visible failure of a single request. Status
// is zero for transport failures where no response was received.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client issues the three collection operations against one base endpoint.
// It performs a single attempt per call: no retry, no caching.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the collection endpoint at baseURL. A
// non-positive timeout falls back to the default.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the collection endpoint this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type collectionResponse struct {
	Items   []model.Equipment `json:"items"`
	Message string            `json:"message"`
}

// List fetches the full collection. The returned slice is never nil; absent
// items in the response body yield an empty slice.
func (c *Client) List(ctx context.Context) ([]model.Equipment, error) {
	reqID := shortID()
	log.Debug("equipment list request", "request_id", reqID, "url", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, &APIError{Message: msgListFailed}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("equipment list transport failure", "request_id", reqID, "error", err)
		return nil, &APIError{Message: msgListFailed}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("equipment list rejected", "request_id", reqID, "status", resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode, Message: serverMessage(body, msgListFailed)}
	}

	var payload collectionResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		// 2xx with an unparseable body is treated as a list failure.
		log.Warn("equipment list malformed body", "request_id", reqID, "error", err)
		return nil, &APIError{Status: resp.StatusCode, Message: msgListFailed}
	}

	items := payload.Items
	if items == nil {
		items = []model.Equipment{}
	}

	log.Debug("equipment list completed", "request_id", reqID, "count", len(items))
	return items, nil
}

// Create submits a new record as multipart form fields. It validates the
// draft first and issues no network call when a required field is missing.
// On success it returns the server-provided message, or a default one.
func (c *Client) Create(ctx context.Context, draft model.Draft) (string, error) {
	if err := draft.Validate(); err != nil {
		return "", err
	}

	reqID := shortID()
	log.Debug("equipment create request", "request_id", reqID, "name", draft.Name)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range draft.Fields() {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return "", fmt.Errorf("encoding form field %s: %w", field[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("encoding form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &buf)
	if err != nil {
		return "", &APIError{Message: msgCreateFailed}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("equipment create transport failure", "request_id", reqID, "error", err)
		return "", &APIError{Message: msgCreateFailed}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == StatusUpstreamConfig {
		msg := serverMessage(body, fmt.Sprintf("Error %d", resp.StatusCode))
		log.Warn("equipment create upstream config error", "request_id", reqID, "status", resp.StatusCode)
		return "", &APIError{Status: resp.StatusCode, Message: msg + upstreamConfigHint}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("equipment create rejected", "request_id", reqID, "status", resp.StatusCode)
		return "", &APIError{
			Status:  resp.StatusCode,
			Message: serverMessage(body, fmt.Sprintf("Error %d", resp.StatusCode)),
		}
	}

	log.Info("equipment created", "request_id", reqID, "name", draft.Name)
	return serverMessage(body, msgCreated), nil
}

// Remove deletes the record with the given id using the backend's
// method-override convention: a POST whose form carries _method=DELETE and
// the id, with the same pair duplicated as URL query parameters.
func (c *Client) Remove(ctx context.Context, id string) (string, error) {
	reqID := shortID()
	log.Debug("equipment remove request", "request_id", reqID, "id", id)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("_method", "DELETE"); err != nil {
		return "", fmt.Errorf("encoding form: %w", err)
	}
	if err := w.WriteField("id", id); err != nil {
		return "", fmt.Errorf("encoding form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("encoding form: %w", err)
	}

	q := url.Values{}
	q.Set("_method", "DELETE")
	q.Set("id", id)
	target := c.baseURL
	if u, err := url.Parse(c.baseURL); err == nil {
		u.RawQuery = q.Encode()
		target = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return "", &APIError{Message: msgRemoveFailed}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("equipment remove transport failure", "request_id", reqID, "error", err)
		return "", &APIError{Message: msgRemoveFailed}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("equipment remove rejected", "request_id", reqID, "status", resp.StatusCode)
		return "", &APIError{Status: resp.StatusCode, Message: msgRemoveFailed}
	}

	log.Info("equipment removed", "request_id", reqID, "id", id)
	return serverMessage(body, msgRemoved), nil
}

// serverMessage extracts the message field from a JSON response body,
// falling back when absent or unparseable.
func serverMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}

// shortID returns a correlation id for request logging.
func shortID() string {
	return uuid.NewString()[:8]
}
