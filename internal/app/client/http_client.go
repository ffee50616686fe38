package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"joddit/internal/app/client/config"
	"joddit/internal/domain/note"
)

// RemoteStore is the server-side copy of the notebook as seen by the
// sync core. The bearer token is passed on every call so the remote
// always acts for whoever is logged in at that moment.
type RemoteStore interface {
	Fetch(ctx context.Context, token string) ([]note.Note, error)
	Upsert(ctx context.Context, token string, n note.Note) error
	Delete(ctx context.Context, token, noteID string) error
}

type httpClient struct {
	client    *http.Client
	config    *config.Config
	log       *slog.Logger
	baseURL   string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &httpClient{
		client:    client,
		config:    cfg,
		log:       log,
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "Joddit-Client/1.0",
	}
}

// HealthCheck pings the server.
func (h *httpClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (h *httpClient) Register(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/user/register", "", body)
	if err != nil {
		return "", err
	}

	var reg authResponse
	if err := h.parseResponse(resp, &reg); err != nil {
		return "", err
	}

	if reg.Status != "Ok" {
		return "", fmt.Errorf("registration failed: %s", reg.Error)
	}

	return reg.UserID, nil
}

// Login exchanges credentials for a bearer token and the account id.
func (h *httpClient) Login(ctx context.Context, email, password string) (token, userID string, err error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/user/login", "", body)
	if err != nil {
		return "", "", err
	}

	var login authResponse
	if err := h.parseResponse(resp, &login); err != nil {
		return "", "", err
	}

	if login.Status != "Ok" || login.Token == "" {
		return "", "", fmt.Errorf("login failed: %s", login.Error)
	}

	return login.Token, login.UserID, nil
}

// Logout revokes the session server-side.
func (h *httpClient) Logout(ctx context.Context, token string) error {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/user/logout", token, nil)
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

// Fetch returns the server's live notes for the token's owner.
func (h *httpClient) Fetch(ctx context.Context, token string) ([]note.Note, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/notes", token, nil)
	if err != nil {
		return nil, err
	}

	var list note.ListResponse
	if err := h.parseResponse(resp, &list); err != nil {
		return nil, err
	}

	return list.Notes, nil
}

func (h *httpClient) Upsert(ctx context.Context, token string, n note.Note) error {
	resp, err := h.doRequest(ctx, http.MethodPut, "/api/v1/notes/"+n.ID, token, n)
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

func (h *httpClient) Delete(ctx context.Context, token, noteID string) error {
	resp, err := h.doRequest(ctx, http.MethodDelete, "/api/v1/notes/"+noteID, token, nil)
	if err != nil {
		return err
	}

	return h.parseResponse(resp, nil)
}

func (h *httpClient) doRequest(ctx context.Context, method, path, token string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	h.log.Debug("received response", "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error: %s", errResp.Error)
		}
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}

	return nil
}
