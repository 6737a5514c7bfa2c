// Package client talks to the schoolmon HTTP API and keeps the caller's
// session in step with the responses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"schoolmon/internal/model"
	"schoolmon/internal/session"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	sess       *session.Session
}

func New(baseURL string, sess *session.Session) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		sess:       sess,
	}
}

func (c *Client) Session() *session.Session {
	return c.sess
}

func (c *Client) IsAuthenticated() bool {
	return c.sess.IsAuthenticated()
}

func (c *Client) Authorize(ctx context.Context, username, password string) (model.AuthResponse, error) {
	var resp model.AuthResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/authorize", "", body, &resp); err != nil {
		return model.AuthResponse{}, err
	}
	c.sess.Set(resp.Token, resp.User)
	return resp, nil
}

// Logout clears the local session first, so it ends even when the server
// cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	token := c.sess.Token()
	c.sess.Clear()
	if token == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *Client) LoadSchools(ctx context.Context, page, limit int) (model.Page[model.School], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	var resp model.Page[model.School]
	err := c.do(ctx, http.MethodGet, "/schools?"+query.Encode(), c.sess.Token(), nil, &resp)
	return resp, c.sess.Observe(err)
}

func (c *Client) LoadSchool(ctx context.Context, schoolID string) (model.School, error) {
	var school model.School
	err := c.do(ctx, http.MethodGet, "/schools/"+url.PathEscape(schoolID), c.sess.Token(), nil, &school)
	return school, c.sess.Observe(err)
}

func (c *Client) LoadSchoolDevices(ctx context.Context, schoolID string) ([]model.Device, error) {
	var devices []model.Device
	err := c.do(ctx, http.MethodGet, "/schools/"+url.PathEscape(schoolID)+"/devices", c.sess.Token(), nil, &devices)
	if err == nil && devices == nil {
		devices = []model.Device{}
	}
	return devices, c.sess.Observe(err)
}

func (c *Client) ScanQRCode(ctx context.Context, code string) (model.ScanResult, error) {
	var result model.ScanResult
	err := c.do(ctx, http.MethodPost, "/scan", c.sess.Token(), map[string]string{"code": code}, &result)
	return result, c.sess.Observe(err)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return errorFromResponse(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorFromResponse turns a {message, code} body into a *model.Error. Bodies
// that do not parse fall back to the HTTP status.
func errorFromResponse(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err == nil && body.Code != "" {
		kind := model.KindFromCode(body.Code)
		if kind == model.KindUnknown {
			kind = kindFromStatus(resp.StatusCode)
		}
		return model.NewError(kind, body.Message)
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return model.NewError(kindFromStatus(resp.StatusCode), msg)
}

func kindFromStatus(status int) model.ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return model.KindAuthRequired
	case http.StatusNotFound:
		return model.KindNotFound
	case http.StatusBadRequest:
		return model.KindInvalidRequest
	default:
		return model.KindInternal
	}
}
