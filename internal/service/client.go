package service

import (
	"context"

	"schoolmon/internal/model"
	"schoolmon/internal/session"
)

// Client binds a Session to an in-process Service. It keeps the session in
// step with the results: a successful authorize stores the token and any
// AUTH_REQUIRED failure clears it.
type Client struct {
	svc  *Service
	sess *session.Session
}

func NewClient(svc *Service, sess *session.Session) *Client {
	return &Client{svc: svc, sess: sess}
}

func (c *Client) Session() *session.Session {
	return c.sess
}

func (c *Client) IsAuthenticated() bool {
	return c.sess.IsAuthenticated()
}

func (c *Client) Authorize(ctx context.Context, username, password string) (model.AuthResponse, error) {
	resp, err := c.svc.Authorize(ctx, username, password)
	if err != nil {
		return model.AuthResponse{}, err
	}
	c.sess.Set(resp.Token, resp.User)
	return resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	token := c.sess.Token()
	c.sess.Clear()
	if token == "" {
		return nil
	}
	return c.svc.Logout(ctx, token)
}

func (c *Client) LoadSchools(ctx context.Context, page, limit int) (model.Page[model.School], error) {
	resp, err := c.svc.LoadSchools(ctx, c.sess.Token(), page, limit)
	return resp, c.sess.Observe(err)
}

func (c *Client) LoadSchool(ctx context.Context, schoolID string) (model.School, error) {
	school, err := c.svc.LoadSchool(ctx, c.sess.Token(), schoolID)
	return school, c.sess.Observe(err)
}

func (c *Client) LoadSchoolDevices(ctx context.Context, schoolID string) ([]model.Device, error) {
	devices, err := c.svc.LoadSchoolDevices(ctx, c.sess.Token(), schoolID)
	return devices, c.sess.Observe(err)
}

func (c *Client) ScanQRCode(ctx context.Context, code string) (model.ScanResult, error) {
	result, err := c.svc.ScanQRCode(ctx, c.sess.Token(), code)
	return result, c.sess.Observe(err)
}
