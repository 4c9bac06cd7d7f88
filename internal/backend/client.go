// Package backend is the HTTP client for the external catalog REST API.
// All catalog state lives behind this API; the web client keeps nothing
// durable of its own.
package backend

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/catalogkit/webcatalog/config"
	"github.com/catalogkit/webcatalog/internal/token"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Client struct {
	baseURL string
	timeout time.Duration
	idnode  *snowflake.Node
}

func NewClient(cfg config.BackendConfig) *Client {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: time.Duration(cfg.Timeout) * time.Second,
		idnode:  node,
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// headers builds the outbound header set; the bearer credential is attached
// only when a token is present.
func (c *Client) headers(tok string) gout.H {
	h := gout.H{
		"Accept":       "application/json",
		"X-Request-Id": c.idnode.Generate().String(),
	}
	if tok != "" {
		h["Authorization"] = "Bearer " + tok
	}
	return h
}

// preflight short-circuits calls carrying a token that is already expired
// by local clock, saving a guaranteed-401 round trip.
func (c *Client) preflight(tok string) error {
	if tok != "" && token.IsExpired(tok) {
		return ErrSessionExpired
	}
	return nil
}

type apiMessage struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

func backendMessage(body []byte, fallback string) string {
	var m apiMessage
	if err := json.Unmarshal(body, &m); err == nil {
		if m.Message != "" {
			return m.Message
		}
		if m.Msg != "" {
			return m.Msg
		}
	}
	return fallback
}

func statusError(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == 401:
		return ErrSessionExpired
	case code == 403:
		return ErrForbidden
	case code == 404:
		return ErrNotFound
	case code == 400 || code == 409 || code == 422:
		return &ValidationError{Message: backendMessage(body, "request rejected by backend")}
	default:
		return errors.Errorf("catalog backend returned status %d", code)
	}
}

// exec runs a prepared dataflow, maps the status code to the client error
// taxonomy, and optionally decodes the body into out.
func (c *Client) exec(df *dataflow.DataFlow, out interface{}) error {
	var (
		code int
		body []byte
	)
	if err := df.SetTimeout(c.timeout).BindBody(&body).Code(&code).Do(); err != nil {
		return errors.Wrap(err, "catalog backend unreachable")
	}
	if err := statusError(code, body); err != nil {
		return err
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return errors.Wrap(err, "decode backend response")
		}
	}
	return nil
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	err := c.exec(gout.GET(c.url("/products")).WithContext(ctx).SetHeader(c.headers("")), &products)
	return products, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := c.exec(gout.GET(c.url("/products/"+id)).WithContext(ctx).SetHeader(c.headers("")), &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct returns the id assigned by the backend.
func (c *Client) CreateProduct(ctx context.Context, tok string, in ProductInput) (string, error) {
	if err := c.preflight(tok); err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"_id"`
	}
	err := c.exec(gout.POST(c.url("/products")).WithContext(ctx).SetHeader(c.headers(tok)).SetJSON(in), &created)
	return created.ID, err
}

func (c *Client) UpdateProduct(ctx context.Context, tok, id string, in ProductInput) error {
	if err := c.preflight(tok); err != nil {
		return err
	}
	return c.exec(gout.PUT(c.url("/products/"+id)).WithContext(ctx).SetHeader(c.headers(tok)).SetJSON(in), nil)
}

func (c *Client) DeleteProduct(ctx context.Context, tok, id string) error {
	if err := c.preflight(tok); err != nil {
		return err
	}
	return c.exec(gout.DELETE(c.url("/products/"+id)).WithContext(ctx).SetHeader(c.headers(tok)), nil)
}

func (c *Client) ListManufacturers(ctx context.Context) ([]Manufacturer, error) {
	var manufacturers []Manufacturer
	err := c.exec(gout.GET(c.url("/manufacturers")).WithContext(ctx).SetHeader(c.headers("")), &manufacturers)
	return manufacturers, err
}

func (c *Client) GetManufacturer(ctx context.Context, id string) (*Manufacturer, error) {
	var m Manufacturer
	err := c.exec(gout.GET(c.url("/manufacturers/"+id)).WithContext(ctx).SetHeader(c.headers("")), &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) CreateManufacturer(ctx context.Context, tok, name string) (*Manufacturer, error) {
	if err := c.preflight(tok); err != nil {
		return nil, err
	}
	var m Manufacturer
	err := c.exec(gout.POST(c.url("/manufacturers")).WithContext(ctx).
		SetHeader(c.headers(tok)).SetJSON(gout.H{"name": name}), &m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) UpdateManufacturer(ctx context.Context, tok, id, name string) error {
	if err := c.preflight(tok); err != nil {
		return err
	}
	return c.exec(gout.PUT(c.url("/manufacturers/"+id)).WithContext(ctx).
		SetHeader(c.headers(tok)).SetJSON(gout.H{"name": name}), nil)
}

func (c *Client) DeleteManufacturer(ctx context.Context, tok, id string) error {
	if err := c.preflight(tok); err != nil {
		return err
	}
	return c.exec(gout.DELETE(c.url("/manufacturers/"+id)).WithContext(ctx).SetHeader(c.headers(tok)), nil)
}

// Login exchanges credentials for an access token. A 400/401 here is a
// credential failure surfaced verbatim, not a session-expiry signal.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var (
		code int
		body []byte
	)
	err := gout.POST(c.url("/login")).WithContext(ctx).SetTimeout(c.timeout).
		SetHeader(c.headers("")).
		SetJSON(gout.H{"username": username, "password": password}).
		BindBody(&body).Code(&code).Do()
	if err != nil {
		return "", errors.Wrap(err, "catalog backend unreachable")
	}
	if code == 400 || code == 401 {
		return "", &ValidationError{Message: backendMessage(body, "Invalid credentials")}
	}
	if err := statusError(code, body); err != nil {
		return "", err
	}
	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", errors.Wrap(err, "decode login response")
	}
	if result.AccessToken == "" {
		return "", errors.New("backend returned no access token")
	}
	return result.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.exec(gout.POST(c.url("/register")).WithContext(ctx).
		SetHeader(c.headers("")).
		SetJSON(gout.H{"username": username, "password": password}), nil)
}

func (c *Client) CurrentUser(ctx context.Context, tok string) (*User, error) {
	if err := c.preflight(tok); err != nil {
		return nil, err
	}
	var u User
	err := c.exec(gout.GET(c.url("/me")).WithContext(ctx).SetHeader(c.headers(tok)), &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ChangePassword(ctx context.Context, tok, current, next string) error {
	if err := c.preflight(tok); err != nil {
		return err
	}
	return c.exec(gout.POST(c.url("/change-password")).WithContext(ctx).
		SetHeader(c.headers(tok)).
		SetJSON(gout.H{"current_password": current, "new_password": next}), nil)
}

// Probe issues a timed read against the manufacturers endpoint; used by the
// background monitor to report backend reachability.
func (c *Client) Probe(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	_, err := c.ListManufacturers(ctx)
	return time.Since(start), err
}
