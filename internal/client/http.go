package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second

	csrfCookie = "XSRF-TOKEN"
	csrfHeader = "X-CSRF-Token"
)

// HTTPClient talks to the REST API. Session and CSRF cookies live in its jar.
type HTTPClient struct {
	baseURL    *url.URL
	origin     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPClient expects the API root, e.g. http://localhost:8080/api.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &HTTPClient{
		baseURL: u,
		origin:  u.Scheme + "://" + u.Host,
		timeout: timeout,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

func (c *HTTPClient) CheckAuth(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/check", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, in SignupInput) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/auth/signup", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) LogIn(ctx context.Context, email, password string) (*User, error) {
	var u User
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) LogOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, in ProfileUpdate) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, "/auth/update-profile", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ToggleFavorite(ctx context.Context, productID string) (bool, error) {
	var resp struct {
		IsFavorite bool `json:"isFavorite"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/favorite/"+url.PathEscape(productID), nil, &resp); err != nil {
		return false, err
	}
	return resp.IsFavorite, nil
}

func (c *HTTPClient) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products/getproducts", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *HTTPClient) AddProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var resp struct {
		Product Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "/products/addproduct", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	var resp struct {
		Product Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), in, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) GetCart(ctx context.Context) ([]CartLine, error) {
	var lines []CartLine
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (c *HTTPClient) AddToCart(ctx context.Context, productID string, quantity int) ([]CartLine, error) {
	var resp struct {
		Cart []CartLine `json:"cart"`
	}
	body := map[string]any{"productId": productID, "quantity": quantity}
	if err := c.do(ctx, http.MethodPost, "/cart/add", body, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

func (c *HTTPClient) RemoveFromCart(ctx context.Context, productID string) ([]CartLine, error) {
	var resp struct {
		Cart []CartLine `json:"cart"`
	}
	if err := c.do(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(productID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

func (c *HTTPClient) UpdateCartQuantity(ctx context.Context, productID string, quantity int) error {
	body := map[string]any{"productId": productID, "quantity": quantity}
	return c.do(ctx, http.MethodPatch, "/cart/update", body, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Origin", c.origin)
		if tok := c.csrfToken(); tok != "" {
			req.Header.Set(csrfHeader, tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) csrfToken() string {
	for _, ck := range c.httpClient.Jar.Cookies(c.baseURL) {
		if ck.Name == csrfCookie {
			return ck.Value
		}
	}
	return ""
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Message == "" {
		payload.Message = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: payload.Message}
}
