// Package api is the typed client for the remote storefront backend. Every
// endpoint responds with the {success, data, message, error} envelope; a
// success:false body decodes into *Error so callers can tell a backend
// rejection apart from a connectivity failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// User is the identity the backend returns for an authenticated session.
type User struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Credentials is the payload of a successful login or registration.
type Credentials struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Item is a cart line as the payment and order endpoints expect it.
type Item struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PriceNumeric int64  `json:"priceNumeric"`
	Quantity     int    `json:"quantity"`
	Category     string `json:"category"`
	Image        string `json:"image,omitempty"`
}

// Customer carries the contact fields sent with payment and order requests.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

// Address is a shipping or billing address as the order endpoint expects it.
type Address struct {
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

// PaymentIntentRequest asks the backend for a payment-authorization handle.
// The backend computes the authoritative charge amount from these fields.
type PaymentIntentRequest struct {
	Items          []Item   `json:"items"`
	ShippingOption string   `json:"shippingOption"`
	Customer       Customer `json:"customer"`
}

// OrderRequest records a completed order after payment confirmation.
type OrderRequest struct {
	Customer        Customer `json:"customer"`
	ShippingAddress Address  `json:"shippingAddress"`
	BillingAddress  Address  `json:"billingAddress"`
	Items           []Item   `json:"items"`
	ShippingOption  string   `json:"shippingOption"`
	PaymentIntentID string   `json:"paymentIntentId"`
}

// Error is a request the backend understood and rejected. Message holds the
// server-supplied text from the envelope's message or error field; it is
// empty when the server gave none, and callers apply their own fallback.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "backend rejected request"
	}
	return "backend rejected request: " + e.Message
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Err     string          `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials for a user identity and bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body := map[string]string{"email": email, "password": password}
	var creds Credentials
	if err := c.postJSON(ctx, "/api/auth/login", body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Register creates an account and returns its identity and bearer token.
func (c *Client) Register(ctx context.Context, firstName, lastName, email, password string) (*Credentials, error) {
	body := map[string]string{
		"firstName": firstName,
		"lastName":  lastName,
		"email":     email,
		"password":  password,
	}
	var creds Credentials
	if err := c.postJSON(ctx, "/api/auth/register", body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Me asks the backend who the bearer token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePaymentIntent requests a payment-authorization handle (client secret).
func (c *Client) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (string, error) {
	var data struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := c.postJSON(ctx, "/api/payments/create-payment-intent", req, &data); err != nil {
		return "", err
	}
	return data.ClientSecret, nil
}

// CreateOrder persists the finalized order and returns the order number.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	var data struct {
		OrderNumber string `json:"orderNumber"`
	}
	if err := c.postJSON(ctx, "/api/orders", req, &data); err != nil {
		return "", err
	}
	return data.OrderNumber, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do runs the request and decodes the envelope. A success:false envelope is
// an *Error regardless of HTTP status; transport and decode failures come
// back as plain errors.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Err
		}
		return &Error{Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode backend payload: %w", err)
		}
	}
	return nil
}
