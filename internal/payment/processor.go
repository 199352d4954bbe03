// Package payment is the boundary to the hosted payment processor. The
// orchestrator hands over the authorization handle (client secret) plus
// cardholder input and gets back a status and processor reference; nothing
// else about the processor leaks past this package.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StatusSucceeded is the processor status that permits order recording.
const StatusSucceeded = "succeeded"

// Card is the cardholder input collected by the checkout form.
type Card struct {
	Number   string
	ExpMonth int
	ExpYear  int
	CVC      string
}

// BillingContact accompanies the confirmation per the processor contract.
type BillingContact struct {
	Name  string
	Email string
	Phone string
}

// Confirmation is the processor's answer to a confirm call.
type Confirmation struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// DeclinedError is a confirm call the processor processed and refused:
// a decline or a card validation error, with the processor's own message.
type DeclinedError struct {
	Message string
}

func (e *DeclinedError) Error() string {
	return "payment declined: " + e.Message
}

// Confirmer confirms an in-progress charge identified by its client secret.
type Confirmer interface {
	ConfirmPayment(ctx context.Context, clientSecret string, card Card, billing BillingContact) (*Confirmation, error)
}

// HTTPConfirmer talks to the processor's hosted confirm endpoint using the
// publishable key, the way a browser payment element would.
type HTTPConfirmer struct {
	baseURL        string
	publishableKey string
	httpClient     *http.Client
}

func NewHTTPConfirmer(baseURL, publishableKey string, timeout time.Duration) *HTTPConfirmer {
	return &HTTPConfirmer{
		baseURL:        baseURL,
		publishableKey: publishableKey,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

func (c *HTTPConfirmer) ConfirmPayment(ctx context.Context, clientSecret string, card Card, billing BillingContact) (*Confirmation, error) {
	intentID, err := intentIDFromSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("key", c.publishableKey)
	form.Set("client_secret", clientSecret)
	form.Set("payment_method_data[type]", "card")
	form.Set("payment_method_data[card][number]", card.Number)
	form.Set("payment_method_data[card][exp_month]", strconv.Itoa(card.ExpMonth))
	form.Set("payment_method_data[card][exp_year]", strconv.Itoa(card.ExpYear))
	form.Set("payment_method_data[card][cvc]", card.CVC)
	form.Set("payment_method_data[billing_details][name]", billing.Name)
	form.Set("payment_method_data[billing_details][email]", billing.Email)
	if billing.Phone != "" {
		form.Set("payment_method_data[billing_details][phone]", billing.Phone)
	}

	confirmURL := fmt.Sprintf("%s/v1/payment_intents/%s/confirm", c.baseURL, intentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, confirmURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment processor unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&failure)
		msg := failure.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("confirmation failed (status %d)", resp.StatusCode)
		}
		return nil, &DeclinedError{Message: msg}
	}

	var conf Confirmation
	if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
		return nil, fmt.Errorf("decode processor response: %w", err)
	}
	return &conf, nil
}

// intentIDFromSecret extracts the intent id from a handle shaped like
// pi_123_secret_456. The handle is otherwise treated as opaque.
func intentIDFromSecret(clientSecret string) (string, error) {
	idx := strings.Index(clientSecret, "_secret_")
	if idx <= 0 {
		return "", fmt.Errorf("malformed payment authorization handle")
	}
	return clientSecret[:idx], nil
}
