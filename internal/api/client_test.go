package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginDecodesCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"data":{"user":{"_id":"u1","firstName":"Ada","lastName":"Byron","email":"ada@example.com","role":"user"},"token":"tok-1"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	creds, err := client.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", creds.User.ID)
	assert.Equal(t, "Ada", creds.User.FirstName)
	assert.Equal(t, "tok-1", creds.Token)
}

func TestRejectionBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Login(context.Background(), "ada@example.com", "wrong")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestRejectionFallsBackToErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"Failed to create payment intent."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.CreatePaymentIntent(context.Background(), PaymentIntentRequest{})

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to create payment intent.", apiErr.Message)
}

func TestNetworkFailureIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL, time.Second)
	_, err := client.Me(context.Background(), "tok")

	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestMeSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"data":{"_id":"u9","email":"x@example.com"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	user, err := client.Me(context.Background(), "tok-9")
	require.NoError(t, err)
	assert.Equal(t, "u9", user.ID)
}

func TestCreateOrderReturnsOrderNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"orderNumber":"SN-1042"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	orderNumber, err := client.CreateOrder(context.Background(), OrderRequest{})
	require.NoError(t, err)
	assert.Equal(t, "SN-1042", orderNumber)
}
