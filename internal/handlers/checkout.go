package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/api"
	"storefront/internal/checkout"
	"storefront/internal/payment"
)

type cardRequest struct {
	Number   string `json:"number" binding:"required"`
	ExpMonth int    `json:"expMonth" binding:"required"`
	ExpYear  int    `json:"expYear" binding:"required"`
	CVC      string `json:"cvc" binding:"required"`
}

type checkoutRequest struct {
	Customer        checkout.Customer        `json:"customer"`
	ShippingAddress checkout.Address         `json:"shippingAddress"`
	BillingAddress  *checkout.BillingDetails `json:"billingAddress"`
	ShippingOption  string                   `json:"shippingOption"`
	DiscountCode    string                   `json:"discountCode"`
	Card            cardRequest              `json:"card" binding:"required"`
}

// SubmitCheckout runs one checkout attempt and maps each failure class of
// the orchestrator to a stable, retryable response.
func SubmitCheckout(orch *checkout.Orchestrator, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, log, route)

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid body")
			return
		}

		option := checkout.ShippingOption(req.ShippingOption)
		if option == "" {
			option = checkout.ShippingStandard
		}

		receipt, err := orch.Submit(c.Request.Context(), checkout.Draft{
			Customer:       req.Customer,
			Shipping:       req.ShippingAddress,
			Billing:        req.BillingAddress,
			ShippingOption: option,
			DiscountCode:   req.DiscountCode,
			Card: payment.Card{
				Number:   req.Card.Number,
				ExpMonth: req.Card.ExpMonth,
				ExpYear:  req.Card.ExpYear,
				CVC:      req.Card.CVC,
			},
		})
		if err != nil {
			respondCheckoutError(c, log, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": receipt})
	}
}

func respondCheckoutError(c *gin.Context, log logrus.FieldLogger, route string, err error) {
	var validationErr *checkout.ValidationError
	if errors.As(err, &validationErr) {
		log.WithField("route", route).Warn(validationErr.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": validationErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondWithError(c, log, http.StatusConflict, route, "a checkout is already in progress")
		return
	case errors.Is(err, checkout.ErrEmptyCart):
		respondWithError(c, log, http.StatusBadRequest, route, "your bag is empty")
		return
	}

	var declined *payment.DeclinedError
	if errors.As(err, &declined) {
		respondWithError(c, log, http.StatusPaymentRequired, route, declined.Message)
		return
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = "Failed to create payment intent."
		}
		respondWithError(c, log, http.StatusBadGateway, route, message)
		return
	}

	log.WithField("route", route).WithError(err).Warn("checkout failed")
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
		"error": "Something went wrong. Please try again.",
	})
}
