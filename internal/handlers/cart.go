package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/cart"
	"storefront/internal/catalog"
)

type addToCartRequest struct {
	ProductID int  `json:"id" binding:"required"`
	Quantity  *int `json:"quantity"` // omitted means 1
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func cartState(bag *cart.Store) gin.H {
	return gin.H{
		"items":      bag.Items(),
		"totalItems": bag.TotalItems(),
		"subtotal":   bag.Subtotal(),
	}
}

// GetCart returns the current bag with derived totals.
func GetCart(bag *cart.Store, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, log, route)

		c.JSON(http.StatusOK, cartState(bag))
	}
}

// AddToCart adds a catalog product to the bag. The line item snapshots the
// product's current price; the product must exist at time of add.
func AddToCart(bag *cart.Store, repo *catalog.Repository, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart"
		defer handlePanic(c, log, route)

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid body")
			return
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		if quantity < 1 {
			respondWithError(c, log, http.StatusBadRequest, route, "quantity must be at least 1")
			return
		}

		product, ok := repo.FindByID(req.ProductID)
		if !ok {
			respondWithError(c, log, http.StatusNotFound, route, "product not found")
			return
		}

		bag.Add(product, quantity)
		c.JSON(http.StatusOK, cartState(bag))
	}
}

// UpdateCartItem sets the quantity for a line item; zero or below removes it.
func UpdateCartItem(bag *cart.Store, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/:id"
		defer handlePanic(c, log, route)

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid product id")
			return
		}

		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid body")
			return
		}

		bag.SetQuantity(id, req.Quantity)
		c.JSON(http.StatusOK, cartState(bag))
	}
}

// RemoveCartItem deletes a line item; removing an absent item is a no-op.
func RemoveCartItem(bag *cart.Store, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/:id"
		defer handlePanic(c, log, route)

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid product id")
			return
		}

		bag.Remove(id)
		c.JSON(http.StatusOK, cartState(bag))
	}
}

// ClearCart empties the bag.
func ClearCart(bag *cart.Store, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, log, route)

		bag.Clear()
		c.JSON(http.StatusOK, cartState(bag))
	}
}
