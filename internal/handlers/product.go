package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/catalog"
)

// GetProducts lists the catalog with optional sort, category and search
// query parameters. Category may repeat for multi-select filtering.
func GetProducts(repo *catalog.Repository, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, log, route)

		sortBy := strings.TrimSpace(c.DefaultQuery("sort", catalog.SortFeatured))
		search := c.Query("search")

		categories := []string{}
		for _, v := range c.QueryArray("category") {
			if v = strings.TrimSpace(v); v != "" {
				categories = append(categories, v)
			}
		}

		products := repo.FilterAndSort(sortBy, categories, search)
		c.JSON(http.StatusOK, products)
	}
}

// GetProduct returns a single catalog entry by id.
func GetProduct(repo *catalog.Repository, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, log, route)

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid product id")
			return
		}

		product, ok := repo.FindByID(id)
		if !ok {
			respondWithError(c, log, http.StatusNotFound, route, "product not found")
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// SearchProducts backs the search-suggestion box. A blank query yields an
// empty list by contract.
func SearchProducts(repo *catalog.Repository, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/search"
		defer handlePanic(c, log, route)

		c.JSON(http.StatusOK, repo.Search(c.Query("q")))
	}
}

// GetCategories returns the fixed category set for the filter sheet.
func GetCategories(repo *catalog.Repository, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, log, route)

		c.JSON(http.StatusOK, repo.Categories())
	}
}
