package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/session"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// Login signs the shopper in against the remote backend.
func Login(sess *session.Session, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, log, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "email and password are required")
			return
		}

		result := sess.Login(c.Request.Context(), req.Email, req.Password)
		if !result.Success {
			c.JSON(http.StatusUnauthorized, result)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": sess.User()})
	}
}

// Register creates an account and signs the shopper in.
func Register(sess *session.Session, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, log, route)

		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, log, http.StatusBadRequest, route, "firstName, lastName, email and password are required")
			return
		}

		result := sess.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password)
		if !result.Success {
			c.JSON(http.StatusUnauthorized, result)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "user": sess.User()})
	}
}

// Logout clears the local session; no backend call is involved.
func Logout(sess *session.Session, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/logout"
		defer handlePanic(c, log, route)

		sess.Logout()
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// GetMe reflects the session state, including the startup loading window
// while a stored token awaits server confirmation.
func GetMe(sess *session.Session, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/me"
		defer handlePanic(c, log, route)

		c.JSON(http.StatusOK, gin.H{
			"user":    sess.User(),
			"loading": sess.IsLoading(),
		})
	}
}
