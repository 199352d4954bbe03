package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/session"
	"storefront/internal/storage"
)

func main() {
	config.Load()

	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout

	repo, err := catalog.Load()
	if err != nil {
		log.Fatal(err)
	}
	log.WithField("products", len(repo.All())).Info("catalog loaded")

	store, err := storage.Open(config.AppEnv.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	backend := api.NewClient(config.AppEnv.APIBaseURL, config.AppEnv.HTTPTimeout)
	confirmer := payment.NewHTTPConfirmer(
		config.AppEnv.PaymentAPIBaseURL,
		config.AppEnv.StripePublishableKey,
		config.AppEnv.HTTPTimeout,
	)

	// One cart store and one auth session live for the whole process;
	// everything that needs them gets an explicit reference.
	bag := cart.NewStore(store, log)
	bag.Load()

	sess := session.New(backend, store, log)
	go sess.Load(context.Background())

	orch := checkout.NewOrchestrator(backend, confirmer, bag, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnsureSessionID())
	r.Use(middleware.RequestLog(log))

	r.GET("/products", handlers.GetProducts(repo, log))
	r.GET("/products/search", handlers.SearchProducts(repo, log))
	r.GET("/products/:id", handlers.GetProduct(repo, log))
	r.GET("/categories", handlers.GetCategories(repo, log))

	r.GET("/cart", handlers.GetCart(bag, log))
	r.POST("/cart", handlers.AddToCart(bag, repo, log))
	r.PUT("/cart/:id", handlers.UpdateCartItem(bag, log))
	r.DELETE("/cart/:id", handlers.RemoveCartItem(bag, log))
	r.DELETE("/cart", handlers.ClearCart(bag, log))

	r.POST("/auth/login", handlers.Login(sess, log))
	r.POST("/auth/register", handlers.Register(sess, log))
	r.POST("/auth/logout", handlers.Logout(sess, log))
	r.GET("/auth/me", handlers.GetMe(sess, log))

	r.POST("/checkout", handlers.SubmitCheckout(orch, log))

	log.WithField("port", config.AppEnv.Port).Info("starting storefront")
	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
