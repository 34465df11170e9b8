package main

import (
	"log"
	"os"
	"strings"

	"multitool-backend/accounts"
	"multitool-backend/conn"
	"multitool-backend/email"
	"multitool-backend/entitlement"
	"multitool-backend/imagegen"
	"multitool-backend/login"
	"multitool-backend/migrations"
	"multitool-backend/payments"
	"multitool-backend/tools"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[boot] no .env file loaded: %v", err)
	}

	db, err := conn.NewMySQL()
	if err != nil {
		log.Fatalf("[boot] database connection failed: %v", err)
	}
	migrations.Init(db)
	if err := migrations.Migrate(); err != nil {
		log.Fatalf("[boot] migration failed: %v", err)
	}

	repo := accounts.NewRepository(db)
	mailer := email.NewService()

	var realGen imagegen.Generator
	if g := imagegen.NewOpenAIFromEnv(); g != nil {
		realGen = g
	}

	authHandler := login.NewHandler(repo, mailer, login.LogSender{}, login.NewGoogleVerifierFromEnv())
	evaluator := entitlement.NewEvaluator(repo)

	rzp := payments.NewRazorpayFromEnv()
	var orders payments.OrderCreator
	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	if rzp != nil {
		orders = rzp
		secret = rzp.Secret()
	}
	paymentHandler := payments.NewHandler(repo, orders, secret, payments.NewLedger(db), mailer)

	toolHandler := tools.NewHandler(realGen, tools.MockDetector{}, "uploads")

	r := gin.Default()
	r.Use(cors.New(corsConfig()))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Multi-Tool.io API is running!"})
	})
	r.Static("/uploads", "./uploads")

	authHandler.RegisterRoutes(r)
	toolHandler.RegisterRoutes(r, authHandler.Middleware(), evaluator.Middleware())
	paymentGroup := r.Group("/api/payment", authHandler.Middleware())
	paymentHandler.RegisterRoutes(paymentGroup)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	log.Printf("[boot] listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("[boot] server stopped: %v", err)
	}
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		origins = "https://multi-tool-io.vercel.app,http://localhost:5173,http://localhost:5174"
	}
	cfg.AllowOrigins = strings.Split(origins, ",")
	cfg.AllowCredentials = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cfg
}
