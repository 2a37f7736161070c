package main

import (
	"log"

	"drivea_back_end/internal/config"
	"drivea_back_end/internal/database"
	authhandler "drivea_back_end/internal/handlers/auth"
	bookinghandler "drivea_back_end/internal/handlers/booking"
	carhandler "drivea_back_end/internal/handlers/car"
	paymenthandler "drivea_back_end/internal/handlers/payment"
	transactionhandler "drivea_back_end/internal/handlers/transaction"
	userhandler "drivea_back_end/internal/handlers/user"
	"drivea_back_end/internal/mailer"
	"drivea_back_end/internal/middleware"
	"drivea_back_end/internal/payments"
	"drivea_back_end/internal/routes"
	"drivea_back_end/internal/storage/mongostore"
	"drivea_back_end/internal/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if cfg.StripeSecretKey == "" {
		log.Fatal("❌ Impossible d'initialiser Stripe : clé manquante")
	}
	gateway := payments.NewStripeGateway(cfg.StripeSecretKey)
	log.Println("✅ Stripe initialisé")

	dbs := database.Connect(cfg)
	defer dbs.Close()

	store := mongostore.NewStore(dbs.Mongo)

	tokens := token.NewManager(cfg.JWTSecret)
	smtpMailer := mailer.NewSMTPMailer(cfg)
	gate := &middleware.Auth{Store: store, Tokens: tokens, Redis: dbs.Redis}
	rateLimiter := &middleware.RateLimiter{Redis: dbs.Redis}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.Register(r, routes.Deps{
		Auth:        authhandler.NewHandler(store, tokens, smtpMailer, cfg, gate),
		Car:         carhandler.NewHandler(store),
		Booking:     bookinghandler.NewHandler(store, gateway),
		Payment:     paymenthandler.NewHandler(store, gateway),
		Transaction: transactionhandler.NewHandler(store),
		User:        userhandler.NewHandler(store, gate),
		Gate:        gate,
		RateLimiter: rateLimiter,
	})

	log.Println("🚀 Serveur Drivea lancé sur le port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("❌ Erreur démarrage du serveur:", err)
	}
}
