package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config regroupe toute la configuration du serveur, construite une seule
// fois au démarrage puis passée explicitement aux composants — aucun
// os.Getenv dans la logique métier.
type Config struct {
	Port string

	DBUsername string
	DBPassword string
	DBCluster  string
	DBName     string

	RedisHost     string
	RedisPassword string

	JWTSecret       string
	StripeSecretKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
	AdminEmail   string

	FrontendURL string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "5000"),
		DBUsername:      os.Getenv("DB_USERNAME"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBCluster:       os.Getenv("DB_CLUSTER"),
		DBName:          os.Getenv("DB_NAME"),
		RedisHost:       getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        587,
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		EmailFrom:       os.Getenv("EMAIL_FROM"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET manquant dans .env")
	}

	return cfg
}

// MongoURI assemble la chaîne de connexion à partir des identifiants fournis
// par l'environnement
func (c *Config) MongoURI() string {
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/%s?retryWrites=true&w=majority",
		c.DBUsername, c.DBPassword, c.DBCluster, c.DBName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
