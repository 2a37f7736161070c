package database

import (
	"context"
	"log"
	"time"

	"drivea_back_end/internal/config"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Databases porte les connexions partagées, créées au démarrage et passées
// explicitement aux composants qui en ont besoin
type Databases struct {
	MongoClient *mongo.Client
	Mongo       *mongo.Database
	Redis       *redis.Client
}

func Connect(cfg *config.Config) *Databases {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI()))
	if err != nil {
		log.Fatalf("❌ Erreur connexion MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("❌ MongoDB injoignable: %v", err)
	}
	log.Println("✅ Connecté à MongoDB")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisHost,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("❌ Erreur connexion Redis:", err)
	}
	log.Println("✅ Connecté à Redis")

	return &Databases{
		MongoClient: client,
		Mongo:       client.Database(cfg.DBName),
		Redis:       rdb,
	}
}

// Close ferme proprement les connexions
func (d *Databases) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.MongoClient.Disconnect(ctx); err != nil {
		log.Printf("⚠️ Erreur fermeture MongoDB: %v", err)
	} else {
		log.Println("🔌 Connexion MongoDB fermée")
	}
	if err := d.Redis.Close(); err != nil {
		log.Printf("⚠️ Erreur fermeture Redis: %v", err)
	}
}
