package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"drivea_back_end/internal/models"
	"drivea_back_end/internal/storage"
	"drivea_back_end/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Clé du contexte gin portant l'utilisateur résolu
const ContextUserKey = "user"

// TTL du cache Redis des utilisateurs résolus par le middleware
const userCacheTTL = 5 * time.Minute

// Auth porte les dépendances du contrôle d'accès
type Auth struct {
	Store  storage.Store
	Tokens *token.Manager
	// Cache facultatif des utilisateurs résolus (nil = pas de cache)
	Redis *redis.Client
}

// Protect extrait le token de session (cookie ou header Bearer), le vérifie
// et attache l'utilisateur résolu — sans son hash de mot de passe — au
// contexte de la requête
func (a *Auth) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé, token manquant"})
			c.Abort()
			return
		}

		id, _, err := a.Tokens.ParseSession(tokenString)
		if err != nil {
			// Un token expiré invite à se reconnecter ; un token invalide, non
			if errors.Is(err, token.ErrExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expirée, veuillez vous reconnecter"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé, token invalide"})
			}
			c.Abort()
			return
		}

		user, err := a.resolveUser(c.Request.Context(), id.Hex())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé, utilisateur introuvable"})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireRoles rejette les utilisateurs dont le rôle n'est pas dans la liste
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user != nil {
			for _, role := range roles {
				if user.Role == role {
					c.Next()
					return
				}
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Non autorisé à accéder à cette route"})
		c.Abort()
	}
}

// CurrentUser renvoie l'utilisateur attaché par Protect (nil si absent)
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// resolveUser lit l'utilisateur depuis le cache Redis ou le store, et le
// renvoie sans son hash de mot de passe
func (a *Auth) resolveUser(ctx context.Context, idHex string) (*models.User, error) {
	cacheKey := "auth_user:" + idHex

	if a.Redis != nil {
		if raw, err := a.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(raw), &user); err == nil {
				return &user, nil
			}
		}
	}

	id, err := bson.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, err
	}
	user, err := a.Store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Password = ""

	if a.Redis != nil {
		if raw, err := json.Marshal(user); err == nil {
			if err := a.Redis.Set(ctx, cacheKey, raw, userCacheTTL).Err(); err != nil {
				log.Printf("⚠️ Cache utilisateur indisponible: %v", err)
			}
		}
	}

	return user, nil
}

// InvalidateUserCache purge l'entrée cache d'un utilisateur après une
// mutation de son profil ou de son rôle
func (a *Auth) InvalidateUserCache(ctx context.Context, idHex string) {
	if a == nil || a.Redis == nil {
		return
	}
	a.Redis.Del(ctx, "auth_user:"+idHex)
}
