package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// Limites par endpoint
	LoginMaxAttempts          = 5
	RegisterMaxAttempts       = 3
	ForgotPasswordMaxAttempts = 3

	// Durées de cooldown
	LoginCooldown          = 15 * time.Minute
	RegisterCooldown       = 30 * time.Minute
	ForgotPasswordCooldown = 10 * time.Minute
)

// RateLimiter limite les abus sur les endpoints d'authentification via Redis
type RateLimiter struct {
	Redis *redis.Client
}

// LoginRateLimit limite les tentatives de connexion par email
func (rl *RateLimiter) LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.Redis == nil {
			c.Next()
			return
		}

		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		// Remettre le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()
		key := "login_attempts:" + input.Email
		cooldownKey := "login_cooldown:" + input.Email

		if rl.rejectIfCoolingDown(c, ctx, cooldownKey, "Trop de tentatives échouées") {
			return
		}

		attempts, _ := rl.Redis.Get(ctx, key).Int()
		if attempts >= LoginMaxAttempts {
			rl.Redis.Set(ctx, cooldownKey, "1", LoginCooldown)
			rl.Redis.Del(ctx, key)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Compte bloqué pendant %d minutes", int(LoginCooldown.Minutes())),
				"retry_after": int(LoginCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		// Connexion échouée : incrémenter, réussie : réinitialiser
		switch c.Writer.Status() {
		case http.StatusBadRequest, http.StatusUnauthorized:
			rl.Redis.Incr(ctx, key)
			rl.Redis.Expire(ctx, key, LoginCooldown)
		case http.StatusOK:
			rl.Redis.Del(ctx, key)
			rl.Redis.Del(ctx, cooldownKey)
		}
	}
}

// RegisterRateLimit limite les inscriptions par IP
func (rl *RateLimiter) RegisterRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.Redis == nil {
			c.Next()
			return
		}

		ctx := context.Background()
		ip := c.ClientIP()
		key := "register_attempts:" + ip
		cooldownKey := "register_cooldown:" + ip

		if rl.rejectIfCoolingDown(c, ctx, cooldownKey, "Trop d'inscriptions") {
			return
		}

		attempts, _ := rl.Redis.Get(ctx, key).Int()
		if attempts >= RegisterMaxAttempts {
			rl.Redis.Set(ctx, cooldownKey, "1", RegisterCooldown)
			rl.Redis.Del(ctx, key)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop d'inscriptions. Réessayez dans %d minutes", int(RegisterCooldown.Minutes())),
				"retry_after": int(RegisterCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusCreated {
			rl.Redis.Incr(ctx, key)
			rl.Redis.Expire(ctx, key, RegisterCooldown)
		}
	}
}

// ForgotPasswordRateLimit limite les demandes de réinitialisation par email
func (rl *RateLimiter) ForgotPasswordRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.Redis == nil {
			c.Next()
			return
		}

		bodyBytes, _ := io.ReadAll(c.Request.Body)

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			c.Next()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		ctx := context.Background()
		key := "forgot_password_attempts:" + input.Email
		cooldownKey := "forgot_password_cooldown:" + input.Email

		if rl.rejectIfCoolingDown(c, ctx, cooldownKey, "Trop de demandes") {
			return
		}

		attempts, _ := rl.Redis.Get(ctx, key).Int()
		if attempts >= ForgotPasswordMaxAttempts {
			rl.Redis.Set(ctx, cooldownKey, "1", ForgotPasswordCooldown)
			rl.Redis.Del(ctx, key)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de demandes. Réessayez dans %d minutes", int(ForgotPasswordCooldown.Minutes())),
				"retry_after": int(ForgotPasswordCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			rl.Redis.Incr(ctx, key)
			rl.Redis.Expire(ctx, key, ForgotPasswordCooldown)
		}
	}
}

func (rl *RateLimiter) rejectIfCoolingDown(c *gin.Context, ctx context.Context, cooldownKey, message string) bool {
	if rl.Redis.Exists(ctx, cooldownKey).Val() == 0 {
		return false
	}
	ttl := rl.Redis.TTL(ctx, cooldownKey).Val()
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       fmt.Sprintf("%s. Réessayez dans %d minutes", message, int(ttl.Minutes())),
		"retry_after": int(ttl.Seconds()),
	})
	c.Abort()
	return true
}
