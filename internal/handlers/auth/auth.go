package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"drivea_back_end/internal/config"
	"drivea_back_end/internal/mailer"
	"drivea_back_end/internal/middleware"
	"drivea_back_end/internal/models"
	"drivea_back_end/internal/storage"
	"drivea_back_end/internal/token"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// Durée de validité d'un code 2FA
const twoFactorTTL = 10 * time.Minute

type Handler struct {
	Store  storage.Store
	Tokens *token.Manager
	Mailer mailer.Mailer
	Cfg    *config.Config
	// Gate sert uniquement à invalider le cache utilisateur après mutation
	Gate *middleware.Auth
}

func NewHandler(store storage.Store, tokens *token.Manager, m mailer.Mailer, cfg *config.Config, gate *middleware.Auth) *Handler {
	return &Handler{Store: store, Tokens: tokens, Mailer: m, Cfg: cfg, Gate: gate}
}

// Register crée un compte et envoie le lien de confirmation ; un vendeur
// auto-déclaré démarre en "pending" et l'admin est prévenu par email
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.Store.GetUserByEmail(ctx, input.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}
	if _, err := h.Store.GetUserByUsername(ctx, input.Username); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ce nom d'utilisateur est déjà pris"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	role := models.RoleUser
	if input.Role == models.RoleSeller {
		// Un vendeur doit d'abord être approuvé par un admin
		role = models.RolePending
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Username: input.Username,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := h.Store.CreateUser(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	confirmToken, err := h.Tokens.GenerateAction(user.ID, token.PurposeConfirmEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	confirmURL := h.Cfg.FrontendURL + "/confirm/" + confirmToken
	if err := h.Mailer.Send(user.Email, "Confirmez votre email — Drivea",
		mailer.ConfirmationEmailHTML(user.Name, confirmURL)); err != nil {
		log.Printf("❌ Erreur envoi email de confirmation à %s: %v", user.Email, err)
	}

	if role == models.RolePending && h.Cfg.AdminEmail != "" {
		if err := h.Mailer.Send(h.Cfg.AdminEmail, "Nouveau vendeur en attente d'approbation",
			mailer.SellerPendingAdminHTML(user.Name, user.Email)); err != nil {
			log.Printf("❌ Erreur envoi alerte admin: %v", err)
		}
	}

	log.Printf("🆕 Utilisateur créé: %s (rôle: %s)", user.Email, role)
	c.JSON(http.StatusCreated, gin.H{"message": "Utilisateur créé, veuillez confirmer votre email"})
}

// ConfirmEmail valide le token de confirmation et marque le compte vérifié
func (h *Handler) ConfirmEmail(c *gin.Context) {
	userID, err := h.Tokens.ParseAction(c.Param("token"), token.PurposeConfirmEmail)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Lien de confirmation expiré, veuillez vous réinscrire"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token invalide"})
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Store.SetUserVerified(ctx, userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token invalide"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email confirmé, vous pouvez maintenant vous connecter"})
}

// Login vérifie les identifiants ; si la 2FA est activée, envoie un code à
// 6 chiffres par email au lieu d'émettre un token de session
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := h.Store.GetUserByEmail(ctx, input.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	if !user.IsVerified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Veuillez d'abord confirmer votre email"})
		return
	}

	if user.TwoFactorEnabled {
		code, err := generateTwoFactorCode()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du code 2FA"})
			return
		}
		if err := h.Store.SetUserTwoFactorCode(ctx, user.ID, code, time.Now().Add(twoFactorTTL)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du code 2FA"})
			return
		}
		if err := h.Mailer.Send(user.Email, "Votre code 2FA — Drivea", mailer.TwoFactorCodeHTML(code)); err != nil {
			log.Printf("❌ Erreur envoi code 2FA à %s: %v", user.Email, err)
		}
		log.Printf("📧 Code 2FA envoyé à %s", user.Email)
		c.JSON(http.StatusOK, gin.H{"twoFactorRequired": true})
		return
	}

	h.issueSession(c, ctx, user)
}

// Verify2FA consomme le code (usage unique, atomique côté store) et émet le
// token de session
func (h *Handler) Verify2FA(c *gin.Context) {
	var input struct {
		Email         string `json:"email" binding:"required,email"`
		TwoFactorCode string `json:"twoFactorCode" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := h.Store.ConsumeUserTwoFactorCode(ctx, input.Email, input.TwoFactorCode, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code 2FA invalide ou expiré"})
		return
	}

	h.issueSession(c, ctx, user)
}

// ForgotPassword envoie un lien de réinitialisation signé
func (h *Handler) ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := h.Store.GetUserByEmail(ctx, input.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	resetToken, err := h.Tokens.GenerateAction(user.ID, token.PurposeResetPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	resetURL := h.Cfg.FrontendURL + "/resetpassword/" + resetToken
	if err := h.Mailer.Send(user.Email, "Réinitialisation de votre mot de passe — Drivea",
		mailer.PasswordResetHTML(resetURL)); err != nil {
		log.Printf("❌ Erreur envoi email de réinitialisation à %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur envoi de l'email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email de réinitialisation envoyé"})
}

// ResetPassword écrase le hash stocké après vérification du token
func (h *Handler) ResetPassword(c *gin.Context) {
	var input struct {
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := h.Tokens.ParseAction(c.Param("token"), token.PurposeResetPassword)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Lien de réinitialisation expiré"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token invalide"})
		}
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur réinitialisation"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Store.SetUserPassword(ctx, userID, string(hashedPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token invalide"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe réinitialisé avec succès"})
}

// UpdateProfile : mise à jour self-service du nom, mot de passe et flag 2FA
func (h *Handler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input struct {
		Name             string `json:"name"`
		Password         string `json:"password"`
		TwoFactorEnabled *bool  `json:"twoFactorEnabled"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := storage.UserProfileUpdate{TwoFactorEnabled: input.TwoFactorEnabled}
	if input.Name != "" {
		upd.Name = &input.Name
	}
	if input.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour profil"})
			return
		}
		hash := string(hashedPassword)
		upd.Password = &hash
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updated, err := h.Store.UpdateUserProfile(ctx, user.ID, upd)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	h.Gate.InvalidateUserCache(ctx, user.ID.Hex())
	c.JSON(http.StatusOK, updated)
}

// Me renvoie l'utilisateur courant (résolu par le middleware, sans hash)
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// Logout efface le flag de session
func (h *Handler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.Store.SetUserLoggedIn(ctx, user.ID, false); err != nil {
		log.Printf("⚠️ Erreur déconnexion pour %s: %v", user.Email, err)
	}
	h.Gate.InvalidateUserCache(ctx, user.ID.Hex())

	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// ApproveSeller (admin) : transition pending → seller
func (h *Handler) ApproveSeller(c *gin.Context) {
	var input struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := bson.ObjectIDFromHex(input.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := h.Store.GetUserByID(ctx, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if err := h.Store.ApproveSeller(ctx, userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cet utilisateur n'est pas en attente d'approbation"})
		return
	}

	h.Gate.InvalidateUserCache(ctx, input.UserID)
	log.Printf("✅ Vendeur approuvé: %s", input.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur approuvé comme vendeur"})
}

// PendingSellers (admin) : liste des vendeurs en attente
func (h *Handler) PendingSellers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users, err := h.Store.ListUsersByRole(ctx, models.RolePending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture utilisateurs"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// ValidateToken : si le middleware est passé, le token est valide
func (h *Handler) ValidateToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}

// issueSession émet le token, marque l'utilisateur connecté et répond
func (h *Handler) issueSession(c *gin.Context, ctx context.Context, user *models.User) {
	sessionToken, err := h.Tokens.GenerateSession(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	if err := h.Store.SetUserLoggedIn(ctx, user.ID, true); err != nil {
		log.Printf("⚠️ Erreur mise à jour isLoggedIn pour %s: %v", user.Email, err)
	}
	user.IsLoggedIn = true
	user.Password = ""

	c.JSON(http.StatusOK, gin.H{"user": user, "token": sessionToken})
}

// generateTwoFactorCode produit un code numérique à 6 chiffres
func generateTwoFactorCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 100000+n.Int64()), nil
}
