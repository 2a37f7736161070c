package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"drivea_back_end/internal/models"
	"drivea_back_end/internal/storage/storagetest"
	"drivea_back_end/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestGate(t *testing.T) (*Auth, *storagetest.Store, *token.Manager) {
	t.Helper()
	store := storagetest.New()
	tokens := token.NewManager("test-secret")
	return &Auth{Store: store, Tokens: tokens}, store, tokens
}

func seedUser(t *testing.T, store *storagetest.Store, role string) *models.User {
	t.Helper()
	u := &models.User{
		Name:       "Alice",
		Email:      "alice@example.com",
		Username:   "alice",
		Password:   "hash",
		Role:       role,
		IsVerified: true,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func protectedRouter(gate *Auth, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{gate.Protect()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUser(c)})
	})
	r.GET("/secure", handlers...)
	return r
}

func TestProtectMissingToken(t *testing.T) {
	gate, _, _ := newTestGate(t)
	r := protectedRouter(gate)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectInvalidToken(t *testing.T) {
	gate, _, _ := newTestGate(t)
	r := protectedRouter(gate)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer n-importe-quoi")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectBearerHeader(t *testing.T) {
	gate, store, tokens := newTestGate(t)
	u := seedUser(t, store, models.RoleUser)
	tok, err := tokens.GenerateSession(u)
	require.NoError(t, err)

	r := protectedRouter(gate)
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "hash")
}

func TestProtectCookie(t *testing.T) {
	gate, store, tokens := newTestGate(t)
	u := seedUser(t, store, models.RoleUser)
	tok, err := tokens.GenerateSession(u)
	require.NoError(t, err)

	r := protectedRouter(gate)
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProtectUnknownUser(t *testing.T) {
	gate, _, tokens := newTestGate(t)
	ghost := &models.User{ID: bson.NewObjectID(), Role: models.RoleUser}
	tok, err := tokens.GenerateSession(ghost)
	require.NoError(t, err)

	r := protectedRouter(gate)
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	gate, store, tokens := newTestGate(t)
	u := seedUser(t, store, models.RoleUser)
	tok, err := tokens.GenerateSession(u)
	require.NoError(t, err)

	r := protectedRouter(gate, RequireRoles(models.RoleAdmin))
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesAllowed(t *testing.T) {
	gate, store, tokens := newTestGate(t)
	u := seedUser(t, store, models.RoleAdmin)
	tok, err := tokens.GenerateSession(u)
	require.NoError(t, err)

	r := protectedRouter(gate, RequireRoles(models.RoleSeller, models.RoleAdmin))
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
