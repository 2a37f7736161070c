package routes

import (
	"net/http"

	authhandler "drivea_back_end/internal/handlers/auth"
	bookinghandler "drivea_back_end/internal/handlers/booking"
	carhandler "drivea_back_end/internal/handlers/car"
	paymenthandler "drivea_back_end/internal/handlers/payment"
	transactionhandler "drivea_back_end/internal/handlers/transaction"
	userhandler "drivea_back_end/internal/handlers/user"
	"drivea_back_end/internal/middleware"
	"drivea_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// Deps regroupe les handlers et middlewares injectés depuis main
type Deps struct {
	Auth        *authhandler.Handler
	Car         *carhandler.Handler
	Booking     *bookinghandler.Handler
	Payment     *paymenthandler.Handler
	Transaction *transactionhandler.Handler
	User        *userhandler.Handler
	Gate        *middleware.Auth
	RateLimiter *middleware.RateLimiter
}

// Register branche toutes les routes de l'API sur le routeur
func Register(r *gin.Engine, d Deps) {
	protect := d.Gate.Protect()

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", d.RateLimiter.RegisterRateLimit(), d.Auth.Register)
		auth.GET("/confirm/:token", d.Auth.ConfirmEmail)
		auth.POST("/login", d.RateLimiter.LoginRateLimit(), d.Auth.Login)
		auth.POST("/verify-2fa", d.Auth.Verify2FA)
		auth.POST("/forgotpassword", d.RateLimiter.ForgotPasswordRateLimit(), d.Auth.ForgotPassword)
		auth.PUT("/resetpassword/:token", d.Auth.ResetPassword)
		auth.PUT("/profile", protect, d.Auth.UpdateProfile)
		auth.GET("/me", protect, d.Auth.Me)
		auth.POST("/logout", protect, d.Auth.Logout)
		auth.GET("/pending-sellers", protect, middleware.RequireRoles(models.RoleAdmin), d.Auth.PendingSellers)
		auth.PUT("/approve-seller", protect, middleware.RequireRoles(models.RoleAdmin), d.Auth.ApproveSeller)
		auth.GET("/validate-token", protect, d.Auth.ValidateToken)
	}

	cars := r.Group("/api/cars")
	{
		cars.GET("", d.Car.List)
		cars.GET("/:id", d.Car.GetByID)
		cars.POST("", protect, middleware.RequireRoles(models.RoleSeller, models.RoleAdmin), d.Car.Create)
		cars.PUT("/:id", protect, middleware.RequireRoles(models.RoleSeller, models.RoleAdmin), d.Car.Update)
		cars.DELETE("/:id", protect, middleware.RequireRoles(models.RoleSeller, models.RoleAdmin), d.Car.Delete)

		cars.GET("/:id/reviews", d.Car.ListReviews)
		cars.POST("/:id/reviews", protect, d.Car.CreateReview)
		cars.PUT("/reviews/:reviewId", protect, d.Car.UpdateReview)
		cars.DELETE("/reviews/:reviewId", protect, d.Car.DeleteReview)
	}

	bookings := r.Group("/api/bookings", protect)
	{
		bookings.POST("", d.Booking.Create)
		bookings.GET("/user", d.Booking.ListMine)
		bookings.GET("/:id", d.Booking.GetByID)
		bookings.PUT("/:id/cancel", d.Booking.Cancel)
	}

	paymentsGroup := r.Group("/api/payments", protect)
	{
		paymentsGroup.POST("/create-payment-intent", d.Payment.CreateIntent)
		paymentsGroup.POST("/confirm-payment", d.Payment.Confirm)
		paymentsGroup.POST("/refund-payment", d.Payment.Refund)
	}

	transactions := r.Group("/api/transaction", protect)
	{
		transactions.POST("", d.Transaction.Create)
		transactions.GET("", d.Transaction.List)
		transactions.GET("/:id", d.Transaction.GetByID)
		transactions.PUT("/:id/status", d.Transaction.UpdateStatus)
	}

	users := r.Group("/api/user", protect)
	{
		users.GET("/profile", d.User.GetProfile)
		users.PUT("/profile", d.User.UpdateProfile)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route introuvable"})
	})
}
