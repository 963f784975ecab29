package routes

import (
	"errors"
	"net/http"
	"time"

	"blogcast-backend/internal/config"
	"blogcast-backend/internal/store"
	"blogcast-backend/models"
	"blogcast-backend/utils"

	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, st *store.Store) {
	auth := router.Group("/auth")

	// Register endpoint
	auth.POST("/register", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error_code": "invalid_input",
				"message":    "Invalid request data",
				"details":    gin.H{"error": err.Error()},
			})
			return
		}

		// Hash password
		hashedPassword, err := utils.HashPassword(req.Password, cfg.BcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error_code": "internal_error",
				"message":    "Failed to process password",
			})
			return
		}

		// Create user
		user, err := st.CreateUser(c.Request.Context(), req.Username, req.Email, hashedPassword)
		if err != nil {
			if errors.Is(err, store.ErrUsernameTaken) {
				c.JSON(http.StatusConflict, gin.H{
					"error_code": "username_exists",
					"message":    "Username already exists",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error_code": "internal_error",
				"message":    "Failed to create user",
			})
			return
		}

		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Username, cfg.SecretKey, cfg.JWTExpiresIn)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error_code": "internal_error",
				"message":    "Failed to generate token",
			})
			return
		}

		c.JSON(http.StatusCreated, models.LoginResponse{
			Token:     token,
			ExpiresAt: time.Now().Add(cfg.JWTExpiresIn),
			User: models.UserInfo{
				ID:       user.ID,
				Username: user.Username,
				Email:    user.Email,
			},
		})
	})

	// Login endpoint
	auth.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error_code": "invalid_input",
				"message":    "Invalid request data",
				"details":    gin.H{"error": err.Error()},
			})
			return
		}

		// Find user by username
		user, err := st.GetUserByUsername(c.Request.Context(), req.Username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "invalid_credentials",
				"message":    "Invalid username or password",
			})
			return
		}

		// Verify password
		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "invalid_credentials",
				"message":    "Invalid username or password",
			})
			return
		}

		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Username, cfg.SecretKey, cfg.JWTExpiresIn)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error_code": "internal_error",
				"message":    "Failed to generate token",
			})
			return
		}

		c.JSON(http.StatusOK, models.LoginResponse{
			Token:     token,
			ExpiresAt: time.Now().Add(cfg.JWTExpiresIn),
			User: models.UserInfo{
				ID:       user.ID,
				Username: user.Username,
				Email:    user.Email,
			},
		})
	})

	// Refresh endpoint - exchanges a still-valid token for a fresh one
	auth.POST("/refresh", func(c *gin.Context) {
		tokenString := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "unauthorized",
				"message":    "Authentication token is required",
			})
			return
		}

		token, err := utils.RefreshJWT(tokenString, cfg.SecretKey, cfg.JWTExpiresIn)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "invalid_token",
				"message":    "Authentication token is invalid or expired",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_at": time.Now().Add(cfg.JWTExpiresIn),
		})
	})
}
