package handlers

import (
	"net/http"
	"strings"
	"time"

	"gradekeeper/internal/config"
	"gradekeeper/internal/database"
	"gradekeeper/internal/middleware"
	"gradekeeper/internal/models"
	"gradekeeper/internal/roles"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// LoginRequest структура для входа
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse структура ответа
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login авторизует пользователя
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User:  &user,
	})
}

// Me возвращает текущего пользователя с разрешенной ролью
func (h *AuthHandler) Me(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"viewer": viewer})
}

// Check валидирует предъявленный токен и возвращает владельца.
// Принимает токен в заголовке Authorization, с префиксом Bearer или без.
func (h *AuthHandler) Check(c *gin.Context) {
	raw := c.GetHeader("Authorization")
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Токен отсутствует"})
		return
	}
	raw = strings.TrimPrefix(raw, "Bearer ")

	claims, err := middleware.ParseToken(h.cfg, raw)
	if err != nil {
		if err == jwt.ErrTokenExpired {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Токен истек"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный токен"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный токен"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     claims.Role,
	})
}

// generateToken создает JWT токен
func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	viewer, err := roles.Resolve(database.DB, user)
	if err != nil {
		return "", err
	}

	claims := middleware.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     viewer.Kind,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.cfg.JWT.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWT.Secret))
}
