package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gradekeeper/internal/config"
	"gradekeeper/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProfileHandler struct {
	cfg *config.Config
}

func NewProfileHandler(cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{cfg: cfg}
}

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// UploadImage загружает изображение профиля текущего пользователя.
// Старый файл удаляется, имя нового генерируется случайно.
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Файл изображения не передан"})
		return
	}

	if file.Size > h.cfg.Upload.MaxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Размер файла превышает 5MB"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Допустимы только JPEG, PNG и GIF"})
		return
	}

	if err := os.MkdirAll(h.cfg.Upload.Dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
		return
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	dst := filepath.Join(h.cfg.Upload.Dir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
		return
	}

	// Удаляем предыдущее изображение, если оно было загружено пользователем
	if user.ImageURL != "" {
		old := filepath.Join(h.cfg.Upload.Dir, filepath.Base(user.ImageURL))
		os.Remove(old)
	}

	imageURL := "/uploads/profile_images/" + filename
	if err := database.DB.Model(user).Update("image_url", imageURL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}

// DeleteImage убирает изображение профиля текущего пользователя
func (h *ProfileHandler) DeleteImage(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if user.ImageURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Изображение профиля не установлено"})
		return
	}

	old := filepath.Join(h.cfg.Upload.Dir, filepath.Base(user.ImageURL))
	os.Remove(old)

	if err := database.DB.Model(user).Update("image_url", "").Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
