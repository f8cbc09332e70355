package photo

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abilov/sanctuarypics/internal/metrics"
)

// RegisterRoutes mounts the photo endpoints on the router.
func RegisterRoutes(router *gin.Engine, service *Service) {
	handler := &httpHandler{service: service}
	router.POST("/upload", handler.upload)
	router.GET("/photos", handler.list)
	router.GET("/photos/:filename", handler.download)
	router.GET("/search", handler.search)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fileHeader = nil
	}
	animalName := c.PostForm("animal_name")
	sanctuaryName := c.PostForm("sanctuary_name")

	stored, err := h.service.Upload(c.Request.Context(), fileHeader, animalName, sanctuaryName)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	metrics.RecordUpload()
	c.JSON(http.StatusCreated, gin.H{
		"message":        "File uploaded successfully",
		"filename":       stored.Filename,
		"animal_name":    stored.AnimalName,
		"sanctuary_name": stored.SanctuaryName,
	})
}

func (h *httpHandler) download(c *gin.Context) {
	reader, err := h.service.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer reader.Close()

	// Always image/jpeg, whatever the stored format.
	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func (h *httpHandler) list(c *gin.Context) {
	views, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *httpHandler) search(c *gin.Context) {
	views, err := h.service.Search(c.Request.Context(), c.Query("animal"), c.Query("sanctuary"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, views)
}
