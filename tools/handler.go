package tools

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"multitool-backend/files"
	"multitool-backend/imagegen"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20 // 10MB

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Handler serves the metered tool endpoints and the tool catalog.
type Handler struct {
	placeholder imagegen.Generator
	real        imagegen.Generator // nil when no real backend is configured
	detector    ExpressionDetector
	uploadDir   string
}

func NewHandler(real imagegen.Generator, detector ExpressionDetector, uploadDir string) *Handler {
	if detector == nil {
		detector = MockDetector{}
	}
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &Handler{
		placeholder: imagegen.PlaceholderGenerator{},
		real:        real,
		detector:    detector,
		uploadDir:   uploadDir,
	}
}

// RegisterRoutes mounts the tool surface. auth resolves identity; gate is the
// entitlement middleware charging every metered call before the handler runs.
func (h *Handler) RegisterRoutes(r *gin.Engine, auth, gate gin.HandlerFunc) {
	r.GET("/api/tools", h.listTools)
	r.GET("/api/tools/:id", h.getTool)
	r.GET("/api/imagegen/options", h.imageOptions)
	r.POST("/api/imagegen/generate", auth, gate, h.generateImage)
	r.POST("/api/smilecam/capture", auth, gate, h.capture)
	r.GET("/api/smilecam/image/:filename", h.getCapture)
	r.POST("/api/convert/pdf-info", auth, gate, h.pdfInfo)
}

func (h *Handler) listTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": catalog})
}

func (h *Handler) getTool(c *gin.Context) {
	t := findTool(c.Param("id"))
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tool not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) imageOptions(c *gin.Context) {
	options := []gin.H{
		{"id": "placeholder", "name": "Placeholder Generator", "description": "Generate placeholder images for testing", "requiresSetup": false},
	}
	if h.real != nil {
		options = append(options, gin.H{"id": "openai", "name": "OpenAI Images", "description": "Real AI image generation", "requiresSetup": false})
	}
	c.JSON(http.StatusOK, gin.H{"options": options})
}

type generatePayload struct {
	Prompt string `json:"prompt"`
	Option string `json:"option"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (h *Handler) generateImage(c *gin.Context) {
	var p generatePayload
	if err := c.ShouldBindJSON(&p); err != nil || strings.TrimSpace(p.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}
	gen := h.placeholder
	if p.Option == "openai" && h.real != nil {
		gen = h.real
	}
	img, err := gen.Generate(c.Request.Context(), p.Prompt, p.Width, p.Height)
	if err != nil {
		// Real backend failed; the placeholder always works.
		log.Printf("[tools][imagegen_fallback] option=%s err=%v", p.Option, err)
		img, err = h.placeholder.Generate(c.Request.Context(), p.Prompt, p.Width, p.Height)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Image generation failed"})
			return
		}
	}
	ext := ".svg"
	if img.MIME == "image/png" {
		ext = ".png"
	}
	dir := filepath.Join(h.uploadDir, "imagegen")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image generation failed"})
		return
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), img.Data, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imageUrl": "/uploads/imagegen/" + name,
		"source":   img.Source,
		"dataUrl":  fmt.Sprintf("data:%s;base64,%s", img.MIME, base64.StdEncoding.EncodeToString(img.Data)),
	})
}

func (h *Handler) capture(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds the 10MB limit"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only JPEG, PNG, and WebP images are allowed."})
		return
	}
	dir := filepath.Join(h.uploadDir, "smilecam")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image processing failed"})
		return
	}
	name := uuid.NewString() + ext
	dest := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image processing failed"})
		return
	}
	expr, err := h.detector.Detect(dest)
	if err != nil {
		log.Printf("[tools][detect_error] file=%s err=%v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Image captured and processed successfully",
		"imageUrl":    "/uploads/smilecam/" + name,
		"expressions": expr,
	})
}

func (h *Handler) getCapture(c *gin.Context) {
	name := filepath.Base(c.Param("filename"))
	path := filepath.Join(h.uploadDir, "smilecam", name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	c.File(path)
}

func (h *Handler) pdfInfo(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are supported"})
		return
	}
	tmp, err := os.CreateTemp("", "pdfinfo-*.pdf")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Conversion failed"})
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())
	if err := c.SaveUploadedFile(file, tmp.Name()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Conversion failed"})
		return
	}
	info, err := files.InspectPDF(tmp.Name(), 2000)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read PDF"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pages": info.Pages, "preview": info.Preview})
}
