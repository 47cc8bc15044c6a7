package translation

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legalai/core/internal/pkg/apperr"
	"github.com/legalai/core/internal/pkg/response"
)

type Handler struct {
	svc         *Service
	uploadLimit int64
}

func NewHandler(svc *Service, uploadLimit int64) *Handler {
	return &Handler{svc: svc, uploadLimit: uploadLimit}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/translate", h.translate)
}

// POST /translate  multipart: pdf | text, targetLanguage?
func (h *Handler) translate(c *gin.Context) {
	if h.uploadLimit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadLimit)
	}
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperr.Validation("File too large"))
			return
		}
		response.Error(c, apperr.Validation("Invalid form data"))
		return
	}

	req := Request{
		Text:           c.PostForm("text"),
		TargetLanguage: c.PostForm("targetLanguage"),
	}
	if fh, err := c.FormFile("pdf"); err == nil {
		f, err := fh.Open()
		if err != nil {
			response.Error(c, apperr.Validation("No PDF file or text provided."))
			return
		}
		req.PDF, err = io.ReadAll(f)
		f.Close()
		if err != nil {
			response.Error(c, apperr.Validation("No PDF file or text provided."))
			return
		}
	}

	result, err := h.svc.Translate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
