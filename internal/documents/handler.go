package documents

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docsearch-backend/internal/shared/server/respond"
	"docsearch-backend/internal/shared/util"
)

const maxUploadSize = 25 << 20 // 25MB; the whole file is read into memory

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/upload/", h.upload)
	r.GET("/search/", h.search)
	r.GET("/files/", h.list)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	resp, err := h.Svc.Upload(c.Request.Context(), fileName, contentType, data)
	if err != nil {
		h.respondError(c, err, "failed to upload document")
		return
	}

	respond.OK(c, resp)
}

func (h *Handler) search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", nil)
		return
	}

	resp, err := h.Svc.Search(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err, "failed to search documents")
		return
	}

	respond.OK(c, resp)
}

func (h *Handler) list(c *gin.Context) {
	entries, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "failed to list documents")
		return
	}

	respond.OK(c, entries)
}

func (h *Handler) respondError(c *gin.Context, err error, message string) {
	var svcErr *ExternalServiceError
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.As(err, &svcErr):
		status := http.StatusBadGateway
		if svcErr.Service == ServiceDatabase {
			status = http.StatusInternalServerError
		}
		respond.Error(c, status, svcErr.Service+"_error", message, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
