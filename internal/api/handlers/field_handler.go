// fieldbook/internal/api/handlers/field_handler.go
package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"fieldbook/internal/database"
	"fieldbook/internal/export"
	"fieldbook/internal/models"
	"fieldbook/internal/service"
	"fieldbook/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ExportUploader stores CSV exports somewhere reachable by URL.
type ExportUploader interface {
	ExportKey(t time.Time, ext string) string
	UploadFile(ctx context.Context, body io.Reader, objectKey, contentType string) (string, error)
}

type FieldHandler struct {
	Service  *service.FieldService
	Uploader ExportUploader
}

// fieldRequest accepts numbers either as JSON numbers or as strings.
type fieldRequest struct {
	Name         formValue `json:"name"`
	Location     formValue `json:"location"`
	Capacity     formValue `json:"capacity"`
	PricePerHour formValue `json:"pricePerHour"`
	Status       formValue `json:"status"`
	Description  formValue `json:"description"`
}

func (r fieldRequest) form() models.FieldForm {
	return models.FieldForm{
		Name:         string(r.Name),
		Location:     string(r.Location),
		Capacity:     string(r.Capacity),
		PricePerHour: string(r.PricePerHour),
		Status:       string(r.Status),
		Description:  string(r.Description),
	}
}

type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*v = formValue(s)
		return nil
	}
	if string(b) == "null" {
		*v = ""
		return nil
	}
	*v = formValue(b)
	return nil
}

func (h *FieldHandler) listQuery(c *gin.Context) (service.ListQuery, error) {
	q := service.ListQuery{
		Query:  c.Query("q"),
		Status: c.Query("status"),
		Sort:   c.Query("sort"),
	}
	if raw := c.Query("desc"); raw != "" {
		desc, err := strconv.ParseBool(raw)
		if err != nil {
			return q, validation.Errors{"desc must be true or false"}
		}
		q.Desc = desc
	}
	return q, nil
}

// ListFields returns all fields, optionally searched, filtered and sorted.
func (h *FieldHandler) ListFields(c *gin.Context) {
	q, err := h.listQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	fields, err := h.Service.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields, "count": len(fields)})
}

func (h *FieldHandler) GetField(c *gin.Context) {
	f, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FieldHandler) CreateField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := h.Service.Create(c.Request.Context(), req.form())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *FieldHandler) UpdateField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := h.Service.Update(c.Request.Context(), c.Param("id"), req.form())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FieldHandler) DeleteField(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Field deleted successfully"})
}

// ExportFields streams the selected fields as a CSV attachment.
func (h *FieldHandler) ExportFields(c *gin.Context) {
	q, err := h.listQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.Service.Export(c.Request.Context(), &buf, q); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.DefaultFilename+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// UploadExport writes the CSV export to object storage and returns its URL.
func (h *FieldHandler) UploadExport(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export upload is not configured"})
		return
	}

	q, err := h.listQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	n, err := h.Service.Export(c.Request.Context(), &buf, q)
	if err != nil {
		respondError(c, err)
		return
	}

	key := h.Uploader.ExportKey(time.Now(), "csv")
	url, err := h.Uploader.UploadFile(c.Request.Context(), &buf, key, export.ContentType)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("export upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload export"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "key": key, "count": n})
}

// Report returns the summary as JSON, or as plain text with ?format=text.
func (h *FieldHandler) Report(c *gin.Context) {
	s, err := h.Service.Report(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, s.String())
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": s, "report": s.String()})
}

func (h *FieldHandler) Statuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"statuses": models.Statuses()})
}

func (h *FieldHandler) Health(c *gin.Context) {
	if err := h.Service.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func respondError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": []string(verrs)})
	case errors.Is(err, export.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": "No data to export"})
	case database.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case database.IsConnection(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
