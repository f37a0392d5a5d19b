package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"aeroponic_tower/internal/metrics"
	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusSuccess = "success"
	msgStored     = "reading stored"

	errMissingFields   = "missing fields"
	errServer          = "server error"
	errNotFound        = "not found"
	errInvalidBodyPref = "invalid body: "

	maxBodyBytes = 64 << 10 // 64 KB
)

// Centralized error logging and response. Server errors carry the cause in
// "details".
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	resp := gin.H{"error": userMsg}
	if httpCode >= http.StatusInternalServerError && err != nil {
		resp["details"] = err.Error()
	}
	c.JSON(httpCode, resp)
}

// UpdateRequest is an exported model for Swagger docs of the update payload.
// Each value may be a number or a numeric string.
type UpdateRequest struct {
	Temp any `json:"temp" example:"22.5"`
	Humi any `json:"humi" example:"60"`
	Lumi any `json:"lumi" example:"500"`
}

// UpdateResponse documents a successful update.
type UpdateResponse struct {
	Status  string         `json:"status" example:"success"`
	Message string         `json:"message" example:"reading stored"`
	Data    models.Reading `json:"data"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Ingest a sensor reading
// @Description  temp, humi and lumi must all be present; values that are not numbers are stored as 0.
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        body  body      UpdateRequest  true  "Reading payload"
// @Success      200   {object}  UpdateResponse
// @Failure      400   {object}  map[string]interface{}  "error, received"
// @Failure      500   {object}  map[string]string       "error, details"
// @Router       /update [post]
func (h *Handler) update(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		metrics.ReadingsRejected.WithLabelValues(metrics.ReasonInvalidBody).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error(), "received": nil})
		return
	}
	payload, err := service.DecodePayload(body)
	if err != nil {
		h.log.Warnw("update_invalid_body", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error(), "received": nil})
		return
	}

	ctx := service.WithSource(c.Request.Context(), metrics.SourceHTTP)
	reading, err := h.services.Ingest(ctx, payload)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		h.log.Warnw("update_missing_fields", "err", err, "received", payload)
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingFields, "received": payload})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errServer, "update_failed", err)
		return
	}

	h.log.Infow("reading_stored",
		"temperature", reading.Temperature,
		"humidity", reading.Humidity,
		"light", reading.Light,
		"captured_at", reading.CapturedAt,
	)
	c.JSON(http.StatusOK, UpdateResponse{Status: statusSuccess, Message: msgStored, Data: reading})
}

// @Summary      Current reading
// @Tags         readings
// @Produce      json
// @Success      200  {object}  models.Reading
// @Router       /data [get]
func (h *Handler) current(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Current(c.Request.Context()))
}

// @Summary      Reading history
// @Description  Newest first. limit keeps the first N entries; absent, zero, negative or unreadable means all.
// @Tags         readings
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of entries"  example(3)
// @Success      200    {array}   models.HistoryEntry
// @Router       /historique [get]
func (h *Handler) history(c *gin.Context) {
	limit := service.ParseLimit(c.Query("limit"))
	entries := h.services.History(c.Request.Context(), limit)
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary      Process status
// @Tags         system
// @Produce      json
// @Success      200  {object}  models.Status
// @Router       /status [get]
func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Status(c.Request.Context()))
}

// panicError turns a recovered value into an error for logging and details.
func panicError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}
	return fmt.Errorf("%v", recovered)
}
