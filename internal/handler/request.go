package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/support-ticket/request-service/internal/errs"
	"github.com/support-ticket/request-service/internal/event"
	"github.com/support-ticket/request-service/internal/model"
	"github.com/support-ticket/request-service/internal/service"
	"github.com/support-ticket/request-service/internal/validation"
	"go.uber.org/zap"
)

type RequestHandler struct {
	svc    service.RequestServicer
	events *event.Fanout
	log    *zap.Logger
	strict bool
}

func NewRequestHandler(svc service.RequestServicer, events *event.Fanout, log *zap.Logger, strict bool) *RequestHandler {
	return &RequestHandler{svc: svc, events: events, log: log, strict: strict}
}

// internalError logs the cause and returns the sanitized message. Raw
// storage errors never reach the client.
func (h *RequestHandler) internalError(c *gin.Context, op string, err error) {
	h.log.Error("handler: "+op, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// Create handles POST /requests.
func (h *RequestHandler) Create(c *gin.Context) {
	var payload validation.CreatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validation.Struct(payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := h.svc.Create(c.Request.Context(), payload.Topic, payload.Text)
	if err != nil {
		h.internalError(c, "create request", err)
		return
	}
	h.events.EmitAsync(event.RequestCreated, req)
	c.JSON(http.StatusCreated, req)
}

// transition looks up the request, optionally enforces the lifecycle table,
// and applies the status change plus any extra columns. It writes the error
// response itself and returns nil when the caller should stop.
func (h *RequestHandler) transition(c *gin.Context, id uint64, target model.RequestStatus, changes map[string]interface{}) *model.Request {
	ctx := c.Request.Context()
	current, err := h.svc.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("request with id %d not found", id)})
			return nil
		}
		h.internalError(c, "get request", err)
		return nil
	}
	if h.strict && !current.Status.CanTransition(target) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("cannot transition request from %q to %q", current.Status, target),
		})
		return nil
	}
	changes["status"] = target
	req, err := h.svc.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, errs.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("request with id %d not found", id)})
			return nil
		}
		h.internalError(c, "update request", err)
		return nil
	}
	return req
}

// Take handles POST /requests/:id/take and moves the request to in_progress.
func (h *RequestHandler) Take(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req := h.transition(c, id, model.RequestStatusInProgress, map[string]interface{}{})
	if req == nil {
		return
	}
	h.events.EmitAsync(event.RequestTaken, req)
	c.JSON(http.StatusOK, req)
}

// Complete handles POST /requests/:id/complete, setting status done and the
// solution text.
func (h *RequestHandler) Complete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload validation.CompletePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validation.Struct(payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := h.transition(c, id, model.RequestStatusDone, map[string]interface{}{
		"solution": payload.Solution,
	})
	if req == nil {
		return
	}
	h.events.EmitAsync(event.RequestCompleted, req)
	c.JSON(http.StatusOK, req)
}

// Cancel handles POST /requests/:id/cancel, setting status cancelled and the
// cancellation reason.
func (h *RequestHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var payload validation.CancelPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validation.Struct(payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := h.transition(c, id, model.RequestStatusCancelled, map[string]interface{}{
		"cancellation_reason": payload.Reason,
	})
	if req == nil {
		return
	}
	h.events.EmitAsync(event.RequestCancelled, req)
	c.JSON(http.StatusOK, req)
}

// List handles GET /requests with optional date or from/to query filters.
func (h *RequestHandler) List(c *gin.Context) {
	filter, err := validation.ParseDateFilter(c.Query("date"), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := h.svc.ListByDate(c.Request.Context(), filter.Date, filter.From, filter.To)
	if err != nil {
		h.internalError(c, "list requests", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// CancelAll handles POST /requests/cancel: every in_progress request becomes
// cancelled in one transaction.
func (h *RequestHandler) CancelAll(c *gin.Context) {
	count, rows, err := h.svc.BulkUpdateStatus(c.Request.Context(),
		model.RequestStatusInProgress, model.RequestStatusCancelled)
	if err != nil {
		h.internalError(c, "cancel all requests", err)
		return
	}
	for i := range rows {
		h.events.EmitAsync(event.RequestCancelled, &rows[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"cancelledCount":    count,
		"cancelledRequests": rows,
	})
}
