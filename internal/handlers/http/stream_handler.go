package http

import (
	"net/http"
	"strconv"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
	"paystream/internal/infrastructure/middleware"
	apperrors "paystream/pkg/errors"
	"paystream/pkg/validation"

	"github.com/gin-gonic/gin"
)

type StreamHandler struct {
	streamService ports.StreamService
}

func NewStreamHandler(streamService ports.StreamService) *StreamHandler {
	return &StreamHandler{streamService: streamService}
}

func (h *StreamHandler) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	api := router.Group("/api/v1")
	{
		api.GET("/streams/:id", h.GetStream)
		api.GET("/streams/:id/unlocked", h.GetUnlocked)

		protected := api.Group("")
		protected.Use(auth)
		{
			protected.POST("/streams", h.CreateStream)
			protected.POST("/streams/:id/withdraw", h.Withdraw)
			protected.POST("/streams/:id/cancel", h.Cancel)
			protected.GET("/streams", h.ListStreams)
		}
	}
}

func (h *StreamHandler) CreateStream(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return
	}

	var req struct {
		Receiver      string `json:"receiver" binding:"required"`
		Token         string `json:"token" binding:"required"`
		TotalAmount   uint64 `json:"total_amount" binding:"required"`
		StartTime     uint64 `json:"start_time" binding:"required"`
		EndTime       uint64 `json:"end_time" binding:"required"`
		CancellableBy string `json:"cancellable_by"`
	}

	if err := c.BindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInput(err.Error()))
		return
	}

	if err := validation.ValidateAddress(req.Receiver); err != nil {
		c.Error(apperrors.NewInvalidInput("receiver: " + err.Error()))
		return
	}
	if err := validation.ValidateTokenID(req.Token); err != nil {
		c.Error(apperrors.NewInvalidInput("token: " + err.Error()))
		return
	}

	cancellableBy := domain.CancellableBy(req.CancellableBy)
	if req.CancellableBy == "" {
		cancellableBy = domain.CancelBySender
	}
	if !cancellableBy.Valid() {
		c.Error(apperrors.NewInvalidInput("cancellable_by must be sender, receiver or either"))
		return
	}

	stream, err := h.streamService.CreateStream(c.Request.Context(), ports.CreateStreamParams{
		Sender:        caller,
		Receiver:      domain.Address(req.Receiver),
		Token:         domain.TokenID(req.Token),
		TotalAmount:   req.TotalAmount,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		CancellableBy: cancellableBy,
	})
	if err != nil {
		c.Error(mapDomainError(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"stream": stream,
	})
}

func (h *StreamHandler) GetStream(c *gin.Context) {
	id, ok := streamIDParam(c)
	if !ok {
		return
	}

	stream, err := h.streamService.GetStream(c.Request.Context(), id)
	if err != nil {
		c.Error(mapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stream": stream,
	})
}

func (h *StreamHandler) GetUnlocked(c *gin.Context) {
	id, ok := streamIDParam(c)
	if !ok {
		return
	}

	unlocked, err := h.streamService.UnlockedAmount(c.Request.Context(), id)
	if err != nil {
		c.Error(mapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stream_id": id,
		"unlocked":  unlocked,
	})
}

func (h *StreamHandler) Withdraw(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return
	}

	id, ok := streamIDParam(c)
	if !ok {
		return
	}

	// Amount is optional: zero or absent means withdraw everything available.
	var req struct {
		Amount uint64 `json:"amount"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			c.Error(apperrors.NewInvalidInput(err.Error()))
			return
		}
	}

	result, err := h.streamService.Withdraw(c.Request.Context(), id, caller, req.Amount)
	if err != nil {
		c.Error(mapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"withdrawn": result.Amount,
		"remaining": result.Remaining,
		"status":    result.Status,
	})
}

func (h *StreamHandler) Cancel(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return
	}

	id, ok := streamIDParam(c)
	if !ok {
		return
	}

	result, err := h.streamService.Cancel(c.Request.Context(), id, caller)
	if err != nil {
		c.Error(mapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"receiver_due":  result.ReceiverDue,
		"sender_refund": result.SenderRefund,
		"status":        domain.StreamCancelled,
	})
}

func (h *StreamHandler) ListStreams(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		c.Error(apperrors.NewUnauthorized("authentication required"))
		return
	}

	profile, err := h.streamService.ListByAddress(c.Request.Context(), caller)
	if err != nil {
		c.Error(mapDomainError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
	})
}

func streamIDParam(c *gin.Context) (domain.StreamID, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.Error(apperrors.NewInvalidInput("stream id must be a positive integer"))
		return 0, false
	}
	return domain.StreamID(id), true
}
