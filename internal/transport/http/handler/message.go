package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"message-api/internal/app"
	"message-api/internal/transport/http/response"
)

type MessageHandler struct {
	messageService *app.MessageService
	logger         *zap.Logger
}

type CreateMessageRequest struct {
	Body     *string `json:"body"`
	Username *string `json:"username"`
}

type UpdateMessageRequest struct {
	Body *string `json:"body"`
}

func NewMessageHandler(messageService *app.MessageService, logger *zap.Logger) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{messageService: messageService, logger: logger}
}

func (h *MessageHandler) List(c *gin.Context) {
	messages, err := h.messageService.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list messages failed", err)
		return
	}
	response.OK(c, messages)
}

func (h *MessageHandler) Create(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c)
		return
	}

	message, err := h.messageService.Create(c.Request.Context(), app.CreateMessageInput{
		Body:     req.Body,
		Username: req.Username,
	})
	if err != nil {
		h.fail(c, "create message failed", err)
		return
	}
	response.Created(c, message)
}

func (h *MessageHandler) Update(c *gin.Context) {
	id, ok := parseMessageID(c)
	if !ok {
		response.NotFound(c)
		return
	}

	var req UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c)
		return
	}

	message, err := h.messageService.Update(c.Request.Context(), app.UpdateMessageInput{
		ID:   id,
		Body: req.Body,
	})
	if err != nil {
		h.fail(c, "update message failed", err)
		return
	}
	response.OK(c, message)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := parseMessageID(c)
	if !ok {
		response.NotFound(c)
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete message failed", err)
		return
	}
	response.NoContent(c)
}

func (h *MessageHandler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.BadRequest(c)
	case errors.Is(err, app.ErrMessageNotFound):
		response.NotFound(c)
	default:
		h.logger.Error(msg, zap.Error(err))
		response.InternalError(c)
	}
}

// parseMessageID treats anything but a positive integer as an unknown id.
func parseMessageID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
