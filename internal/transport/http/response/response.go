package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	MsgInvalidInput    = "Invalid input"
	MsgMessageNotFound = "Message not found"
	MsgInternalServer  = "Internal server error"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes an indented body, matching the pretty output clients already rely on.
func JSON(c *gin.Context, httpStatus int, data interface{}) {
	c.IndentedJSON(httpStatus, data)
}

func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.Abort()
	JSON(c, httpStatus, ErrorResponse{Error: message})
}

func BadRequest(c *gin.Context) {
	Error(c, http.StatusBadRequest, MsgInvalidInput)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, MsgMessageNotFound)
}

func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, MsgInternalServer)
}
