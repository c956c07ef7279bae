package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const welcomeText = "Welcome to the Message API!"

func Home(c *gin.Context) {
	c.String(http.StatusOK, welcomeText)
}
