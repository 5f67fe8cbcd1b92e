package handler

import (
	"net/http"

	"uslugo/internal/services"
	"uslugo/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

func writeServiceError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Do not leak storage internals over the wire.
		msg = "internal error"
	}
	c.JSON(status, httpdto.NewStatusErrorResponse(status, msg))
}
