package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inocenciorjr/medbrave-backend/internal/apierr"
)

// Envelope is the response shape every endpoint uses.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// RespondError maps the error taxonomy to a status and a safe message;
// raw store errors never reach the client.
func RespondError(c *gin.Context, err error) {
	message := "internal server error"
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.Msg != "" {
		message = ae.Msg
	}
	c.JSON(apierr.StatusFor(err), Envelope{Success: false, Message: message})
}
