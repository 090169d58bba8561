package controllers

import (
	"errors"
	"log"
	"net/http"

	"backend/models"

	"github.com/gin-gonic/gin"
)

// respondPipelineError maps a pipeline failure onto the wire contract. Raw
// upstream snippets stay in the server log and never reach clients.
func respondPipelineError(c *gin.Context, err error) {
	var perr *models.PipelineError
	if !errors.As(err, &perr) {
		log.Printf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}

	if perr.Snippet != "" {
		log.Printf("%s returned malformed payload: %q", perr.Service, perr.Snippet)
	} else {
		log.Printf("pipeline error: %v", perr)
	}

	body := gin.H{"error": perr.Message}
	if perr.Kind == models.ErrModerationRejected {
		body["moderationReason"] = perr.Reason
	}
	c.JSON(perr.HTTPStatus(), body)
}
