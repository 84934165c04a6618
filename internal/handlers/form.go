package handlers

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/services"
)

type FormRequest struct {
	Title   string `json:"title" binding:"required"`
	Contact string `json:"contact" binding:"required"`
	Message string `json:"message" binding:"required"`
	Stars   int    `json:"stars" binding:"required,min=1,max=5"`
}

// SubmitForm forwards a feedback form to the Discord webhook. The endpoint is
// public; feedback may come from users without an account.
func SubmitForm(ctx *gin.Context) {
	var body FormRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")

	if webhookURL == "" {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Feedback is not configured"})
		return
	}

	if err := services.SendFormSubmission(webhookURL, body.Title, body.Contact, body.Message, body.Stars); err != nil {
		log.Printf("Failed to forward form submission: %v", err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to submit form"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Form submitted successfully"})
}
