package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type TwoFARequest struct {
	TOTPCode string `json:"totp_code" binding:"required"`
}

type TwoFASetupResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

// TwoFASetup generates a secret and provisioning URI. The secret stays
// pending until the user confirms a valid code via TwoFAEnable.
func TwoFASetup(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if user.TwoFASecret != "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "2FA is already enabled"})
		return
	}

	secret, provisioningURI, err := auth.GenerateTOTPSecret(user.Username)

	if err != nil {
		log.Printf("Failed to generate TOTP secret: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Model(&user).Update("pending_two_fa_secret", secret).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, TwoFASetupResponse{Secret: secret, ProvisioningURI: provisioningURI})
}

func TwoFAEnable(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req TwoFARequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if user.TwoFASecret != "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "2FA is already enabled"})
		return
	}

	if user.PendingTwoFASecret == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "2FA setup not initiated"})
		return
	}

	if !auth.ValidateTOTP(req.TOTPCode, user.PendingTwoFASecret) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
		return
	}

	updates := map[string]interface{}{
		"two_fa_secret":         user.PendingTwoFASecret,
		"pending_two_fa_secret": "",
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "2FA enabled successfully"})
}

func TwoFADisable(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req TwoFARequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if user.TwoFASecret == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "2FA is not enabled"})
		return
	}

	if !auth.ValidateTOTP(req.TOTPCode, user.TwoFASecret) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
		return
	}

	updates := map[string]interface{}{
		"two_fa_secret":         "",
		"pending_two_fa_secret": "",
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "2FA disabled successfully"})
}
