package auth

import (
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "TaskHive"

// GenerateTOTPSecret creates a fresh TOTP secret for the user along with the
// otpauth:// provisioning URI that authenticator apps consume.
func GenerateTOTPSecret(username string) (secret string, provisioningURI string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: username,
	})

	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

func ValidateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
