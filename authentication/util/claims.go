package util

import (
	"github.com/golang-jwt/jwt/v5"
)

// PurposeEmailVerification marks tokens that may only confirm an email.
const PurposeEmailVerification = "email_verification"

type VerificationClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}
