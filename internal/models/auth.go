package models

import (
	"github.com/golang-jwt/jwt/v5"
)

type TokenClaims struct {
	Type     string `json:"type"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
