package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for pairchat.
// It includes standard claims required by the JWT specification and custom claims
// necessary for identifying the authenticated principal.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the account identifier (UUID) of the authenticated user.
	ID string `json:"id"`

	// Username is a denormalized snapshot of the account's username, used for
	// logging and notification sender names without an extra directory lookup.
	Username string `json:"username"`
}
