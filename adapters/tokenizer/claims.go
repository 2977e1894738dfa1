package tokenizer

import "github.com/golang-jwt/jwt/v5"

// HasuraClaimsNamespace is the claims key the downstream GraphQL
// authorization layer reads role information from.
const HasuraClaimsNamespace = "https://hasura.io/jwt/claims"

// RoleClaims is the role block consumed by the GraphQL layer. Every session
// carries exactly the "user" role; there is no role elevation.
type RoleClaims struct {
	AllowedRoles []string `json:"x-hasura-allowed-roles"`
	DefaultRole  string   `json:"x-hasura-default-role"`
	UserID       string   `json:"x-hasura-user-id"`
	AccountID    string   `json:"x-hasura-account-id"`
}

// SessionClaims combines standard claims with the GraphQL role block
type SessionClaims struct {
	jwt.RegisteredClaims
	Roles RoleClaims `json:"https://hasura.io/jwt/claims"`
}
