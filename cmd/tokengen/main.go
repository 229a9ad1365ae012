// Package main mints bearer tokens for local development. The signing key is
// read from JWT_SIGNING_KEY so tokens verify against a locally running server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "confessional/internal/jwt_token"
	id "confessional/pkg/domain"
)

type tokenOutput struct {
	Token       string    `json:"token"`
	PrincipalID string    `json:"principal_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	Usage       string    `json:"usage"`
}

func main() {
	principal := flag.String("principal-id", "", "Principal ID (UUID). Generated if empty.")
	issuer := flag.String("issuer", envOr("JWT_ISSUER", "confessional"), "Token issuer")
	audience := flag.String("audience", envOr("JWT_AUDIENCE", "confessional-api"), "Token audience")
	ttl := flag.Duration("ttl", 15*time.Minute, "Token time-to-live")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	principalID := id.NewPrincipalID()
	if *principal != "" {
		parsed, err := id.ParsePrincipalID(*principal)
		if err != nil {
			fail(err)
		}
		principalID = parsed
	}

	// The token only names a principal; what it may do is decided by the
	// principal's stored status and role.
	svc, err := jwttoken.NewJWTService(os.Getenv("JWT_SIGNING_KEY"), *issuer, *audience, *ttl)
	if err != nil {
		fail(err)
	}
	token, expiresAt, err := svc.GenerateAccessToken(context.Background(), principalID)
	if err != nil {
		fail(err)
	}

	out := tokenOutput{
		Token:       token,
		PrincipalID: principalID.String(),
		ExpiresAt:   expiresAt,
		Usage:       "Authorization: Bearer " + token,
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fail(err)
		}
		return
	}
	fmt.Printf("Principal: %s\nExpires:   %s\n\n%s\n", out.PrincipalID, out.ExpiresAt.Format(time.RFC3339), out.Usage)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
	os.Exit(1)
}
