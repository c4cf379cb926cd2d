// Command tokengen mints HS256 access tokens for exercising the listing API locally.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultTokenTTL = time.Hour

type tokenOutput struct {
	Token     string            `json:"token"`
	ExpiresAt string            `json:"expires_at"`
	UserID    string            `json:"user_id"`
	Email     string            `json:"email,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HMAC secret, defaults to $JWT_SECRET")
	userID := flag.String("user-id", "", "User ID (UUID). Generated if empty.")
	email := flag.String("email", "", "Seller e-mail for listing notices (optional)")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live; negative values mint an expired token")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "A signing secret is required: pass -secret or set JWT_SECRET")
		os.Exit(1)
	}

	uid := *userID
	if uid == "" {
		uid = uuid.NewString()
	} else if _, err := uuid.Parse(uid); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user-id UUID: %s\n", uid)
		os.Exit(1)
	}

	now := time.Now()
	expiresAt := now.Add(*ttl)
	token, err := auth.Sign(*secret, &auth.Claims{
		UserID: uid,
		Email:  *email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
			UserID:    uid,
			Email:     *email,
			Usage: map[string]string{
				"header":     "x-access-token: <token>",
				"alt_header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("User ID:    %s\n", uid)
	if *email != "" {
		fmt.Printf("Email:      %s\n", *email)
	}
	fmt.Printf("Expires At: %s\n", expiresAt.UTC().Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"x-access-token: <token>\" -X POST http://localhost:8080/api/v1/car ...")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
