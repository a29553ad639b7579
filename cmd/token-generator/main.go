// Command token-generator signs development bearer tokens for running the
// service in token auth mode without an identity provider.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/usersync/users-service/internal/service/auth"
)

func main() {
	uid := flag.String("uid", "", "external identity (required)")
	email := flag.String("email", "", "email claim")
	name := flag.String("name", "", "display name claim")
	issuer := flag.String("issuer", os.Getenv("USERS_AUTH_TOKEN_ISSUER"), "issuer claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("USERS_AUTH_TOKEN_SECRET")
	if *uid == "" || secret == "" {
		fmt.Fprintln(os.Stderr, "usage: USERS_AUTH_TOKEN_SECRET=... token-generator -uid <uid> [-email e] [-name n] [-ttl 1h]")
		os.Exit(2)
	}

	token, err := auth.IssueToken(secret, *issuer, auth.Identity{
		ExternalID: *uid,
		Email:      *email,
		Name:       *name,
	}, time.Now(), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
