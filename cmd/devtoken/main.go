// Command devtoken mints a bearer token for local testing against the API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"signdesk/internal/auth"
	"signdesk/internal/config"
)

func main() {
	userID := flag.String("user", "", "user id (sub claim)")
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "contact email")
	ttl := flag.Duration("ttl", 24*time.Hour, "token validity")
	flag.Parse()

	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" || *userID == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET and -user are required")
		os.Exit(2)
	}

	token, err := auth.GenerateToken(*userID, *name, *email, []byte(cfg.Auth.JWTSecret), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
