// Command admintoken prints a bearer token for the management API.
//
//	ADMIN_JWT_SECRET=... admintoken -sub ops -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/datapusher/webhook-relay/internal/api/middleware"
)

func main() {
	secret := flag.String("secret", os.Getenv("ADMIN_JWT_SECRET"), "HS256 signing secret (defaults to $ADMIN_JWT_SECRET)")
	subject := flag.String("sub", "admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	flag.Parse()

	token, err := middleware.IssueAdminToken(*secret, *subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "admintoken: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
