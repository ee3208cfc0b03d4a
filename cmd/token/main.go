// Package main mints API tokens for the notioner service.
// Usage: notioner-token -sub <subject> [-ttl 720h] [-output json]
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	hauth "notioner/internal/handler/http/auth"
)

// TokenOutput is the JSON output format.
type TokenOutput struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	if err := run(os.Args[1:], os.Getenv, os.Stdout, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, signs the token with JWT_SECRET and prints it to out.
func run(args []string, getenv func(string) string, out io.Writer, now time.Time) error {
	fs := flag.NewFlagSet("notioner-token", flag.ContinueOnError)
	fs.SetOutput(out)
	var (
		subject      string
		ttl          time.Duration
		outputFormat string
	)
	fs.StringVar(&subject, "sub", "", "Token subject, e.g. the operator or device name (required)")
	fs.DurationVar(&ttl, "ttl", hauth.DefaultTokenTTL, "Token lifetime")
	fs.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if subject == "" {
		return errors.New("-sub is required")
	}
	if ttl <= 0 {
		return errors.New("-ttl must be positive")
	}
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("unknown output format %q (expected text or json)", outputFormat)
	}

	secret := getenv("JWT_SECRET")
	if err := hauth.ValidateSecret(secret); err != nil {
		return err
	}

	token, err := hauth.IssueToken([]byte(secret), subject, ttl, now)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(TokenOutput{Token: token, Subject: subject, ExpiresAt: now.Add(ttl).UTC()})
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
