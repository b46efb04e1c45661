package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shavuson/recruit-api/pkg/config"
	"github.com/shavuson/recruit-api/pkg/database"
)

// Seeds (or rotates the password of) a platform operator account.
// Operators authenticate through /auth/admin/login and manage every
// institution, so they are created out of band rather than through
// the public signup flow.
func main() {
	var (
		email    string
		name     string
		password string
		rotate   bool
		timeout  time.Duration
	)

	flag.StringVar(&email, "email", "", "Operator email (required)")
	flag.StringVar(&name, "name", "Platform Operator", "Display name")
	flag.StringVar(&password, "password", "", "Plaintext password (required)")
	flag.BoolVar(&rotate, "rotate", false, "Update the password of an existing operator instead of failing")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Database operation timeout")
	flag.Parse()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if len(password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	if rotate {
		res, err := db.ExecContext(ctx,
			`UPDATE operators SET password = $1, updated_at = NOW() WHERE LOWER(email) = $2`,
			string(hash), email)
		if err != nil {
			log.Fatalf("failed to rotate password: %v", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			log.Fatalf("no operator with email %s", email)
		}
		fmt.Printf("rotated password for %s\n", email)
		return
	}

	var exists bool
	if err := db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM operators WHERE LOWER(email) = $1)`, email); err != nil && err != sql.ErrNoRows {
		log.Fatalf("failed to check existing operator: %v", err)
	}
	if exists {
		log.Fatalf("operator %s already exists (use -rotate to change the password)", email)
	}

	var id string
	err = db.GetContext(ctx,
		`INSERT INTO operators (name, email, password, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 RETURNING id`,
		strings.TrimSpace(name), email, string(hash))
	if err != nil {
		log.Fatalf("failed to create operator: %v", err)
	}

	fmt.Printf("created operator %s (%s)\n", email, id)
}
