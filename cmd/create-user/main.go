// CLI tool to create a user with bcrypt-hashed password and an empty profile.
// Admins may import ingredient catalogs.
// Usage: go run ./cmd/create-user (from the module root)
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	conn, err := pgx.Connect(context.Background(), os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	fmt.Print("Admin (y/N): ")
	adminAnswer, _ := reader.ReadString('\n')
	isAdmin := strings.EqualFold(strings.TrimSpace(adminAnswer), "y")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	authToken := uuid.New().String()

	userID, err := insertUser(context.Background(), conn, username, email, string(hash), authToken, isAdmin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", username)
	fmt.Printf("  Admin:      %t\n", isAdmin)
	fmt.Printf("  Auth Token: %s\n", authToken)
}

// insertUser creates the user and their empty profile row in one transaction.
func insertUser(ctx context.Context, conn *pgx.Conn, username, email, hash, authToken string, isAdmin bool) (int, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var userID int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password, auth_token, is_admin)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		username, email, hash, authToken, isAdmin,
	).Scan(&userID)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, userID); err != nil {
		return 0, fmt.Errorf("create profile: %w", err)
	}
	return userID, tx.Commit(ctx)
}
