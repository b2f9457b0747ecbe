package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"birthdaybook/internal/auth"
	"birthdaybook/internal/database"
	"birthdaybook/internal/handlers"
	"birthdaybook/internal/models"
	"birthdaybook/pkg/config"

	"golang.org/x/term" // For password masking
)

// readInput reads a line of text from the console.
func readInput(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readInputDefault is readInput with a fallback for an empty answer.
func readInputDefault(reader *bufio.Reader, prompt, def string) string {
	if v := readInput(reader, fmt.Sprintf("%s [%s]: ", prompt, def)); v != "" {
		return v
	}
	return def
}

// validateUser applies the registration form rules to the first user.
// The returned form carries the normalized username and email.
func validateUser(username, email, password string) (handlers.RegistrationForm, handlers.FormErrors) {
	form := handlers.RegistrationForm{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	}
	errs := handlers.ValidateForm(&form)
	return form, errs
}

// printFormErrors lists field errors in a stable order.
func printFormErrors(errs handlers.FormErrors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Printf("  %s: %s\n", f, errs[f])
	}
}

// readPassword reads a password from the console, masking the input.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // Add a newline after password input
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytePassword)), nil
}

func RunSetup() {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("--- Birthdaybook Setup ---")

	// 1. Database Configuration. Defaults come from the environment / .env.
	fmt.Println("\n--- Database Configuration ---")
	cfg := config.Cfg
	cfg.DBHost = readInputDefault(reader, "Database Host", cfg.DBHost)
	cfg.DBPort = readInputDefault(reader, "Database Port", cfg.DBPort)
	cfg.DBUser = readInputDefault(reader, "Database User", cfg.DBUser)
	dbPassword, err := readPassword("Enter Database Password (empty keeps DB_PASSWORD): ")
	if err != nil {
		log.Fatalf("Failed to read database password: %v", err)
	}
	if dbPassword != "" {
		cfg.DBPassword = dbPassword
	}
	cfg.DBName = readInputDefault(reader, "Database Name", cfg.DBName)
	cfg.DBSSLMode = readInputDefault(reader, "Database SSL Mode", cfg.DBSSLMode)

	fmt.Println("Connecting to database...")
	if err := database.ConnectDB(cfg.DSN(), false); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	fmt.Println("Successfully connected to the database.")

	// 2. Database Migrations
	fmt.Println("\n--- Running Database Migrations ---")
	if err := database.MigrateDB(); err != nil {
		log.Fatalf("Database migration process failed: %v", err)
	}
	fmt.Println("Database migrations completed successfully.")

	// 3. First user (optional)
	fmt.Println("\n--- Creating First User ---")
	var form handlers.RegistrationForm
	for {
		username := readInput(reader, "Enter Username (empty to skip): ")
		if username == "" {
			fmt.Println("Skipping user creation.")
			fmt.Println("\n--- Birthdaybook Setup Complete! ---")
			return
		}
		email := readInput(reader, "Enter Email: ")

		password, err := readPassword("Enter Password: ")
		if err != nil {
			log.Fatalf("Failed to read password: %v", err)
		}
		confirm, err := readPassword("Confirm Password: ")
		if err != nil {
			log.Fatalf("Failed to read password confirmation: %v", err)
		}
		if password != confirm {
			fmt.Println("Passwords do not match. Please try again.")
			continue
		}

		var errs handlers.FormErrors
		form, errs = validateUser(username, email, password)
		if len(errs) == 0 {
			break
		}
		fmt.Println("Invalid user details. Please try again.")
		printFormErrors(errs)
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{Username: form.Username, Email: form.Email, PasswordHash: hash}
	if err := database.NewUserStore(database.GetDB()).Create(context.Background(), user); err != nil {
		var dup *models.DuplicateKeyError
		if errors.As(err, &dup) {
			log.Fatalf("Failed to create user: that %s is already registered.", dup.Field)
		}
		log.Fatalf("Failed to create user: %v", err)
	}
	fmt.Printf("User '%s' created successfully.\n", user.Username)

	fmt.Println("\n--- Birthdaybook Setup Complete! ---")
	fmt.Println("You can now start the main application server.")
}

func main() {
	RunSetup()
}
