package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/rizkypratama/authguard/config"
	"github.com/rizkypratama/authguard/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := envOr("SEED_EMAIL", "admin@example.com")
	password := envOr("SEED_PASSWORD", "password123")
	name := envOr("SEED_NAME", "Demo Admin")

	hasher := helpers.NewHasher(cfg.PasswordSalt, cfg.BcryptCost)
	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// Seeded user is pre-confirmed so it can log in regardless of CONFIRM_REQUIRED
	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, active, confirmed_at)
		VALUES (lower($1), $2, $3, TRUE, now())
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", id, email, name, password)

	// Ensure base roles exist
	var adminRoleID, userRoleID string
	if err := db.QueryRow(`
		INSERT INTO roles (name, description) VALUES ('admin', 'full administrative access')
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING id
	`).Scan(&adminRoleID); err != nil {
		log.Fatalf("failed to upsert admin role: %v", err)
	}
	if err := db.QueryRow(`
		INSERT INTO roles (name, description) VALUES ('user', 'standard account')
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING id
	`).Scan(&userRoleID); err != nil {
		log.Fatalf("failed to upsert user role: %v", err)
	}
	fmt.Printf("roles ensured: admin=%s user=%s\n", adminRoleID, userRoleID)

	for _, roleID := range []string{adminRoleID, userRoleID} {
		if _, err := db.Exec(`
			INSERT INTO user_roles (user_id, role_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, id, roleID); err != nil {
			log.Fatalf("failed to assign role: %v", err)
		}
	}
	fmt.Println("assigned admin and user roles to seeded user (if not already)")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
