package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/storeops/store-management-api/config"
	"github.com/storeops/store-management-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@storeops.local"
	password := "admin12345"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, last_name, user_role)
		VALUES ($1, $2, 'Store', 'Admin', 'ADMIN')
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id
	`, email, hash).Scan(&adminID)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", adminID, email, password)

	products := []struct {
		name, description, price string
		quantity                 int
	}{
		{"Espresso Beans 1kg", "Dark roast arabica blend", "18.50", 120},
		{"Pour-Over Kettle", "Gooseneck kettle, 1L", "42.00", 35},
		{"Ceramic Mug", "350ml stoneware mug", "9.90", 200},
	}
	for _, p := range products {
		var id string
		err := db.QueryRow(`
			INSERT INTO products (name, description, price, quantity)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, p.name, p.description, p.price, p.quantity).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed product %q: %v", p.name, err)
		}
		fmt.Printf("seeded product: id=%s name=%s price=%s quantity=%d\n", id, p.name, p.price, p.quantity)
	}
}
