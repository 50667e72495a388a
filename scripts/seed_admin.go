package main

import (
	"fmt"
	"log"
	"os"

	"estately-server/logger"
	"estately-server/models"
	"estately-server/storage"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the first super_admin account. Run with:
//
//	SEED_ADMIN_EMAIL=... SEED_ADMIN_PASSWORD=... go run ./scripts
func main() {
	godotenv.Load()
	logger.Initialize()
	storage.InitializeDB()

	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	var existing models.User
	if res := storage.DB.Where("email = ?", email).Find(&existing); res.RowsAffected > 0 {
		fmt.Printf("user %s already exists (role=%s), nothing to do\n", email, existing.Role)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}

	admin := models.User{
		FirstName: "Admin",
		LastName:  "User",
		Email:     email,
		Password:  string(hashed),
		Role:      "super_admin",
		Tier:      models.TierPro,
	}
	if err := storage.DB.Create(&admin).Error; err != nil {
		log.Fatalf("creating admin user: %v", err)
	}

	fmt.Printf("created super_admin %s (id=%d)\n", email, admin.ID)
}
