package storage

import (
	"log"
	"os"

	"estately-server/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.PropertyImage{},
		&models.PropertyVideo{},
		&models.Appointment{},
		&models.Favorite{},
		&models.SubscriptionEvent{},
		&models.AgentVerification{},
		&models.AuditLog{},
		&models.Feedback{},
	)

	// Slot exclusivity: one live appointment per property/date/hour.
	// Cancelled and declined rows free the slot, so the index is partial.
	db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointment_slot
		ON appointments (property_id, date, hour)
		WHERE status NOT IN ('cancelled', 'declined') AND deleted_at IS NULL;`)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	return db
}
