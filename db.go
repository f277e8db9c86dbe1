package main

import (
	"log"
	"os"
	"strings"

	"dompet/models"
	"dompet/pkg/badge"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Ensure the master tables exist first and seed them so FKs can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
		if err := db.AutoMigrate(&models.Bank{}); err != nil {
			log.Printf("migration warning (banks): %v", err)
		}
		if err := db.AutoMigrate(&models.Badge{}); err != nil {
			log.Printf("migration warning (badges): %v", err)
		}
	}
	seedMasterData()

	if shouldMigrate {
		// Migrate models individually, parents before children, so a failure
		// on one doesn't block others and FK constraints can be applied.
		ordered := []struct {
			name  string
			model any
		}{
			{"users", &models.User{}},
			{"refresh_tokens", &models.RefreshToken{}},
			{"accounts", &models.Account{}},
			{"account_allocations", &models.AccountAllocation{}},
			{"budgets", &models.Budget{}},
			{"expenses", &models.Expense{}},
			{"incomes", &models.Income{}},
			{"monthly_expenses", &models.MonthlyExpense{}},
			{"goals", &models.Goal{}},
			{"user_badges", &models.UserBadge{}},
		}
		for _, m := range ordered {
			if err := db.AutoMigrate(m.model); err != nil {
				log.Printf("migration warning (%s): %v", m.name, err)
			}
		}
	}
	seedDB()
}

// seedMasterData fills the role, bank and badge catalogs (idempotent).
func seedMasterData() {
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	banks := []models.Bank{
		{Name: "BCA", Code: "bca"},
		{Name: "BNI", Code: "bni"},
		{Name: "BRI", Code: "bri"},
		{Name: "Mandiri", Code: "mandiri"},
		{Name: "Bank Jago", Code: "jago"},
		{Name: "Jenius", Code: "jenius"},
		{Name: "GoPay", Code: "gopay"},
		{Name: "OVO", Code: "ovo"},
		{Name: "DANA", Code: "dana"},
	}
	for _, b := range banks {
		var cnt int64
		db.Model(&models.Bank{}).Where("name = ?", b.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&b)
		}
	}

	badges := []models.Badge{
		{Code: badge.CodeFirstAccount, Name: "Langkah Pertama", Description: "Connected your first bank account"},
		{Code: badge.CodeThreeAccounts, Name: "Terorganisir", Description: "Runs three accounts with separated buckets"},
		{Code: badge.CodeSaver, Name: "Penabung", Description: "Tabungan bucket reached Rp1.000.000"},
		{Code: badge.CodeStreak7, Name: "Rajin Mencatat", Description: "Recorded expenses on 7 different days"},
		{Code: badge.CodeStreak30, Name: "Disiplin Sebulan", Description: "Recorded expenses on 30 different days"},
	}
	for _, b := range badges {
		var cnt int64
		db.Model(&models.Badge{}).Where("code = ?", b.Code).Count(&cnt)
		if cnt == 0 {
			db.Create(&b)
		}
	}
}

func seedDB() {
	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		// find administrator role id
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Printf("failed to find administrator role: %v", err)
		}
		// Seed admin user
		rid := role.ID
		admin := models.User{
			Username: "admin",
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
	}
}
