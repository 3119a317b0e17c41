package main

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/gymfit/api-server-go/models"
	"github.com/gymfit/api-server-go/services"
	"github.com/gymfit/api-server-go/shared/utils"
)

// SeedDatabase loads the bootstrap administrator and demo records. Every
// write uses FirstOrCreate, so re-running the seed leaves existing rows
// untouched.
func SeedDatabase(db *gorm.DB) error {
	slog.Info("Seeding database with initial records")

	if err := seedAdministrator(db); err != nil {
		return err
	}
	if err := seedMemberships(db); err != nil {
		return err
	}
	if err := seedClasses(db); err != nil {
		return err
	}
	if err := seedPayments(db); err != nil {
		return err
	}
	if err := seedConfig(db); err != nil {
		return err
	}

	slog.Info("Database seeding completed")
	return nil
}

func seedAdministrator(db *gorm.DB) error {
	email := utils.GetEnvOrDefault("SEED_ADMIN_EMAIL", "admin@gym.com")
	password := utils.GetEnvOrDefault("SEED_ADMIN_PASSWORD", "admin123")

	hash, err := services.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	admin := models.Administrator{
		AdminID:      "adm_seed",
		Email:        email,
		PasswordHash: hash,
		Name:         "Gym Administrator",
		Role:         models.RoleAdmin,
	}
	if err := db.Where("email = ?", email).FirstOrCreate(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed administrator: %w", err)
	}
	return nil
}

func seedMemberships(db *gorm.DB) error {
	now := time.Now().UTC()
	memberships := []models.Membership{
		{
			CardID:         "USR001",
			Name:           "John Doe",
			Email:          "john@example.com",
			Phone:          "555-0101",
			MembershipTier: models.TierPremium,
			Active:         true,
			ExpirationDate: now.Add(30 * 24 * time.Hour).Format(time.RFC3339),
		},
		{
			CardID:         "USR002",
			Name:           "Jane Smith",
			Email:          "jane@example.com",
			Phone:          "555-0102",
			MembershipTier: models.TierBasic,
			Active:         true,
			ExpirationDate: now.Add(15 * 24 * time.Hour).Format(time.RFC3339),
		},
		{
			CardID:         "USR003",
			Name:           "Bob Wilson",
			Email:          "bob@example.com",
			Phone:          "555-0103",
			MembershipTier: models.TierBasic,
			Active:         false,
			ExpirationDate: now.Add(-5 * 24 * time.Hour).Format(time.RFC3339),
		},
	}

	for i := range memberships {
		if err := db.Where("card_id = ?", memberships[i].CardID).FirstOrCreate(&memberships[i]).Error; err != nil {
			return fmt.Errorf("failed to seed membership %s: %w", memberships[i].CardID, err)
		}
	}
	return nil
}

func seedClasses(db *gorm.DB) error {
	classes := []models.Class{
		{
			ClassID:     "cls_seed_yoga",
			Name:        "Morning Yoga",
			Instructor:  "Sarah Lee",
			Schedule:    "Mon/Wed/Fri 07:00",
			Capacity:    20,
			Description: "Gentle vinyasa flow to start the day",
		},
		{
			ClassID:     "cls_seed_spin",
			Name:        "Spin Class",
			Instructor:  "Mike Torres",
			Schedule:    "Tue/Thu 18:00",
			Capacity:    15,
			Description: "High-intensity indoor cycling",
		},
		{
			ClassID:     "cls_seed_strength",
			Name:        "Strength Training",
			Instructor:  "Ana Petrov",
			Schedule:    "Sat 10:00",
			Capacity:    12,
			Description: "Barbell fundamentals and progressive overload",
		},
	}

	for i := range classes {
		if err := db.Where("class_id = ?", classes[i].ClassID).FirstOrCreate(&classes[i]).Error; err != nil {
			return fmt.Errorf("failed to seed class %s: %w", classes[i].ClassID, err)
		}
	}
	return nil
}

func seedPayments(db *gorm.DB) error {
	payments := []models.Payment{
		{
			PaymentID:     "pay_seed_001",
			CardID:        "USR001",
			Amount:        79.99,
			PaymentMethod: models.PaymentMethodCard,
			Status:        models.PaymentStatusCompleted,
			Description:   "Premium monthly fee",
		},
		{
			PaymentID:     "pay_seed_002",
			CardID:        "USR002",
			Amount:        39.99,
			PaymentMethod: models.PaymentMethodTransfer,
			Status:        models.PaymentStatusCompleted,
			Description:   "Basic monthly fee",
		},
		{
			PaymentID:     "pay_seed_003",
			CardID:        "USR003",
			Amount:        39.99,
			PaymentMethod: models.PaymentMethodCash,
			Status:        models.PaymentStatusPending,
			Description:   "Basic monthly fee",
		},
	}

	for i := range payments {
		if err := db.Where("payment_id = ?", payments[i].PaymentID).FirstOrCreate(&payments[i]).Error; err != nil {
			return fmt.Errorf("failed to seed payment %s: %w", payments[i].PaymentID, err)
		}
	}
	return nil
}

func seedConfig(db *gorm.DB) error {
	entries := []models.ConfigEntry{
		{Key: "gym_name", Value: "GymFit", UpdatedAt: time.Now().UTC()},
		{Key: "opening_hours", Value: "06:00-23:00", UpdatedAt: time.Now().UTC()},
		{Key: "max_capacity", Value: "150", UpdatedAt: time.Now().UTC()},
	}

	for i := range entries {
		if err := db.Where("key = ?", entries[i].Key).FirstOrCreate(&entries[i]).Error; err != nil {
			return fmt.Errorf("failed to seed config %s: %w", entries[i].Key, err)
		}
	}
	return nil
}
