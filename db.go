package main

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/entity"
)

func setupDatabase(dsn string, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Customer{},
		&entity.Service{},
		&entity.TimeSlot{},
		&entity.Cart{},
		&entity.CartItem{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.Driver{},
		&entity.DriverApplication{},
		&entity.OrderDriverApplication{},
		&entity.Payment{},
	); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	return db
}
