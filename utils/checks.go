package utils

import (
	"errors"
	"fmt"
	"strings"

	models "Corazzato/models/postgres"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Function to check if a match exists
func CheckMatchExists(db *gorm.DB, matchID uint) (*models.GameMatch, error) {
	var match models.GameMatch
	result := db.Where("id = ?", matchID).First(&match)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("match not found")
		}
		return nil, result.Error
	}
	return &match, nil
}

// Function to check if a user already sits in a match
func IsPlayerInMatch(db *gorm.DB, matchID uint, userID uint) (*models.GameMatchPlayer, error) {
	var player models.GameMatchPlayer
	result := db.Where("match_id = ? AND user_id = ?", matchID, userID).First(&player)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &player, nil
}

func CheckUserExists(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	result := db.Where("username = ?", username).First(&user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, result.Error
	}
	return &user, nil
}

// GenerateToken returns a fresh 64-character opaque session token.
func GenerateToken() string {
	a := strings.ReplaceAll(uuid.NewString(), "-", "")
	b := strings.ReplaceAll(uuid.NewString(), "-", "")
	return a + b
}
