package utils

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/speechpal-backend/internal/types"
)

func NormalizeUserFields(user *types.User) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.FirstName = strings.TrimSpace(user.FirstName)
	user.LastName = strings.TrimSpace(user.LastName)
}

func ValidateRegistration(user *types.User) error {
	if user == nil {
		return fmt.Errorf("No user given, cannot proceed with registration")
	}
	if user.Email == "" {
		return fmt.Errorf("An email is required to register")
	}
	if user.Password == "" {
		return fmt.Errorf("A password is required to register")
	}
	if user.FirstName == "" {
		return fmt.Errorf("A first name is required to register")
	}
	return nil
}

func HashPassword(user *types.User) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("Failed to hash password")
	}
	user.Password = string(hashedPassword)
	return nil
}
