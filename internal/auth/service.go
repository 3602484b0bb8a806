package auth

import (
	"fmt"

	"github.com/vgridasov/WebRegLog/internal/database"
	"github.com/vgridasov/WebRegLog/internal/models"
	"github.com/vgridasov/WebRegLog/internal/utils"
)

func RegisterUser(email, password, firstName, lastName, role string) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	if role == "" {
		role = models.RoleRegistrar
	}
	if !models.ValidGlobalRole(role) {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	u := models.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		Provider:  "local",
		IsActive:  true,
	}

	if err := database.DB.Create(&u).Error; err != nil {
		return nil, err
	}

	return &u, nil
}

func LoginUser(email, password string) (string, string, *models.User, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return "", "", nil, fmt.Errorf("invalid credentials")
	}

	if !user.IsActive {
		return "", "", nil, fmt.Errorf("account is deactivated")
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", "", nil, fmt.Errorf("invalid credentials")
	}

	accessToken, err := utils.GenerateJWT(user.ID, user.Role)
	if err != nil {
		return "", "", nil, err
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", nil, err
	}

	return accessToken, refreshToken, &user, nil
}
