package user

import (
	"github.com/vgridasov/WebRegLog/internal/database"
	"github.com/vgridasov/WebRegLog/internal/models"
	"github.com/vgridasov/WebRegLog/internal/response"
	"github.com/vgridasov/WebRegLog/internal/utils"
	"github.com/gofiber/fiber/v2"
)

func CreateUserHandler(c *fiber.Ctx) error {
	var body struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Role      string `json:"role"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Email == "" || body.Password == "" || body.FirstName == "" {
		return response.ValidationError(c, map[string]string{
			"email":      "email is required",
			"password":   "password is required",
			"first_name": "first_name is required",
		})
	}

	if body.Role == "" {
		body.Role = models.RoleRegistrar
	}
	if !models.ValidGlobalRole(body.Role) {
		return response.ValidationError(c, map[string]string{
			"role": "role must be one of admin, registrar, analyst",
		})
	}

	var existing models.User
	if err := database.DB.Where("email = ?", body.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	hashedPassword, err := utils.HashPassword(body.Password)
	if err != nil {
		return response.InternalError(c, "Failed to hash password")
	}

	user := models.User{
		Email:     body.Email,
		Password:  hashedPassword,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Role:      body.Role,
		Provider:  "local",
		IsActive:  true,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		return response.InternalError(c, "Failed to create user")
	}

	return response.Created(c, user, "User created successfully")
}

func ListUsersHandler(c *fiber.Ctx) error {
	var users []models.User

	if err := database.DB.Order("created_at desc").Find(&users).Error; err != nil {
		return response.InternalError(c, "Failed to fetch users")
	}

	return response.Success(c, users, "Users retrieved successfully")
}

// AvailableUsersHandler lists active non-admin users for the journal ACL
// picker. Admins never appear in an ACL since they bypass it.
func AvailableUsersHandler(c *fiber.Ctx) error {
	var users []models.User

	err := database.DB.
		Where("is_active = ? AND role IN ?", true, []string{models.RoleRegistrar, models.RoleAnalyst}).
		Order("last_name, first_name").
		Find(&users).Error
	if err != nil {
		return response.InternalError(c, "Failed to fetch users")
	}

	return response.Success(c, users, "Available users retrieved successfully")
}

func GetUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return response.NotFound(c, "User")
	}

	return response.Success(c, user, "User retrieved successfully")
}

func UpdateUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var body struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Role      string `json:"role"`
		IsActive  *bool  `json:"is_active"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return response.NotFound(c, "User")
	}

	if body.Email != "" && body.Email != user.Email {
		var existing models.User
		if err := database.DB.Where("email = ? AND id != ?", body.Email, id).First(&existing).Error; err == nil {
			return response.Conflict(c, "Email already taken")
		}
		user.Email = body.Email
	}

	if body.FirstName != "" {
		user.FirstName = body.FirstName
	}
	if body.LastName != "" {
		user.LastName = body.LastName
	}

	if body.Role != "" {
		if !models.ValidGlobalRole(body.Role) {
			return response.ValidationError(c, map[string]string{
				"role": "role must be one of admin, registrar, analyst",
			})
		}
		user.Role = body.Role
	}

	if body.IsActive != nil {
		user.IsActive = *body.IsActive
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return response.InternalError(c, "Failed to update user")
	}

	return response.Success(c, user, "User updated successfully")
}

// DeleteUserHandler deactivates the account rather than removing the row, so
// record authorship stays resolvable.
func DeleteUserHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		return response.NotFound(c, "User")
	}

	currentUserID := c.Locals("user_id").(uint)
	if uint(id) == currentUserID {
		return response.BadRequest(c, "Cannot deactivate your own account", nil)
	}

	user.IsActive = false
	if err := database.DB.Save(&user).Error; err != nil {
		return response.InternalError(c, "Failed to deactivate user")
	}

	return response.NoContent(c)
}
