package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"caretransit/internal/config"
	"caretransit/internal/middleware"
	"caretransit/internal/models"
)

type signupInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`

	// admin signup creates the company alongside the user
	CompanyName  string `json:"company_name"`
	CompanyEmail string `json:"company_email"`

	// driver and guardian accounts join an existing company
	CompanyID     uint   `json:"company_id"`
	LicenseNumber string `json:"license_number"`
	Address       string `json:"address"`
}

func SignupUser(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := validateAndNormalizeRole(input.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Role = role

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	user, err := createUserRecord(tx, input, hashedPassword)
	if err != nil {
		tx.Rollback()
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user: " + err.Error()})
		return
	}

	if err := createActorRecord(tx, &user, input); err != nil {
		tx.Rollback()
		var bad *badSignup
		if errors.As(err, &bad) {
			c.JSON(http.StatusBadRequest, gin.H{"error": bad.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create actor record: " + err.Error()})
		}
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role, user.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  prepareUserResponse(user),
	})
}

func LoginUser(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	query := config.DB.Where("email = ?", body.Email).
		Preload("Driver").
		Preload("Guardian")

	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role, user.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  prepareUserResponse(user),
	})
}

// badSignup marks signup failures caused by the request body rather
// than the database.
type badSignup struct{ msg string }

func (e *badSignup) Error() string { return e.msg }

func validateAndNormalizeRole(roleInput string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(roleInput))
	if role == "" {
		role = "guardian"
	}
	switch role {
	case "admin", "dispatcher", "driver", "guardian":
		return role, nil
	default:
		return "", errors.New("invalid role")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func createUserRecord(tx *gorm.DB, input signupInput, hashedPassword string) (models.User, error) {
	user := models.User{
		Name:      input.Name,
		Email:     input.Email,
		Password:  hashedPassword,
		Phone:     input.Phone,
		Role:      input.Role,
		CompanyID: models.CompanyID(input.CompanyID),
	}
	if err := tx.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func createActorRecord(tx *gorm.DB, user *models.User, input signupInput) error {
	switch user.Role {
	case "admin":
		if input.CompanyName == "" {
			return &badSignup{msg: "company_name is required for admin role"}
		}
		email := input.CompanyEmail
		if email == "" {
			email = input.Email
		}
		company := models.Company{
			Name:  input.CompanyName,
			Email: email,
			Phone: input.Phone,
		}
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		user.CompanyID = models.CompanyID(company.ID)
		return tx.Save(user).Error

	case "dispatcher":
		return requireCompany(tx, user)

	case "driver":
		if input.LicenseNumber == "" {
			return &badSignup{msg: "license_number is required for driver role"}
		}
		if err := requireCompany(tx, user); err != nil {
			return err
		}
		driver := models.Driver{
			UserID:        user.ID,
			CompanyID:     user.CompanyID,
			Name:          input.Name,
			Phone:         input.Phone,
			LicenseNumber: input.LicenseNumber,
			Status:        models.DriverActive,
		}
		if err := tx.Create(&driver).Error; err != nil {
			return err
		}
		user.Driver = &driver
		return tx.Save(user).Error

	case "guardian":
		if err := requireCompany(tx, user); err != nil {
			return err
		}
		guardian := models.Guardian{
			UserID:    user.ID,
			CompanyID: user.CompanyID,
			Name:      input.Name,
			Phone:     input.Phone,
			Address:   input.Address,
		}
		if err := tx.Create(&guardian).Error; err != nil {
			return err
		}
		user.Guardian = &guardian
		return tx.Save(user).Error
	}
	return nil
}

func requireCompany(tx *gorm.DB, user *models.User) error {
	if user.CompanyID == 0 {
		return &badSignup{msg: "company_id is required for this role"}
	}
	var company models.Company
	if err := tx.First(&company, uint(user.CompanyID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &badSignup{msg: "company with the provided company_id does not exist"}
		}
		return err
	}
	return nil
}

func prepareUserResponse(user models.User) gin.H {
	responseUser := gin.H{
		"ID":         user.ID,
		"CreatedAt":  user.CreatedAt,
		"UpdatedAt":  user.UpdatedAt,
		"name":       user.Name,
		"email":      user.Email,
		"phone":      user.Phone,
		"role":       user.Role,
		"company_id": user.CompanyID,
	}

	if user.Driver != nil {
		responseUser["driver"] = gin.H{
			"ID":             user.Driver.ID,
			"name":           user.Driver.Name,
			"phone":          user.Driver.Phone,
			"license_number": user.Driver.LicenseNumber,
			"status":         user.Driver.Status,
		}
	}
	if user.Guardian != nil {
		responseUser["guardian"] = gin.H{
			"ID":      user.Guardian.ID,
			"name":    user.Guardian.Name,
			"phone":   user.Guardian.Phone,
			"address": user.Guardian.Address,
		}
	}
	return responseUser
}
