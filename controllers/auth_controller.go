package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"vibblo-api/models"
	"vibblo-api/repositories"
	"vibblo-api/services"
	"vibblo-api/utils"
)

type AuthController struct {
	store        repositories.Store
	jwtSecret    string
	emailService *services.EmailService
	log          logrus.FieldLogger
}

func NewAuthController(store repositories.Store, jwtSecret string, emailService *services.EmailService, log logrus.FieldLogger) *AuthController {
	return &AuthController{
		store:        store,
		jwtSecret:    jwtSecret,
		emailService: emailService,
		log:          log,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	DOB      string `json:"dob"` // optional, YYYY-MM-DD
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := utils.ValidateUsername(req.Username); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}
	if err := utils.ValidateFullName(req.FullName); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}
	if !utils.IsValidEmail(req.Email) {
		utils.SendValidationError(c, "invalid email address")
		return
	}

	var dob *time.Time
	if req.DOB != "" {
		parsed, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			utils.SendValidationError(c, "dob must be in YYYY-MM-DD format")
			return
		}
		if err := utils.ValidateDOB(parsed); err != nil {
			utils.SendValidationError(c, err.Error())
			return
		}
		dob = &parsed
	}

	if _, err := ac.store.Users().FindByEmail(req.Email); err == nil {
		utils.SendError(c, http.StatusConflict, "Email already registered")
		return
	}
	if _, err := ac.store.Users().FindByUsername(req.Username); err == nil {
		utils.SendError(c, http.StatusConflict, "Username already taken")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		ID:             uuid.New().String(),
		Username:       req.Username,
		FullName:       req.FullName,
		Email:          req.Email,
		Password:       string(hashedPassword),
		EmailVerified:  false,
		ProfilePicture: models.DefaultProfilePicture,
		CoverImage:     models.DefaultCoverImage,
		DOB:            dob,
	}

	if err := ac.store.Users().Create(&user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			utils.SendError(c, http.StatusConflict, "Email or username already registered")
			return
		}
		utils.SendError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	if _, err := ac.emailService.SendVerificationEmail(user.Email, user.FullName); err != nil {
		ac.log.WithError(err).WithField("email", user.Email).Error("failed to send verification email")
	}

	user.Password = ""
	utils.SendCreated(c, "Registration successful! Check your email for the verification code.", user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := ac.store.Users().FindByEmail(req.Email)
	if err != nil {
		utils.SendError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.SendError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.EmailVerified {
		utils.SendError(c, http.StatusForbidden, "Email not verified")
		return
	}

	token, err := ac.generateJWT(user.ID, user.Email)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: *user})
}

func (ac *AuthController) Logout(c *gin.Context) {
	// Stateless tokens: the client discards its copy.
	utils.SendSuccess(c, "Logged out successfully", nil)
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

func (ac *AuthController) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	if !ac.emailService.VerifyCode(req.Email, req.Code) {
		utils.SendError(c, http.StatusBadRequest, "Invalid or expired verification code")
		return
	}

	user, err := ac.store.Users().FindByEmail(req.Email)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "User not found")
		return
	}

	user.EmailVerified = true
	if err := ac.store.Users().Update(user); err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to verify email")
		return
	}

	utils.SendSuccess(c, "Email verified successfully", nil)
}

type ResendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (ac *AuthController) ResendVerificationCode(c *gin.Context) {
	var req ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := ac.store.Users().FindByEmail(req.Email)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "User not found")
		return
	}
	if user.EmailVerified {
		utils.SendError(c, http.StatusBadRequest, "Email already verified")
		return
	}

	if _, err := ac.emailService.SendVerificationEmail(user.Email, user.FullName); err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to send verification email")
		return
	}

	utils.SendSuccess(c, "Verification code sent", nil)
}

func (ac *AuthController) generateJWT(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ac.jwtSecret))
}
