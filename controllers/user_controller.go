package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vibblo-api/repositories"
	"vibblo-api/utils"
)

type UserController struct {
	store repositories.Store
}

func NewUserController(store repositories.Store) *UserController {
	return &UserController{store: store}
}

// GetProfile returns the authenticated user's own record.
func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := uc.store.Users().FindByID(userID)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "User not found")
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type UpdateProfileRequest struct {
	FullName       *string `json:"full_name"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	ProfilePicture *string `json:"profile_picture"`
	CoverImage     *string `json:"cover_image"`
}

// UpdateProfile applies partial profile updates after re-running the
// field validators.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := uc.store.Users().FindByID(userID)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "User not found")
		return
	}

	if req.FullName != nil {
		if err := utils.ValidateFullName(*req.FullName); err != nil {
			utils.SendValidationError(c, err.Error())
			return
		}
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		if err := utils.ValidateBio(*req.Bio); err != nil {
			utils.SendValidationError(c, err.Error())
			return
		}
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		if err := utils.ValidateLocation(*req.Location); err != nil {
			utils.SendValidationError(c, err.Error())
			return
		}
		user.Location = *req.Location
	}
	if req.ProfilePicture != nil {
		if !utils.IsValidImageURL(*req.ProfilePicture) {
			utils.SendValidationError(c, "invalid URL format for profile picture")
			return
		}
		user.ProfilePicture = *req.ProfilePicture
	}
	if req.CoverImage != nil {
		if !utils.IsValidImageURL(*req.CoverImage) {
			utils.SendValidationError(c, "invalid URL format for cover image")
			return
		}
		user.CoverImage = *req.CoverImage
	}

	if err := uc.store.Users().Update(user); err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	user.Password = ""
	utils.SendSuccess(c, "Profile updated successfully", user)
}

// GetUser returns another user's public profile projection.
func (uc *UserController) GetUser(c *gin.Context) {
	targetID := c.Param("id")

	user, err := uc.store.Users().FindByID(targetID)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.ToProfile()})
}
