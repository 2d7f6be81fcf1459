// internal/api/handlers/user_handler.go
package handlers

import (
	"net/http"

	"chemnitz-facilities-api/internal/account"
	"chemnitz-facilities-api/internal/api/middleware"
	"chemnitz-facilities-api/internal/models"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Accounts *account.Service
}

type SignupRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	FullName    string `json:"full_name"`
	Address     string `json:"address" binding:"required"`
	HouseNumber string `json:"house_number"`
	PLZ         string `json:"plz" binding:"required"`
}

// LoginRequest binds from JSON or from an OAuth2 password-grant form.
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type UpdateUserRequest struct {
	FullName    *string `json:"full_name"`
	Address     *string `json:"address"`
	HouseNumber *string `json:"house_number"`
	PLZ         *string `json:"plz"`
	Password    *string `json:"password"`
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Accounts.Signup(c.Request.Context(), account.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Profile: models.Profile{
			FullName:    req.FullName,
			Address:     req.Address,
			HouseNumber: req.HouseNumber,
			PLZ:         req.PLZ,
		},
	})
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.Accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Accounts.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c).Username, account.UpdateInput{
		FullName:    req.FullName,
		Address:     req.Address,
		HouseNumber: req.HouseNumber,
		PLZ:         req.PLZ,
		Password:    req.Password,
	})
	if err != nil {
		respondError(c, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.Accounts.Delete(c.Request.Context(), middleware.CurrentUser(c).Username); err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
