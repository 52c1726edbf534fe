package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"eventhub/middlewares"
	"eventhub/models"
	"eventhub/utils"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /signup
func (d *deps) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email and password are required."})
		return
	}

	u := models.User{Name: req.Name, Email: req.Email, Password: req.Password}
	if err := d.users.Create(&u); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email already in use."})
			return
		}
		log.Error().Err(err).Msg("signup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save user."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user created successfully", "user": u})
}

// POST /login
func (d *deps) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
		return
	}

	user, err := d.users.ValidateCredentials(req.Email, req.Password)
	if err != nil {
		// same answer for unknown email and wrong password
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		log.Error().Err(err).Msg("token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not authenticate user."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful!", "token": token, "user": user})
}

// GET /profile
func (d *deps) getProfile(c *gin.Context) {
	userID := c.GetInt64(middlewares.ContextUserID)

	user, err := d.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}
		log.Error().Err(err).Int64("userId", userID).Msg("profile fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch profile."})
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUT /profile. The display name is the only mutable field.
func (d *deps) updateProfile(c *gin.Context) {
	userID := c.GetInt64(middlewares.ContextUserID)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No updatable fields provided."})
		return
	}

	user, err := d.users.UpdateName(userID, req.Name)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}
		log.Error().Err(err).Int64("userId", userID).Msg("profile update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update profile."})
		return
	}
	c.JSON(http.StatusOK, user)
}
