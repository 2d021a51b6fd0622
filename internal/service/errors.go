package service

import "errors"

var (
	ErrUserExists          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrPasswordMismatch    = errors.New("passwords don't match")
	ErrIncorrectPassword   = errors.New("old password is incorrect")
	ErrEmailTaken          = errors.New("email already in use")
	ErrInvalidDiet         = errors.New("unknown dietary preference")
	ErrUserNotFound        = errors.New("user not found")
	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrDuplicateRecipe     = errors.New("recipe already saved")
	ErrFoodNameRequired    = errors.New("food name is required")
	ErrIngredientsRequired = errors.New("at least one ingredient is required")
	ErrNoNutritionData     = errors.New("no nutrition data found")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrImageEncoding       = errors.New("failed to read image")
)
