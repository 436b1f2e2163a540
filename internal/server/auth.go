package server

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"uccdatahub/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// invalidCredentialsMessage is deliberately uniform: a login failure
// never reveals whether the email or the password was wrong.
const invalidCredentialsMessage = "Invalid email or password"

type registerRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.BusinessName = strings.TrimSpace(req.BusinessName)
	req.Email = strings.TrimSpace(req.Email)

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "First name, last name, email and password are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.internalServerError(w)
		return
	}

	user := &types.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if req.BusinessName != "" {
		user.BusinessName = &req.BusinessName
	}

	err = s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, types.ErrDuplicateEmail) {
			s.respondError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		s.logger.WithError(err).Error("failed to create user")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]string{
		"userId":  user.ID,
		"message": "Registration successful",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.users.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			s.respondError(w, http.StatusUnauthorized, invalidCredentialsMessage)
			return
		}
		s.logger.WithError(err).Error("failed to fetch user for login")
		s.internalServerError(w)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.respondError(w, http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}

	if err := s.users.StampLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).Error("failed to stamp last login")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"userId":    user.ID,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"message":   "Login successful",
	})
}
