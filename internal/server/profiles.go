package server

import (
	"errors"
	"net/http"
	"strings"

	"uccdatahub/internal/store"
	"uccdatahub/pkg/types"
)

type saveProfileRequest struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	types.SearchProfile
}

func (s *Service) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveProfileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "Profile name and user ID are required")
		return
	}

	profile := &types.Profile{
		Name:   req.Name,
		UserID: req.UserID,
		Config: req.SearchProfile,
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.logger.WithError(err).Error("failed to save profile")
		s.respondError(w, http.StatusInternalServerError, "An error occurred while saving the profile")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Profile saved successfully"})
}

type loadProfilesQuery struct {
	UserID string `form:"userId"`
}

func (s *Service) handleLoadProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var q loadProfilesQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil || q.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	profiles, err := s.profiles.ProfilesByUser(ctx, q.UserID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load profiles")
		s.respondError(w, http.StatusInternalServerError, "An error occurred while loading the profiles")
		return
	}

	s.respondJSON(w, http.StatusOK, profiles)
}

type saveConfigurationRequest struct {
	State string `json:"state"`
	Email string `json:"email"`
	types.ColumnMapping
}

func (s *Service) handleSaveConfiguration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveConfigurationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if req.State == "" {
		s.respondError(w, http.StatusBadRequest, "State is required")
		return
	}
	if !s.isAdminEmail(req.Email) {
		s.respondError(w, http.StatusForbidden, "Not authorized to save configurations")
		return
	}

	state, err := store.NormalizeState(req.State)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Unknown state")
		return
	}

	mapping := req.ColumnMapping
	mapping.Normalize()
	for _, group := range [][]types.Column{mapping.CommonColumns, mapping.Table1Columns, mapping.Table2Columns} {
		for _, col := range group {
			if !store.ValidColumnName(col.Content) {
				s.respondError(w, http.StatusBadRequest, "Invalid column name: "+col.Content)
				return
			}
		}
	}

	if err := s.configurations.Upsert(ctx, state, mapping); err != nil {
		s.logger.WithError(err).Error("failed to save configuration")
		s.respondError(w, http.StatusInternalServerError, "An error occurred while saving the configuration")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Configuration saved successfully"})
}

type loadConfigurationQuery struct {
	State string `form:"state"`
}

func (s *Service) handleLoadConfiguration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var q loadConfigurationQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil || q.State == "" {
		s.respondError(w, http.StatusBadRequest, "State is required")
		return
	}

	state, err := store.NormalizeState(q.State)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Unknown state")
		return
	}

	configuration, err := s.configurations.Configuration(ctx, state)
	if err != nil {
		if errors.Is(err, types.ErrConfigurationNotFound) {
			s.respondError(w, http.StatusNotFound, "Configuration not found")
			return
		}
		s.logger.WithError(err).Error("failed to load configuration")
		s.respondError(w, http.StatusInternalServerError, "An error occurred while loading the configuration")
		return
	}

	s.respondJSON(w, http.StatusOK, configuration.Config)
}
