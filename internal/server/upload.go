package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"uccdatahub/internal/importer"
	"uccdatahub/pkg/types"
)

func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		s.logger.WithError(err).Info("failed to parse upload form")
		s.respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	if !s.isAdminEmail(r.FormValue("email")) {
		s.respondError(w, http.StatusForbidden, "Not authorized to upload data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	mapping, err := decodeMapping(r)
	if err != nil {
		s.logger.WithError(err).Info("malformed upload column grouping")
		s.respondError(w, http.StatusBadRequest, "Invalid column configuration")
		return
	}

	tempPath, err := s.saveUpload(file)
	if err != nil {
		s.logger.WithError(err).Error("failed to persist upload")
		s.internalServerError(w)
		return
	}

	result, err := s.importer.Run(ctx, importer.Request{
		State:    r.FormValue("state"),
		Mapping:  mapping,
		FilePath: tempPath,
	})
	if err != nil {
		if errors.Is(err, types.ErrUnknownState) || errors.Is(err, types.ErrBadIdentifier) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.WithError(err).WithField("file", header.Filename).Error("import failed")
		s.respondError(w, http.StatusInternalServerError, "An error occurred while processing the upload")
		return
	}

	s.logger.WithField("state", result.State).
		WithField("rows", result.RowsImported).
		Info("upload imported")

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": "Data uploaded successfully",
		"rows":    result.RowsImported,
	})
}

// saveUpload spools the multipart file to the upload directory. The
// importer removes it when done.
func (s *Service) saveUpload(file io.Reader) (string, error) {
	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return "", err
	}

	temp, err := os.CreateTemp(s.config.UploadDir, "upload-*.csv")
	if err != nil {
		return "", err
	}
	defer temp.Close()

	if _, err := io.Copy(temp, file); err != nil {
		os.Remove(temp.Name())
		return "", err
	}

	return temp.Name(), nil
}

func decodeMapping(r *http.Request) (types.ColumnMapping, error) {
	var mapping types.ColumnMapping
	var err error

	if mapping.CommonColumns, err = decodeColumns(r.FormValue("commonColumns")); err != nil {
		return mapping, fmt.Errorf("commonColumns: %w", err)
	}
	if mapping.Table1Columns, err = decodeColumns(r.FormValue("table1Columns")); err != nil {
		return mapping, fmt.Errorf("table1Columns: %w", err)
	}
	if mapping.Table2Columns, err = decodeColumns(r.FormValue("table2Columns")); err != nil {
		return mapping, fmt.Errorf("table2Columns: %w", err)
	}

	return mapping, nil
}

// decodeColumns parses a column-grouping form field. The mapper posts
// each group as a JSON string; an absent group is empty, a malformed one
// is an error so a mistyped grouping never imports with fewer columns
// than the admin configured.
func decodeColumns(raw string) ([]types.Column, error) {
	if raw == "" {
		return []types.Column{}, nil
	}

	var columns []types.Column
	if err := json.Unmarshal([]byte(raw), &columns); err != nil {
		return nil, err
	}
	return columns, nil
}
