// Package handlers implements the HTTP endpoints of the navigation API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"atlas-backend/pkg/api"
	appErrors "atlas-backend/pkg/errors"
)

var validate = validator.New()

// decode parses and validates a JSON request body.
func decode(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return appErrors.NewValidation("invalid request body")
	}
	if err := validate.Struct(target); err != nil {
		return appErrors.NewValidation(err.Error())
	}
	return nil
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case appErrors.IsValidation(err):
		api.Error(w, http.StatusBadRequest, err.Error())
	case appErrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, err.Error())
	case appErrors.IsUnavailable(err):
		api.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
