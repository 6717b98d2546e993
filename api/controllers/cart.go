package controllers

import (
	"net/http"

	"github.com/siegrin/basecamp-backend/api/responses"
	"github.com/siegrin/basecamp-backend/api/validators"
	"github.com/siegrin/basecamp-backend/internal/cart"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/logger"
)

// ValidateCart checks a client-held cart against live stock.
func ValidateCart(validator *cart.Validator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if validator == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart validator unavailable"))
			return
		}

		var payload validateCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := validator.Validate(r.Context(), payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type validateCartRequest struct {
	Items []cart.Item `json:"items"`
}
