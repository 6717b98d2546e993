package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siegrin/basecamp-backend/api/middleware"
	"github.com/siegrin/basecamp-backend/api/responses"
	"github.com/siegrin/basecamp-backend/api/validators"
	rentalsvc "github.com/siegrin/basecamp-backend/internal/rentals"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/logger"
)

// CreateRental books a pending rental for the authenticated customer.
func CreateRental(svc rentalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRentalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput(*actor.ID, actor.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rental, err := svc.CreateRental(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, rental)
	}
}

// GetRental serves a single rental. Customers can only read their own.
func GetRental(svc rentalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		callerID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "rentalId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rental, err := svc.GetRental(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if middleware.RoleFromContext(r.Context()) != string(enums.RoleAdmin) && rental.UserID != callerID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "rental not found"))
			return
		}

		responses.WriteSuccess(w, rental)
	}
}

// ListRentals pages through rentals. Customers are pinned to their own
// history; admins can filter by any user.
func ListRentals(svc rentalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		callerID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := rentalsvc.ListQuery{Pagination: params}
		values := r.URL.Query()

		if raw := strings.TrimSpace(values.Get("status")); raw != "" {
			status, err := enums.ParseRentalStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			query.Filters.Status = &status
		}

		if middleware.RoleFromContext(r.Context()) == string(enums.RoleAdmin) {
			if raw := strings.TrimSpace(values.Get("user_id")); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
					return
				}
				query.Filters.UserID = &id
			}
		} else {
			query.Filters.UserID = &callerID
		}

		result, err := svc.ListRentals(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminActivateRental hands the gear out and reserves stock.
func AdminActivateRental(svc rentalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return rentalTransition(svc, logg, svcActivate)
}

// AdminCompleteRental takes the gear back and restocks it.
func AdminCompleteRental(svc rentalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return rentalTransition(svc, logg, svcComplete)
}

// AdminCancelRental cancels a pending rental.
func AdminCancelRental(svc rentalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return rentalTransition(svc, logg, svcCancel)
}

type transitionKind int

const (
	svcActivate transitionKind = iota
	svcComplete
	svcCancel
)

func rentalTransition(svc rentalsvc.Service, logg *logger.Logger, kind transitionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "rentalId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var rental *rentalsvc.RentalDTO
		switch kind {
		case svcActivate:
			rental, err = svc.ActivateRental(r.Context(), actor, id)
		case svcComplete:
			rental, err = svc.CompleteRental(r.Context(), actor, id)
		case svcCancel:
			rental, err = svc.CancelRental(r.Context(), actor, id)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rental)
	}
}

// AdminResetRentals wipes the rental history.
func AdminResetRentals(svc rentalsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rental service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		removed, err := svc.ResetRentals(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"removed": removed})
	}
}

type createRentalRequest struct {
	Items     []createRentalItemRequest `json:"items" validate:"required,min=1,dive"`
	StartDate *time.Time                `json:"start_date,omitempty"`
	EndDate   *time.Time                `json:"end_date,omitempty"`
	Notes     *string                   `json:"notes,omitempty"`
}

type createRentalItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Days      int    `json:"days" validate:"required,min=1"`
}

func (r createRentalRequest) toCreateInput(userID uuid.UUID, userName string) (rentalsvc.CreateRentalInput, error) {
	items := make([]rentalsvc.CreateRentalItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return rentalsvc.CreateRentalInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		items = append(items, rentalsvc.CreateRentalItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			Days:      item.Days,
		})
	}

	return rentalsvc.CreateRentalInput{
		UserID:    userID,
		UserName:  userName,
		Items:     items,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Notes:     r.Notes,
	}, nil
}
