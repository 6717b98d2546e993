package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/siegrin/basecamp-backend/api/responses"
	"github.com/siegrin/basecamp-backend/api/validators"
	analyticssvc "github.com/siegrin/basecamp-backend/internal/analytics"
	productsvc "github.com/siegrin/basecamp-backend/internal/products"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/logger"
)

// ListProducts serves the public catalog listing.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		query, err := parseProductListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetProduct serves a single public product and counts the view.
func GetProduct(svc productsvc.Service, views analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// View counters are best effort; a miss never blocks the read.
		if views != nil {
			if err := views.RecordProductView(r.Context(), product.ID, product.Name); err != nil && logg != nil {
				logg.Error(r.Context(), "record product view", err)
			}
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminCreateProduct handles catalog creation for admins.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial catalog update.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), actor, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product from the catalog.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type createProductRequest struct {
	Name          string         `json:"name" validate:"required"`
	Description   *string        `json:"description,omitempty"`
	CategoryID    string         `json:"category_id" validate:"required,uuid"`
	SubcategoryID *string        `json:"subcategory_id,omitempty" validate:"omitempty,uuid"`
	PricePerDay   string         `json:"price_per_day" validate:"required"`
	Stock         *int           `json:"stock" validate:"required,min=0"`
	Images        []string       `json:"images,omitempty"`
	Specs         map[string]any `json:"specs,omitempty"`
}

type updateProductRequest struct {
	Name          *string         `json:"name,omitempty"`
	Description   *string         `json:"description,omitempty"`
	CategoryID    *string         `json:"category_id,omitempty" validate:"omitempty,uuid"`
	SubcategoryID *string         `json:"subcategory_id,omitempty" validate:"omitempty,uuid"`
	PricePerDay   *string         `json:"price_per_day,omitempty"`
	Images        *[]string       `json:"images,omitempty"`
	Specs         *map[string]any `json:"specs,omitempty"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	categoryID, err := uuid.Parse(r.CategoryID)
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
	}

	var subcategoryID *uuid.UUID
	if r.SubcategoryID != nil {
		parsed, err := uuid.Parse(*r.SubcategoryID)
		if err != nil {
			return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subcategory id")
		}
		subcategoryID = &parsed
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.PricePerDay))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}

	return productsvc.CreateProductInput{
		Name:          strings.TrimSpace(r.Name),
		Description:   r.Description,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		PricePerDay:   price,
		Stock:         *r.Stock,
		Images:        r.Images,
		Specs:         r.Specs,
	}, nil
}

func (r updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:        r.Name,
		Description: r.Description,
		Images:      r.Images,
		Specs:       r.Specs,
	}

	if r.CategoryID != nil {
		parsed, err := uuid.Parse(*r.CategoryID)
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		input.CategoryID = &parsed
	}
	if r.SubcategoryID != nil {
		parsed, err := uuid.Parse(*r.SubcategoryID)
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subcategory id")
		}
		input.SubcategoryID = &parsed
	}
	if r.PricePerDay != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*r.PricePerDay))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
		}
		input.PricePerDay = &price
	}

	return input, nil
}

func parseProductListQuery(r *http.Request) (productsvc.ListQuery, error) {
	params, err := validators.PaginationParams(r)
	if err != nil {
		return productsvc.ListQuery{}, err
	}

	query := productsvc.ListQuery{Pagination: params}
	values := r.URL.Query()

	if raw := strings.TrimSpace(values.Get("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return productsvc.ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		query.Filters.CategoryID = &id
	}
	if raw := strings.TrimSpace(values.Get("subcategory_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return productsvc.ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subcategory id")
		}
		query.Filters.SubcategoryID = &id
	}
	if raw := strings.TrimSpace(values.Get("availability")); raw != "" {
		availability, err := enums.ParseAvailability(raw)
		if err != nil {
			return productsvc.ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid availability")
		}
		query.Filters.Availability = &availability
	}
	if raw := strings.TrimSpace(values.Get("price_min")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return productsvc.ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_min")
		}
		query.Filters.PriceMin = &price
	}
	if raw := strings.TrimSpace(values.Get("price_max")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return productsvc.ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_max")
		}
		query.Filters.PriceMax = &price
	}
	query.Filters.Query = strings.TrimSpace(values.Get("q"))

	return query, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
