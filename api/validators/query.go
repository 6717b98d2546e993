package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/pagination"
)

// PaginationParams reads the limit and cursor query values. Limits are
// normalized by the repositories; here we only reject garbage input.
func PaginationParams(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{Cursor: strings.TrimSpace(r.URL.Query().Get("cursor"))}

	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return params, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit")
	}
	params.Limit = limit
	return params, nil
}
