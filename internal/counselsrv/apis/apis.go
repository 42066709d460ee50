// Package apis defines the HTTP route handlers. Handlers construct
// their data accessor from the request scope and never carry tenant
// identifiers themselves; permission checks are declared per route in
// the route tables.
package apis

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
)

var validate = validator.New()

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return httpx.ErrInvalidRequest(err.Error())
	}
	return nil
}

func uuidParam(r *http.Request, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, httpx.ErrInvalidRequest("invalid identifier")
	}
	return id, nil
}
