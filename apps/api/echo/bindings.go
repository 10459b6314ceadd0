package echoapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-forms/core"
)

// pageQuery holds the pagination params of list endpoints.
type pageQuery struct {
	Page    int `query:"page" json:"page" validate:"omitempty,min=1"`
	PerPage int `query:"per_page" json:"per_page" validate:"omitempty,min=1,max=100"`
}

func (q *pageQuery) Bind(ctx echo.Context) error {
	if err := ctx.Bind(q); err != nil {
		return err
	}
	if err := core.Validate.Struct(q); err != nil {
		return err
	}
	if q.Page == 0 {
		q.Page = 1
	}
	return nil
}

// bindValues decodes the JSON object body of a form request. An empty body is
// an empty set of values.
// echo's binder is not used: it would add the path params to the map.
func bindValues(ctx echo.Context) (map[string]interface{}, error) {
	values := make(map[string]interface{})
	err := json.NewDecoder(ctx.Request().Body).Decode(&values)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return values, nil
	default:
		return nil, echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON object").SetInternal(err)
	}
}
