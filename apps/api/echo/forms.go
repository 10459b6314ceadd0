package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-forms/core/catalog"
	"github.com/trezcool/masomo-forms/core/form"
	"github.com/trezcool/masomo-forms/core/pagination"
	"github.com/trezcool/masomo-forms/core/submission"
)

type (
	formApi struct {
		svc *submission.Service
	}

	formSummary struct {
		Name   string   `json:"name"`
		Title  string   `json:"title"`
		Fields []string `json:"fields"`
	}

	formDetail struct {
		formSummary
		Initial   form.Values `json:"initial"`
		Sensitive []string    `json:"sensitive"`
	}

	submissionPage struct {
		Page  pagination.Page         `json:"page"`
		Items []submission.Submission `json:"items"`
	}
)

func registerFormAPI(g *echo.Group, svc *submission.Service) {
	api := formApi{svc: svc}

	fg := g.Group("/forms")
	fg.GET("", api.query)

	dg := fg.Group("/:form")
	dg.GET("", api.retrieve)
	dg.POST("/validate", api.validate)
	dg.POST("/fields/:field/validate", api.validateField)
	dg.POST("/submissions", api.submit)
	dg.GET("/submissions", api.querySubmissions)
	dg.GET("/submissions/:id", api.retrieveSubmission)
}

func summarize(def catalog.Definition) formSummary {
	return formSummary{Name: def.Name, Title: def.Title, Fields: def.Fields()}
}

// Handlers

func (api *formApi) query(ctx echo.Context) error {
	forms := api.svc.Forms()
	resp := make([]formSummary, 0, len(forms))
	for _, name := range forms.Names() {
		def, _ := forms.Get(name)
		resp = append(resp, summarize(def))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *formApi) retrieve(ctx echo.Context) error {
	def, ok := api.svc.Forms().Get(ctx.Param("form"))
	if !ok {
		return errHttpNotFound
	}
	sensitive := def.Sensitive
	if sensitive == nil {
		sensitive = []string{}
	}
	return ctx.JSON(http.StatusOK, formDetail{
		formSummary: summarize(def),
		Initial:     def.Initial,
		Sensitive:   sensitive,
	})
}

func (api *formApi) validate(ctx echo.Context) error {
	values, err := bindValues(ctx)
	if err != nil {
		return err
	}
	errs, err := api.svc.Validate(ctx.Param("form"), values)
	if err != nil {
		return domainError(err)
	}
	if len(errs) > 0 {
		return submission.NewValidationError(form.ErrValidationFailed, errs)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"valid": true})
}

func (api *formApi) validateField(ctx echo.Context) error {
	values, err := bindValues(ctx)
	if err != nil {
		return err
	}
	field := ctx.Param("field")
	msg, err := api.svc.ValidateField(ctx.Param("form"), field, values)
	if err != nil {
		return domainError(err)
	}
	if msg != "" {
		return submission.NewValidationError(form.ErrValidationFailed, form.Errors{field: msg})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"valid": true})
}

func (api *formApi) submit(ctx echo.Context) error {
	values, err := bindValues(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.Submit(ctx.Request().Context(), ctx.Param("form"), values)
	if err != nil {
		return domainError(err)
	}
	return ctx.JSON(http.StatusCreated, api.svc.Public(sub))
}

func (api *formApi) querySubmissions(ctx echo.Context) error {
	var q pageQuery
	if err := q.Bind(ctx); err != nil {
		return err
	}
	page, subs, err := api.svc.List(ctx.Request().Context(), ctx.Param("form"), q.Page, q.PerPage)
	if err != nil {
		return domainError(err)
	}

	items := make([]submission.Submission, 0, len(subs))
	for _, sub := range subs {
		items = append(items, api.svc.Public(sub))
	}
	return ctx.JSON(http.StatusOK, submissionPage{Page: page, Items: items})
}

func (api *formApi) retrieveSubmission(ctx echo.Context) error {
	sub, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(domainError(err), "getting submission")
	}
	if sub.Form != ctx.Param("form") {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, api.svc.Public(sub))
}
