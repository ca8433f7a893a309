package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/dizimista"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/user"
	exportsvc "github.com/trezcool/dizimo/services/export"
)

var errIgrejaOutOfScope = "igreja not found"

type dizimistaApi struct {
	svc    dizimista.Service
	igrSvc igreja.Service
	usrSvc user.Service
}

func registerDizimistaAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc dizimista.Service, igrSvc igreja.Service, usrSvc user.Service) {
	api := dizimistaApi{svc: svc, igrSvc: igrSvc, usrSvc: usrSvc}

	dg := g.Group("/dizimistas", jwt, staffMiddleware())
	dg.POST("", api.create)
	dg.GET("", api.query)
	dg.GET("/export", api.export)
	dg.DELETE("", api.destroyMultiple, adminMiddleware())
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id", api.update)
	dg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *dizimistaApi) create(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return err
	}

	var data dizimista.NewDizimista
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDizimista")
	}
	if err := data.Validate(ctx.Request().Context()); err != nil {
		return err
	}
	if !scope.Contains(data.IgrejaID) {
		return core.NewValidationError(nil, core.FieldError{Field: "igreja_id", Error: errIgrejaOutOfScope})
	}

	diz, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating dizimista")
	}
	return ctx.JSON(http.StatusCreated, diz)
}

func (api *dizimistaApi) queryScoped(ctx echo.Context) ([]dizimista.Dizimista, error) {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return nil, err
	}

	filter := new(dizimista.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return []dizimista.Dizimista{}, nil
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx, "nome", "nascimento", "created_at")

	dizs, err := api.svc.Query(ctx.Request().Context(), scope, filter, ordering.Orderings)
	if err != nil {
		return nil, errors.Wrap(err, "querying dizimistas")
	}
	if dizs == nil {
		dizs = []dizimista.Dizimista{}
	}
	return dizs, nil
}

func (api *dizimistaApi) query(ctx echo.Context) error {
	dizs, err := api.queryScoped(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dizs)
}

func (api *dizimistaApi) export(ctx echo.Context) error {
	dizs, err := api.queryScoped(ctx)
	if err != nil {
		return err
	}

	t := exportsvc.Table{
		Title:   "Dizimistas",
		Headers: []string{"Nome", "Igreja", "Gênero", "Nascimento", "Telefone", "Email", "Endereço", "Dízimo (R$)"},
		Rows:    make([][]string, 0, len(dizs)),
	}
	for _, diz := range dizs {
		var nascimento string
		if diz.Perfil.Nascimento.Valid {
			nascimento = diz.Perfil.Nascimento.Time.Format("2006-01-02")
		}
		var dizimo string
		if diz.Dizimo.Cents != 0 {
			dizimo = diz.Dizimo.String()
		}
		t.Rows = append(t.Rows, []string{
			diz.Perfil.Nome,
			diz.IgrejaNome,
			string(diz.Perfil.Genero),
			nascimento,
			diz.Perfil.Telefone.String,
			diz.Perfil.Email.String,
			diz.Perfil.Endereco.String,
			dizimo,
		})
	}
	return writeExport(ctx, "dizimistas", t)
}

func (api *dizimistaApi) retrieve(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return err
	}

	diz, err := api.svc.GetByID(ctx.Request().Context(), scope, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == dizimista.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding dizimista by ID")
	}
	return ctx.JSON(http.StatusOK, diz)
}

func (api *dizimistaApi) update(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return err
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), scope, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == dizimista.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding dizimista by ID")
	}

	var data dizimista.UpdateDizimista
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDizimista")
	}
	if err := data.Validate(ctx.Request().Context()); err != nil {
		return err
	}
	// moving the dizimista to another church requires that church in scope
	if data.IgrejaID != nil && *data.IgrejaID != "" && !scope.Contains(*data.IgrejaID) {
		return core.NewValidationError(nil, core.FieldError{Field: "igreja_id", Error: errIgrejaOutOfScope})
	}

	diz, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating dizimista")
	}
	return ctx.JSON(http.StatusOK, diz)
}

func (api *dizimistaApi) destroy(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return err
	}

	if _, err := api.svc.GetByID(ctx.Request().Context(), scope, ctx.Param("id")); err != nil {
		if errors.Cause(err) == dizimista.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding dizimista by ID")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting dizimista")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *dizimistaApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting dizimistas")
	}
	return ctx.NoContent(http.StatusNoContent)
}
