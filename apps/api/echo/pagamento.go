package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dizimo/core/dizimista"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/pagamento"
	"github.com/trezcool/dizimo/core/user"
	exportsvc "github.com/trezcool/dizimo/services/export"
)

type pagamentoApi struct {
	svc    pagamento.Service
	igrSvc igreja.Service
	usrSvc user.Service
}

func registerPagamentoAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc pagamento.Service, igrSvc igreja.Service, usrSvc user.Service) {
	api := pagamentoApi{svc: svc, igrSvc: igrSvc, usrSvc: usrSvc}

	pg := g.Group("/pagamentos", jwt, staffMiddleware())
	pg.POST("", api.create)
	pg.GET("", api.query)
	pg.GET("/export", api.export)
	pg.DELETE("", api.destroyMultiple, adminMiddleware())
	pg.GET("/:id", api.retrieve)
	pg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *pagamentoApi) create(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return err
	}
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data pagamento.NewPagamento
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPagamento")
	}
	if err := data.Validate(ctx.Request().Context()); err != nil {
		return err
	}

	pag, err := api.svc.Create(ctx.Request().Context(), scope, data, ctxUsr.ID)
	if err != nil {
		if errors.Cause(err) == dizimista.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating pagamento")
	}
	return ctx.JSON(http.StatusCreated, pag)
}

func (api *pagamentoApi) queryScoped(ctx echo.Context) ([]pagamento.Pagamento, error) {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return nil, err
	}

	filter := new(pagamento.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return []pagamento.Pagamento{}, nil
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, "data", "valor_centavos")

	pags, err := api.svc.Query(ctx.Request().Context(), scope, filter, ordering.Orderings)
	if err != nil {
		return nil, errors.Wrap(err, "querying pagamentos")
	}
	if pags == nil {
		pags = []pagamento.Pagamento{}
	}
	return pags, nil
}

func (api *pagamentoApi) query(ctx echo.Context) error {
	pags, err := api.queryScoped(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pags)
}

func (api *pagamentoApi) export(ctx echo.Context) error {
	pags, err := api.queryScoped(ctx)
	if err != nil {
		return err
	}

	t := exportsvc.Table{
		Title:   "Pagamentos",
		Headers: []string{"Data", "Dizimista", "Igreja", "Valor (R$)", "Registrado por"},
		Rows:    make([][]string, 0, len(pags)),
	}
	for _, pag := range pags {
		t.Rows = append(t.Rows, []string{
			pag.Data.Format("2006-01-02 15:04"),
			pag.DizimistaNome,
			pag.IgrejaNome,
			pag.Valor.String(),
			pag.RegistradoPor,
		})
	}
	return writeExport(ctx, "pagamentos", t)
}

func (api *pagamentoApi) retrieve(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return err
	}

	pag, err := api.svc.GetByID(ctx.Request().Context(), scope, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == pagamento.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding pagamento by ID")
	}
	return ctx.JSON(http.StatusOK, pag)
}

func (api *pagamentoApi) destroy(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return err
	}

	if _, err := api.svc.GetByID(ctx.Request().Context(), scope, ctx.Param("id")); err != nil {
		if errors.Cause(err) == pagamento.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding pagamento by ID")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting pagamento")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *pagamentoApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting pagamentos")
	}
	return ctx.NoContent(http.StatusNoContent)
}
