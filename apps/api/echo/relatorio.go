package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/pagamento"
	"github.com/trezcool/dizimo/core/user"
)

var agruparParam = "agrupar"

type relatorioApi struct {
	svc    pagamento.Service
	igrSvc igreja.Service
	usrSvc user.Service
}

func registerRelatorioAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc pagamento.Service, igrSvc igreja.Service, usrSvc user.Service) {
	api := relatorioApi{svc: svc, igrSvc: igrSvc, usrSvc: usrSvc}

	rg := g.Group("/relatorio", jwt, staffMiddleware())
	rg.GET("", api.report)
	rg.GET("/resumo", api.resumo)
}

// Handlers

func (api *relatorioApi) report(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return err
	}

	g, err := pagamento.ParseGranularity(ctx.QueryParam(agruparParam))
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: agruparParam, Error: err.Error()})
	}

	report, err := api.svc.Report(ctx.Request().Context(), scope, g)
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *relatorioApi) resumo(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.igrSvc, api.usrSvc)
	if err != nil {
		return err
	}

	res, err := api.svc.Resumo(ctx.Request().Context(), scope)
	if err != nil {
		return errors.Wrap(err, "computing resumo")
	}
	return ctx.JSON(http.StatusOK, res)
}
