package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/dizimo/core"
	"github.com/trezcool/dizimo/core/igreja"
	"github.com/trezcool/dizimo/core/user"
)

type igrejaApi struct {
	svc    igreja.Service
	usrSvc user.Service
}

func registerIgrejaAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc igreja.Service, usrSvc user.Service) {
	api := igrejaApi{svc: svc, usrSvc: usrSvc}

	ig := g.Group("/igrejas", jwt, staffMiddleware())
	ig.POST("", api.create, adminMiddleware())
	ig.GET("", api.query)
	ig.DELETE("", api.destroyMultiple, adminMiddleware())
	ig.GET("/:id", api.retrieve)
	ig.PUT("/:id", api.update, adminMiddleware())
	ig.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *igrejaApi) create(ctx echo.Context) error {
	var data igreja.NewIgreja
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewIgreja")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	igr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating igreja")
	}
	return ctx.JSON(http.StatusCreated, igr)
}

func (api *igrejaApi) query(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.svc, api.usrSvc)
	if err != nil {
		return err
	}

	filter := new(igreja.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []igreja.Igreja{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx, "nome", "created_at")

	igrs, err := api.svc.Query(ctx.Request().Context(), scope, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying igrejas")
	}
	if igrs == nil {
		igrs = []igreja.Igreja{}
	}
	return ctx.JSON(http.StatusOK, igrs)
}

func (api *igrejaApi) retrieve(ctx echo.Context) error {
	scope, err := getContextScope(ctx, api.svc, api.usrSvc)
	if err != nil {
		return err
	}

	igr, err := api.svc.GetByID(ctx.Request().Context(), scope, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == igreja.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding igreja by ID")
	}
	return ctx.JSON(http.StatusOK, igr)
}

func (api *igrejaApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), core.UnrestrictedScope(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == igreja.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding igreja by ID")
	}

	var data igreja.UpdateIgreja
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateIgreja")
	}
	if err := data.Validate(ctx.Request().Context(), orig, api.svc); err != nil {
		return err
	}

	igr, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating igreja")
	}
	return ctx.JSON(http.StatusOK, igr)
}

func (api *igrejaApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), core.UnrestrictedScope(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == igreja.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding igreja by ID")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting igreja")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *igrejaApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting igrejas")
	}
	return ctx.NoContent(http.StatusNoContent)
}
