package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core/permission"
	"github.com/kitobai/kitob/core/school"
)

// crudActions are the permission actions of a resource.
type crudActions struct {
	view, create, edit, delete string
}

func (acts crudActions) middlewares(authz permission.Authorizer) (view, create, edit, delete echo.MiddlewareFunc) {
	return permMiddleware(authz, acts.view),
		permMiddleware(authz, acts.create),
		permMiddleware(authz, acts.edit),
		permMiddleware(authz, acts.delete)
}

type namedApi struct {
	svc school.NamedService
}

func registerNamedAPI(g *echo.Group, svc school.NamedService, authz permission.Authorizer, acts crudActions) {
	api := namedApi{svc: svc}
	view, create, edit, del := acts.middlewares(authz)

	g.GET("", api.query, view)
	g.POST("", api.create, create)
	g.GET("/:id", api.retrieve, view)
	g.PUT("/:id", api.update, edit)
	g.PATCH("/:id/status", api.updateStatus, edit)
	g.DELETE("/:id", api.destroy, del)
}

func (api *namedApi) query(ctx echo.Context) error {
	items, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrapf(err, "listing %ss", api.svc.Kind().Name)
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *namedApi) create(ctx echo.Context) error {
	var data school.NamedInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NamedInput")
	}
	if err := ctx.Validate(&data); err != nil {
		return err
	}

	item, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrapf(err, "creating %s", api.svc.Kind().Name)
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *namedApi) retrieve(ctx echo.Context) error {
	item, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "getting %s", api.svc.Kind().Name)
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *namedApi) update(ctx echo.Context) error {
	var data school.NamedInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NamedInput")
	}
	if err := ctx.Validate(&data); err != nil {
		return err
	}

	item, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrapf(err, "updating %s", api.svc.Kind().Name)
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *namedApi) updateStatus(ctx echo.Context) error {
	status, err := bindStatus(ctx)
	if err != nil {
		return err
	}
	item, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), status)
	if err != nil {
		return errors.Wrapf(err, "updating %s status", api.svc.Kind().Name)
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *namedApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrapf(err, "deleting %s", api.svc.Kind().Name)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type classApi struct {
	svc school.ClassService
}

func registerClassAPI(g *echo.Group, svc school.ClassService, authz permission.Authorizer) {
	api := classApi{svc: svc}
	view, create, edit, del := crudActions{
		view:   permission.ClassesView,
		create: permission.ClassesCreate,
		edit:   permission.ClassesEdit,
		delete: permission.ClassesDelete,
	}.middlewares(authz)

	g.GET("", api.query, view)
	g.POST("", api.create, create)
	g.GET("/:id", api.retrieve, view)
	g.PUT("/:id", api.update, edit)
	g.PATCH("/:id/status", api.updateStatus, edit)
	g.DELETE("/:id", api.destroy, del)
}

func (api *classApi) query(ctx echo.Context) error {
	var filter school.ClassFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ClassFilter")
	}
	classes, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) create(ctx echo.Context) error {
	var data school.ClassInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassInput")
	}
	if err := ctx.Validate(&data); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) update(ctx echo.Context) error {
	var data school.ClassInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassInput")
	}
	if err := ctx.Validate(&data); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) updateStatus(ctx echo.Context) error {
	status, err := bindStatus(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), status)
	if err != nil {
		return errors.Wrap(err, "updating class status")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type academicYearApi struct {
	svc school.AcademicYearService
}

func registerAcademicYearAPI(g *echo.Group, svc school.AcademicYearService, authz permission.Authorizer) {
	api := academicYearApi{svc: svc}
	view, create, edit, del := crudActions{
		view:   permission.AcademicYearsView,
		create: permission.AcademicYearsCreate,
		edit:   permission.AcademicYearsEdit,
		delete: permission.AcademicYearsDelete,
	}.middlewares(authz)

	g.GET("", api.query, view)
	g.POST("", api.create, create)
	g.GET("/active", api.active, view)
	g.GET("/:id", api.retrieve, view)
	g.PUT("/:id", api.update, edit)
	g.DELETE("/:id", api.destroy, del)
}

func (api *academicYearApi) query(ctx echo.Context) error {
	years, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing academic years")
	}
	return ctx.JSON(http.StatusOK, years)
}

func (api *academicYearApi) active(ctx echo.Context) error {
	ay, err := api.svc.GetActive(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting active academic year")
	}
	return ctx.JSON(http.StatusOK, ay)
}

func (api *academicYearApi) create(ctx echo.Context) error {
	var data school.AcademicYearInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AcademicYearInput")
	}
	if err := ctx.Validate(&data); err != nil {
		return err
	}

	ay, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating academic year")
	}
	return ctx.JSON(http.StatusCreated, ay)
}

func (api *academicYearApi) retrieve(ctx echo.Context) error {
	ay, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting academic year")
	}
	return ctx.JSON(http.StatusOK, ay)
}

func (api *academicYearApi) update(ctx echo.Context) error {
	var data school.AcademicYearInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AcademicYearInput")
	}
	if err := ctx.Validate(&data); err != nil {
		return err
	}

	ay, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating academic year")
	}
	return ctx.JSON(http.StatusOK, ay)
}

func (api *academicYearApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting academic year")
	}
	return ctx.NoContent(http.StatusNoContent)
}
