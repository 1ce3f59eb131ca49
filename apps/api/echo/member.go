package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/permission"
	exportsvc "github.com/kitobai/kitob/services/export"
)

type personApi struct {
	svc   member.PersonService
	sheet string
}

// registerPersonAPI serves the students or the teachers. sheet names the export sheet and file.
func registerPersonAPI(g *echo.Group, svc member.PersonService, sheet string, authz permission.Authorizer, acts crudActions) {
	api := personApi{svc: svc, sheet: sheet}
	view, create, edit, del := acts.middlewares(authz)

	g.GET("", api.query, view)
	g.POST("", api.create, create)
	g.GET("/export", api.export, view)
	g.GET("/:id", api.retrieve, view)
	g.PUT("/:id", api.update, edit)
	g.PATCH("/:id/status", api.updateStatus, edit)
	g.DELETE("/:id", api.destroy, del)
}

func (api *personApi) query(ctx echo.Context) error {
	people, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrapf(err, "listing %ss", api.svc.Kind().Name)
	}
	return ctx.JSON(http.StatusOK, people)
}

func (api *personApi) export(ctx echo.Context) error {
	people, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrapf(err, "listing %ss", api.svc.Kind().Name)
	}
	return sendXLSX(ctx, api.sheet+".xlsx", func(w io.Writer) error {
		return exportsvc.People(w, api.sheet, people)
	})
}

func (api *personApi) create(ctx echo.Context) error {
	var data member.PersonInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PersonInput")
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrapf(err, "creating %s", api.svc.Kind().Name)
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *personApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "getting %s", api.svc.Kind().Name)
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *personApi) update(ctx echo.Context) error {
	var data member.PersonInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PersonInput")
	}

	p, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrapf(err, "updating %s", api.svc.Kind().Name)
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *personApi) updateStatus(ctx echo.Context) error {
	status, err := bindStatus(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), status)
	if err != nil {
		return errors.Wrapf(err, "updating %s status", api.svc.Kind().Name)
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *personApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrapf(err, "deleting %s", api.svc.Kind().Name)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type employeeApi struct {
	svc member.EmployeeService
}

func registerEmployeeAPI(g *echo.Group, svc member.EmployeeService, authz permission.Authorizer) {
	api := employeeApi{svc: svc}
	view, create, edit, del := crudActions{
		view:   permission.EmployeesView,
		create: permission.EmployeesCreate,
		edit:   permission.EmployeesEdit,
		delete: permission.EmployeesDelete,
	}.middlewares(authz)

	g.GET("", api.query, view)
	g.POST("", api.create, create)
	g.GET("/export", api.export, view)
	g.GET("/:id", api.retrieve, view)
	g.PUT("/:id", api.update, edit)
	g.PATCH("/:id/status", api.updateStatus, edit)
	g.DELETE("/:id", api.destroy, del)
}

func (api *employeeApi) query(ctx echo.Context) error {
	emps, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing employees")
	}
	return ctx.JSON(http.StatusOK, emps)
}

func (api *employeeApi) export(ctx echo.Context) error {
	emps, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing employees")
	}
	return sendXLSX(ctx, "xodimlar.xlsx", func(w io.Writer) error {
		return exportsvc.Employees(w, emps)
	})
}

func (api *employeeApi) create(ctx echo.Context) error {
	var data member.EmployeeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmployeeInput")
	}

	e, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating employee")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *employeeApi) retrieve(ctx echo.Context) error {
	e, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting employee")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *employeeApi) update(ctx echo.Context) error {
	var data member.EmployeeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmployeeInput")
	}

	e, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating employee")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *employeeApi) updateStatus(ctx echo.Context) error {
	status, err := bindStatus(ctx)
	if err != nil {
		return err
	}
	e, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), status)
	if err != nil {
		return errors.Wrap(err, "updating employee status")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *employeeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting employee")
	}
	return ctx.NoContent(http.StatusNoContent)
}
