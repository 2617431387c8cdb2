package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/student"
	"github.com/trezcool/minicrm/storage/session"
)

const exportFilename = "students_export.csv"

type studentApi struct {
	svc        *student.Service
	validate   *validator.Validate
	exportPath string
}

func registerStudentRoutes(app *echo.Echo, authed echo.MiddlewareFunc, deps *Deps) {
	api := studentApi{
		svc:        deps.StudentSvc,
		validate:   deps.Validate,
		exportPath: deps.Conf.Export.Path,
	}

	g := app.Group("/students", authed)
	g.GET("", api.list)
	g.GET("/new", api.newForm)
	g.POST("/new", api.create)
	g.GET("/export.csv", api.export)
	g.POST("/bulk-delete", api.bulkDelete)
	g.GET("/:id/edit", api.editForm)
	g.POST("/:id/edit", api.update)
	g.POST("/:id/delete", api.delete)
}

// Handlers

func (api *studentApi) list(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	res, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	filter.Clean()
	return render(ctx, "students/list", echo.Map{"result": res, "filter": filter})
}

func (api *studentApi) newForm(ctx echo.Context) error {
	return render(ctx, "students/form", echo.Map{"student": nil})
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		if core.IsValidationError(err) {
			return flashRedirect(ctx, session.FlashDanger, "Name & Email required.", "/students/new")
		}
		return errors.Wrap(err, "validating NewStudent")
	}

	if _, err := api.svc.Create(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "creating student")
	}
	return flashRedirect(ctx, session.FlashSuccess, "Student added.", "/students")
}

func (api *studentApi) editForm(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	s, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return flashRedirect(ctx, session.FlashWarning, "Student not found.", "/students")
		}
		return errors.Wrap(err, "getting student")
	}
	return render(ctx, "students/form", echo.Map{"student": s})
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data student.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		if core.IsValidationError(err) {
			return flashRedirect(ctx, session.FlashDanger, "Name & Email required.", fmt.Sprintf("/students/%d/edit", id))
		}
		return errors.Wrap(err, "validating NewStudent")
	}

	if _, err = api.svc.Update(ctx.Request().Context(), id, data); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return flashRedirect(ctx, session.FlashWarning, "Student not found.", "/students")
		}
		return errors.Wrap(err, "updating student")
	}
	return flashRedirect(ctx, session.FlashSuccess, "Student updated.", "/students")
}

func (api *studentApi) delete(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return flashRedirect(ctx, session.FlashWarning, "Student not found.", "/students")
		}
		return errors.Wrap(err, "deleting student")
	}
	return flashRedirect(ctx, session.FlashInfo, "Student deleted.", "/students")
}

func (api *studentApi) bulkDelete(ctx echo.Context) error {
	ids, err := formIDs(ctx, "ids")
	if err != nil {
		if err == errInvalidID {
			return flashRedirect(ctx, session.FlashDanger, "Invalid selection.", "/students")
		}
		return err
	}

	n, err := api.svc.DeleteMany(ctx.Request().Context(), ids...)
	if err != nil {
		if errors.Cause(err) == student.ErrNoSelection {
			return flashRedirect(ctx, session.FlashWarning, "Select at least one.", "/students")
		}
		return errors.Wrap(err, "deleting students")
	}
	return flashRedirect(ctx, session.FlashInfo, fmt.Sprintf("Deleted %d students.", n), "/students")
}

func (api *studentApi) export(ctx echo.Context) error {
	data, err := api.svc.ExportToFile(ctx.Request().Context(), api.exportPath)
	if err != nil {
		return errors.Wrap(err, "exporting students")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exportFilename))
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
