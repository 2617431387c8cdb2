package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/product"
	"github.com/trezcool/minicrm/storage/session"
	"github.com/trezcool/minicrm/storage/uploads"
)

var errInvalidImage = errors.New("invalid image")

type productApi struct {
	svc      *product.Service
	uploads  *uploads.Store
	validate *validator.Validate
	logger   core.Logger
}

func registerProductRoutes(app *echo.Echo, authed, admin echo.MiddlewareFunc, deps *Deps) {
	api := productApi{
		svc:      deps.ProductSvc,
		uploads:  deps.Uploads,
		validate: deps.Validate,
		logger:   deps.Logger,
	}

	g := app.Group("/products", authed)
	g.GET("", api.list)
	g.GET("/new", api.newForm, admin)
	g.POST("/new", api.create, admin)
	g.GET("/:id", api.detail)
	g.GET("/:id/edit", api.editForm, admin)
	g.POST("/:id/edit", api.update, admin)
	g.POST("/:id/delete", api.delete, admin)
}

// saveImage stores the optional "image" file of the request.
// A request without image yields an invalid null.String.
func (api *productApi) saveImage(ctx echo.Context) (null.String, error) {
	fh, err := ctx.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return null.String{}, nil
		}
		return null.String{}, errors.Wrap(err, "reading image")
	}
	if fh.Filename == "" {
		return null.String{}, nil
	}

	image, err := api.uploads.Save(fh)
	if err != nil {
		switch errors.Cause(err) {
		case uploads.ErrInvalidExtension, uploads.ErrInvalidFilename:
			api.logger.Debug("rejected upload", fh.Filename, err)
			return null.String{}, errInvalidImage
		}
		return null.String{}, err
	}
	return image, nil
}

// discardImage removes an image saved for a product that was not stored.
func (api *productApi) discardImage(image null.String) {
	if err := api.uploads.Remove(image); err != nil {
		api.logger.Warn("could not remove orphan upload", image.String, err)
	}
}

// Handlers

func (api *productApi) list(ctx echo.Context) error {
	var filter product.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	res, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing products")
	}
	filter.Clean()
	return render(ctx, "products/list", echo.Map{"result": res, "filter": filter})
}

func (api *productApi) detail(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == product.ErrNotFound {
			return flashRedirect(ctx, session.FlashWarning, "Product not found.", "/products")
		}
		return errors.Wrap(err, "getting product")
	}
	return render(ctx, "products/detail", echo.Map{"product": p})
}

func (api *productApi) newForm(ctx echo.Context) error {
	return render(ctx, "products/form", echo.Map{"mode": "create", "product": nil})
}

func (api *productApi) create(ctx echo.Context) error {
	var data product.NewProduct
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProduct")
	}
	price, stock, err := data.Validate(api.validate)
	if err != nil {
		if core.IsValidationError(err) {
			return flashRedirect(ctx, session.FlashDanger, "Invalid product data.", "/products/new")
		}
		return errors.Wrap(err, "validating NewProduct")
	}

	image, err := api.saveImage(ctx)
	if err != nil {
		if err == errInvalidImage {
			return flashRedirect(ctx, session.FlashDanger, "Invalid image type.", "/products/new")
		}
		return errors.Wrap(err, "saving product image")
	}

	if _, err = api.svc.Create(ctx.Request().Context(), data, price, stock, image); err != nil {
		api.discardImage(image)
		return errors.Wrap(err, "creating product")
	}
	return flashRedirect(ctx, session.FlashSuccess, "Product added.", "/products")
}

func (api *productApi) editForm(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == product.ErrNotFound {
			return flashRedirect(ctx, session.FlashWarning, "Product not found.", "/products")
		}
		return errors.Wrap(err, "getting product")
	}
	return render(ctx, "products/form", echo.Map{"mode": "edit", "product": p})
}

func (api *productApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	formPath := fmt.Sprintf("/products/%d/edit", id)

	// nothing is written for a product that does not exist
	if _, err = api.svc.GetByID(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == product.ErrNotFound {
			return flashRedirect(ctx, session.FlashWarning, "Product not found.", "/products")
		}
		return errors.Wrap(err, "getting product")
	}

	var data product.NewProduct
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProduct")
	}
	price, stock, err := data.Validate(api.validate)
	if err != nil {
		if core.IsValidationError(err) {
			return flashRedirect(ctx, session.FlashDanger, "Invalid product data.", formPath)
		}
		return errors.Wrap(err, "validating NewProduct")
	}

	image, err := api.saveImage(ctx)
	if err != nil {
		if err == errInvalidImage {
			return flashRedirect(ctx, session.FlashDanger, "Invalid image type.", formPath)
		}
		return errors.Wrap(err, "saving product image")
	}

	if _, err = api.svc.Update(ctx.Request().Context(), id, data, price, stock, image); err != nil {
		api.discardImage(image)
		if errors.Cause(err) == product.ErrNotFound {
			return flashRedirect(ctx, session.FlashWarning, "Product not found.", "/products")
		}
		return errors.Wrap(err, "updating product")
	}
	return flashRedirect(ctx, session.FlashSuccess, "Product updated.", "/products")
}

func (api *productApi) delete(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == product.ErrNotFound {
			return flashRedirect(ctx, session.FlashWarning, "Product not found.", "/products")
		}
		return errors.Wrap(err, "deleting product")
	}
	return flashRedirect(ctx, session.FlashInfo, "Product deleted.", "/products")
}
