package echoapi

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/user"
	"github.com/trezcool/minicrm/storage/session"
)

type authApi struct {
	svc        *user.Service
	sessions   *session.Manager
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger
}

func registerAuthRoutes(app *echo.Echo, deps *Deps) {
	api := authApi{
		svc:        deps.UserSvc,
		sessions:   deps.Sessions,
		validate:   deps.Validate,
		translator: deps.Translator,
		logger:     deps.Logger,
	}

	app.GET("/register", api.registerForm)
	app.POST("/register", api.register)
	app.GET("/login", api.loginForm)
	app.POST("/login", api.login)
	app.GET("/logout", api.logout)
}

// Handlers

func (api *authApi) registerForm(ctx echo.Context) error {
	return render(ctx, "auth/register", echo.Map{"roles": user.Roles})
}

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		if !core.IsValidationError(err) {
			return errors.Wrap(err, "validating NewUser")
		}
		if errors.Is(err, user.ErrEmailExists) {
			return flashRedirect(ctx, session.FlashDanger, "Email already registered.", "/register")
		}
		api.logger.Debug("invalid registration", core.TranslateErrors(err, api.translator))
		return flashRedirect(ctx, session.FlashDanger, "Invalid data (password min 6).", "/register")
	}

	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		if errors.Cause(err) == user.ErrEmailRace {
			api.logger.Warn("duplicate registration passed the email check", data.Email)
			return flashRedirect(ctx, session.FlashDanger, "Email already registered.", "/register")
		}
		return errors.Wrap(err, "registering user")
	}
	return flashRedirect(ctx, session.FlashSuccess, "Registered successfully. Please login.", "/login")
}

func (api *authApi) loginForm(ctx echo.Context) error {
	return render(ctx, "auth/login", nil)
}

func (api *authApi) login(ctx echo.Context) error {
	var creds user.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), creds)
	if err != nil {
		if err == user.ErrInvalidCredentials {
			return flashRedirect(ctx, session.FlashDanger, "Invalid email/password.", "/login")
		}
		return errors.Wrap(err, "authenticating")
	}

	getSession(ctx).Login(usr.Principal())
	return flashRedirect(ctx, session.FlashSuccess, "Login success!", "/dashboard")
}

func (api *authApi) logout(ctx echo.Context) error {
	if err := resetSession(ctx, api.sessions); err != nil {
		return err
	}
	return flashRedirect(ctx, session.FlashInfo, "Logged out.", "/login")
}
