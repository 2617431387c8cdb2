package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/dashboard"
	"github.com/trezcool/minicrm/core/feedback"
	"github.com/trezcool/minicrm/storage/session"
)

type dashboardApi struct {
	svc         *dashboard.Service
	feedbackSvc *feedback.Service
	validate    *validator.Validate
}

func registerDashboardRoutes(app *echo.Echo, authed echo.MiddlewareFunc, deps *Deps) {
	api := dashboardApi{
		svc:         deps.DashboardSvc,
		feedbackSvc: deps.FeedbackSvc,
		validate:    deps.Validate,
	}

	app.GET("/dashboard", api.dashboard, authed)
	app.POST("/feedback", api.feedback, authed)
	app.POST("/contact", api.contact)
}

// Handlers

func (api *dashboardApi) dashboard(ctx echo.Context) error {
	sum, err := api.svc.Summary(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "summarizing dashboard")
	}
	return render(ctx, "dashboard", echo.Map{"summary": sum})
}

func (api *dashboardApi) feedback(ctx echo.Context) error {
	var data feedback.NewFeedback
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeedback")
	}
	if err := data.Validate(api.validate); err != nil {
		if core.IsValidationError(err) {
			return flashRedirect(ctx, session.FlashWarning, "Feedback empty.", "/dashboard")
		}
		return errors.Wrap(err, "validating NewFeedback")
	}

	if _, err := api.feedbackSvc.Submit(ctx.Request().Context(), getSession(ctx).Principal.ID, data); err != nil {
		return errors.Wrap(err, "submitting feedback")
	}
	return flashRedirect(ctx, session.FlashSuccess, "Thanks for feedback!", "/dashboard")
}

func (api *dashboardApi) contact(ctx echo.Context) error {
	var data feedback.ContactMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ContactMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		if core.IsValidationError(err) {
			return flashRedirect(ctx, session.FlashDanger, "Fill all contact fields.", "/dashboard")
		}
		return errors.Wrap(err, "validating ContactMessage")
	}

	if _, err := api.feedbackSvc.Contact(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "saving contact message")
	}
	return flashRedirect(ctx, session.FlashSuccess, "Contact saved!", "/dashboard")
}
