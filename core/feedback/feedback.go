package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/minicrm/core"
)

// Feedback is an append-only message. Contact messages have no user.
type Feedback struct {
	ID        int64      `db:"id" json:"id"`
	UserID    null.Int64 `db:"user_id" json:"user_id"`
	Message   string     `db:"message" json:"message"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"` // UTC
}

type NewFeedback struct {
	Message string `form:"message" validate:"required,notblank"`
}

func (nf *NewFeedback) Validate(validate *validator.Validate) error {
	nf.Message = core.CleanString(nf.Message)
	return validate.Struct(nf)
}

// ContactMessage is submitted from the public contact form.
type ContactMessage struct {
	Name    string `form:"name" validate:"required,notblank"`
	Email   string `form:"email" validate:"required,notblank"`
	Message string `form:"message" validate:"required,notblank"`
}

func (cm *ContactMessage) Validate(validate *validator.Validate) error {
	cm.Name = core.CleanString(cm.Name)
	cm.Email = core.CleanString(cm.Email)
	cm.Message = core.CleanString(cm.Message)
	return validate.Struct(cm)
}

// String is the form under which a contact message is stored.
func (cm ContactMessage) String() string {
	return fmt.Sprintf("CONTACT: %s (%s) -> %s", cm.Name, cm.Email, cm.Message)
}

type (
	Repository interface {
		CreateFeedback(ctx context.Context, fb Feedback) (Feedback, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Submit(ctx context.Context, userID int64, nf NewFeedback) (Feedback, error) {
	return svc.repo.CreateFeedback(ctx, Feedback{
		UserID:    null.Int64From(userID),
		Message:   nf.Message,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Contact(ctx context.Context, cm ContactMessage) (Feedback, error) {
	return svc.repo.CreateFeedback(ctx, Feedback{
		Message:   cm.String(),
		CreatedAt: time.Now().UTC(),
	})
}
