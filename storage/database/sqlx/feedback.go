package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/feedback"
	"github.com/trezcool/minicrm/storage/database"
)

type feedbackRepository struct {
	db core.DB
}

var _ feedback.Repository = (*feedbackRepository)(nil)

func NewFeedbackRepository(db core.DB) *feedbackRepository {
	return &feedbackRepository{db: db}
}

func (repo *feedbackRepository) CreateFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	res, err := database.Execute(
		ctx, repo.db,
		"INSERT INTO feedback (user_id, message, created_at) VALUES (?, ?, ?)",
		[]interface{}{fb.UserID, fb.Message, fb.CreatedAt},
		database.Write,
	)
	if err != nil {
		return feedback.Feedback{}, errors.Wrap(err, "inserting feedback")
	}
	fb.ID = res.ID
	return fb, nil
}
