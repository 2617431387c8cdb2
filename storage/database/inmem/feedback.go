package inmemdb

import (
	"context"

	"github.com/trezcool/minicrm/core/feedback"
)

type feedbackRepository struct {
	db *DB
}

var _ feedback.Repository = (*feedbackRepository)(nil)

func NewFeedbackRepository(db *DB) *feedbackRepository {
	return &feedbackRepository{db: db}
}

func (repo *feedbackRepository) CreateFeedback(_ context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	fb.ID = repo.db.nextID("feedback")
	repo.db.feedback = append(repo.db.feedback, fb)
	return fb, nil
}

// QueryAllFeedback returns every stored feedback in insertion order.
func (repo *feedbackRepository) QueryAllFeedback(_ context.Context) ([]feedback.Feedback, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]feedback.Feedback{}, repo.db.feedback...), nil
}
