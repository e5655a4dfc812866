package repository

import (
	"alcyxob/fitness-content/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDuplicate    = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// EditorRepository defines the interface for interacting with editor accounts.
type EditorRepository interface {
	Create(ctx context.Context, editor *domain.Editor) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Editor, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Editor, error)
}

// ExerciseRepository stores exercises. Implementations hand raw records to the
// normalizer, so callers only ever see canonical entities.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// UpdateMethodWorkflow and UpdateMethodMedia touch a single method in place
	// and fail with ErrNotFound if the exercise or the index does not exist.
	UpdateMethodWorkflow(ctx context.Context, id primitive.ObjectID, index int, workflow domain.Workflow) error
	UpdateMethodMedia(ctx context.Context, id primitive.ObjectID, index int, media domain.Media) error
}
