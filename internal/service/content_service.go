package service

import (
	"context"
	"errors"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/engine"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNoMethods = errors.New("exercise has no execution methods")

// ResolvedMethod is the method picked for a context plus its derived status.
type ResolvedMethod struct {
	ExerciseID primitive.ObjectID
	Index      int
	Method     domain.ExecutionMethod
	Status     domain.ProductionStatus
}

// CatalogMatrix is the content matrix of the whole catalog.
type CatalogMatrix struct {
	Rows    []domain.ContentMatrixRow `json:"rows"`
	Summary engine.CatalogSummary     `json:"summary"`
}

// ContentService answers read-only questions about catalog content. All
// results are derived on every call; nothing is cached or stored.
type ContentService interface {
	ResolveMethod(ctx context.Context, exerciseID primitive.ObjectID, rctx domain.ResolutionContext) (*ResolvedMethod, error)
	GetExerciseMatrix(ctx context.Context, exerciseID primitive.ObjectID) (*domain.ContentMatrixRow, error)
	GetCatalogMatrix(ctx context.Context) (*CatalogMatrix, error)
	GetTaskLists(ctx context.Context) (*domain.TaskLists, error)
}

type contentService struct {
	exerciseService ExerciseService
	concurrency     int
}

// NewContentService creates a content service. concurrency bounds catalog-wide
// analysis; zero or less uses the engine default.
func NewContentService(exerciseService ExerciseService, concurrency int) ContentService {
	return &contentService{
		exerciseService: exerciseService,
		concurrency:     concurrency,
	}
}

func (s *contentService) ResolveMethod(ctx context.Context, exerciseID primitive.ObjectID, rctx domain.ResolutionContext) (*ResolvedMethod, error) {
	ex, err := s.exerciseService.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	m, index := engine.Resolve(ex, rctx)
	if m == nil {
		return nil, ErrNoMethods
	}
	return &ResolvedMethod{
		ExerciseID: ex.ID,
		Index:      index,
		Method:     *m,
		Status:     engine.Status(*m),
	}, nil
}

func (s *contentService) GetExerciseMatrix(ctx context.Context, exerciseID primitive.ObjectID) (*domain.ContentMatrixRow, error) {
	ex, err := s.exerciseService.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	row := engine.AnalyzeExercise(ex)
	return &row, nil
}

func (s *contentService) GetCatalogMatrix(ctx context.Context) (*CatalogMatrix, error) {
	rows, err := s.catalogRows(ctx)
	if err != nil {
		return nil, err
	}
	return &CatalogMatrix{Rows: rows, Summary: engine.Summarize(rows)}, nil
}

func (s *contentService) GetTaskLists(ctx context.Context) (*domain.TaskLists, error) {
	rows, err := s.catalogRows(ctx)
	if err != nil {
		return nil, err
	}
	lists := engine.BuildTaskLists(rows)
	return &lists, nil
}

func (s *contentService) catalogRows(ctx context.Context) ([]domain.ContentMatrixRow, error) {
	exercises, err := s.exerciseService.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	return engine.AnalyzeCatalog(ctx, exercises, s.concurrency)
}
