package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/repository"
	"alcyxob/fitness-content/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeExerciseRepo struct {
	mu        sync.Mutex
	exercises map[primitive.ObjectID]domain.Exercise
	order     []primitive.ObjectID
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[primitive.ObjectID]domain.Exercise)}
}

func (r *fakeExerciseRepo) Create(ctx context.Context, ex *domain.Exercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ex.ID = primitive.NewObjectID()
	ex.CreatedAt = time.Now().UTC()
	ex.UpdatedAt = ex.CreatedAt
	r.exercises[ex.ID] = clone(*ex)
	r.order = append(r.order, ex.ID)
	return ex.ID, nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ex, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := clone(ex)
	return &c, nil
}

func (r *fakeExerciseRepo) List(ctx context.Context) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Exercise{}
	for _, id := range r.order {
		if ex, ok := r.exercises[id]; ok {
			out = append(out, clone(ex))
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) Update(ctx context.Context, ex *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[ex.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[ex.ID] = clone(*ex)
	return nil
}

func (r *fakeExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

func (r *fakeExerciseRepo) UpdateMethodWorkflow(ctx context.Context, id primitive.ObjectID, index int, w domain.Workflow) error {
	return r.updateMethod(id, index, func(m *domain.ExecutionMethod) { m.Workflow = w })
}

func (r *fakeExerciseRepo) UpdateMethodMedia(ctx context.Context, id primitive.ObjectID, index int, md domain.Media) error {
	return r.updateMethod(id, index, func(m *domain.ExecutionMethod) { m.Media = md })
}

func (r *fakeExerciseRepo) updateMethod(id primitive.ObjectID, index int, fn func(*domain.ExecutionMethod)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ex, ok := r.exercises[id]
	if !ok || index < 0 || index >= len(ex.ExecutionMethods) {
		return repository.ErrNotFound
	}
	ex = clone(ex)
	fn(&ex.ExecutionMethods[index])
	r.exercises[id] = ex
	return nil
}

// clone copies the methods slice so callers cannot mutate stored state.
func clone(ex domain.Exercise) domain.Exercise {
	ex.ExecutionMethods = append([]domain.ExecutionMethod{}, ex.ExecutionMethods...)
	return ex
}

type fakeEditorRepo struct {
	byEmail map[string]domain.Editor
}

func newFakeEditorRepo() *fakeEditorRepo {
	return &fakeEditorRepo{byEmail: make(map[string]domain.Editor)}
}

func (r *fakeEditorRepo) Create(ctx context.Context, e *domain.Editor) (primitive.ObjectID, error) {
	key := strings.ToLower(e.Email)
	if _, ok := r.byEmail[key]; ok {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	e.ID = primitive.NewObjectID()
	r.byEmail[key] = *e
	return e.ID, nil
}

func (r *fakeEditorRepo) GetByEmail(ctx context.Context, email string) (*domain.Editor, error) {
	e, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *fakeEditorRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Editor, error) {
	for _, e := range r.byEmail {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeStorage struct {
	deleted []string
}

const fakeBase = "https://cdn.test/media/"

func (s *fakeStorage) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "https://upload.test/" + key + "?sig=1", nil
}

func (s *fakeStorage) ObjectURL(key string) string { return fakeBase + key }

func (s *fakeStorage) KeyFromURL(url string) (string, error) {
	if !strings.HasPrefix(url, fakeBase) {
		return "", storage.ErrForeignURL
	}
	return strings.TrimPrefix(url, fakeBase), nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}
