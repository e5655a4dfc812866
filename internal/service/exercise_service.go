package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/logger"
	"alcyxob/fitness-content/internal/normalize"
	"alcyxob/fitness-content/internal/repository"
	"alcyxob/fitness-content/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrMethodNotFound    = errors.New("execution method not found")
	ErrValidationFailed  = errors.New("exercise validation failed")
	ErrWorkflowReset     = errors.New("a completed workflow step cannot be reset")
	ErrUnknownStep       = errors.New("unknown workflow step")
	ErrInvalidMediaKind  = errors.New("media kind must be video or image")
	ErrContentTypeDenied = errors.New("content type does not match media kind")
)

// MediaKind selects which media slot of a method an upload targets.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "image"
)

// MediaUpload is handed to the client: PUT the file to UploadURL with the given
// content type, then attach MediaURL to the method.
type MediaUpload struct {
	UploadURL   string    `json:"uploadUrl"`
	ObjectKey   string    `json:"objectKey"`
	MediaURL    string    `json:"mediaUrl"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ExerciseService interface {
	// Normalize previews what a raw record becomes without saving it.
	Normalize(raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error)

	CreateExercise(ctx context.Context, raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error)
	DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error

	AddMethod(ctx context.Context, exerciseID primitive.ObjectID, raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error)
	RemoveMethod(ctx context.Context, exerciseID primitive.ObjectID, index int) (*domain.Exercise, error)

	// UpdateWorkflow applies flag changes to one method. Setting a flag stamps
	// its completion time; clearing a completed flag fails with ErrWorkflowReset.
	UpdateWorkflow(ctx context.Context, exerciseID primitive.ObjectID, index int, changes map[domain.WorkflowStep]bool) (*domain.Workflow, error)

	RequestMediaUpload(ctx context.Context, exerciseID primitive.ObjectID, index int, kind MediaKind, contentType string) (*MediaUpload, error)
	AttachMedia(ctx context.Context, exerciseID primitive.ObjectID, index int, kind MediaKind, url string, durationSeconds *float64) (*domain.Media, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	normalizer   *normalize.Normalizer
	fileStorage  storage.FileStorage
	log          *logger.Logger
	now          func() time.Time
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, normalizer *normalize.Normalizer, fileStorage storage.FileStorage, log *logger.Logger) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		normalizer:   normalizer,
		fileStorage:  fileStorage,
		log:          log.With("service", "exercise"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *exerciseService) Normalize(raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error) {
	ex, diags, err := s.normalizer.Exercise(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if ex.Name.Best() == "" {
		return nil, diags, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	return ex, diags, nil
}

// CreateExercise normalizes an incoming record and stores it.
func (s *exerciseService) CreateExercise(ctx context.Context, raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error) {
	ex, diags, err := s.Normalize(raw)
	if err != nil {
		return nil, diags, err
	}
	if _, err := s.exerciseRepo.Create(ctx, ex); err != nil {
		return nil, diags, err
	}
	return ex, diags, nil
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.List(ctx)
}

// UpdateExercise replaces an exercise with a normalized version of raw. The id
// in the path wins over any id in the body. Lists, media and workflows the body
// leaves out keep their stored values, and a completed workflow step cannot be
// cleared (ErrWorkflowReset).
func (s *exerciseService) UpdateExercise(ctx context.Context, exerciseID primitive.ObjectID, raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error) {
	// 1. Load the stored version
	existing, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, nil, err
	}

	// 2. Normalize the body
	ex, diags, err := s.Normalize(raw)
	if err != nil {
		return nil, diags, err
	}
	ex.ID = existing.ID
	ex.CreatedAt = existing.CreatedAt

	// 3. Carry over what the body has no opinion on
	dropped, err := s.carryOver(existing, ex, raw)
	if err != nil {
		return nil, diags, err
	}

	// 4. Save
	if err := s.exerciseRepo.Update(ctx, ex); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, diags, ErrExerciseNotFound
		}
		return nil, diags, err
	}

	// 5. Clean up media of methods the body removed
	inUse := map[string]bool{}
	for _, m := range ex.ExecutionMethods {
		inUse[m.Media.MainVideoURL] = true
		inUse[m.Media.ImageURL] = true
	}
	for _, m := range dropped {
		for _, url := range []string{m.Media.MainVideoURL, m.Media.ImageURL} {
			if url != "" && !inUse[url] {
				s.deleteStoredObject(ctx, url)
			}
		}
	}
	return ex, diags, nil
}

// carryOver fills ex with the stored values raw left out and returns the stored
// methods that no longer appear in ex.
func (s *exerciseService) carryOver(existing, ex *domain.Exercise, raw map[string]interface{}) ([]domain.ExecutionMethod, error) {
	if ex.RequiredLocations == nil {
		ex.RequiredLocations = existing.RequiredLocations
	}
	if ex.GeneralCues == nil {
		ex.GeneralCues = existing.GeneralCues
	}
	if ex.Highlights == nil {
		ex.Highlights = existing.Highlights
	}
	if ex.ExecutionMethods == nil {
		ex.ExecutionMethods = existing.ExecutionMethods
		return nil, nil
	}

	used := make([]bool, len(existing.ExecutionMethods))
	now := s.now()
	for i := range ex.ExecutionMethods {
		m := &ex.ExecutionMethods[i]
		j := matchMethod(existing.ExecutionMethods, used, m.MethodName, i)
		if j < 0 {
			continue
		}
		used[j] = true
		prev := existing.ExecutionMethods[j]

		if m.LocationMapping == nil {
			m.LocationMapping = prev.LocationMapping
		}
		if m.LifestyleTags == nil {
			m.LifestyleTags = prev.LifestyleTags
		}
		if m.SpecificCues == nil {
			m.SpecificCues = prev.SpecificCues
		}
		if m.Highlights == nil {
			m.Highlights = prev.Highlights
		}
		if !normalize.MethodHasField(raw, i, "media") {
			m.Media = prev.Media
		} else if m.Media.InstructionalVideos == nil {
			m.Media.InstructionalVideos = prev.Media.InstructionalVideos
		}

		if !normalize.MethodHasField(raw, i, "workflow") {
			m.Workflow = prev.Workflow
			continue
		}
		w, err := advanceWorkflow(prev.Workflow, m.Workflow, now)
		if err != nil {
			return nil, fmt.Errorf("method %q: %w", m.MethodName, err)
		}
		m.Workflow = w
	}

	var dropped []domain.ExecutionMethod
	for j, ok := range used {
		if !ok {
			dropped = append(dropped, existing.ExecutionMethods[j])
		}
	}
	return dropped, nil
}

// matchMethod pairs a method of the body with a stored one: the stored method at
// the same index if its name matches, else the first unused one with that name.
func matchMethod(stored []domain.ExecutionMethod, used []bool, name string, index int) int {
	if index < len(stored) && !used[index] && stored[index].MethodName == name {
		return index
	}
	for j := range stored {
		if !used[j] && stored[j].MethodName == name {
			return j
		}
	}
	return -1
}

// advanceWorkflow applies a workflow from a request body to the stored one.
// Completed steps keep their time; newly set steps take the body's time or now.
func advanceWorkflow(prev, next domain.Workflow, now time.Time) (domain.Workflow, error) {
	w := prev
	for _, step := range domain.WorkflowSteps {
		done, want := prev.Done(step), next.Done(step)
		switch {
		case done && !want:
			return prev, fmt.Errorf("%w: %s", ErrWorkflowReset, step)
		case want && !done:
			at := now
			if t := next.At(step); t != nil {
				at = *t
			}
			w.Mark(step, at)
		}
	}
	return w, nil
}

// DeleteExercise removes an exercise and the stored media of all its methods.
func (s *exerciseService) DeleteExercise(ctx context.Context, exerciseID primitive.ObjectID) error {
	existing, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return err
	}
	if err := s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	for i := range existing.ExecutionMethods {
		s.deleteStoredMedia(ctx, existing.ExecutionMethods[i].Media)
	}
	return nil
}

// AddMethod appends a normalized method with a fresh workflow.
func (s *exerciseService) AddMethod(ctx context.Context, exerciseID primitive.ObjectID, raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error) {
	ex, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, nil, err
	}

	m, diags := s.normalizer.Method(raw)
	if strings.TrimSpace(m.MethodName) == "" {
		return nil, diags, fmt.Errorf("%w: methodName is required", ErrValidationFailed)
	}
	m.Workflow = domain.Workflow{}
	ex.ExecutionMethods = append(ex.ExecutionMethods, m)

	if err := s.exerciseRepo.Update(ctx, ex); err != nil {
		return nil, diags, err
	}
	return ex, diags, nil
}

// RemoveMethod drops the method at index together with its workflow. Later
// methods shift down by one.
func (s *exerciseService) RemoveMethod(ctx context.Context, exerciseID primitive.ObjectID, index int) (*domain.Exercise, error) {
	ex, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(ex.ExecutionMethods) {
		return nil, ErrMethodNotFound
	}

	removed := ex.ExecutionMethods[index]
	ex.ExecutionMethods = append(ex.ExecutionMethods[:index:index], ex.ExecutionMethods[index+1:]...)
	if err := s.exerciseRepo.Update(ctx, ex); err != nil {
		return nil, err
	}
	s.deleteStoredMedia(ctx, removed.Media)
	return ex, nil
}

func (s *exerciseService) UpdateWorkflow(ctx context.Context, exerciseID primitive.ObjectID, index int, changes map[domain.WorkflowStep]bool) (*domain.Workflow, error) {
	ex, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(ex.ExecutionMethods) {
		return nil, ErrMethodNotFound
	}

	for step := range changes {
		if !isWorkflowStep(step) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, step)
		}
	}

	w := ex.ExecutionMethods[index].Workflow
	now := s.now()
	changed := false
	for _, step := range domain.WorkflowSteps {
		want, ok := changes[step]
		if !ok {
			continue
		}
		done := w.Done(step)
		switch {
		case want && !done:
			w.Mark(step, now)
			changed = true
		case !want && done:
			return nil, fmt.Errorf("%w: %s", ErrWorkflowReset, step)
		}
	}
	if !changed {
		return &w, nil
	}

	if err := s.exerciseRepo.UpdateMethodWorkflow(ctx, exerciseID, index, w); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMethodNotFound
		}
		return nil, err
	}
	s.log.Info("Workflow updated", "exerciseId", exerciseID.Hex(), "method", index, "changes", changes)
	return &w, nil
}

func isWorkflowStep(step domain.WorkflowStep) bool {
	for _, s := range domain.WorkflowSteps {
		if s == step {
			return true
		}
	}
	return false
}

var mediaExtensions = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
}

// RequestMediaUpload reserves an object key and presigns a PUT for it.
func (s *exerciseService) RequestMediaUpload(ctx context.Context, exerciseID primitive.ObjectID, index int, kind MediaKind, contentType string) (*MediaUpload, error) {
	if kind != MediaVideo && kind != MediaImage {
		return nil, ErrInvalidMediaKind
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(contentType, string(kind)+"/") {
		return nil, ErrContentTypeDenied
	}

	ex, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(ex.ExecutionMethods) {
		return nil, ErrMethodNotFound
	}

	objectKey := fmt.Sprintf("exercises/%s/%s/%s%s", exerciseID.Hex(), kind, uuid.NewString(), mediaExtensions[contentType])
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &MediaUpload{
		UploadURL:   uploadURL,
		ObjectKey:   objectKey,
		MediaURL:    s.fileStorage.ObjectURL(objectKey),
		ContentType: contentType,
		ExpiresAt:   s.now().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

// AttachMedia stores url in the kind's slot of the method. A replaced object
// that lives in our bucket is deleted.
func (s *exerciseService) AttachMedia(ctx context.Context, exerciseID primitive.ObjectID, index int, kind MediaKind, url string, durationSeconds *float64) (*domain.Media, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrValidationFailed)
	}
	if durationSeconds != nil && *durationSeconds < 0 {
		return nil, fmt.Errorf("%w: duration cannot be negative", ErrValidationFailed)
	}

	ex, err := s.GetExerciseByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(ex.ExecutionMethods) {
		return nil, ErrMethodNotFound
	}

	media := ex.ExecutionMethods[index].Media
	var replaced string
	switch kind {
	case MediaVideo:
		replaced, media.MainVideoURL = media.MainVideoURL, url
		if durationSeconds != nil {
			media.VideoDurationSeconds = durationSeconds
		}
	case MediaImage:
		replaced, media.ImageURL = media.ImageURL, url
	default:
		return nil, ErrInvalidMediaKind
	}

	if err := s.exerciseRepo.UpdateMethodMedia(ctx, exerciseID, index, media); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMethodNotFound
		}
		return nil, err
	}
	if replaced != "" && replaced != url {
		s.deleteStoredObject(ctx, replaced)
	}
	return &media, nil
}

func (s *exerciseService) deleteStoredMedia(ctx context.Context, m domain.Media) {
	for _, url := range []string{m.MainVideoURL, m.ImageURL} {
		if url != "" {
			s.deleteStoredObject(ctx, url)
		}
	}
}

// deleteStoredObject is best effort; URLs outside our bucket are left alone.
func (s *exerciseService) deleteStoredObject(ctx context.Context, url string) {
	key, err := s.fileStorage.KeyFromURL(url)
	if err != nil {
		return
	}
	if err := s.fileStorage.DeleteObject(ctx, key); err != nil {
		s.log.Warn("Failed to delete replaced media", "key", key, "error", err)
	}
}
