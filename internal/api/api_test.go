package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/drafts"
	"alcyxob/fitness-content/internal/logger"
	"alcyxob/fitness-content/internal/normalize"
	"alcyxob/fitness-content/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

// stubExerciseService overrides only what a test needs; other calls panic.
type stubExerciseService struct {
	service.ExerciseService
	create         func(raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error)
	updateWorkflow func(id primitive.ObjectID, index int, changes map[domain.WorkflowStep]bool) (*domain.Workflow, error)
}

func (s *stubExerciseService) CreateExercise(ctx context.Context, raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error) {
	return s.create(raw)
}

func (s *stubExerciseService) UpdateWorkflow(ctx context.Context, id primitive.ObjectID, index int, changes map[domain.WorkflowStep]bool) (*domain.Workflow, error) {
	return s.updateWorkflow(id, index, changes)
}

type stubContentService struct {
	service.ContentService
	resolve func(id primitive.ObjectID, rctx domain.ResolutionContext) (*service.ResolvedMethod, error)
	tasks   func() (*domain.TaskLists, error)
}

func (s *stubContentService) ResolveMethod(ctx context.Context, id primitive.ObjectID, rctx domain.ResolutionContext) (*service.ResolvedMethod, error) {
	return s.resolve(id, rctx)
}

func (s *stubContentService) GetTaskLists(ctx context.Context) (*domain.TaskLists, error) {
	return s.tasks()
}

type memDraftStore struct {
	items map[string]drafts.Envelope
}

func (s *memDraftStore) Save(ctx context.Context, key string, env drafts.Envelope, ttl time.Duration) error {
	s.items[key] = env
	return nil
}

func (s *memDraftStore) Load(ctx context.Context, key string) (*drafts.Envelope, error) {
	env, ok := s.items[key]
	if !ok {
		return nil, drafts.ErrNotFound
	}
	return &env, nil
}

func (s *memDraftStore) Delete(ctx context.Context, key string) error {
	delete(s.items, key)
	return nil
}

func signToken(t *testing.T, editorID string, role domain.Role) string {
	t.Helper()
	claims := &jwtClaims{
		EditorID: editorID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestRouter(exercises service.ExerciseService, content service.ContentService, cache *drafts.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, Dependencies{
		JWTSecret:       testSecret,
		AllowOrigins:    []string{"http://localhost:5173"},
		Log:             logger.NewNop(),
		ExerciseService: exercises,
		ContentService:  content,
		Drafts:          cache,
	})
	return router
}

func do(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthAndRoles(t *testing.T) {
	router := newTestRouter(&stubExerciseService{}, &stubContentService{}, nil)

	if w := do(router, http.MethodGet, "/api/v1/exercises", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	producer := signToken(t, primitive.NewObjectID().Hex(), domain.RoleProducer)
	if w := do(router, http.MethodPost, "/api/v1/exercises", producer, `{}`); w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for producer creating an exercise, got %d", w.Code)
	}

	if w := do(router, http.MethodGet, "/api/v1/exercises", "not-a-token", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for malformed token, got %d", w.Code)
	}

	// drafts are disabled in this router
	if w := do(router, http.MethodGet, "/api/v1/drafts/x", producer, ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for draft routes without a cache, got %d", w.Code)
	}
}

func TestCreateExerciseReturnsDiagnostics(t *testing.T) {
	var got map[string]interface{}
	exercises := &stubExerciseService{
		create: func(raw map[string]interface{}) (*domain.Exercise, []normalize.Diagnostic, error) {
			got = raw
			return &domain.Exercise{ID: primitive.NewObjectID(), Name: domain.LocalizedText{"en": "Dip"}},
				[]normalize.Diagnostic{{Kind: normalize.DiagUnknownEnum, Field: "symmetry", Message: "dropped"}}, nil
		},
	}
	router := newTestRouter(exercises, &stubContentService{}, nil)
	editor := signToken(t, primitive.NewObjectID().Hex(), domain.RoleEditor)

	w := do(router, http.MethodPost, "/api/v1/exercises", editor, `{"name":{"en":"Dip"},"symmetry":"weird"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if got["symmetry"] != "weird" {
		t.Errorf("Expected raw body passed through, got %v", got)
	}
	var resp ExerciseWriteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Diagnostics) != 1 || resp.Diagnostics[0].Kind != normalize.DiagUnknownEnum {
		t.Errorf("Expected one unknown_enum diagnostic, got %+v", resp.Diagnostics)
	}

	w = do(router, http.MethodPost, "/api/v1/exercises", editor, `[1,2]`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-object body, got %d", w.Code)
	}
}

func TestUpdateWorkflowHandler(t *testing.T) {
	id := primitive.NewObjectID()
	var gotChanges map[domain.WorkflowStep]bool
	exercises := &stubExerciseService{
		updateWorkflow: func(gotID primitive.ObjectID, index int, changes map[domain.WorkflowStep]bool) (*domain.Workflow, error) {
			if gotID != id || index != 2 {
				t.Errorf("Unexpected target %s/%d", gotID.Hex(), index)
			}
			gotChanges = changes
			if !changes[domain.StepFilmed] {
				return nil, service.ErrWorkflowReset
			}
			return &domain.Workflow{Filmed: true}, nil
		},
	}
	router := newTestRouter(exercises, &stubContentService{}, nil)
	producer := signToken(t, primitive.NewObjectID().Hex(), domain.RoleProducer)
	path := "/api/v1/exercises/" + id.Hex() + "/methods/2/workflow"

	w := do(router, http.MethodPatch, path, producer, `{"filmed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(gotChanges) != 1 || !gotChanges[domain.StepFilmed] {
		t.Errorf("Unexpected changes %v", gotChanges)
	}

	if w := do(router, http.MethodPatch, path, producer, `{"filmed":false}`); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for reset, got %d", w.Code)
	}
	if w := do(router, http.MethodPatch, "/api/v1/exercises/"+id.Hex()+"/methods/-1/workflow", producer, `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative index, got %d", w.Code)
	}
	if w := do(router, http.MethodPatch, "/api/v1/exercises/nope/methods/0/workflow", producer, `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad id, got %d", w.Code)
	}
}

func TestResolveHandler(t *testing.T) {
	id := primitive.NewObjectID()
	var got domain.ResolutionContext
	content := &stubContentService{
		resolve: func(gotID primitive.ObjectID, rctx domain.ResolutionContext) (*service.ResolvedMethod, error) {
			got = rctx
			return &service.ResolvedMethod{
				ExerciseID: gotID,
				Index:      1,
				Method: domain.ExecutionMethod{
					MethodName:   "Bench",
					SpecificCues: []domain.Text{domain.GenderedText("Keep your chest up", "Keep your chest up, girl"), domain.PlainText("Breathe")},
				},
				Status: domain.StatusNeedsMedia,
			}, nil
		},
	}
	router := newTestRouter(&stubExerciseService{}, content, nil)
	token := signToken(t, primitive.NewObjectID().Hex(), domain.RoleEditor)

	w := do(router, http.MethodGet, "/api/v1/exercises/"+id.Hex()+"/resolve?location=PARK&persona=a,b&persona=c&brand=acme&gender=female", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got.Location != domain.LocationPark || got.BrandID != "acme" || len(got.PersonaTags) != 3 {
		t.Errorf("Unexpected resolution context %+v", got)
	}

	var resp struct {
		ExerciseID string `json:"exerciseId"`
		Method     struct {
			Index      int    `json:"index"`
			MethodName string `json:"methodName"`
			Status     string `json:"status"`
		} `json:"method"`
		Text ResolvedText `json:"text"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Method.Index != 1 || resp.Method.MethodName != "Bench" || resp.Method.Status != "needs_media" {
		t.Errorf("Unexpected method %+v", resp.Method)
	}
	if len(resp.Text.SpecificCues) != 2 || resp.Text.SpecificCues[0] != "Keep your chest up, girl" {
		t.Errorf("Expected female cues, got %v", resp.Text.SpecificCues)
	}

	if w := do(router, http.MethodGet, "/api/v1/exercises/"+id.Hex()+"/resolve?gender=other", token, ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown gender, got %d", w.Code)
	}

	content.resolve = func(primitive.ObjectID, domain.ResolutionContext) (*service.ResolvedMethod, error) {
		return nil, service.ErrNoMethods
	}
	if w := do(router, http.MethodGet, "/api/v1/exercises/"+id.Hex()+"/resolve", token, ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for exercise without methods, got %d", w.Code)
	}
}

func TestTaskListsHandler(t *testing.T) {
	content := &stubContentService{
		tasks: func() (*domain.TaskLists, error) {
			return &domain.TaskLists{
				ForFilming: []domain.TaskItem{{ExerciseID: "e1", ExerciseName: "Squat", Location: domain.LocationHome, MethodName: "Bodyweight"}},
				ForAudio:   []domain.TaskItem{},
				ForEditing: []domain.TaskItem{},
				ForUpload:  []domain.TaskItem{},
			}, nil
		},
	}
	router := newTestRouter(&stubExerciseService{}, content, nil)
	token := signToken(t, primitive.NewObjectID().Hex(), domain.RoleProducer)

	w := do(router, http.MethodGet, "/api/v1/content/tasks", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var lists map[string][]map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &lists); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lists["forFilming"]) != 1 || lists["forFilming"][0]["location"] != "home" {
		t.Errorf("Unexpected task lists %v", lists)
	}
	if lists["forUpload"] == nil {
		t.Error("Expected forUpload to be an empty array, not null")
	}
}

func TestDraftRoutesAreScopedPerEditor(t *testing.T) {
	cache := drafts.NewCache(&memDraftStore{items: map[string]drafts.Envelope{}}, time.Hour, time.Hour, nil)
	router := newTestRouter(&stubExerciseService{}, &stubContentService{}, cache)
	alice := signToken(t, primitive.NewObjectID().Hex(), domain.RoleEditor)
	bob := signToken(t, primitive.NewObjectID().Hex(), domain.RoleEditor)

	if w := do(router, http.MethodPut, "/api/v1/drafts/new-exercise", alice, `{"name":{"en":"Dip"}}`); w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}
	w := do(router, http.MethodGet, "/api/v1/drafts/new-exercise", alice, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var env drafts.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.SchemaVersion != drafts.SchemaVersion || !strings.Contains(string(env.Payload), "Dip") {
		t.Errorf("Unexpected envelope %+v", env)
	}

	if w := do(router, http.MethodGet, "/api/v1/drafts/new-exercise", bob, ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected another editor not to see the draft, got %d", w.Code)
	}
	if w := do(router, http.MethodPut, "/api/v1/drafts/new-exercise", alice, `{broken`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid JSON, got %d", w.Code)
	}
	if w := do(router, http.MethodDelete, "/api/v1/drafts/new-exercise", alice, ""); w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
	if w := do(router, http.MethodGet, "/api/v1/drafts/new-exercise", alice, ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after discard, got %d", w.Code)
	}
}
