package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const editorCollectionName = "editors"

// mongoEditorRepository implements repository.EditorRepository.
type mongoEditorRepository struct {
	collection *mongo.Collection
}

// NewMongoEditorRepository creates a new editor repository backed by MongoDB.
func NewMongoEditorRepository(db *mongo.Database) repository.EditorRepository {
	return &mongoEditorRepository{
		collection: db.Collection(editorCollectionName),
	}
}

// Create inserts a new editor account. Emails are stored lowercased.
func (r *mongoEditorRepository) Create(ctx context.Context, editor *domain.Editor) (primitive.ObjectID, error) {
	if editor.Email == "" || editor.PasswordHash == "" || editor.Role == "" {
		return primitive.NilObjectID, errors.New("editor email, password hash, and role are required")
	}

	editor.ID = primitive.NewObjectID()
	editor.Email = strings.ToLower(strings.TrimSpace(editor.Email))
	now := time.Now().UTC()
	editor.CreatedAt = now
	editor.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, editor)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByEmail retrieves an editor by email address.
func (r *mongoEditorRepository) GetByEmail(ctx context.Context, email string) (*domain.Editor, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetByID retrieves an editor by ObjectID.
func (r *mongoEditorRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Editor, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoEditorRepository) findOne(ctx context.Context, filter bson.M) (*domain.Editor, error) {
	var editor domain.Editor
	err := r.collection.FindOne(ctx, filter).Decode(&editor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &editor, nil
}

// EnsureEditorIndexes creates necessary indexes for the editors collection.
func EnsureEditorIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
