package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/normalize"
	"alcyxob/fitness-content/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository. Documents
// are decoded into bson.M and converted by the normalizer in both directions.
type mongoExerciseRepository struct {
	collection *mongo.Collection
	normalizer *normalize.Normalizer
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database, normalizer *normalize.Normalizer) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
		normalizer: normalizer,
	}
}

// Create inserts a new exercise.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name.Best() == "" {
		return primitive.NilObjectID, errors.New("exercise name is required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	doc := normalize.ExerciseDocument(exercise)
	doc["createdAt"] = now
	doc["updatedAt"] = now

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var raw bson.M
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	ex, _, err := r.normalizer.Exercise(raw)
	if err != nil {
		return nil, fmt.Errorf("exercise %s: %w", id.Hex(), err)
	}
	return ex, nil
}

// List returns the whole catalog sorted by creation date.
func (r *mongoExerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		ex, _, err := r.normalizer.Exercise(raw)
		if err != nil {
			return nil, fmt.Errorf("exercise %v: %w", raw["_id"], err)
		}
		exercises = append(exercises, *ex)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update rewrites the canonical fields of an exercise. Methods are written as
// a whole array, so legacy method fields disappear on the first save.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}

	set := normalize.ExerciseDocument(exercise)
	delete(set, "_id")
	now := time.Now().UTC()
	set["updatedAt"] = now

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	exercise.UpdatedAt = now
	return nil
}

// Delete removes an exercise and, with it, all its methods and workflows.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoExerciseRepository) UpdateMethodWorkflow(ctx context.Context, id primitive.ObjectID, index int, workflow domain.Workflow) error {
	return r.setMethodField(ctx, id, index, "workflow", normalize.WorkflowDocument(workflow))
}

func (r *mongoExerciseRepository) UpdateMethodMedia(ctx context.Context, id primitive.ObjectID, index int, media domain.Media) error {
	// MethodDocument renders media with the same null rules as a full save.
	doc := normalize.MethodDocument(domain.ExecutionMethod{Media: media})
	return r.setMethodField(ctx, id, index, "media", doc["media"])
}

func (r *mongoExerciseRepository) setMethodField(ctx context.Context, id primitive.ObjectID, index int, field string, value interface{}) error {
	if index < 0 {
		return repository.ErrNotFound
	}
	path := fmt.Sprintf("executionMethods.%d", index)
	filter := bson.M{"_id": id, path: bson.M{"$exists": true}}
	update := bson.M{"$set": bson.M{
		path + "." + field: value,
		"updatedAt":        time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "baseMovementId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "executionMethods.locationMapping", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
