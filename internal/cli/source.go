package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alcyxob/fitness-content/internal/config"
	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/logger"
	"alcyxob/fitness-content/internal/normalize"
	"alcyxob/fitness-content/internal/repository"
	"alcyxob/fitness-content/internal/repository/mongo"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

// record is one normalized exercise with the diagnostics it produced.
type record struct {
	exercise    domain.Exercise
	diagnostics []normalize.Diagnostic
}

// catalog is what every command reads: a file export or the live store.
type catalog struct {
	records []record
	// repo is nil for file sources.
	repo  repository.ExerciseRepository
	close func()
}

func (c *catalog) exercises() []domain.Exercise {
	out := make([]domain.Exercise, len(c.records))
	for i, r := range c.records {
		out[i] = r.exercise
	}
	return out
}

func (c *catalog) find(id string) (*domain.Exercise, error) {
	for i := range c.records {
		if c.records[i].exercise.ID.Hex() == id {
			return &c.records[i].exercise, nil
		}
	}
	return nil, fmt.Errorf("exercise %s not found", id)
}

// addSourceFlags registers the flags shared by every catalog command.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Read exercises from a JSON (mongoexport --jsonArray) or YAML export instead of MongoDB")
	cmd.Flags().String("config", ".", "Directory holding config.yaml for the MongoDB connection")
}

func openCatalog(ctx context.Context, cmd *cobra.Command, log *logger.Logger) (*catalog, error) {
	file, _ := cmd.Flags().GetString("file")
	n := normalize.New(log)
	if file != "" {
		records, err := readExport(file, n)
		if err != nil {
			return nil, err
		}
		return &catalog{records: records, close: func() {}}, nil
	}

	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	client, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	diags := map[string][]normalize.Diagnostic{}
	n.OnDiagnostics(func(id string, d []normalize.Diagnostic) { diags[id] = d })

	repo := mongo.NewMongoExerciseRepository(client.Database(cfg.Database.Name), n)
	exercises, err := repo.List(ctx)
	if err != nil {
		_ = mongo.DisconnectDB(client)
		return nil, err
	}
	records := make([]record, len(exercises))
	for i, ex := range exercises {
		records[i] = record{exercise: ex, diagnostics: diags[ex.ID.Hex()]}
	}
	return &catalog{
		records: records,
		repo:    repo,
		close:   func() { _ = mongo.DisconnectDB(client) },
	}, nil
}

// readExport decodes a file of exercise records. JSON goes through the
// driver's extended JSON reader so mongoexport output ($oid, $date) works.
func readExport(path string, n *normalize.Normalizer) ([]record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raws []map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raws, err = decodeYAML(data)
	default:
		raws, err = decodeExtJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	records := make([]record, 0, len(raws))
	for i, raw := range raws {
		ex, diags, err := n.Exercise(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", path, i, err)
		}
		records = append(records, record{exercise: *ex, diagnostics: diags})
	}
	return records, nil
}

// decodeYAML accepts a top-level list or {exercises: [...]}.
func decodeYAML(data []byte) ([]map[string]interface{}, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if m, ok := doc.(map[string]interface{}); ok {
		doc = m["exercises"]
	}
	items, ok := doc.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list of exercises")
	}
	out := make([]map[string]interface{}, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("item %d is not a mapping", i)
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeExtJSON(data []byte) ([]map[string]interface{}, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var wrapped struct {
			Exercises []json.RawMessage `json:"exercises"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil || wrapped.Exercises == nil {
			return nil, err
		}
		items = wrapped.Exercises
	}
	out := make([]map[string]interface{}, 0, len(items))
	for i, item := range items {
		var m bson.M
		if err := bson.UnmarshalExtJSON(item, false, &m); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}
