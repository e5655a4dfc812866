package normalize

import (
	"time"

	"alcyxob/fitness-content/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LegacyMethodFields never appear in a written method document.
var LegacyMethodFields = []string{"gearId", "equipmentId"}

// Write rules: an unset optional scalar is written as an explicit null so a
// cleared field is distinguishable from one never set. A non-nil collection is
// written as an array, empty included. A nil collection carries no opinion and
// its key is left out.

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func setList[T any](doc bson.M, key string, items []T, conv func(T) interface{}) {
	if items == nil {
		return
	}
	arr := make(bson.A, 0, len(items))
	for _, item := range items {
		arr = append(arr, conv(item))
	}
	doc[key] = arr
}

func identity[T ~string](v T) interface{} { return string(v) }

func localizedValue(l domain.LocalizedText) interface{} {
	if l == nil {
		return nil
	}
	m := bson.M{}
	for lang, s := range l {
		m[lang] = s
	}
	return m
}

// TextValue renders the text union for storage.
func TextValue(t domain.Text) interface{} {
	if t.Kind == domain.TextPlain {
		return t.Plain
	}
	return bson.M{"male": t.Male, "female": t.Female}
}

// ExerciseDocument renders an exercise for the document store. _id is included
// when set; createdAt/updatedAt are owned by the repository.
func ExerciseDocument(ex *domain.Exercise) bson.M {
	doc := bson.M{
		"name":           localizedValue(ex.Name),
		"description":    localizedValue(ex.Description),
		"baseMovementId": nullable(ex.BaseMovementID),
		"movementGroup":  nullable(ex.MovementGroup),
		"mechanicalType": nullable(string(ex.MechanicalType)),
		"symmetry":       nullable(string(ex.Symmetry)),
		"movementType":   nullable(string(ex.MovementType)),
	}
	if ex.ID != primitive.NilObjectID {
		doc["_id"] = ex.ID
	}
	setList(doc, "requiredLocations", ex.RequiredLocations, identity[domain.Location])
	setList(doc, "generalCues", ex.GeneralCues, TextValue)
	setList(doc, "highlights", ex.Highlights, TextValue)
	setList(doc, "executionMethods", ex.ExecutionMethods, func(m domain.ExecutionMethod) interface{} {
		return MethodDocument(m)
	})
	return doc
}

// MethodDocument renders one execution method. Only the canonical plural
// gearIds/equipmentIds are written.
func MethodDocument(m domain.ExecutionMethod) bson.M {
	doc := bson.M{
		"methodName":           m.MethodName,
		"location":             nullable(string(m.Location)),
		"requiredGearType":     nullable(string(m.RequiredGearType)),
		"brandId":              nullable(m.BrandID),
		"media":                mediaDocument(m.Media),
		"workflow":             WorkflowDocument(m.Workflow),
		"needsLongExplanation": m.NeedsLongExplanation,
		"explanationStatus":    nullable(string(m.ExplanationStatus)),
		"notificationText":     nil,
	}
	if m.NotificationText != nil {
		doc["notificationText"] = TextValue(*m.NotificationText)
	}
	setList(doc, "locationMapping", m.LocationMapping, identity[domain.Location])
	// Id lists are always written, empty included.
	setList(doc, "gearIds", append([]string{}, m.GearIDs...), identity[string])
	setList(doc, "equipmentIds", append([]string{}, m.EquipmentIDs...), identity[string])
	setList(doc, "lifestyleTags", m.LifestyleTags, identity[string])
	setList(doc, "specificCues", m.SpecificCues, TextValue)
	setList(doc, "highlights", m.Highlights, TextValue)
	return doc
}

func mediaDocument(md domain.Media) bson.M {
	doc := bson.M{
		"mainVideoUrl":         nullable(md.MainVideoURL),
		"imageUrl":             nullable(md.ImageURL),
		"videoDurationSeconds": nil,
	}
	if md.VideoDurationSeconds != nil {
		doc["videoDurationSeconds"] = *md.VideoDurationSeconds
	}
	setList(doc, "instructionalVideos", md.InstructionalVideos, func(v domain.InstructionalVideo) interface{} {
		return bson.M{"lang": v.Lang, "url": v.URL}
	})
	return doc
}

// WorkflowDocument renders all four flags and timestamps.
func WorkflowDocument(w domain.Workflow) bson.M {
	return bson.M{
		"filmed":     w.Filmed,
		"filmedAt":   nullableTime(w.FilmedAt),
		"audio":      w.Audio,
		"audioAt":    nullableTime(w.AudioAt),
		"edited":     w.Edited,
		"editedAt":   nullableTime(w.EditedAt),
		"uploaded":   w.Uploaded,
		"uploadedAt": nullableTime(w.UploadedAt),
	}
}
