// Package normalize converts raw document-store records into canonical domain
// entities and back into store-writable documents.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Normalizer reads raw records. Every recoverable issue becomes a Diagnostic
// and a warn log line; nothing here fails on data quality.
type Normalizer struct {
	log    *logger.Logger
	notify func(exerciseID string, diags []Diagnostic)
}

func New(log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Normalizer{log: log.With("component", "normalize")}
}

// OnDiagnostics registers fn to receive the diagnostics of every record that
// produced any. Not safe to call concurrently with Exercise.
func (n *Normalizer) OnDiagnostics(fn func(exerciseID string, diags []Diagnostic)) {
	n.notify = fn
}

// Exercise converts a raw exercise record into its canonical form.
func (n *Normalizer) Exercise(raw map[string]interface{}) (*domain.Exercise, []Diagnostic, error) {
	c := newCollector()
	ex, err := exercise(raw, c)
	if err != nil {
		return nil, nil, err
	}
	n.report(ex.ID.Hex(), *c.diags)
	return ex, *c.diags, nil
}

// Method converts one raw execution method.
func (n *Normalizer) Method(raw map[string]interface{}) (domain.ExecutionMethod, []Diagnostic) {
	c := newCollector()
	m := method(raw, c)
	n.report("", *c.diags)
	return m, *c.diags
}

func (n *Normalizer) report(exerciseID string, diags []Diagnostic) {
	if n.notify != nil && len(diags) > 0 {
		n.notify(exerciseID, diags)
	}
	for _, d := range diags {
		n.log.Warn("Normalization diagnostic",
			"exerciseId", exerciseID,
			"kind", d.Kind,
			"field", d.Field,
			"value", d.Value,
			"message", d.Message,
		)
	}
}

func exercise(raw map[string]interface{}, c collector) (*domain.Exercise, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: exercise record is nil", ErrMalformedRecord)
	}
	ex := &domain.Exercise{
		ID:                exerciseID(raw, c),
		Name:              localized(raw, "name", c),
		Description:       localized(raw, "description", c),
		BaseMovementID:    optionalString(raw, "baseMovementId", c),
		MovementGroup:     optionalString(raw, "movementGroup", c),
		RequiredLocations: locations(raw, "requiredLocations", c),
		GeneralCues:       textList(raw, "generalCues", c),
		Highlights:        textList(raw, "highlights", c),
	}
	ex.MechanicalType = enumField(raw, "mechanicalType", ParseMechanicalType, c)
	ex.Symmetry = enumField(raw, "symmetry", ParseSymmetry, c)
	ex.MovementType = enumField(raw, "movementType", ParseMovementType, c)
	if t, ok := asTime(raw["createdAt"]); ok {
		ex.CreatedAt = t
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		ex.UpdatedAt = t
	}

	if !isAbsent(raw, "executionMethods") {
		items, ok := asSlice(raw["executionMethods"])
		if !ok {
			return nil, fmt.Errorf("%w: executionMethods is %T, not a list", ErrMalformedRecord, raw["executionMethods"])
		}
		ex.ExecutionMethods = make([]domain.ExecutionMethod, 0, len(items))
		mc := c.at("executionMethods")
		for i, item := range items {
			m, ok := asMap(item)
			if !ok {
				return nil, fmt.Errorf("%w: executionMethods[%d] is %T, not an object", ErrMalformedRecord, i, item)
			}
			ex.ExecutionMethods = append(ex.ExecutionMethods, method(m, mc.index(i)))
		}
	}

	if ex.BaseMovementID == "" && len(ex.ExecutionMethods) > 0 {
		if suggestion, ok := SuggestBaseMovementID(ex.MovementGroup); ok {
			c.add(DiagMissingIdentifier, "baseMovementId", nil,
				"exercise has %d methods but no baseMovementId (movementGroup %q suggests %q)",
				len(ex.ExecutionMethods), ex.MovementGroup, suggestion)
		} else {
			c.add(DiagMissingIdentifier, "baseMovementId", nil,
				"exercise has %d methods but no baseMovementId", len(ex.ExecutionMethods))
		}
	}
	return ex, nil
}

func exerciseID(raw map[string]interface{}, c collector) primitive.ObjectID {
	v, ok := raw["_id"]
	if !ok || v == nil {
		v = raw["id"]
	}
	switch id := v.(type) {
	case nil:
		return primitive.NilObjectID
	case primitive.ObjectID:
		return id
	case string:
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
		if err != nil {
			c.add(DiagShapeAnomaly, "_id", id, "id is not a valid ObjectID hex string")
			return primitive.NilObjectID
		}
		return oid
	}
	c.add(DiagShapeAnomaly, "_id", v, "unexpected id type %T", v)
	return primitive.NilObjectID
}

// MethodHasField reports whether the i-th execution method of a raw exercise
// record carries a non-null key.
func MethodHasField(raw map[string]interface{}, i int, key string) bool {
	items, ok := asSlice(raw["executionMethods"])
	if !ok || i < 0 || i >= len(items) {
		return false
	}
	m, ok := asMap(items[i])
	return ok && !isAbsent(m, key)
}

func method(raw map[string]interface{}, c collector) domain.ExecutionMethod {
	m := domain.ExecutionMethod{
		MethodName:      singleString(raw, "methodName", c),
		LocationMapping: locations(raw, "locationMapping", c),
		GearIDs:         idList(raw, "gearIds", "gearId", c),
		EquipmentIDs:    idList(raw, "equipmentIds", "equipmentId", c),
		BrandID:         optionalString(raw, "brandId", c),
		LifestyleTags:   stringList(raw, "lifestyleTags", c),
		Media:           media(raw["media"], c.at("media")),
		SpecificCues:    textList(raw, "specificCues", c),
		Highlights:      textList(raw, "highlights", c),
		Workflow:        workflow(raw["workflow"], c.at("workflow")),
	}

	if s, ok := asString(raw["location"]); ok && strings.TrimSpace(s) != "" {
		loc, known := ParseLocation(s)
		if !known {
			c.add(DiagUnknownEnum, "location", s, "unrecognized location kept as-is")
		}
		m.Location = loc
	} else if !isAbsent(raw, "location") && !ok {
		c.add(DiagShapeAnomaly, "location", raw["location"], "expected a string")
	}

	m.RequiredGearType = enumField(raw, "requiredGearType", ParseGearType, c)

	if !isAbsent(raw, "notificationText") {
		if t, ok := text(raw["notificationText"], c.at("notificationText")); ok {
			t = capText(t, domain.MaxNotificationLength, c.at("notificationText"))
			m.NotificationText = &t
		}
	}

	if b, ok := asBool(raw["needsLongExplanation"]); ok {
		m.NeedsLongExplanation = b
	}
	m.ExplanationStatus = enumField(raw, "explanationStatus", ParseExplanationStatus, c)
	if m.NeedsLongExplanation && m.ExplanationStatus == "" {
		m.ExplanationStatus = domain.ExplanationMissing
	}
	return m
}

// idList applies the plural-wins migration: a plural array is used as-is (minus
// non-string or blank entries), otherwise a non-blank legacy singular becomes a
// one-element array, otherwise the list is empty.
func idList(raw map[string]interface{}, plural, legacy string, c collector) []string {
	if !isAbsent(raw, plural) {
		if _, ok := asSlice(raw[plural]); ok {
			return stringList(raw, plural, c)
		}
		c.add(DiagShapeAnomaly, plural, raw[plural], "expected a list")
	}
	if s, ok := asString(raw[legacy]); ok && strings.TrimSpace(s) != "" {
		return []string{strings.TrimSpace(s)}
	}
	return []string{}
}

// List readers return nil when the key is absent or unusable, meaning no
// opinion, and a non-nil slice when a list was given, even an empty one.

func stringList(raw map[string]interface{}, key string, c collector) []string {
	if isAbsent(raw, key) {
		return nil
	}
	items, ok := asSlice(raw[key])
	if !ok {
		c.add(DiagShapeAnomaly, key, raw[key], "expected a list")
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := asString(item)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func locations(raw map[string]interface{}, key string, c collector) []domain.Location {
	items := stringList(raw, key, c)
	if items == nil {
		return nil
	}
	out := make([]domain.Location, 0, len(items))
	for _, s := range items {
		loc, known := ParseLocation(s)
		if !known {
			c.add(DiagUnknownEnum, key, s, "unrecognized location kept as-is")
		}
		out = append(out, loc)
	}
	return out
}

func optionalString(raw map[string]interface{}, key string, c collector) string {
	if isAbsent(raw, key) {
		return ""
	}
	s, ok := asString(raw[key])
	if !ok {
		c.add(DiagShapeAnomaly, key, raw[key], "expected a string")
		return ""
	}
	return strings.TrimSpace(s)
}

// singleString reads a field that must be one string. A localized object is
// collapsed with LocalizedText.Best.
func singleString(raw map[string]interface{}, key string, c collector) string {
	v := raw[key]
	if v == nil {
		return ""
	}
	if s, ok := asString(v); ok {
		return s
	}
	if m, ok := asMap(v); ok {
		c.add(DiagShapeAnomaly, key, v, "localized object where a string was expected")
		return collapse(m)
	}
	c.add(DiagShapeAnomaly, key, v, "unexpected type %T", v)
	return ""
}

func collapse(m map[string]interface{}) string {
	lt := domain.LocalizedText{}
	for lang, v := range m {
		if s, ok := asString(v); ok {
			lt[lang] = s
		}
	}
	return lt.Best()
}

func localized(raw map[string]interface{}, key string, c collector) domain.LocalizedText {
	out := domain.LocalizedText{}
	v := raw[key]
	if v == nil {
		return out
	}
	if s, ok := asString(v); ok {
		if strings.TrimSpace(s) != "" {
			c.add(DiagShapeAnomaly, key, s, "plain string stored as %q text", domain.CanonicalLanguage)
			out[domain.CanonicalLanguage] = s
		}
		return out
	}
	m, ok := asMap(v)
	if !ok {
		c.add(DiagShapeAnomaly, key, v, "unexpected type %T", v)
		return out
	}
	for lang, lv := range m {
		s, ok := asString(lv)
		if !ok {
			c.add(DiagShapeAnomaly, key+"."+lang, lv, "expected a string")
			continue
		}
		out[lang] = s
	}
	return out
}

func enumField[T ~string](raw map[string]interface{}, key string, parse func(string) (T, bool), c collector) T {
	var zero T
	if isAbsent(raw, key) {
		return zero
	}
	s, ok := asString(raw[key])
	if !ok {
		c.add(DiagShapeAnomaly, key, raw[key], "expected a string")
		return zero
	}
	if strings.TrimSpace(s) == "" {
		return zero
	}
	v, ok := parse(s)
	if !ok {
		c.add(DiagUnknownEnum, key, s, "unrecognized value treated as absent")
		return zero
	}
	return v
}

// text parses the string | {male, female} union. A localized object that is not
// gendered collapses to plain text.
func text(v interface{}, c collector) (domain.Text, bool) {
	if s, ok := asString(v); ok {
		return domain.PlainText(s), true
	}
	m, ok := asMap(v)
	if !ok {
		c.add(DiagShapeAnomaly, "", v, "unexpected text type %T", v)
		return domain.Text{}, false
	}
	_, hasMale := m["male"]
	_, hasFemale := m["female"]
	if !hasMale && !hasFemale {
		c.add(DiagShapeAnomaly, "", v, "localized object where text was expected")
		return domain.PlainText(collapse(m)), true
	}
	return domain.GenderedText(branch(m, "male", c), branch(m, "female", c)), true
}

func branch(m map[string]interface{}, key string, c collector) string {
	v := m[key]
	if v == nil {
		return ""
	}
	if s, ok := asString(v); ok {
		return s
	}
	if lm, ok := asMap(v); ok {
		c.add(DiagShapeAnomaly, key, v, "localized object where a string was expected")
		return collapse(lm)
	}
	c.add(DiagShapeAnomaly, key, v, "unexpected type %T", v)
	return ""
}

func textList(raw map[string]interface{}, key string, c collector) []domain.Text {
	if isAbsent(raw, key) {
		return nil
	}
	items, ok := asSlice(raw[key])
	if !ok {
		c.add(DiagShapeAnomaly, key, raw[key], "expected a list")
		return nil
	}
	out := make([]domain.Text, 0, len(items))
	lc := c.at(key)
	for i, item := range items {
		if item == nil {
			continue
		}
		if t, ok := text(item, lc.index(i)); ok {
			out = append(out, t)
		}
	}
	return out
}

func capText(t domain.Text, limit int, c collector) domain.Text {
	cut := func(s string) string {
		r := []rune(s)
		if len(r) <= limit {
			return s
		}
		c.add(DiagShapeAnomaly, "", len(r), "text longer than %d characters truncated", limit)
		return string(r[:limit])
	}
	if t.Kind == domain.TextPlain {
		return domain.PlainText(cut(t.Plain))
	}
	return domain.GenderedText(cut(t.Male), cut(t.Female))
}

func media(v interface{}, c collector) domain.Media {
	var out domain.Media
	if v == nil {
		return out
	}
	m, ok := asMap(v)
	if !ok {
		c.add(DiagShapeAnomaly, "", v, "expected an object")
		return out
	}
	out.MainVideoURL = optionalString(m, "mainVideoUrl", c)
	out.ImageURL = optionalString(m, "imageUrl", c)
	if !isAbsent(m, "videoDurationSeconds") {
		if f, ok := asFloat(m["videoDurationSeconds"]); ok {
			out.VideoDurationSeconds = &f
		} else {
			c.add(DiagShapeAnomaly, "videoDurationSeconds", m["videoDurationSeconds"], "expected a number")
		}
	}
	if !isAbsent(m, "instructionalVideos") {
		items, ok := asSlice(m["instructionalVideos"])
		if !ok {
			c.add(DiagShapeAnomaly, "instructionalVideos", m["instructionalVideos"], "expected a list")
			return out
		}
		out.InstructionalVideos = make([]domain.InstructionalVideo, 0, len(items))
		for i, item := range items {
			vm, ok := asMap(item)
			if !ok {
				c.at("instructionalVideos").index(i).add(DiagShapeAnomaly, "", item, "expected an object")
				continue
			}
			url, _ := asString(vm["url"])
			if strings.TrimSpace(url) == "" {
				continue
			}
			lang, _ := asString(vm["lang"])
			out.InstructionalVideos = append(out.InstructionalVideos, domain.InstructionalVideo{
				Lang: strings.TrimSpace(lang),
				URL:  strings.TrimSpace(url),
			})
		}
	}
	return out
}

// workflow defaults every missing flag and timestamp individually.
func workflow(v interface{}, c collector) domain.Workflow {
	var w domain.Workflow
	if v == nil {
		return w
	}
	m, ok := asMap(v)
	if !ok {
		c.add(DiagShapeAnomaly, "", v, "expected an object")
		return w
	}
	flag := func(key string) bool {
		if isAbsent(m, key) {
			return false
		}
		b, ok := asBool(m[key])
		if !ok {
			c.add(DiagShapeAnomaly, key, m[key], "expected a boolean")
		}
		return b
	}
	stamp := func(key string) *time.Time {
		if isAbsent(m, key) {
			return nil
		}
		t, ok := asTime(m[key])
		if !ok {
			c.add(DiagShapeAnomaly, key, m[key], "expected a timestamp")
			return nil
		}
		return &t
	}
	w.Filmed, w.FilmedAt = flag("filmed"), stamp("filmedAt")
	w.Audio, w.AudioAt = flag("audio"), stamp("audioAt")
	w.Edited, w.EditedAt = flag("edited"), stamp("editedAt")
	w.Uploaded, w.UploadedAt = flag("uploaded"), stamp("uploadedAt")

	for i, step := range domain.WorkflowSteps {
		if !w.Done(step) {
			continue
		}
		for _, earlier := range domain.WorkflowSteps[:i] {
			if !w.Done(earlier) {
				c.add(DiagWorkflowOrder, string(step), true, "%s is set while %s is not", step, earlier)
				break
			}
		}
	}
	return w
}
