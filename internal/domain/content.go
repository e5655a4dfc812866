package domain

// ResolutionContext is the runtime input for picking an execution method.
type ResolutionContext struct {
	Location    Location `json:"location"`
	PersonaTags []string `json:"personaTags,omitempty"`
	BrandID     string   `json:"brandId,omitempty"`
}

// ProductionStatus is derived from a method's workflow flags and media. It is
// never stored.
type ProductionStatus string

const (
	StatusNotStarted       ProductionStatus = "not_started"
	StatusNeedsMedia       ProductionStatus = "needs_media"
	StatusInPostProduction ProductionStatus = "in_post_production"
	StatusReady            ProductionStatus = "ready"
)

// PostProductionStage narrows in_post_production for messaging.
type PostProductionStage string

const (
	StageFilmedNotEdited   PostProductionStage = "filmed_not_edited"
	StageEditedNotUploaded PostProductionStage = "edited_not_uploaded"
)

type GapType string

const (
	GapMissingMedia          GapType = "missing_media"
	GapMissingRequiredMethod GapType = "missing_required_method"
	GapIncompleteWorkflow    GapType = "incomplete_workflow"
)

// Critical reports whether the gap blocks publishing.
func (g GapType) Critical() bool {
	return g == GapMissingMedia || g == GapMissingRequiredMethod
}

// Gap is one classified coverage problem. MethodIndex is -1 for location-level gaps.
type Gap struct {
	Type        GapType             `json:"type"`
	Critical    bool                `json:"critical"`
	Location    Location            `json:"location"`
	MethodIndex int                 `json:"methodIndex"`
	MethodName  string              `json:"methodName,omitempty"`
	Stage       PostProductionStage `json:"stage,omitempty"`
	Message     string              `json:"message"`
}

// Completeness grades a text signal of an exercise.
type Completeness string

const (
	CompletenessComplete Completeness = "complete"
	CompletenessPartial  Completeness = "partial"
	CompletenessMissing  Completeness = "missing"
)

// MethodRef points at a method of the analyzed exercise.
type MethodRef struct {
	Index      int              `json:"index"`
	MethodName string           `json:"methodName"`
	Status     ProductionStatus `json:"status"`
	Workflow   Workflow         `json:"workflow"`
}

// LocationCoverage lists the methods bucketed under one canonical location.
type LocationCoverage struct {
	Location Location    `json:"location"`
	Required bool        `json:"required"`
	Methods  []MethodRef `json:"methods"`
}

// ContentMatrixRow is the per-exercise coverage report. It is recomputed on
// demand and never persisted.
type ContentMatrixRow struct {
	ExerciseID        string             `json:"exerciseId"`
	ExerciseName      string             `json:"exerciseName"`
	Locations         []LocationCoverage `json:"locations"`
	RequiredLocations []Location         `json:"requiredLocations"`
	GapsDetailed      []Gap              `json:"gapsDetailed"`
	CriticalGapCount  int                `json:"criticalGapCount"`
	WorkflowGapCount  int                `json:"workflowGapCount"`

	// UnmappedMethods holds indexes of methods with an empty location mapping.
	UnmappedMethods   []int        `json:"unmappedMethods"`
	DescriptionStatus Completeness `json:"descriptionStatus"`
	GeneralCuesStatus Completeness `json:"generalCuesStatus"`
}

// ReadyToPublish reports whether the row has no critical gaps.
func (r ContentMatrixRow) ReadyToPublish() bool {
	return r.CriticalGapCount == 0
}

// TaskItem is the flat tuple production tracking reads.
type TaskItem struct {
	ExerciseID   string   `json:"exerciseId"`
	ExerciseName string   `json:"exerciseName"`
	Location     Location `json:"location"`
	MethodName   string   `json:"methodName"`
}

// TaskLists are the four production queues.
type TaskLists struct {
	ForFilming []TaskItem `json:"forFilming"`
	ForAudio   []TaskItem `json:"forAudio"`
	ForEditing []TaskItem `json:"forEditing"`
	ForUpload  []TaskItem `json:"forUpload"`
}
