// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a physical context an execution method applies to.
type Location string

const (
	LocationHome    Location = "home"
	LocationPark    Location = "park"
	LocationOffice  Location = "office"
	LocationGym     Location = "gym"
	LocationStreet  Location = "street"
	LocationSchool  Location = "school"
	LocationAirport Location = "airport"
	LocationLibrary Location = "library" // valid, not scanned for gaps yet
)

// CanonicalLocations is the gap-scan set, in scan order.
var CanonicalLocations = []Location{
	LocationHome,
	LocationPark,
	LocationOffice,
	LocationGym,
	LocationStreet,
	LocationSchool,
	LocationAirport,
}

// KnownLocations are all locations an editor may map a method to.
var KnownLocations = map[Location]bool{
	LocationHome: true, LocationPark: true, LocationOffice: true, LocationGym: true,
	LocationStreet: true, LocationSchool: true, LocationAirport: true, LocationLibrary: true,
}

// GearType is the equipment tier a method requires.
type GearType string

const (
	GearFixedEquipment GearType = "fixed_equipment"
	GearUserGear       GearType = "user_gear"
	GearImprovised     GearType = "improvised"
)

type ExplanationStatus string

const (
	ExplanationMissing ExplanationStatus = "missing"
	ExplanationReady   ExplanationStatus = "ready"
)

type MechanicalType string

const (
	MechanicalCompound  MechanicalType = "compound"
	MechanicalIsolation MechanicalType = "isolation"
)

type Symmetry string

const (
	SymmetryBilateral   Symmetry = "bilateral"
	SymmetryUnilateral  Symmetry = "unilateral"
	SymmetryAlternating Symmetry = "alternating"
)

type MovementType string

const (
	MovementPush        MovementType = "push"
	MovementPull        MovementType = "pull"
	MovementSquat       MovementType = "squat"
	MovementHinge       MovementType = "hinge"
	MovementLunge       MovementType = "lunge"
	MovementCarry       MovementType = "carry"
	MovementRotation    MovementType = "rotation"
	MovementCore        MovementType = "core"
	MovementStraightArm MovementType = "straight_arm"
	MovementBentArm     MovementType = "bent_arm"
)

// Exercise is the catalog aggregate root. Its execution methods are kept in
// catalog order, which is the fallback order for resolution.
type Exercise struct {
	ID                primitive.ObjectID `json:"id"`
	Name              LocalizedText      `json:"name"`
	Description       LocalizedText      `json:"description,omitempty"`
	ExecutionMethods  []ExecutionMethod  `json:"executionMethods"`
	BaseMovementID    string             `json:"baseMovementId,omitempty"`
	MovementGroup     string             `json:"movementGroup,omitempty"`
	RequiredLocations []Location         `json:"requiredLocations"`
	MechanicalType    MechanicalType     `json:"mechanicalType,omitempty"`
	Symmetry          Symmetry           `json:"symmetry,omitempty"`
	MovementType      MovementType       `json:"movementType,omitempty"`
	GeneralCues       []Text             `json:"generalCues"`
	Highlights        []Text             `json:"highlights"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// IsRequired reports whether loc is in the exercise's required locations.
func (e *Exercise) IsRequired(loc Location) bool {
	for _, r := range e.RequiredLocations {
		if r == loc {
			return true
		}
	}
	return false
}

// ExecutionMethod is one way to perform the parent exercise.
type ExecutionMethod struct {
	MethodName string `json:"methodName"`

	// Location is the legacy single-location tag.
	Location         Location   `json:"location,omitempty"`
	LocationMapping  []Location `json:"locationMapping"`
	RequiredGearType GearType   `json:"requiredGearType,omitempty"`
	GearIDs          []string   `json:"gearIds"`
	EquipmentIDs     []string   `json:"equipmentIds"`
	BrandID          string     `json:"brandId,omitempty"`

	// LifestyleTags empty means the method applies to everyone.
	LifestyleTags []string `json:"lifestyleTags"`

	Media                Media             `json:"media"`
	SpecificCues         []Text            `json:"specificCues"`
	Highlights           []Text            `json:"highlights"`
	NotificationText     *Text             `json:"notificationText,omitempty"`
	Workflow             Workflow          `json:"workflow"`
	NeedsLongExplanation bool              `json:"needsLongExplanation"`
	ExplanationStatus    ExplanationStatus `json:"explanationStatus,omitempty"`
}

// MapsTo reports whether loc is in the method's location mapping.
func (m *ExecutionMethod) MapsTo(loc Location) bool {
	for _, l := range m.LocationMapping {
		if l == loc {
			return true
		}
	}
	return false
}

// MaxNotificationLength caps notificationText, in characters.
const MaxNotificationLength = 100

// Media bundles the opaque URLs of a method's media.
type Media struct {
	MainVideoURL         string               `json:"mainVideoUrl,omitempty"`
	ImageURL             string               `json:"imageUrl,omitempty"`
	VideoDurationSeconds *float64             `json:"videoDurationSeconds,omitempty"`
	InstructionalVideos  []InstructionalVideo `json:"instructionalVideos"`
}

type InstructionalVideo struct {
	Lang string `json:"lang"`
	URL  string `json:"url"`
}

func (m Media) HasVideo() bool { return m.MainVideoURL != "" }
func (m Media) HasImage() bool { return m.ImageURL != "" }

// HasAny reports whether a video or an image is present.
func (m Media) HasAny() bool { return m.HasVideo() || m.HasImage() }

// Workflow is the production pipeline of one method. The flags are expected to
// be set in the order filmed, audio, edited, uploaded but nothing enforces it.
type Workflow struct {
	Filmed     bool       `json:"filmed"`
	FilmedAt   *time.Time `json:"filmedAt"`
	Audio      bool       `json:"audio"`
	AudioAt    *time.Time `json:"audioAt"`
	Edited     bool       `json:"edited"`
	EditedAt   *time.Time `json:"editedAt"`
	Uploaded   bool       `json:"uploaded"`
	UploadedAt *time.Time `json:"uploadedAt"`
}

// WorkflowStep names a workflow flag.
type WorkflowStep string

const (
	StepFilmed   WorkflowStep = "filmed"
	StepAudio    WorkflowStep = "audio"
	StepEdited   WorkflowStep = "edited"
	StepUploaded WorkflowStep = "uploaded"
)

// WorkflowSteps is the pipeline order.
var WorkflowSteps = []WorkflowStep{StepFilmed, StepAudio, StepEdited, StepUploaded}

// Done reports the flag for step.
func (w Workflow) Done(step WorkflowStep) bool {
	switch step {
	case StepFilmed:
		return w.Filmed
	case StepAudio:
		return w.Audio
	case StepEdited:
		return w.Edited
	case StepUploaded:
		return w.Uploaded
	}
	return false
}

// At returns the completion time recorded for step, if any.
func (w Workflow) At(step WorkflowStep) *time.Time {
	switch step {
	case StepFilmed:
		return w.FilmedAt
	case StepAudio:
		return w.AudioAt
	case StepEdited:
		return w.EditedAt
	case StepUploaded:
		return w.UploadedAt
	}
	return nil
}

// Mark sets the flag for step and stamps its completion time.
func (w *Workflow) Mark(step WorkflowStep, at time.Time) {
	t := at
	switch step {
	case StepFilmed:
		w.Filmed, w.FilmedAt = true, &t
	case StepAudio:
		w.Audio, w.AudioAt = true, &t
	case StepEdited:
		w.Edited, w.EditedAt = true, &t
	case StepUploaded:
		w.Uploaded, w.UploadedAt = true, &t
	}
}
