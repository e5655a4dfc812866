package normalize

import (
	"strings"

	"alcyxob/fitness-content/internal/domain"
)

// enumKey folds case, '_' and '-' and repeated spaces so that "Straight-Arm",
// "straight_arm" and " straight  arm " share one key.
func enumKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

var mechanicalTypes = map[string]domain.MechanicalType{
	"compound":     domain.MechanicalCompound,
	"comp":         domain.MechanicalCompound,
	"multi joint":  domain.MechanicalCompound,
	"מורכב":        domain.MechanicalCompound,
	"isolation":    domain.MechanicalIsolation,
	"iso":          domain.MechanicalIsolation,
	"single joint": domain.MechanicalIsolation,
	"מבודד":        domain.MechanicalIsolation,
}

var symmetries = map[string]domain.Symmetry{
	"bilateral":   domain.SymmetryBilateral,
	"bi":          domain.SymmetryBilateral,
	"both sides":  domain.SymmetryBilateral,
	"דו צדדי":     domain.SymmetryBilateral,
	"unilateral":  domain.SymmetryUnilateral,
	"uni":         domain.SymmetryUnilateral,
	"single side": domain.SymmetryUnilateral,
	"חד צדדי":     domain.SymmetryUnilateral,
	"alternating": domain.SymmetryAlternating,
	"alt":         domain.SymmetryAlternating,
	"לסירוגין":    domain.SymmetryAlternating,
}

var movementTypes = map[string]domain.MovementType{
	"push":         domain.MovementPush,
	"press":        domain.MovementPush,
	"pull":         domain.MovementPull,
	"row":          domain.MovementPull,
	"squat":        domain.MovementSquat,
	"hinge":        domain.MovementHinge,
	"lunge":        domain.MovementLunge,
	"carry":        domain.MovementCarry,
	"rotation":     domain.MovementRotation,
	"rot":          domain.MovementRotation,
	"core":         domain.MovementCore,
	"straight arm": domain.MovementStraightArm,
	"sa":           domain.MovementStraightArm,
	"יד ישרה":      domain.MovementStraightArm,
	"bent arm":     domain.MovementBentArm,
	"ba":           domain.MovementBentArm,
	"יד כפופה":     domain.MovementBentArm,
}

var gearTypes = map[string]domain.GearType{
	"fixed equipment": domain.GearFixedEquipment,
	"fixed":           domain.GearFixedEquipment,
	"gym equipment":   domain.GearFixedEquipment,
	"machine":         domain.GearFixedEquipment,
	"user gear":       domain.GearUserGear,
	"own gear":        domain.GearUserGear,
	"personal gear":   domain.GearUserGear,
	"improvised":      domain.GearImprovised,
	"diy":             domain.GearImprovised,
	"household":       domain.GearImprovised,
}

var explanationStatuses = map[string]domain.ExplanationStatus{
	"missing": domain.ExplanationMissing,
	"ready":   domain.ExplanationReady,
}

func lookupEnum[T ~string](table map[string]T, raw string) (T, bool) {
	v, ok := table[enumKey(raw)]
	return v, ok
}

func ParseMechanicalType(raw string) (domain.MechanicalType, bool) {
	return lookupEnum(mechanicalTypes, raw)
}

func ParseSymmetry(raw string) (domain.Symmetry, bool) {
	return lookupEnum(symmetries, raw)
}

func ParseMovementType(raw string) (domain.MovementType, bool) {
	return lookupEnum(movementTypes, raw)
}

func ParseGearType(raw string) (domain.GearType, bool) {
	return lookupEnum(gearTypes, raw)
}

func ParseExplanationStatus(raw string) (domain.ExplanationStatus, bool) {
	return lookupEnum(explanationStatuses, raw)
}

// ParseLocation lowercases and trims. The second result reports whether the
// location is one the catalog knows.
func ParseLocation(raw string) (domain.Location, bool) {
	loc := domain.Location(strings.ToLower(strings.TrimSpace(raw)))
	return loc, domain.KnownLocations[loc]
}

// baseMovementSuggestions maps a movementGroup to the baseMovementId editors
// most often pick for it.
var baseMovementSuggestions = map[string]string{
	"horizontal push": "push_up",
	"vertical push":   "overhead_press",
	"horizontal pull": "row",
	"vertical pull":   "pull_up",
	"squat":           "squat",
	"hinge":           "deadlift",
	"lunge":           "lunge",
	"core":            "plank",
	"carry":           "farmer_carry",
}

// SuggestBaseMovementID returns the heuristic baseMovementId for a movement group.
func SuggestBaseMovementID(movementGroup string) (string, bool) {
	id, ok := baseMovementSuggestions[enumKey(movementGroup)]
	return id, ok
}
