package engine

import "alcyxob/fitness-content/internal/domain"

// gearTierRank orders the gear tie-break. Unknown tiers rank last.
var gearTierRank = map[domain.GearType]int{
	domain.GearFixedEquipment: 0,
	domain.GearUserGear:       1,
	domain.GearImprovised:     2,
}

func gearRank(g domain.GearType) int {
	if r, ok := gearTierRank[g]; ok {
		return r
	}
	return len(gearTierRank)
}

// Resolve picks the execution method to present for rctx. Stages run in the
// order brand, location, persona, gear tier; a stage narrows the candidates only
// if at least one survives. It returns the method's index in catalog order, or
// -1 when the exercise has no methods.
func Resolve(ex *domain.Exercise, rctx domain.ResolutionContext) (*domain.ExecutionMethod, int) {
	if ex == nil || len(ex.ExecutionMethods) == 0 {
		return nil, -1
	}
	methods := ex.ExecutionMethods

	candidates := make([]int, len(methods))
	for i := range methods {
		candidates[i] = i
	}
	narrowed := false
	narrow := func(keep func(m *domain.ExecutionMethod) bool) bool {
		var next []int
		for _, i := range candidates {
			if keep(&methods[i]) {
				next = append(next, i)
			}
		}
		if len(next) == 0 {
			return false
		}
		if len(next) < len(candidates) {
			narrowed = true
		}
		candidates = next
		return true
	}

	// Brand.
	if rctx.BrandID != "" {
		narrow(func(m *domain.ExecutionMethod) bool { return m.BrandID == rctx.BrandID })
	}

	// Location: the canonical mapping first, then the legacy tag.
	if rctx.Location != "" {
		if !narrow(func(m *domain.ExecutionMethod) bool { return m.MapsTo(rctx.Location) }) {
			narrow(func(m *domain.ExecutionMethod) bool { return m.Location == rctx.Location })
		}
	}

	// Persona: intersecting tags beat universal methods.
	personas := make(map[string]bool, len(rctx.PersonaTags))
	for _, p := range rctx.PersonaTags {
		personas[p] = true
	}
	if !narrow(func(m *domain.ExecutionMethod) bool { return intersects(m.LifestyleTags, personas) }) {
		narrow(func(m *domain.ExecutionMethod) bool { return len(m.LifestyleTags) == 0 })
	}

	// Gear tier tie-break.
	if len(candidates) > 1 {
		best := gearRank(methods[candidates[0]].RequiredGearType)
		for _, i := range candidates[1:] {
			if r := gearRank(methods[i].RequiredGearType); r < best {
				best = r
			}
		}
		narrow(func(m *domain.ExecutionMethod) bool { return gearRank(m.RequiredGearType) == best })
	}

	if !narrowed {
		for i := range methods {
			if methods[i].Media.HasAny() {
				return &methods[i], i
			}
		}
		return &methods[0], 0
	}
	i := candidates[0]
	return &methods[i], i
}

func intersects(tags []string, set map[string]bool) bool {
	for _, t := range tags {
		if set[t] {
			return true
		}
	}
	return false
}
