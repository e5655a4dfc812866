// Package engine holds the pure content rules: production status, method
// resolution, the content matrix and production task lists.
package engine

import "alcyxob/fitness-content/internal/domain"

// Status derives the production status of a method from its current workflow
// flags and media. It is recomputed on every call.
func Status(m domain.ExecutionMethod) domain.ProductionStatus {
	w := m.Workflow
	switch {
	case w.Uploaded && m.Media.HasAny():
		return domain.StatusReady
	case w.Filmed && !w.Uploaded:
		return domain.StatusInPostProduction
	case !m.Media.HasAny():
		return domain.StatusNeedsMedia
	default:
		return domain.StatusNotStarted
	}
}

// PostProductionStage tells "filmed but not edited" from "edited but not
// uploaded". It only makes sense for methods in post production.
func PostProductionStage(w domain.Workflow) domain.PostProductionStage {
	if w.Edited {
		return domain.StageEditedNotUploaded
	}
	return domain.StageFilmedNotEdited
}
