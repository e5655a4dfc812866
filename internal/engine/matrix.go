package engine

import (
	"fmt"

	"alcyxob/fitness-content/internal/domain"
)

// Thresholds kept fixed for comparability with historical reports.
const (
	descriptionCompleteLanguages = 2
	generalCuesCompleteCount     = 3
)

// AnalyzeExercise builds the content matrix row for one exercise.
func AnalyzeExercise(ex *domain.Exercise) domain.ContentMatrixRow {
	row := domain.ContentMatrixRow{
		ExerciseID:        ex.ID.Hex(),
		ExerciseName:      ex.Name.Best(),
		Locations:         make([]domain.LocationCoverage, 0, len(domain.CanonicalLocations)),
		RequiredLocations: append([]domain.Location{}, ex.RequiredLocations...),
		GapsDetailed:      []domain.Gap{},
		UnmappedMethods:   []int{},
		DescriptionStatus: descriptionStatus(ex),
		GeneralCuesStatus: generalCuesStatus(ex),
	}

	for i := range ex.ExecutionMethods {
		if len(ex.ExecutionMethods[i].LocationMapping) == 0 {
			row.UnmappedMethods = append(row.UnmappedMethods, i)
		}
	}

	for _, loc := range domain.CanonicalLocations {
		cov := domain.LocationCoverage{
			Location: loc,
			Required: ex.IsRequired(loc),
			Methods:  []domain.MethodRef{},
		}
		for i := range ex.ExecutionMethods {
			m := ex.ExecutionMethods[i]
			if !m.MapsTo(loc) {
				continue
			}
			status := Status(m)
			cov.Methods = append(cov.Methods, domain.MethodRef{
				Index:      i,
				MethodName: m.MethodName,
				Status:     status,
				Workflow:   m.Workflow,
			})

			if !m.Media.HasAny() {
				row.GapsDetailed = append(row.GapsDetailed, domain.Gap{
					Type:        domain.GapMissingMedia,
					Critical:    true,
					Location:    loc,
					MethodIndex: i,
					MethodName:  m.MethodName,
					Message:     fmt.Sprintf("%s: method %q has no video or image", loc, m.MethodName),
				})
			}
			if status == domain.StatusInPostProduction {
				stage := PostProductionStage(m.Workflow)
				row.GapsDetailed = append(row.GapsDetailed, domain.Gap{
					Type:        domain.GapIncompleteWorkflow,
					Location:    loc,
					MethodIndex: i,
					MethodName:  m.MethodName,
					Stage:       stage,
					Message:     workflowMessage(loc, m.MethodName, stage),
				})
			}
		}

		if len(cov.Methods) == 0 && cov.Required {
			row.GapsDetailed = append(row.GapsDetailed, domain.Gap{
				Type:        domain.GapMissingRequiredMethod,
				Critical:    true,
				Location:    loc,
				MethodIndex: -1,
				Message:     fmt.Sprintf("%s: required location has no execution method", loc),
			})
		}
		row.Locations = append(row.Locations, cov)
	}

	for _, g := range row.GapsDetailed {
		if g.Type.Critical() {
			row.CriticalGapCount++
		} else if g.Type == domain.GapIncompleteWorkflow {
			row.WorkflowGapCount++
		}
	}
	return row
}

func workflowMessage(loc domain.Location, name string, stage domain.PostProductionStage) string {
	if stage == domain.StageEditedNotUploaded {
		return fmt.Sprintf("%s: method %q is edited but not uploaded", loc, name)
	}
	return fmt.Sprintf("%s: method %q is filmed but not edited", loc, name)
}

func descriptionStatus(ex *domain.Exercise) domain.Completeness {
	switch n := len(ex.Description.Languages()); {
	case n >= descriptionCompleteLanguages:
		return domain.CompletenessComplete
	case n > 0:
		return domain.CompletenessPartial
	default:
		return domain.CompletenessMissing
	}
}

func generalCuesStatus(ex *domain.Exercise) domain.Completeness {
	switch n := len(ex.GeneralCues) + len(ex.Highlights); {
	case n >= generalCuesCompleteCount:
		return domain.CompletenessComplete
	case n > 0:
		return domain.CompletenessPartial
	default:
		return domain.CompletenessMissing
	}
}
