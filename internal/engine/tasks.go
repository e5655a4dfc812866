package engine

import "alcyxob/fitness-content/internal/domain"

// BuildTaskLists queues every bucketed (exercise, location, method) triple by
// the first unset workflow flag in pipeline order. Fully done methods are not
// queued.
func BuildTaskLists(rows []domain.ContentMatrixRow) domain.TaskLists {
	lists := domain.TaskLists{
		ForFilming: []domain.TaskItem{},
		ForAudio:   []domain.TaskItem{},
		ForEditing: []domain.TaskItem{},
		ForUpload:  []domain.TaskItem{},
	}
	for _, row := range rows {
		for _, cov := range row.Locations {
			for _, ref := range cov.Methods {
				item := domain.TaskItem{
					ExerciseID:   row.ExerciseID,
					ExerciseName: row.ExerciseName,
					Location:     cov.Location,
					MethodName:   ref.MethodName,
				}
				switch nextStep(ref.Workflow) {
				case domain.StepFilmed:
					lists.ForFilming = append(lists.ForFilming, item)
				case domain.StepAudio:
					lists.ForAudio = append(lists.ForAudio, item)
				case domain.StepEdited:
					lists.ForEditing = append(lists.ForEditing, item)
				case domain.StepUploaded:
					lists.ForUpload = append(lists.ForUpload, item)
				}
			}
		}
	}
	return lists
}

// nextStep returns the first unset flag, or "" when all four are set.
func nextStep(w domain.Workflow) domain.WorkflowStep {
	for _, step := range domain.WorkflowSteps {
		if !w.Done(step) {
			return step
		}
	}
	return ""
}
