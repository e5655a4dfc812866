package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"alcyxob/fitness-content/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func locs(ls ...domain.Location) []domain.Location { return ls }

func method(name string, mapping ...domain.Location) domain.ExecutionMethod {
	return domain.ExecutionMethod{
		MethodName:      name,
		LocationMapping: mapping,
		LifestyleTags:   []string{},
	}
}

func withVideo(m domain.ExecutionMethod) domain.ExecutionMethod {
	m.Media.MainVideoURL = "https://cdn.example.com/" + m.MethodName + ".mp4"
	return m
}

func scenarioA() *domain.Exercise {
	home := withVideo(method("home-floor", domain.LocationHome))
	home.Location = domain.LocationHome
	gym := method("gym-machine", domain.LocationGym)
	gym.Location = domain.LocationGym
	return &domain.Exercise{
		ID:                primitive.NewObjectID(),
		Name:              domain.LocalizedText{"en": "Push-up"},
		ExecutionMethods:  []domain.ExecutionMethod{home, gym},
		RequiredLocations: locs(domain.LocationHome, domain.LocationOffice),
	}
}

// --- workflow ---

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		workflow domain.Workflow
		media    bool
		want     domain.ProductionStatus
	}{
		{"filmed without media is post production", domain.Workflow{Filmed: true}, false, domain.StatusInPostProduction},
		{"nothing at all needs media", domain.Workflow{}, false, domain.StatusNeedsMedia},
		{"media but nothing filmed", domain.Workflow{}, true, domain.StatusNotStarted},
		{"uploaded with media is ready", domain.Workflow{Filmed: true, Audio: true, Edited: true, Uploaded: true}, true, domain.StatusReady},
		{"uploaded without media needs media", domain.Workflow{Filmed: true, Uploaded: true}, false, domain.StatusNeedsMedia},
		{"out of order uploaded with media is ready", domain.Workflow{Uploaded: true}, true, domain.StatusReady},
		{"edited with media is post production", domain.Workflow{Filmed: true, Edited: true}, true, domain.StatusInPostProduction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := method("m")
			m.Workflow = tt.workflow
			if tt.media {
				m.Media.ImageURL = "https://cdn.example.com/m.jpg"
			}
			if got := Status(m); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPostProductionStage(t *testing.T) {
	if got := PostProductionStage(domain.Workflow{Filmed: true}); got != domain.StageFilmedNotEdited {
		t.Errorf("Expected filmed_not_edited, got %s", got)
	}
	if got := PostProductionStage(domain.Workflow{Filmed: true, Audio: true, Edited: true}); got != domain.StageEditedNotUploaded {
		t.Errorf("Expected edited_not_uploaded, got %s", got)
	}
}

// --- resolution ---

func TestResolve_PersonaTagsBeatUniversal(t *testing.T) {
	universal := method("universal", domain.LocationPark)
	parent := method("parent", domain.LocationPark)
	parent.LifestyleTags = []string{"parent"}
	ex := &domain.Exercise{ExecutionMethods: []domain.ExecutionMethod{universal, parent}}

	m, idx := Resolve(ex, domain.ResolutionContext{Location: domain.LocationPark, PersonaTags: []string{"parent"}})
	if idx != 1 || m.MethodName != "parent" {
		t.Errorf("Expected the parent-tagged method, got %d", idx)
	}
}

func TestResolve_UniversalEligibleForEveryPersona(t *testing.T) {
	athlete := method("athlete", domain.LocationPark)
	athlete.LifestyleTags = []string{"athlete"}
	universal := method("universal", domain.LocationPark)
	ex := &domain.Exercise{ExecutionMethods: []domain.ExecutionMethod{athlete, universal}}

	for _, personas := range [][]string{{"parent"}, {"senior", "office_worker"}, nil} {
		_, idx := Resolve(ex, domain.ResolutionContext{Location: domain.LocationPark, PersonaTags: personas})
		if idx != 1 {
			t.Errorf("personas %v: expected universal method, got %d", personas, idx)
		}
	}
}

func TestResolve_BrandOutranksLocation(t *testing.T) {
	branded := method("branded", domain.LocationGym)
	branded.BrandID = "technogym"
	park := method("park", domain.LocationPark)
	ex := &domain.Exercise{ExecutionMethods: []domain.ExecutionMethod{park, branded}}

	_, idx := Resolve(ex, domain.ResolutionContext{Location: domain.LocationPark, BrandID: "technogym"})
	if idx != 1 {
		t.Errorf("Expected branded method, got %d", idx)
	}
}

func TestResolve_LocationOutranksPersona(t *testing.T) {
	homeParent := method("home-parent", domain.LocationHome)
	homeParent.LifestyleTags = []string{"parent"}
	park := method("park", domain.LocationPark)
	ex := &domain.Exercise{ExecutionMethods: []domain.ExecutionMethod{homeParent, park}}

	_, idx := Resolve(ex, domain.ResolutionContext{Location: domain.LocationPark, PersonaTags: []string{"parent"}})
	if idx != 1 {
		t.Errorf("Expected the park method, got %d", idx)
	}
}

func TestResolve_LegacyLocationFallback(t *testing.T) {
	a := method("a")
	a.Location = domain.LocationHome
	b := method("b")
	b.Location = domain.LocationOffice
	ex := &domain.Exercise{ExecutionMethods: []domain.ExecutionMethod{a, b}}

	_, idx := Resolve(ex, domain.ResolutionContext{Location: domain.LocationOffice})
	if idx != 1 {
		t.Errorf("Expected legacy location match, got %d", idx)
	}
}

func TestResolve_MappingBeatsLegacyLocation(t *testing.T) {
	legacy := method("legacy")
	legacy.Location = domain.LocationGym
	mapped := method("mapped", domain.LocationGym)
	ex := &domain.Exercise{ExecutionMethods: []domain.ExecutionMethod{legacy, mapped}}

	_, idx := Resolve(ex, domain.ResolutionContext{Location: domain.LocationGym})
	if idx != 1 {
		t.Errorf("Expected mapped method, got %d", idx)
	}
}

func TestResolve_GearTierTieBreak(t *testing.T) {
	improvised := method("chair", domain.LocationHome)
	improvised.RequiredGearType = domain.GearImprovised
	userGear := method("band", domain.LocationHome)
	userGear.RequiredGearType = domain.GearUserGear
	fixed := method("bar", domain.LocationHome)
	fixed.RequiredGearType = domain.GearFixedEquipment
	ex := &domain.Exercise{ExecutionMethods: []domain.ExecutionMethod{improvised, userGear, fixed}}

	_, idx := Resolve(ex, domain.ResolutionContext{Location: domain.LocationHome})
	if idx != 2 {
		t.Errorf("Expected fixed equipment, got %d", idx)
	}

	ex.ExecutionMethods = ex.ExecutionMethods[:2]
	_, idx = Resolve(ex, domain.ResolutionContext{Location: domain.LocationHome})
	if idx != 1 {
		t.Errorf("Expected user gear over improvised, got %d", idx)
	}
}

func TestResolve_FallbackPrefersMedia(t *testing.T) {
	ex := &domain.Exercise{ExecutionMethods: []domain.ExecutionMethod{
		method("bare", domain.LocationGym),
		withVideo(method("filmed", domain.LocationGym)),
	}}

	m, idx := Resolve(ex, domain.ResolutionContext{Location: domain.LocationAirport, PersonaTags: []string{"traveler"}})
	if m == nil || idx != 1 {
		t.Errorf("Expected first method with media, got %d", idx)
	}

	ex.ExecutionMethods[1].Media = domain.Media{}
	m, idx = Resolve(ex, domain.ResolutionContext{Location: domain.LocationAirport})
	if m == nil || idx != 0 {
		t.Errorf("Expected first method when none has media, got %d", idx)
	}
}

func TestResolve_EmptyList(t *testing.T) {
	m, idx := Resolve(&domain.Exercise{}, domain.ResolutionContext{Location: domain.LocationHome})
	if m != nil || idx != -1 {
		t.Errorf("Expected no method, got %v %d", m, idx)
	}
}

func TestResolve_DeterministicAndComplete(t *testing.T) {
	gears := []domain.GearType{domain.GearImprovised, domain.GearFixedEquipment, domain.GearUserGear, ""}
	tags := [][]string{{}, {"parent"}, {"senior"}, {"parent", "athlete"}}
	brands := []string{"", "acme"}
	allLocs := append(append([]domain.Location{}, domain.CanonicalLocations...), domain.LocationLibrary)

	var methods []domain.ExecutionMethod
	for i := 0; i < 12; i++ {
		m := method(fmt.Sprintf("m%d", i), allLocs[i%len(allLocs)], allLocs[(i*3)%len(allLocs)])
		m.RequiredGearType = gears[i%len(gears)]
		m.LifestyleTags = tags[i%len(tags)]
		m.BrandID = brands[i%len(brands)]
		if i%3 == 0 {
			m = withVideo(m)
		}
		methods = append(methods, m)
	}
	ex := &domain.Exercise{ExecutionMethods: methods}

	for _, loc := range append(allLocs, "moon") {
		for _, personas := range [][]string{nil, {"parent"}, {"nobody"}} {
			for _, brand := range []string{"", "acme", "other"} {
				rctx := domain.ResolutionContext{Location: loc, PersonaTags: personas, BrandID: brand}
				m1, i1 := Resolve(ex, rctx)
				m2, i2 := Resolve(ex, rctx)
				if m1 == nil || i1 < 0 {
					t.Fatalf("%+v: expected a method", rctx)
				}
				if i1 != i2 || m1 != m2 {
					t.Errorf("%+v: expected identical results, got %d and %d", rctx, i1, i2)
				}
			}
		}
	}
}

// --- content matrix ---

func TestAnalyzeExercise_ScenarioA(t *testing.T) {
	row := AnalyzeExercise(scenarioA())

	if row.CriticalGapCount != 2 {
		t.Errorf("Expected 2 critical gaps, got %d (%+v)", row.CriticalGapCount, row.GapsDetailed)
	}
	if row.WorkflowGapCount != 0 {
		t.Errorf("Expected no workflow gaps, got %d", row.WorkflowGapCount)
	}

	var missingMedia, missingRequired []domain.Gap
	for _, g := range row.GapsDetailed {
		switch g.Type {
		case domain.GapMissingMedia:
			missingMedia = append(missingMedia, g)
		case domain.GapMissingRequiredMethod:
			missingRequired = append(missingRequired, g)
		}
	}
	if len(missingMedia) != 1 || missingMedia[0].Location != domain.LocationGym || missingMedia[0].MethodIndex != 1 {
		t.Errorf("Expected missing_media for the gym method, got %+v", missingMedia)
	}
	if len(missingRequired) != 1 || missingRequired[0].Location != domain.LocationOffice {
		t.Errorf("Expected missing_required_method for office, got %+v", missingRequired)
	}
}

func TestAnalyzeExercise_WorkflowGaps(t *testing.T) {
	filmed := withVideo(method("filmed", domain.LocationHome, domain.LocationPark))
	filmed.Workflow = domain.Workflow{Filmed: true}
	edited := withVideo(method("edited", domain.LocationHome))
	edited.Workflow = domain.Workflow{Filmed: true, Audio: true, Edited: true}
	unmapped := withVideo(method("unmapped"))
	ex := &domain.Exercise{ExecutionMethods: []domain.ExecutionMethod{filmed, edited, unmapped}}

	row := AnalyzeExercise(ex)
	if row.WorkflowGapCount != 3 {
		t.Errorf("Expected 3 workflow gaps (one per bucket), got %d", row.WorkflowGapCount)
	}
	if row.CriticalGapCount != 0 {
		t.Errorf("Expected no critical gaps, got %d", row.CriticalGapCount)
	}
	stages := map[domain.PostProductionStage]int{}
	for _, g := range row.GapsDetailed {
		stages[g.Stage]++
	}
	if stages[domain.StageFilmedNotEdited] != 2 || stages[domain.StageEditedNotUploaded] != 1 {
		t.Errorf("Unexpected stage split: %v", stages)
	}
	if len(row.UnmappedMethods) != 1 || row.UnmappedMethods[0] != 2 {
		t.Errorf("Expected method 2 reported unmapped, got %v", row.UnmappedMethods)
	}
}

func TestAnalyzeExercise_Invariants(t *testing.T) {
	exercises := []*domain.Exercise{scenarioA()}
	mixed := &domain.Exercise{
		RequiredLocations: locs(domain.LocationHome, domain.LocationPark, domain.LocationSchool),
		ExecutionMethods: []domain.ExecutionMethod{
			method("a", domain.LocationHome, domain.LocationPark),
			withVideo(method("b", domain.LocationPark)),
		},
	}
	mixed.ExecutionMethods[0].Workflow.Filmed = true
	exercises = append(exercises, mixed)

	for _, ex := range exercises {
		row := AnalyzeExercise(ex)

		critical := 0
		for _, g := range row.GapsDetailed {
			if g.Type == domain.GapMissingMedia || g.Type == domain.GapMissingRequiredMethod {
				critical++
			}
		}
		if critical != row.CriticalGapCount {
			t.Errorf("criticalGapCount %d does not match %d critical entries", row.CriticalGapCount, critical)
		}

		for _, cov := range row.Locations {
			if len(cov.Methods) == 0 {
				continue
			}
			for _, g := range row.GapsDetailed {
				if g.Location == cov.Location && g.Type == domain.GapMissingRequiredMethod {
					t.Errorf("%s has methods but produced missing_required_method", cov.Location)
				}
			}
		}
	}
}

func TestAnalyzeExercise_LibraryNotScanned(t *testing.T) {
	ex := &domain.Exercise{
		RequiredLocations: locs(domain.LocationLibrary),
		ExecutionMethods:  []domain.ExecutionMethod{method("quiet", domain.LocationLibrary)},
	}
	row := AnalyzeExercise(ex)
	if len(row.GapsDetailed) != 0 {
		t.Errorf("Expected library to be ignored by the gap scan, got %+v", row.GapsDetailed)
	}
	if len(row.Locations) != len(domain.CanonicalLocations) {
		t.Errorf("Expected %d locations, got %d", len(domain.CanonicalLocations), len(row.Locations))
	}
}

func TestCompletenessThresholds(t *testing.T) {
	tests := []struct {
		desc     domain.LocalizedText
		cues     int
		hl       int
		wantDesc domain.Completeness
		wantCues domain.Completeness
	}{
		{domain.LocalizedText{}, 0, 0, domain.CompletenessMissing, domain.CompletenessMissing},
		{domain.LocalizedText{"en": "x", "he": " "}, 1, 0, domain.CompletenessPartial, domain.CompletenessPartial},
		{domain.LocalizedText{"en": "x", "he": "y"}, 2, 0, domain.CompletenessComplete, domain.CompletenessPartial},
		{domain.LocalizedText{"en": "x", "he": "y", "ru": "z"}, 2, 1, domain.CompletenessComplete, domain.CompletenessComplete},
		{domain.LocalizedText{}, 0, 3, domain.CompletenessMissing, domain.CompletenessComplete},
	}

	for i, tt := range tests {
		ex := &domain.Exercise{Description: tt.desc}
		for j := 0; j < tt.cues; j++ {
			ex.GeneralCues = append(ex.GeneralCues, domain.PlainText("cue"))
		}
		for j := 0; j < tt.hl; j++ {
			ex.Highlights = append(ex.Highlights, domain.PlainText("highlight"))
		}
		row := AnalyzeExercise(ex)
		if row.DescriptionStatus != tt.wantDesc {
			t.Errorf("case %d: expected description %s, got %s", i, tt.wantDesc, row.DescriptionStatus)
		}
		if row.GeneralCuesStatus != tt.wantCues {
			t.Errorf("case %d: expected cues %s, got %s", i, tt.wantCues, row.GeneralCuesStatus)
		}
	}
}

// --- task lists ---

func TestBuildTaskLists(t *testing.T) {
	notFilmed := method("not-filmed", domain.LocationHome)
	anomalous := method("anomalous", domain.LocationHome)
	anomalous.Workflow = domain.Workflow{Audio: true, Edited: true, Uploaded: true}
	needsAudio := method("needs-audio", domain.LocationGym, domain.LocationPark)
	needsAudio.Workflow = domain.Workflow{Filmed: true}
	needsEdit := method("needs-edit", domain.LocationGym)
	needsEdit.Workflow = domain.Workflow{Filmed: true, Audio: true}
	needsUpload := method("needs-upload", domain.LocationGym)
	needsUpload.Workflow = domain.Workflow{Filmed: true, Audio: true, Edited: true}
	done := withVideo(method("done", domain.LocationGym))
	done.Workflow = domain.Workflow{Filmed: true, Audio: true, Edited: true, Uploaded: true}
	unmapped := method("unmapped")

	ex := &domain.Exercise{
		ID:   primitive.NewObjectID(),
		Name: domain.LocalizedText{"en": "Row"},
		ExecutionMethods: []domain.ExecutionMethod{
			notFilmed, anomalous, needsAudio, needsEdit, needsUpload, done, unmapped,
		},
	}

	lists := BuildTaskLists([]domain.ContentMatrixRow{AnalyzeExercise(ex)})

	names := func(items []domain.TaskItem) []string {
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = string(it.Location) + "/" + it.MethodName
		}
		return out
	}
	check := func(queue string, got []domain.TaskItem, want ...string) {
		t.Helper()
		g := names(got)
		if fmt.Sprint(g) != fmt.Sprint(want) {
			t.Errorf("%s: expected %v, got %v", queue, want, g)
		}
	}

	check("forFilming", lists.ForFilming, "home/not-filmed", "home/anomalous")
	check("forAudio", lists.ForAudio, "park/needs-audio", "gym/needs-audio")
	check("forEditing", lists.ForEditing, "gym/needs-edit")
	check("forUpload", lists.ForUpload, "gym/needs-upload")

	if lists.ForFilming[0].ExerciseID != ex.ID.Hex() || lists.ForFilming[0].ExerciseName != "Row" {
		t.Errorf("Expected exercise identity on task items, got %+v", lists.ForFilming[0])
	}
}

// --- batch ---

func TestAnalyzeCatalog_PreservesOrder(t *testing.T) {
	var exercises []domain.Exercise
	for i := 0; i < 25; i++ {
		ex := scenarioA()
		ex.Name = domain.LocalizedText{"en": fmt.Sprintf("ex-%02d", i)}
		exercises = append(exercises, *ex)
	}

	rows, err := AnalyzeCatalog(context.Background(), exercises, 4)
	if err != nil {
		t.Fatalf("AnalyzeCatalog failed: %v", err)
	}
	for i, row := range rows {
		if want := fmt.Sprintf("ex-%02d", i); row.ExerciseName != want {
			t.Errorf("row %d: expected %s, got %s", i, want, row.ExerciseName)
		}
	}

	s := Summarize(rows)
	if s.Exercises != 25 || s.CriticalGaps != 50 || s.ReadyToPublish != 0 {
		t.Errorf("Unexpected summary: %+v", s)
	}
}

func TestAnalyzeCatalog_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AnalyzeCatalog(ctx, []domain.Exercise{*scenarioA()}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
