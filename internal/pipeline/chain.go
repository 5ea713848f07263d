package pipeline

// ChainStage is the live portion of a stored stage the diff needs to see.
type ChainStage struct {
	ID            string
	StageIndex    int
	StageName     string
	InterviewerID *string
	Status        string
}

// StageSpec is one entry of a caller-submitted stage chain. A non-empty ID
// refers to an existing live stage; an empty ID requests a new stage. The
// entry's position in the submitted list becomes its stage index.
type StageSpec struct {
	ID            string
	StageName     string
	InterviewerID *string
}

// StageCreate describes a stage the chain sync must insert.
type StageCreate struct {
	StageIndex    int
	StageName     string
	InterviewerID *string
}

// StageUpdate describes an in-place edit of a kept stage. Status and timing
// fields are deliberately absent: a resync never resets progress.
type StageUpdate struct {
	ID            string
	StageIndex    int
	StageName     string
	InterviewerID *string
}

// ChainPlan is the set-difference between stored live stages and a submitted
// chain. Applying it must be all-or-nothing.
type ChainPlan struct {
	CandidateID    string
	Creates        []StageCreate
	Updates        []StageUpdate
	RemoveStageIDs []string
}

// Empty reports whether the plan would change nothing.
func (p ChainPlan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.RemoveStageIDs) == 0
}

// BuildChainPlan diffs the submitted specs against the candidate's stored live
// stages. Specs carrying an ID become updates pinned to their list position;
// specs without one become creates; live stages absent from the specs are
// removed. Specs that change nothing produce no update. Input is assumed
// validated: spec IDs are unique and refer to live stages of this candidate.
func BuildChainPlan(candidateID string, existing []ChainStage, specs []StageSpec) ChainPlan {
	plan := ChainPlan{CandidateID: candidateID}

	incoming := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.ID != "" {
			incoming[spec.ID] = struct{}{}
		}
	}

	current := make(map[string]ChainStage, len(existing))
	for _, stage := range existing {
		current[stage.ID] = stage
		if _, kept := incoming[stage.ID]; !kept {
			plan.RemoveStageIDs = append(plan.RemoveStageIDs, stage.ID)
		}
	}

	for position, spec := range specs {
		if spec.ID == "" {
			plan.Creates = append(plan.Creates, StageCreate{
				StageIndex:    position,
				StageName:     spec.StageName,
				InterviewerID: spec.InterviewerID,
			})
			continue
		}
		if stage, ok := current[spec.ID]; ok && stage.StageIndex == position &&
			stage.StageName == spec.StageName && sameInterviewer(stage.InterviewerID, spec.InterviewerID) {
			continue
		}
		plan.Updates = append(plan.Updates, StageUpdate{
			ID:            spec.ID,
			StageIndex:    position,
			StageName:     spec.StageName,
			InterviewerID: spec.InterviewerID,
		})
	}

	return plan
}

func sameInterviewer(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
