package merge

import (
	"fmt"
	"strings"

	"github.com/temirov/repomerge/internal/gitrepo"
)

const (
	conflictPolicyNoneNameConstant          = "none"
	conflictPolicyFavorBaseNameConstant     = "base"
	conflictPolicyFavorIncomingNameConstant = "incoming"
	unknownConflictPolicyTemplateConstant   = "unknown conflict policy %q (expected none, base or incoming)"
)

// ConflictPolicy decides which side wins conflicting paths without operator input.
type ConflictPolicy string

// Supported conflict policies.
const (
	ConflictPolicyNone          ConflictPolicy = ConflictPolicy(conflictPolicyNoneNameConstant)
	ConflictPolicyFavorBase     ConflictPolicy = ConflictPolicy(conflictPolicyFavorBaseNameConstant)
	ConflictPolicyFavorIncoming ConflictPolicy = ConflictPolicy(conflictPolicyFavorIncomingNameConstant)
)

// ParseConflictPolicy converts a configuration value into a ConflictPolicy. An empty value means none.
func ParseConflictPolicy(value string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", conflictPolicyNoneNameConstant:
		return ConflictPolicyNone, nil
	case conflictPolicyFavorBaseNameConstant:
		return ConflictPolicyFavorBase, nil
	case conflictPolicyFavorIncomingNameConstant:
		return ConflictPolicyFavorIncoming, nil
	default:
		return ConflictPolicyNone, fmt.Errorf(unknownConflictPolicyTemplateConstant, value)
	}
}

// ConflictSide maps the policy onto the git side that wins, or "" for ConflictPolicyNone.
func (policy ConflictPolicy) ConflictSide() gitrepo.ConflictSide {
	switch policy {
	case ConflictPolicyFavorBase:
		return gitrepo.ConflictSideOurs
	case ConflictPolicyFavorIncoming:
		return gitrepo.ConflictSideTheirs
	default:
		return ""
	}
}

// Outcome classifies how a merge ended.
type Outcome string

// Merge outcomes.
const (
	OutcomeClean                     Outcome = Outcome("clean")
	OutcomeAutoResolvedUnrelated     Outcome = Outcome("auto_resolved_unrelated")
	OutcomeConflictsPending          Outcome = Outcome("conflicts_pending")
	OutcomeConflictsResolvedByPolicy Outcome = Outcome("conflicts_resolved_by_policy")
	OutcomeConflictsResolvedManually Outcome = Outcome("conflicts_resolved_manually")
)

// Committed reports whether the outcome left a merge commit on the base branch.
func (outcome Outcome) Committed() bool {
	switch outcome {
	case OutcomeClean, OutcomeAutoResolvedUnrelated, OutcomeConflictsResolvedByPolicy, OutcomeConflictsResolvedManually:
		return true
	default:
		return false
	}
}

// Request describes one merge of an already relocated incoming working copy into the base working copy.
type Request struct {
	BaseRepositoryPath     string
	IncomingRepositoryPath string
	BaseBranch             string
	IncomingBranch         string
	Subdirectory           string
	Policy                 ConflictPolicy
	Preview                bool
	ShowDiff               bool
	AssumeYes              bool
}

// Report is the result of Orchestrator.Merge.
type Report struct {
	Outcome         Outcome
	PreviewOnly     bool
	ConflictedPaths []string
}
