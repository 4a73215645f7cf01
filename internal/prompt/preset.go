package prompt

import (
	"context"
	"errors"

	"github.com/temirov/repomerge/internal/branches"
)

const interactionUnavailableMessageConstant = "conflicts need manual resolution but no interactive terminal is available"

// ErrInteractionUnavailable reports a question that has no default answer.
var ErrInteractionUnavailable = errors.New(interactionUnavailableMessageConstant)

// PresetDecisionSource accepts every default without asking.
type PresetDecisionSource struct{}

// NewPresetDecisionSource constructs a PresetDecisionSource.
func NewPresetDecisionSource() PresetDecisionSource {
	return PresetDecisionSource{}
}

// BaseRepositoryURL has no default; an empty answer fails session configuration.
func (PresetDecisionSource) BaseRepositoryURL(context.Context) (string, error) {
	return "", nil
}

// IncomingRepositoryURL has no default; an empty answer fails session configuration.
func (PresetDecisionSource) IncomingRepositoryURL(context.Context) (string, error) {
	return "", nil
}

// Subdirectory accepts the offered default.
func (PresetDecisionSource) Subdirectory(_ context.Context, defaultSubdirectory string) (string, error) {
	return defaultSubdirectory, nil
}

// IncomingBranch accepts the offered default.
func (PresetDecisionSource) IncomingBranch(_ context.Context, _ branches.Description, defaultBranch string) (string, error) {
	return defaultBranch, nil
}

// BaseBranch accepts the offered default.
func (PresetDecisionSource) BaseBranch(_ context.Context, defaultBranch string) (string, error) {
	return defaultBranch, nil
}

// ConfirmDiff accepts showing the requested diff.
func (PresetDecisionSource) ConfirmDiff(context.Context) (bool, error) {
	return true, nil
}

// ConfirmPublish declines publishing; pushing without a prompt requires --push.
func (PresetDecisionSource) ConfirmPublish(context.Context) (bool, error) {
	return false, nil
}

// AwaitConflictResolution cannot wait for anyone and fails.
func (PresetDecisionSource) AwaitConflictResolution(context.Context, string, string, []string) error {
	return ErrInteractionUnavailable
}
