package domain

// ResolutionState represents where a session resolution attempt currently is.
type ResolutionState string

const (
	StateUnresolved            ResolutionState = "unresolved"
	StateResolving             ResolutionState = "resolving"
	StateAnonymous             ResolutionState = "anonymous"
	StateAuthenticatedNoRole   ResolutionState = "authenticated_no_role"
	StateAuthenticatedWithRole ResolutionState = "authenticated_with_role"
	StateNeedsRoleSelection    ResolutionState = "needs_role_selection"
)

// validResolutionTransitions defines the allowed state machine transitions.
var validResolutionTransitions = map[ResolutionState][]ResolutionState{
	StateUnresolved:          {StateResolving},
	StateResolving:           {StateAnonymous, StateAuthenticatedNoRole, StateAuthenticatedWithRole},
	StateAuthenticatedNoRole: {StateAuthenticatedWithRole, StateNeedsRoleSelection},
}

// CanTransitionTo reports whether moving from the current state to next is valid.
func (s ResolutionState) CanTransitionTo(next ResolutionState) bool {
	for _, allowed := range validResolutionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the state ends a resolution attempt. Terminal
// states are never re-entered for the same version of a session.
func (s ResolutionState) Terminal() bool {
	switch s {
	case StateAnonymous, StateAuthenticatedWithRole, StateNeedsRoleSelection:
		return true
	}
	return false
}

// Resolution is the outcome of one resolution attempt. Version is the
// monotonic counter that lets late-arriving auth events be discarded
// instead of clobbering a newer state.
type Resolution struct {
	State     ResolutionState `json:"state"`
	Principal *Principal      `json:"principal,omitempty"`
	Redirect  string          `json:"redirect,omitempty"`
	Version   uint64          `json:"version"`
}

// Authenticated reports whether the resolution produced a usable principal.
func (r *Resolution) Authenticated() bool {
	return r.Principal != nil && r.State == StateAuthenticatedWithRole
}
