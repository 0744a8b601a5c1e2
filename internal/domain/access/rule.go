// Package access implements role-based authorization for the core.
//
// Each role resolves to a Policy. A policy is a fixed set of Rules; access
// decisions are derived only from that set, so Permissions() and
// CanAccessResource() can never disagree. Unknown roles resolve to a
// deny-all policy.
package access

import "strings"

// Action is something a caller wants to do with a resource.
type Action string

const (
	ActionRead     Action = "read"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionReact    Action = "react"
	ActionModerate Action = "moderate"
	ActionReview   Action = "review"

	// ActionAll matches every action.
	ActionAll Action = "*"
)

// Resource types understood by the built-in policies.
const (
	ResourceProfile     = "profile"
	ResourceProject     = "project"
	ResourcePost        = "post"
	ResourceSkill       = "skill"
	ResourceCV          = "cv"
	ResourceInteraction = "interaction"

	// ResourceAll matches every resource type.
	ResourceAll = "*"
)

// ResourceTypes lists the built-in resource types.
var ResourceTypes = []string{
	ResourceProfile,
	ResourceProject,
	ResourcePost,
	ResourceSkill,
	ResourceCV,
	ResourceInteraction,
}

// Actions lists the concrete actions (without ActionAll).
var Actions = []Action{
	ActionRead,
	ActionCreate,
	ActionUpdate,
	ActionDelete,
	ActionReact,
	ActionModerate,
	ActionReview,
}

// Rule grants Actions on a resource type. OwnerOnly rules apply only when
// the request context names the caller as the resource owner.
type Rule struct {
	Resource  string   `json:"resource"`
	Actions   []Action `json:"actions"`
	OwnerOnly bool     `json:"owner_only"`
}

// Covers reports whether the rule names resourceType and action, ignoring
// ownership.
func (r Rule) Covers(resourceType string, action Action) bool {
	if r.Resource != ResourceAll && r.Resource != resourceType {
		return false
	}
	for _, a := range r.Actions {
		if a == ActionAll || a == action {
			return true
		}
	}
	return false
}

// Context carries request facts a rule may depend on.
type Context struct {
	// Action defaults to ActionUpdate when empty.
	Action Action

	// OwnerID is the owner of the addressed resource, if known.
	OwnerID *int64
}

// OwnedBy returns a context for action on a resource owned by ownerID.
func OwnedBy(action Action, ownerID int64) Context {
	return Context{Action: action, OwnerID: &ownerID}
}

func (c Context) action() Action {
	if c.Action == "" {
		return ActionUpdate
	}
	return c.Action
}

func (c Context) ownedBy(userID int64) bool {
	return c.OwnerID != nil && *c.OwnerID == userID
}

// ParseResource splits "type" or "type:id" into its parts. The type is
// lower-cased. ok is false for empty or malformed identifiers.
func ParseResource(resource string) (resourceType, id string, ok bool) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return "", "", false
	}

	resourceType, id, hasID := strings.Cut(resource, ":")
	resourceType = strings.ToLower(strings.TrimSpace(resourceType))
	if resourceType == "" || resourceType == ResourceAll {
		return "", "", false
	}
	if hasID {
		id = strings.TrimSpace(id)
		if id == "" || strings.Contains(id, ":") {
			return "", "", false
		}
	}
	return resourceType, id, true
}

// evaluate is the single decision function every policy uses.
func evaluate(rules []Rule, userID int64, resource string, ctx Context) bool {
	resourceType, _, ok := ParseResource(resource)
	if !ok {
		return false
	}

	action := ctx.action()
	for _, r := range rules {
		if !r.Covers(resourceType, action) {
			continue
		}
		if r.OwnerOnly && !ctx.ownedBy(userID) {
			continue
		}
		return true
	}
	return false
}

func copyRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		actions := make([]Action, len(r.Actions))
		copy(actions, r.Actions)
		out[i] = Rule{Resource: r.Resource, Actions: actions, OwnerOnly: r.OwnerOnly}
	}
	return out
}
