package access

import (
	"strings"

	"github.com/campus-hub/campus-social/internal/domain/user"
)

// Policy decides resource access for one role.
type Policy interface {
	// CanAccessResource reports whether userID may perform ctx.Action on resource.
	CanAccessResource(userID int64, resource string, ctx Context) bool

	// Permissions returns a copy of the rules the policy grants.
	Permissions() []Rule

	// RoleName returns the role this policy serves.
	RoleName() string
}

// RulePolicy is a Policy backed by a fixed rule set.
type RulePolicy struct {
	role  string
	rules []Rule
}

// NewRulePolicy creates a policy for role from rules. The rules are copied.
func NewRulePolicy(role string, rules ...Rule) *RulePolicy {
	return &RulePolicy{
		role:  strings.ToLower(strings.TrimSpace(role)),
		rules: copyRules(rules),
	}
}

// CanAccessResource implements Policy.
func (p *RulePolicy) CanAccessResource(userID int64, resource string, ctx Context) bool {
	return evaluate(p.rules, userID, resource, ctx)
}

// Permissions implements Policy.
func (p *RulePolicy) Permissions() []Rule {
	return copyRules(p.rules)
}

// RoleName implements Policy.
func (p *RulePolicy) RoleName() string {
	return p.role
}

// ─────────────────────────────────────────────────────────────────────────────
// Built-in roles
// ─────────────────────────────────────────────────────────────────────────────

// UnknownRole is the name reported by the deny-all fallback.
const UnknownRole = "unknown"

func studentRules() []Rule {
	return []Rule{
		{Resource: ResourceProfile, Actions: []Action{ActionRead}},
		{Resource: ResourceProject, Actions: []Action{ActionRead, ActionCreate}},
		{Resource: ResourcePost, Actions: []Action{ActionRead, ActionCreate, ActionReact}},
		{Resource: ResourceSkill, Actions: []Action{ActionRead}},
		{Resource: ResourceCV, Actions: []Action{ActionRead}},
		{Resource: ResourceInteraction, Actions: []Action{ActionRead, ActionCreate}},

		{Resource: ResourceProfile, Actions: []Action{ActionUpdate, ActionDelete}, OwnerOnly: true},
		{Resource: ResourceProject, Actions: []Action{ActionUpdate, ActionDelete}, OwnerOnly: true},
		{Resource: ResourcePost, Actions: []Action{ActionUpdate, ActionDelete}, OwnerOnly: true},
		{Resource: ResourceSkill, Actions: []Action{ActionCreate, ActionUpdate, ActionDelete}, OwnerOnly: true},
		{Resource: ResourceCV, Actions: []Action{ActionCreate, ActionUpdate, ActionDelete}, OwnerOnly: true},
		{Resource: ResourceInteraction, Actions: []Action{ActionDelete}, OwnerOnly: true},
	}
}

// Student may read everything public, publish its own work and react to
// posts. Edits require ownership.
func Student() *RulePolicy {
	return NewRulePolicy(user.RoleStudent, studentRules()...)
}

// Professor has the student rules plus post moderation and project review
// regardless of owner.
func Professor() *RulePolicy {
	rules := append(studentRules(),
		Rule{Resource: ResourcePost, Actions: []Action{ActionModerate}},
		Rule{Resource: ResourceProject, Actions: []Action{ActionReview}},
	)
	return NewRulePolicy(user.RoleProfessor, rules...)
}

// Admin may do anything, ownership notwithstanding.
func Admin() *RulePolicy {
	return NewRulePolicy(user.RoleAdmin, Rule{Resource: ResourceAll, Actions: []Action{ActionAll}})
}

// Guest may only read public resources.
func Guest() *RulePolicy {
	return NewRulePolicy(user.RoleGuest,
		Rule{Resource: ResourceProfile, Actions: []Action{ActionRead}},
		Rule{Resource: ResourceProject, Actions: []Action{ActionRead}},
		Rule{Resource: ResourcePost, Actions: []Action{ActionRead}},
	)
}

// DenyAll grants nothing. It is the fallback for unknown roles.
func DenyAll() *RulePolicy {
	return NewRulePolicy(UnknownRole)
}
