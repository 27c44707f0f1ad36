package domain

type Season string

const (
	SeasonWinter Season = "WINTER"
	SeasonSpring Season = "SPRING"
	SeasonSummer Season = "SUMMER"
	SeasonFall   Season = "FALL"
)

// ValidSeasons is the canonical set of accepted season strings.
var ValidSeasons = map[string]bool{
	"WINTER": true, "SPRING": true, "SUMMER": true, "FALL": true,
}

type CertificationState string

const (
	CertDraft     CertificationState = "DRAFT"
	CertReady     CertificationState = "READY"
	CertCertified CertificationState = "CERTIFIED"
)

type PlanItemStatus string

const (
	ItemDraft   PlanItemStatus = "DRAFT"
	ItemValid   PlanItemStatus = "VALID"
	ItemInvalid PlanItemStatus = "INVALID"
)

type CompletionStatus string

const (
	CompletionYes        CompletionStatus = "YES"
	CompletionInProgress CompletionStatus = "IN_PROGRESS"
	CompletionNo         CompletionStatus = "NO"
	CompletionBlank      CompletionStatus = "BLANK"
)

// ValidCompletionStatuses is the canonical set of accepted completion strings.
var ValidCompletionStatuses = map[string]bool{
	"YES": true, "IN_PROGRESS": true, "NO": true, "BLANK": true,
}

type ValidationReason string

const (
	ReasonInvalidCourse   ValidationReason = "INVALID_COURSE"
	ReasonNotOffered      ValidationReason = "NOT_OFFERED"
	ReasonPrereqMissing   ValidationReason = "PREREQ_MISSING"
	ReasonUnsupportedRule ValidationReason = "UNSUPPORTED_RULE"
)

type RequirementStatus string

const (
	RequirementSatisfied RequirementStatus = "SATISFIED"
	RequirementPending   RequirementStatus = "PENDING"
	RequirementMissing   RequirementStatus = "MISSING"
	RequirementUnknown   RequirementStatus = "UNKNOWN"
)

type RuleKind string

const (
	RulePrereq      RuleKind = "PREREQ"
	RuleCoreq       RuleKind = "COREQ"
	RuleRestriction RuleKind = "RESTRICTION"
)

// ValidRuleKinds is the canonical set of accepted course rule kinds.
var ValidRuleKinds = map[string]bool{
	"PREREQ": true, "COREQ": true, "RESTRICTION": true,
}

type BlockerCode string

const (
	BlockerInvalidItems         BlockerCode = "INVALID_ITEMS"
	BlockerUnsupportedRules     BlockerCode = "UNSUPPORTED_RULES"
	BlockerMissingRequirements  BlockerCode = "MISSING_REQUIREMENTS"
	BlockerUnknownRequirements  BlockerCode = "UNKNOWN_REQUIREMENTS"
	BlockerCertifyRequiresReady BlockerCode = "CERTIFY_REQUIRES_READY"
)

type AuditAction string

const (
	ActionPlanMarkedReady     AuditAction = "PLAN_MARKED_READY"
	ActionPlanFinalized       AuditAction = "PLAN_FINALIZED"
	ActionPlanRevertedToDraft AuditAction = "PLAN_REVERTED_TO_DRAFT"
)

// ReasonPlanItemMutation is the audit-log reason recorded when an item edit
// reverts a READY plan.
const ReasonPlanItemMutation = "PLAN_ITEM_MUTATION"

// ResourceDegreePlan is the audit-log resource type for plans.
const ResourceDegreePlan = "DegreePlan"
