package recipe

// Knob ids shared by every recipe.
const (
	KnobApprovalChainLength = "approvalChainLength"
	KnobIntegrationMode     = "integrationMode"
	KnobCopyTone            = "copyTone"
	KnobInviteStrategy      = "inviteStrategy"
	KnobNotificationCadence = "notificationCadence"
)

// Enum values for the shared knobs.
const (
	IntegrationStandalone   = "standalone"
	IntegrationMultiTool    = "multi_tool"
	IntegrationGoverned     = "governed"
	IntegrationClientPortal = "client_portal"

	ToneFriendly    = "friendly"
	ToneEfficient   = "efficient"
	ToneClientReady = "client_ready"
	ToneCompliance  = "compliance"

	InviteSelfServe        = "self_serve"
	InviteImmediate        = "immediate"
	InviteStaged           = "staged"
	InviteStakeholderFirst = "stakeholder_first"

	CadenceNone     = "none"
	CadenceWeekly   = "weekly"
	CadenceDaily    = "daily"
	CadenceRealTime = "real_time"
)

// Step ids shared across recipes.
const (
	StepWorkspaceBasics = "workspace-basics"
	StepTeamSetup       = "team-setup"
	StepIntegrations    = "integrations"
	StepPreferences     = "preferences"
	StepCompliance      = "compliance"
	StepReview          = "review"
)

// Registry holds the built-in canvas recipes, keyed by id.
type Registry struct {
	recipes map[ID]*CanvasRecipe
	order   []ID
}

// NewRegistry builds a registry with the four built-in recipes.
func NewRegistry() *Registry {
	r := &Registry{recipes: map[ID]*CanvasRecipe{}}
	for _, rec := range []*CanvasRecipe{
		soloStarter(), teamWorkspace(), clientPortal(), governedRollout(),
	} {
		r.recipes[rec.ID] = rec
		r.order = append(r.order, rec.ID)
	}
	return r
}

// Get returns the recipe with the given id.
func (r *Registry) Get(id ID) (*CanvasRecipe, error) {
	rec, ok := r.recipes[id]
	if !ok {
		return nil, &UnknownRecipeError{ID: id}
	}
	return rec, nil
}

// List returns all recipes in registration order.
func (r *Registry) List() []*CanvasRecipe {
	out := make([]*CanvasRecipe, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.recipes[id])
	}
	return out
}

func approvalKnob(def float64) KnobDefinition {
	return KnobDefinition{
		ID:      KnobApprovalChainLength,
		Label:   "Approval chain length",
		Type:    KnobNumber,
		Default: def,
		Min:     0,
		Max:     3,
		Step:    1,
	}
}

func integrationKnob(def string) KnobDefinition {
	return KnobDefinition{
		ID:      KnobIntegrationMode,
		Label:   "Integration mode",
		Type:    KnobEnum,
		Default: def,
		Options: []KnobOption{
			{Value: IntegrationStandalone, Label: "Standalone"},
			{Value: IntegrationMultiTool, Label: "Connect existing tools"},
			{Value: IntegrationGoverned, Label: "Governed connections"},
			{Value: IntegrationClientPortal, Label: "Client portal"},
		},
	}
}

func toneKnob(def string) KnobDefinition {
	return KnobDefinition{
		ID:      KnobCopyTone,
		Label:   "Copy tone",
		Type:    KnobEnum,
		Default: def,
		Options: []KnobOption{
			{Value: ToneFriendly, Label: "Friendly"},
			{Value: ToneEfficient, Label: "Efficient"},
			{Value: ToneClientReady, Label: "Client-ready"},
			{Value: ToneCompliance, Label: "Compliance-first"},
		},
	}
}

func inviteKnob(def string) KnobDefinition {
	return KnobDefinition{
		ID:      KnobInviteStrategy,
		Label:   "Invite strategy",
		Type:    KnobEnum,
		Default: def,
		Options: []KnobOption{
			{Value: InviteSelfServe, Label: "Self serve"},
			{Value: InviteImmediate, Label: "Invite right away"},
			{Value: InviteStaged, Label: "Staged rollout"},
			{Value: InviteStakeholderFirst, Label: "Stakeholders first"},
		},
	}
}

func cadenceKnob(def string) KnobDefinition {
	return KnobDefinition{
		ID:      KnobNotificationCadence,
		Label:   "Notification cadence",
		Type:    KnobEnum,
		Default: def,
		Options: []KnobOption{
			{Value: CadenceNone, Label: "None"},
			{Value: CadenceWeekly, Label: "Weekly digest"},
			{Value: CadenceDaily, Label: "Daily digest"},
			{Value: CadenceRealTime, Label: "Real time"},
		},
	}
}

func soloStarter() *CanvasRecipe {
	return &CanvasRecipe{
		ID:          SoloStarter,
		Persona:     PersonaExplorer,
		Name:        "Solo starter",
		Description: "A lightweight workspace for one person getting organized.",
		Steps: []StepDefinition{
			{ID: StepWorkspaceBasics, Title: "Workspace basics"},
			{ID: StepPreferences, Title: "Preferences"},
			{ID: StepReview, Title: "Review"},
		},
		Fields: []FieldDefinition{
			{ID: "workspace_name", Label: "Workspace name", Kind: FieldText, Required: true, StepID: StepWorkspaceBasics},
			{ID: "objective_select", Label: "What are you here to do?", Kind: FieldSelect, StepID: StepWorkspaceBasics, Options: []string{"launch", "migrate", "organize", "scale"}},
			{ID: "tone_choice", Label: "Tone of voice", Kind: FieldSelect, StepID: StepPreferences, Options: []string{ToneFriendly, ToneEfficient}},
		},
		Knobs: []KnobDefinition{
			approvalKnob(0),
			integrationKnob(IntegrationStandalone),
			toneKnob(ToneFriendly),
			inviteKnob(InviteSelfServe),
			cadenceKnob(CadenceNone),
		},
	}
}

func teamWorkspace() *CanvasRecipe {
	return &CanvasRecipe{
		ID:          TeamWorkspace,
		Persona:     PersonaTeam,
		Name:        "Team workspace",
		Description: "A shared workspace wired into the tools a team already uses.",
		Steps: []StepDefinition{
			{ID: StepWorkspaceBasics, Title: "Workspace basics"},
			{ID: StepTeamSetup, Title: "Team setup"},
			{ID: StepIntegrations, Title: "Integrations"},
			{ID: StepReview, Title: "Review"},
		},
		Fields: []FieldDefinition{
			{ID: "workspace_name", Label: "Workspace name", Kind: FieldText, Required: true, StepID: StepWorkspaceBasics},
			{ID: "team_size", Label: "Team size", Kind: FieldSelect, StepID: StepTeamSetup, Options: []string{"1-9", "10-24", "25+"}},
			{ID: "invite_emails", Label: "Invite teammates", Kind: FieldEmailList, StepID: StepTeamSetup},
			{ID: "integration_select", Label: "Connect your tools", Kind: FieldSelect, StepID: StepIntegrations, Options: []string{"slack", "jira", "notion", "github", "google-drive"}},
		},
		Knobs: []KnobDefinition{
			approvalKnob(1),
			integrationKnob(IntegrationMultiTool),
			toneKnob(ToneFriendly),
			inviteKnob(InviteImmediate),
			cadenceKnob(CadenceDaily),
		},
	}
}

func clientPortal() *CanvasRecipe {
	return &CanvasRecipe{
		ID:          ClientPortal,
		Persona:     PersonaClient,
		Name:        "Client portal",
		Description: "A polished workspace an agency shares with its clients.",
		Steps: []StepDefinition{
			{ID: StepWorkspaceBasics, Title: "Workspace basics"},
			{ID: StepTeamSetup, Title: "Stakeholders"},
			{ID: StepPreferences, Title: "Client experience"},
			{ID: StepReview, Title: "Review"},
		},
		Fields: []FieldDefinition{
			{ID: "workspace_name", Label: "Portal name", Kind: FieldText, Required: true, StepID: StepWorkspaceBasics},
			{ID: "invite_emails", Label: "Client contacts", Kind: FieldEmailList, StepID: StepTeamSetup},
			{ID: "tone_choice", Label: "Client-facing tone", Kind: FieldSelect, StepID: StepPreferences, Options: []string{ToneClientReady, ToneFriendly}},
			{ID: "region_select", Label: "Operating region", Kind: FieldSelect, StepID: StepPreferences, Options: []string{"us", "eu", "uk", "apac", "global"}},
		},
		Knobs: []KnobDefinition{
			approvalKnob(1),
			integrationKnob(IntegrationClientPortal),
			toneKnob(ToneClientReady),
			inviteKnob(InviteStakeholderFirst),
			cadenceKnob(CadenceWeekly),
		},
	}
}

func governedRollout() *CanvasRecipe {
	return &CanvasRecipe{
		ID:          GovernedRollout,
		Persona:     PersonaGoverned,
		Name:        "Governed rollout",
		Description: "A compliance-aware rollout with approvals and audit trail.",
		Steps: []StepDefinition{
			{ID: StepWorkspaceBasics, Title: "Workspace basics"},
			{ID: StepCompliance, Title: "Compliance"},
			{ID: StepTeamSetup, Title: "Rollout plan"},
			{ID: StepIntegrations, Title: "Approved integrations"},
			{ID: StepReview, Title: "Review"},
		},
		Fields: []FieldDefinition{
			{ID: "workspace_name", Label: "Workspace name", Kind: FieldText, Required: true, StepID: StepWorkspaceBasics},
			{ID: "compliance_ack", Label: "Compliance requirements acknowledged", Kind: FieldCheckbox, Required: true, StepID: StepCompliance},
			{ID: "approval_depth", Label: "Approval layers", Kind: FieldSelect, StepID: StepCompliance, Options: []string{"1", "2", "3"}},
			{ID: "invite_emails", Label: "Pilot group", Kind: FieldEmailList, StepID: StepTeamSetup},
			{ID: "integration_select", Label: "Approved tools", Kind: FieldSelect, StepID: StepIntegrations, Options: []string{"slack", "teams", "confluence", "jira"}},
		},
		Knobs: []KnobDefinition{
			approvalKnob(2),
			integrationKnob(IntegrationGoverned),
			toneKnob(ToneCompliance),
			inviteKnob(InviteStaged),
			cadenceKnob(CadenceRealTime),
		},
	}
}
