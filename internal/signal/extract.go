package signal

import (
	"regexp"
	"strconv"
	"strings"
)

// Keyword extraction scans a normalized prompt against per-category tables.
// Each category resolves to at most one value; keyword hits carry full
// confidence because the user literally said the words.
const keywordConfidence = 1.0

var (
	// "5-10 people", "10 to 24 teammates": ranges win over loose digits.
	teamRangeRE = regexp.MustCompile(`\b(\d{1,4})\s*(?:-|–|to\s+)\s*(\d{1,4})\s*(?:person|people|members?|teammates?|employees|folks|users|seats)\b`)
	// "team of 12", "12 person team", "12 people".
	teamPhraseRE = regexp.MustCompile(`\b(?:team|group|company|org|organization|agency|staff)\s+of\s+(\d{1,4})\b|\b(\d{1,4})\s*(?:person|people|members?|teammates?|employees|folks|users|seats)\b`)
	soloRE       = regexp.MustCompile(`\b(?:just me|solo|myself|on my own|one person|single user|by myself)\b`)
)

type keywordRule[T any] struct {
	value T
	terms []string
}

func firstMatch[T any](text string, rules []keywordRule[T]) (T, []string, bool) {
	for _, r := range rules {
		var hits []string
		for _, term := range r.terms {
			if strings.Contains(text, term) {
				hits = append(hits, term)
			}
		}
		if len(hits) > 0 {
			return r.value, hits, true
		}
	}
	var zero T
	return zero, nil, false
}

func collectMatches(text string, table map[string][]string) []string {
	var out []string
	seen := map[string]bool{}
	for _, canonical := range sortedKeys(table) {
		for _, term := range table[canonical] {
			if strings.Contains(text, term) && !seen[canonical] {
				seen[canonical] = true
				out = append(out, canonical)
				break
			}
		}
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// insertion sort keeps ordering deterministic without importing sort
	// for a handful of keys
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

var approvalRules = []keywordRule[ApprovalDepth]{
	{DepthMulti, []string{"legal review", "security review", "committee", "multi-level approval", "several approvals", "chain of approvals", "board approval"}},
	{DepthDual, []string{"manager sign-off", "manager signoff", "two-step approval", "dual approval", "second approval", "my manager approves", "needs sign-off"}},
	{DepthSingle, []string{"no approvals", "i approve everything", "i sign off", "single approval", "approve it myself"}},
}

var criticalityRules = []keywordRule[Criticality]{
	{CriticalityMustHave, []string{"must integrate", "must-have integration", "critical integration", "essential that it connects", "has to connect", "deal-breaker"}},
	{CriticalityNiceToHave, []string{"nice to have", "nice-to-have", "would be nice", "bonus if it connects"}},
	{CriticalityExploratory, []string{"exploring", "trying out", "experimenting", "kicking the tires", "just testing"}},
}

var toneRules = []keywordRule[Tone]{
	{ToneFastPaced, []string{"fast-paced", "fast paced", "move fast", "quick setup", "punchy", "asap", "hit the ground running"}},
	{ToneMeticulous, []string{"meticulous", "thorough", "careful", "detail-oriented", "audit-ready", "buttoned up"}},
	{ToneTrustedAdvisor, []string{"trusted advisor", "white-glove", "white glove", "client-facing", "for my clients", "client portal"}},
	{ToneMigration, []string{"migrating", "migrate from", "switching from", "moving off", "moving from"}},
	{ToneOnboarding, []string{"onboard", "onboarding", "ramp up", "get everyone set up", "getting started"}},
}

var objectiveRules = []keywordRule[Objective]{
	{ObjectiveMigrate, []string{"migrate", "migrating", "switching from", "moving off", "moving from"}},
	{ObjectiveScale, []string{"scale", "scaling", "growing fast", "rolling out to", "expand to"}},
	{ObjectiveLaunch, []string{"launch", "launching", "kick off", "kickoff", "starting a new", "spin up"}},
	{ObjectiveOrganize, []string{"organize", "organise", "get organized", "tidy up", "centralize", "keep track of"}},
}

var industryRules = []keywordRule[string]{
	{"healthcare", []string{"healthcare", "health care", "clinic", "hospital", "medical", "patient"}},
	{"fintech", []string{"fintech", "finance", "financial", "banking", "payments"}},
	{"legal", []string{"law firm", "legal team", "attorneys", "paralegal"}},
	{"education", []string{"school", "university", "education", "students", "teachers"}},
	{"retail", []string{"retail", "ecommerce", "e-commerce", "storefront"}},
	{"agency", []string{"agency", "consultancy", "consulting firm", "freelance"}},
	{"nonprofit", []string{"nonprofit", "non-profit", "charity", "ngo"}},
	{"software", []string{"saas", "software company", "dev team", "engineering team", "startup"}},
}

var regionRules = []keywordRule[string]{
	{"eu", []string{"europe", "european", " eu ", "eu-based", "germany", "france", "netherlands"}},
	{"us", []string{"united states", "us-based", "usa", "north america"}},
	{"uk", []string{"united kingdom", " uk ", "uk-based", "london"}},
	{"apac", []string{"apac", "asia", "australia", "singapore", "japan"}},
	{"global", []string{"global", "worldwide", "across regions", "multiple countries"}},
}

var decisionMakerTable = map[string][]string{
	"founder":        {"founder", "co-founder", "cofounder"},
	"ceo":            {"ceo", "chief executive"},
	"cto":            {"cto", "chief technology"},
	"coo":            {"coo", "chief operating"},
	"ops-lead":       {"ops lead", "operations lead", "head of ops", "operations manager"},
	"office-manager": {"office manager"},
	"it-admin":       {"it admin", "it administrator", "it department", "it team decides"},
	"procurement":    {"procurement", "purchasing team"},
	"legal":          {"legal team", "general counsel", "legal department"},
	"manager":        {"my manager", "my boss", "team lead decides", "department head"},
}

var toolTable = map[string][]string{
	"slack":        {"slack"},
	"jira":         {"jira"},
	"notion":       {"notion"},
	"asana":        {"asana"},
	"trello":       {"trello"},
	"salesforce":   {"salesforce"},
	"hubspot":      {"hubspot"},
	"google-drive": {"google drive", "gdrive", "google docs"},
	"figma":        {"figma"},
	"github":       {"github"},
	"gitlab":       {"gitlab"},
	"linear":       {"linear"},
	"zendesk":      {"zendesk"},
	"teams":        {"microsoft teams", "ms teams"},
	"confluence":   {"confluence"},
	"dropbox":      {"dropbox"},
	"zoom":         {"zoom"},
}

var complianceTable = map[string][]string{
	"hipaa":    {"hipaa"},
	"soc2":     {"soc2", "soc 2", "soc-2"},
	"gdpr":     {"gdpr"},
	"iso27001": {"iso 27001", "iso27001"},
	"pci":      {"pci", "pci-dss", "pci dss"},
	"ferpa":    {"ferpa"},
	"hitrust":  {"hitrust"},
	"fedramp":  {"fedramp"},
}

var constraintTable = map[string][]string{
	ConstraintRushTimeline:     {"asap", "urgent", "this week", "by friday", "tight deadline", "right away", "immediately", "yesterday"},
	ConstraintFlexibleTimeline: {"no rush", "whenever", "flexible timeline", "no deadline", "take our time"},
	ConstraintTightBudget:      {"tight budget", "on a budget", "cheap", "low cost", "free tier"},
}

// ExtractKeywordSignals scans the prompt against the keyword tables and
// returns one signal per detected category. Pure and deterministic; always
// succeeds.
func ExtractKeywordSignals(prompt string) Partial {
	text := normalizePrompt(prompt)
	var out Partial

	if bracket, notes, ok := extractTeamBracket(text); ok {
		s := New(bracket, SourceKeyword, keywordConfidence, notes)
		out.TeamSizeBracket = &s
	}
	if makers := collectMatches(text, decisionMakerTable); len(makers) > 0 {
		s := New(makers, SourceKeyword, keywordConfidence, "matched: "+strings.Join(makers, ", "))
		out.DecisionMakers = &s
	}
	if depth, hits, ok := firstMatch(text, approvalRules); ok {
		s := New(depth, SourceKeyword, keywordConfidence, "matched: "+strings.Join(hits, ", "))
		out.ApprovalChainDepth = &s
	}
	if tools := collectMatches(text, toolTable); len(tools) > 0 {
		s := New(tools, SourceKeyword, keywordConfidence, "matched: "+strings.Join(tools, ", "))
		out.ToolsUsed = &s
	}
	if crit, hits, ok := firstMatch(text, criticalityRules); ok {
		s := New(crit, SourceKeyword, keywordConfidence, "matched: "+strings.Join(hits, ", "))
		out.IntegrationCriticality = &s
	}
	if tags := collectMatches(text, complianceTable); len(tags) > 0 {
		s := New(tags, SourceKeyword, keywordConfidence, "matched: "+strings.Join(tags, ", "))
		out.ComplianceTags = &s
	}
	if tone, hits, ok := firstMatch(text, toneRules); ok {
		s := New(tone, SourceKeyword, keywordConfidence, "matched: "+strings.Join(hits, ", "))
		out.CopyTone = &s
	}
	if industry, hits, ok := firstMatch(text, industryRules); ok {
		s := New(industry, SourceKeyword, keywordConfidence, "matched: "+strings.Join(hits, ", "))
		out.Industry = &s
	}
	if obj, hits, ok := firstMatch(text, objectiveRules); ok {
		s := New(obj, SourceKeyword, keywordConfidence, "matched: "+strings.Join(hits, ", "))
		out.PrimaryObjective = &s
	}
	if constraints := collectMatches(text, constraintTable); len(constraints) > 0 {
		s := New(constraints, SourceKeyword, keywordConfidence, "matched: "+strings.Join(constraints, ", "))
		out.Constraints = &s
	}
	if region, hits, ok := firstMatch(text, regionRules); ok {
		for i := range hits {
			hits[i] = strings.TrimSpace(hits[i])
		}
		s := New(region, SourceKeyword, keywordConfidence, "matched: "+strings.Join(hits, ", "))
		out.OperatingRegion = &s
	}

	return out
}

// extractTeamBracket resolves the team size with explicit precedence:
// solo phrasing, then numeric ranges (averaged), then "team of N" and
// "N people" phrasings. Bare digits with no team wording are ignored so
// "version 3" or "Q4" never look like a headcount.
func extractTeamBracket(text string) (TeamBracket, string, bool) {
	if m := soloRE.FindString(text); m != "" {
		return BracketSolo, "matched: " + m, true
	}
	if m := teamRangeRE.FindStringSubmatch(text); m != nil {
		lo, err1 := strconv.Atoi(m[1])
		hi, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && lo <= hi {
			avg := (lo + hi) / 2
			return BracketForCount(avg), "range " + m[1] + "-" + m[2] + " averaged to " + strconv.Itoa(avg), true
		}
	}
	if m := teamPhraseRE.FindStringSubmatch(text); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return BracketForCount(n), "matched headcount " + raw, true
		}
	}
	return BracketUnknown, "", false
}

// normalizePrompt lowercases and collapses punctuation so table lookups
// only deal with plain words. Hyphens and digits survive because the
// tables and regexes use them.
func normalizePrompt(prompt string) string {
	lower := strings.ToLower(prompt)
	var b strings.Builder
	b.Grow(len(lower) + 2)
	b.WriteByte(' ')
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '–':
			b.WriteRune(r)
		case r == '\'':
			// drop apostrophes entirely: "we're" -> "were"
		default:
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return collapseSpaces(b.String())
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteByte(s[i])
	}
	return " " + b.String() + " "
}
