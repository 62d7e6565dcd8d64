package signal

import (
	"strings"
	"unicode/utf8"
)

// DefaultLLMOverrideThreshold is the confidence an LLM value needs before
// it may displace a keyword value for the same category.
const DefaultLLMOverrideThreshold = 0.75

const maxNotesLen = 160

// Merge combines keyword and LLM partial signal sets into a full set.
// Per category: only one source present wins outright; both present and
// agreeing merge with the higher confidence; both present and disagreeing
// keep the keyword value unless the LLM confidence reaches threshold.
// Categories neither source detected fall back to Defaults.
func Merge(keyword, fromLLM Partial, threshold float64) Signals {
	out := Defaults()

	out.TeamSizeBracket = mergeField(keyword.TeamSizeBracket, fromLLM.TeamSizeBracket, out.TeamSizeBracket, threshold)
	out.DecisionMakers = mergeField(keyword.DecisionMakers, fromLLM.DecisionMakers, out.DecisionMakers, threshold)
	out.ApprovalChainDepth = mergeField(keyword.ApprovalChainDepth, fromLLM.ApprovalChainDepth, out.ApprovalChainDepth, threshold)
	out.ToolsUsed = mergeField(keyword.ToolsUsed, fromLLM.ToolsUsed, out.ToolsUsed, threshold)
	out.IntegrationCriticality = mergeField(keyword.IntegrationCriticality, fromLLM.IntegrationCriticality, out.IntegrationCriticality, threshold)
	out.ComplianceTags = mergeField(keyword.ComplianceTags, fromLLM.ComplianceTags, out.ComplianceTags, threshold)
	out.CopyTone = mergeField(keyword.CopyTone, fromLLM.CopyTone, out.CopyTone, threshold)
	out.Industry = mergeField(keyword.Industry, fromLLM.Industry, out.Industry, threshold)
	out.PrimaryObjective = mergeField(keyword.PrimaryObjective, fromLLM.PrimaryObjective, out.PrimaryObjective, threshold)
	out.Constraints = mergeField(keyword.Constraints, fromLLM.Constraints, out.Constraints, threshold)
	out.OperatingRegion = mergeField(keyword.OperatingRegion, fromLLM.OperatingRegion, out.OperatingRegion, threshold)

	return out
}

func mergeField[T any](kw, ll *Signal[T], def Signal[T], threshold float64) Signal[T] {
	switch {
	case kw == nil && ll == nil:
		return def
	case ll == nil:
		return *kw
	case kw == nil:
		return *ll
	}

	if ValuesEqual(kw.Value, ll.Value) {
		conf := kw.Meta.Confidence
		if ll.Meta.Confidence > conf {
			conf = ll.Meta.Confidence
		}
		return Signal[T]{
			Value: kw.Value,
			Meta: Metadata{
				Source:     SourceMerge,
				Confidence: conf,
				Notes:      joinNotes(kw.Meta.Notes, ll.Meta.Notes),
			},
		}
	}

	if ll.Meta.Confidence >= threshold {
		return *ll
	}
	return *kw
}

func joinNotes(a, b string) string {
	var joined string
	switch {
	case a == "":
		joined = b
	case b == "":
		joined = a
	default:
		joined = a + "; " + b
	}
	if len(joined) > maxNotesLen {
		cut := maxNotesLen
		for cut > 0 && !utf8.RuneStart(joined[cut]) {
			cut--
		}
		joined = strings.TrimSpace(joined[:cut])
	}
	return joined
}
