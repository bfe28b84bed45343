package diagfmt

import (
	"io"

	"tscan/internal/diag"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
	// ключ partialFingerprints; менять только вместе с алгоритмом отпечатка
	sarifFingerprintKey = "tscan/v1"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string               `json:"name"`
	Version        string               `json:"version,omitempty"`
	InformationURI string               `json:"informationUri,omitempty"`
	Rules          []sarifReportingRule `json:"rules,omitempty"`
}

type sarifReportingRule struct {
	ID                   string             `json:"id"`
	ShortDescription     *sarifMessage      `json:"shortDescription,omitempty"`
	DefaultConfiguration *sarifRuleDefaults `json:"defaultConfiguration,omitempty"`
}

type sarifRuleDefaults struct {
	Level string `json:"level"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	RelatedLocations    []sarifLocation   `json:"relatedLocations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
	Properties          *sarifProperties  `json:"properties,omitempty"`
}

type sarifProperties struct {
	Configurations []string `json:"configurations,omitempty"`
	Inconclusive   bool     `json:"inconclusive,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          *sarifMessage         `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine uint32 `json:"startLine"`
}

// SarifLevel maps a severity to a SARIF result level.
func SarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	case diag.SevInfo, diag.SevDebug:
		return "none"
	default:
		return "note"
	}
}

func sarifLoc(loc diag.Location, msg string) sarifLocation {
	out := sarifLocation{PhysicalLocation: sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: formatPath(loc.File, PathModeRelative, "")},
	}}
	// регион без строки SARIF не допускает
	if loc.Line > 0 {
		out.PhysicalLocation.Region = &sarifRegion{StartLine: loc.Line}
	}
	if msg != "" {
		out.Message = &sarifMessage{Text: msg}
	}
	return out
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0), один run.
func Sarif(w io.Writer, diags []diag.Diagnostic, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
		}},
		Results: make([]sarifResult, 0, len(diags)),
	}
	for _, r := range meta.Rules {
		rule := sarifReportingRule{ID: r.ID}
		if r.Summary != "" {
			rule.ShortDescription = &sarifMessage{Text: r.Summary}
		}
		if r.Severity != "" {
			rule.DefaultConfiguration = &sarifRuleDefaults{Level: r.Severity}
		}
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rule)
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}
	}

	for i := range diags {
		d := &diags[i]
		res := sarifResult{
			RuleID:              d.ID,
			Level:               SarifLevel(d.Severity),
			Message:             sarifMessage{Text: d.Message},
			Locations:           []sarifLocation{sarifLoc(d.Primary(), "")},
			PartialFingerprints: map[string]string{sarifFingerprintKey: string(d.Fingerprint())},
		}
		for _, via := range d.Locations[min(1, len(d.Locations)):] {
			res.RelatedLocations = append(res.RelatedLocations, sarifLoc(via, ""))
		}
		for _, n := range d.Notes {
			res.RelatedLocations = append(res.RelatedLocations, sarifLoc(n.Loc, n.Msg))
		}
		if len(d.Configs) > 0 || d.Inconclusive {
			res.Properties = &sarifProperties{Configurations: d.Configs, Inconclusive: d.Inconclusive}
		}
		run.Results = append(run.Results, res)
	}

	return JSON(w, sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}
