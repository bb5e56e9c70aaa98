package domain

type ImportStatus string

const (
	ImportSuccess ImportStatus = "success"
	ImportSkipped ImportStatus = "skipped"
	ImportFailed  ImportStatus = "failed"
)

// ImportOutcome reports what happened to a single requested name. Profile is
// set only on success; in dry-run mode it carries the would-be record.
type ImportOutcome struct {
	Name    string       `json:"name"`
	Status  ImportStatus `json:"status"`
	Reason  string       `json:"reason,omitempty"`
	Profile *Profile     `json:"profile,omitempty"`
}

// ImportSummary tallies a batch. Skipped items are duplicates, not errors.
type ImportSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func Summarize(outcomes []*ImportOutcome) ImportSummary {
	summary := ImportSummary{Total: len(outcomes)}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case ImportSuccess:
			summary.Success++
		case ImportSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	return summary
}
