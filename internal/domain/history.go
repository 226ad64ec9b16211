package domain

import "time"

// OutcomeSummary is the part of an outcome kept in history.
type OutcomeSummary struct {
	Success      bool         `json:"success"`
	ElapsedMs    int64        `json:"elapsed_ms"`
	DisplayClass DisplayClass `json:"display_class"`
	QueryForm    QueryForm    `json:"query_form,omitempty"`
	ItemCount    int          `json:"item_count"`
	ErrorKind    ErrorKind    `json:"error_kind,omitempty"`
}

// Label mirrors NormalizedResult.Label for a stored entry.
func (o OutcomeSummary) Label() string { return resultLabel(o.DisplayClass, o.QueryForm) }

// HistoryEntry records one completed execution.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Query     string         `json:"query"`
	Timestamp time.Time      `json:"timestamp"`
	Outcome   OutcomeSummary `json:"outcome"`
}

// SummarizeResult builds the history summary of a normalized result.
func SummarizeResult(res NormalizedResult) OutcomeSummary {
	summary := OutcomeSummary{
		Success:      res.Succeeded(),
		ElapsedMs:    res.ElapsedMs,
		DisplayClass: res.Class,
		QueryForm:    res.Form,
		ItemCount:    res.ItemCount(),
	}
	if res.Failure != nil {
		summary.ErrorKind = res.Failure.Kind
	}
	return summary
}

// SampleQuery is one entry of the static sample catalog.
type SampleQuery struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Query       string `yaml:"query" json:"query"`
}

// BrowseItem is a display row when samples and history are listed together.
type BrowseItem struct {
	Source  string // "sample" or "history"
	Label   string
	Query   string
	Summary *OutcomeSummary
}
