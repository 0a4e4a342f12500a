package output

// ColumnInfo describes one column of a loaded file.
type ColumnInfo struct {
	Name       string   `json:"name"`
	Inferred   string   `json:"inferred"`
	Rule       string   `json:"rule"`
	Resolution string   `json:"resolution"`
	Ignored    bool     `json:"ignored"`
	Applicable []string `json:"applicable,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// RulesOutput is the JSON shape of the rules command.
type RulesOutput struct {
	Source        string       `json:"source"`
	Rows          int          `json:"rows"`
	Columns       []ColumnInfo `json:"columns"`
	UserFunctions []string     `json:"user_functions"`
}

// CheckResult is the outcome of applying rules to one file.
type CheckResult struct {
	Source  string            `json:"source"`
	Rows    int               `json:"rows"`
	Columns int               `json:"columns"`
	Failed  map[string]string `json:"failed,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// OK reports whether the file loaded and every column transferred.
func (c CheckResult) OK() bool {
	return c.Error == "" && len(c.Failed) == 0
}

// CheckOutput is the JSON shape of the check command.
type CheckOutput struct {
	Results []CheckResult `json:"results"`
	Passed  int           `json:"passed"`
	Failed  int           `json:"failed"`
}

// RunInfo is one remembered run.
type RunInfo struct {
	ID        string `json:"id"`
	StartedAt string `json:"started_at"`
	Columns   int    `json:"columns"`
	Failed    int    `json:"failed"`
	Errors    string `json:"errors,omitempty"`
}

// HistoryOutput is the JSON shape of the history command.
type HistoryOutput struct {
	Source string    `json:"source"`
	Runs   []RunInfo `json:"runs"`
}
