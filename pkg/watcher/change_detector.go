package watcher

// ChangeAnalysis describes what a debounced change means for the graph
type ChangeAnalysis struct {
	NeedReload   bool // re-read the dataset and recompute
	KeepCurrent  bool // the file is gone; keep showing the last dataset
	ChangedFiles []string
}

// AnalyzeChanges decides how to react to a debounced change event
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeWritten:
		analysis.NeedReload = true
	case ChangeTypeRemoved:
		analysis.KeepCurrent = true
	}

	return analysis
}
