package batch

type Job struct {
	ID      string
	Path    string
	RelPath string
}

type Result struct {
	Job        Job
	OutputPath string
	InBytes    int64
	OutBytes   int64
	Err        error
}

// Summary is mutated only by the collector goroutine.
type Summary struct {
	Found     int
	Processed int
	Failed    int
	InBytes   int64
	OutBytes  int64
}

func (s Summary) BytesSaved() int64 {
	return s.InBytes - s.OutBytes
}

type ProgressUpdate struct {
	FoundDelta      int
	ProcessedDelta  int
	FailedDelta     int
	BytesSavedDelta int64
	Done            *Result
}
