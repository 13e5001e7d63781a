package pkg

// ProgressInfo is reported after every processed item of a phase
type ProgressInfo struct {
	Phase     string // "fetching", "writing"
	Item      string // slug or file identifier just processed
	Completed int
	Total     int
	Done      bool
}

// ProgressCallback receives progress updates; it may be nil
type ProgressCallback func(info ProgressInfo)

// ProgressTracker counts processed items of one phase and forwards updates to a callback
type ProgressTracker struct {
	phase     string
	total     int
	completed int
	callback  ProgressCallback
}

// NewProgressTracker creates a tracker for total items of phase
func NewProgressTracker(phase string, total int, callback ProgressCallback) *ProgressTracker {
	return &ProgressTracker{
		phase:    phase,
		total:    total,
		callback: callback,
	}
}

// UpdateProgress marks one more item as processed
func (p *ProgressTracker) UpdateProgress(item string) {
	if p == nil {
		return
	}
	p.completed++
	p.report(item, false)
}

// Complete signals the end of the phase
func (p *ProgressTracker) Complete() {
	if p == nil {
		return
	}
	p.report("", true)
}

// Completed returns the number of processed items
func (p *ProgressTracker) Completed() int {
	if p == nil {
		return 0
	}
	return p.completed
}

func (p *ProgressTracker) report(item string, done bool) {
	if p.callback == nil {
		return
	}
	p.callback(ProgressInfo{
		Phase:     p.phase,
		Item:      item,
		Completed: p.completed,
		Total:     p.total,
		Done:      done,
	})
}
