package dashboard

import (
	"time"

	"github.com/yourusername/kubmonitor/internal/model"
)

// ViewMode is the top-level state of the controller
type ViewMode int

const (
	ModeList ViewMode = iota
	ModeLogViewer
)

func (m ViewMode) String() string {
	if m == ModeLogViewer {
		return "logs"
	}
	return "list"
}

// Hint is one footer key hint; MessageID is an i18n message id
type Hint struct {
	Key       string
	MessageID string
}

// Notice is a transient status message shown in the footer
type Notice struct {
	MessageID string
	Data      map[string]interface{}
	Error     bool
}

// LogLine is a log line with its 1-based position in the fetched log
type LogLine struct {
	Number int
	Text   string
}

// LogView is the render state of the log viewer
type LogView struct {
	PodID       string
	Lines       []LogLine
	Offset      int
	Total       int
	LastUpdated time.Time
	Err         string
}

// ViewModel is everything a renderer needs for one frame
type ViewModel struct {
	Namespace       string
	Mode            ViewMode
	RefreshInterval time.Duration
	LastUpdated     time.Time
	// StaleErr is the last snapshot error; the previous snapshot is still shown
	StaleErr string

	Quota model.QuotaInfo
	GPUs  model.GPUInventory
	Local model.LocalMetrics

	JobCount  int
	PodCount  int
	Rows      []DisplayRow
	TotalRows int
	Selected  int
	Offset    int

	Log LogView

	Hints  []Hint
	Notice *Notice
}

// SelectedVisible returns the index of the selected row within Rows, or -1
func (v *ViewModel) SelectedVisible() int {
	i := v.Selected - v.Offset
	if i < 0 || i >= len(v.Rows) {
		return -1
	}
	return i
}

var (
	listHints = []Hint{
		{Key: "↑/↓", MessageID: "keys.move"},
		{Key: "enter", MessageID: "keys.logs"},
		{Key: "r", MessageID: "keys.refresh"},
		{Key: "y", MessageID: "keys.copy_name"},
		{Key: "q", MessageID: "keys.quit"},
	}
	logHints = []Hint{
		{Key: "↑/↓", MessageID: "keys.scroll"},
		{Key: "r", MessageID: "keys.refresh"},
		{Key: "y", MessageID: "keys.copy_logs"},
		{Key: "esc/q", MessageID: "keys.back"},
	}
)
