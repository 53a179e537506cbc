package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yourusername/kubmonitor/internal/input"
	"github.com/yourusername/kubmonitor/internal/model"
	"go.uber.org/zap"
)

// SnapshotProvider returns a complete picture of one namespace
type SnapshotProvider interface {
	FetchClusterSnapshot(ctx context.Context, namespace string) (*model.ClusterSnapshot, error)
}

// ForceRefresher is implemented by snapshot providers that serve a
// published copy and can be asked to fetch a new one right away
type ForceRefresher interface {
	RefreshNow(ctx context.Context) error
}

// LogProvider returns up to maxLines trailing log lines of a pod
type LogProvider interface {
	FetchPodLogs(ctx context.Context, namespace, podID string, maxLines int) ([]string, error)
}

// MetricsProvider samples the local machine
type MetricsProvider interface {
	FetchLocalMetrics(ctx context.Context) (model.LocalMetrics, error)
}

// Clipboard receives text copied from the dashboard
type Clipboard interface {
	WriteAll(text string) error
}

var errEmptySnapshot = errors.New("snapshot provider returned no data")

const (
	// logScrollSlack lets the last log lines scroll a little past the bottom
	logScrollSlack = 5

	defaultRefreshInterval = 2 * time.Second
	defaultLogTailLines    = 200
	defaultVisibleHeight   = 20
)

// Options configures a Controller
type Options struct {
	Namespace          string
	RefreshInterval    time.Duration
	LogRefreshInterval time.Duration
	LogTailLines       int
	ListHeight         int
	LogHeight          int
}

type logViewer struct {
	podID  string
	lines  []string
	offset int
	err    string
}

// Controller owns the dashboard state machine. It is driven by Step, one
// call per loop iteration, and is not safe for concurrent use.
type Controller struct {
	namespace    string
	logTailLines int
	listHeight   int
	logHeight    int

	snapshots SnapshotProvider
	logs      LogProvider
	metrics   MetricsProvider
	clipboard Clipboard
	logger    *zap.Logger

	mode     ViewMode
	list     CursorState
	viewer   logViewer
	snapshot *model.ClusterSnapshot
	snapErr  string
	local    model.LocalMetrics
	notice   *Notice
	quitting bool

	snapTimer refreshTimer
	logTimer  refreshTimer
}

// NewController creates a controller in List mode with the cursor at the top
func NewController(opts Options, snapshots SnapshotProvider, logs LogProvider, metrics MetricsProvider, logger *zap.Logger) *Controller {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.LogRefreshInterval <= 0 {
		opts.LogRefreshInterval = opts.RefreshInterval
	}
	if opts.LogTailLines <= 0 {
		opts.LogTailLines = defaultLogTailLines
	}
	if opts.ListHeight <= 0 {
		opts.ListHeight = defaultVisibleHeight
	}
	if opts.LogHeight <= 0 {
		opts.LogHeight = defaultVisibleHeight
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		namespace:    opts.Namespace,
		logTailLines: opts.LogTailLines,
		listHeight:   opts.ListHeight,
		logHeight:    opts.LogHeight,
		snapshots:    snapshots,
		logs:         logs,
		metrics:      metrics,
		logger:       logger,
		mode:         ModeList,
		snapTimer:    refreshTimer{interval: opts.RefreshInterval},
		logTimer:     refreshTimer{interval: opts.LogRefreshInterval},
	}
}

// SetClipboard enables the Copy command
func (c *Controller) SetClipboard(cb Clipboard) {
	c.clipboard = cb
}

// SetViewport updates the number of visible list rows and log lines
func (c *Controller) SetViewport(listHeight, logHeight int) {
	if listHeight < 1 {
		listHeight = 1
	}
	if logHeight < 1 {
		logHeight = 1
	}
	c.listHeight = listHeight
	c.logHeight = logHeight
	c.list = c.list.Fit(len(c.rows()), c.listHeight)
	c.viewer.offset = c.clampLogOffset(c.viewer.offset)
}

// Mode returns the current view mode
func (c *Controller) Mode() ViewMode {
	return c.mode
}

// Step runs one loop iteration: apply cmd, then let the refresh gate fire,
// then sample local metrics and build the frame. It returns false for the
// second value once the user has quit from List mode; in that case no
// provider is called.
func (c *Controller) Step(ctx context.Context, cmd input.Command, now time.Time) (ViewModel, bool) {
	c.notice = nil
	fetched := c.apply(ctx, cmd, now)
	if c.quitting {
		return ViewModel{Namespace: c.namespace, Mode: c.mode}, false
	}

	switch c.mode {
	case ModeList:
		if !fetched && c.snapTimer.due(now) {
			c.fetchSnapshot(ctx, now)
		}
	case ModeLogViewer:
		if !fetched && c.logTimer.due(now) {
			c.fetchLogs(ctx, now)
		}
	}

	c.sampleLocal(ctx)
	return c.view(), true
}

// apply mutates state for cmd and reports whether it already fetched
// from a provider during this iteration.
func (c *Controller) apply(ctx context.Context, cmd input.Command, now time.Time) bool {
	if cmd == input.None {
		return false
	}
	c.logger.Debug("Applying command",
		zap.String("command", cmd.String()),
		zap.String("mode", c.mode.String()),
	)

	if c.mode == ModeLogViewer {
		return c.applyLogViewer(ctx, cmd, now)
	}
	return c.applyList(ctx, cmd, now)
}

func (c *Controller) applyList(ctx context.Context, cmd input.Command, now time.Time) bool {
	rows := c.rows()

	switch cmd {
	case input.Up:
		c.list = c.list.Move(-1, len(rows), c.listHeight)
	case input.Down:
		c.list = c.list.Move(1, len(rows), c.listHeight)
	case input.Enter:
		if len(rows) == 0 {
			return false
		}
		row := rows[ClampCursor(c.list.Selected, len(rows))]
		if !row.IsPod() {
			return false
		}
		c.openViewer(ctx, row.PodID, now)
		return true
	case input.Refresh:
		c.forceRefresh(ctx)
		c.fetchSnapshot(ctx, now)
		return true
	case input.Quit:
		c.quitting = true
	case input.Copy:
		if len(rows) > 0 {
			row := rows[ClampCursor(c.list.Selected, len(rows))]
			c.copy(row.Name, "notice.copied_name", map[string]interface{}{"Name": row.Name})
		}
	}
	return false
}

func (c *Controller) applyLogViewer(ctx context.Context, cmd input.Command, now time.Time) bool {
	switch cmd {
	case input.Escape, input.Backspace, input.Quit:
		c.closeViewer()
	case input.Up:
		c.viewer.offset = c.clampLogOffset(c.viewer.offset - 1)
	case input.Down:
		c.viewer.offset = c.clampLogOffset(c.viewer.offset + 1)
	case input.Refresh:
		c.fetchLogs(ctx, now)
		return true
	case input.Copy:
		c.copy(strings.Join(c.viewer.lines, "\n"), "notice.copied_lines",
			map[string]interface{}{"Count": len(c.viewer.lines)})
	}
	return false
}

func (c *Controller) openViewer(ctx context.Context, podID string, now time.Time) {
	c.logger.Info("Opening log viewer", zap.String("pod", podID))
	c.mode = ModeLogViewer
	c.viewer = logViewer{podID: podID}
	c.logTimer.clear()
	c.fetchLogs(ctx, now)
}

func (c *Controller) closeViewer() {
	c.logger.Debug("Closing log viewer", zap.String("pod", c.viewer.podID))
	c.mode = ModeList
	c.viewer = logViewer{}
	c.logTimer.clear()
}

// forceRefresh asks a caching provider for a new fetch. Its failure shows
// up through the FetchClusterSnapshot that follows.
func (c *Controller) forceRefresh(ctx context.Context) {
	fr, ok := c.snapshots.(ForceRefresher)
	if !ok {
		return
	}
	if err := fr.RefreshNow(ctx); err != nil {
		c.logger.Debug("Manual refresh failed", zap.Error(err))
	}
}

func (c *Controller) fetchSnapshot(ctx context.Context, now time.Time) {
	if c.snapshots == nil {
		return
	}
	start := time.Now()
	snap, err := c.snapshots.FetchClusterSnapshot(ctx, c.namespace)
	if err == nil && snap == nil {
		err = errEmptySnapshot
	}
	c.snapTimer.record(now, err)
	if err != nil {
		c.snapErr = err.Error()
		c.logger.Warn("Snapshot refresh failed, keeping previous data",
			zap.String("namespace", c.namespace),
			zap.Error(err),
		)
		return
	}

	c.snapshot = snap
	c.snapErr = ""
	c.list = c.list.Fit(len(c.rows()), c.listHeight)
	c.logger.Debug("Snapshot refreshed",
		zap.Int("jobs", len(snap.Jobs)),
		zap.Int("pods", snap.PodCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (c *Controller) fetchLogs(ctx context.Context, now time.Time) {
	if c.logs == nil || c.viewer.podID == "" {
		return
	}
	lines, err := c.logs.FetchPodLogs(ctx, c.namespace, c.viewer.podID, c.logTailLines)
	c.logTimer.record(now, err)
	if err != nil {
		c.viewer.err = err.Error()
		c.logger.Warn("Log refresh failed, keeping previous lines",
			zap.String("namespace", c.namespace),
			zap.String("pod", c.viewer.podID),
			zap.Error(err),
		)
		return
	}

	// content changes, scroll position stays
	c.viewer.lines = lines
	c.viewer.err = ""
	c.viewer.offset = c.clampLogOffset(c.viewer.offset)
}

func (c *Controller) sampleLocal(ctx context.Context) {
	if c.metrics == nil {
		return
	}
	local, err := c.metrics.FetchLocalMetrics(ctx)
	if err != nil {
		c.logger.Debug("Local metrics unavailable", zap.Error(err))
		return
	}
	c.local = local
}

func (c *Controller) copy(text, messageID string, data map[string]interface{}) {
	if c.clipboard == nil {
		return
	}
	if err := c.clipboard.WriteAll(text); err != nil {
		c.logger.Warn("Clipboard write failed", zap.Error(err))
		c.notice = &Notice{MessageID: "notice.copy_failed", Data: map[string]interface{}{"Error": err.Error()}, Error: true}
		return
	}
	c.notice = &Notice{MessageID: messageID, Data: data}
}

func (c *Controller) clampLogOffset(offset int) int {
	maxOffset := len(c.viewer.lines) - c.logHeight + logScrollSlack
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func (c *Controller) rows() []DisplayRow {
	if c.snapshot == nil {
		return nil
	}
	return BuildRows(c.snapshot.Jobs)
}

func (c *Controller) view() ViewModel {
	rows := c.rows()
	c.list = c.list.Fit(len(rows), c.listHeight)

	vm := ViewModel{
		Namespace:       c.namespace,
		Mode:            c.mode,
		RefreshInterval: c.snapTimer.interval,
		LastUpdated:     c.snapTimer.succeeded,
		StaleErr:        c.snapErr,
		Quota:           model.EmptyQuota(),
		Local:           c.local,
		Rows:            VisibleSlice(rows, c.list.Offset, c.listHeight),
		TotalRows:       len(rows),
		Selected:        c.list.Selected,
		Offset:          c.list.Offset,
		Hints:           listHints,
		Notice:          c.notice,
	}
	if c.snapshot != nil {
		vm.Quota = c.snapshot.Quota
		vm.GPUs = c.snapshot.GPUs
		vm.JobCount = len(c.snapshot.Jobs)
		vm.PodCount = c.snapshot.PodCount()
	}

	if c.mode == ModeLogViewer {
		vm.Hints = logHints
		visible := VisibleSlice(c.viewer.lines, c.viewer.offset, c.logHeight)
		lines := make([]LogLine, len(visible))
		for i, text := range visible {
			lines[i] = LogLine{Number: c.viewer.offset + i + 1, Text: text}
		}
		vm.Log = LogView{
			PodID:       c.viewer.podID,
			Lines:       lines,
			Offset:      c.viewer.offset,
			Total:       len(c.viewer.lines),
			LastUpdated: c.logTimer.succeeded,
			Err:         c.viewer.err,
		}
	}
	return vm
}
