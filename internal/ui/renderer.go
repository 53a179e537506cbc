package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/kubmonitor/internal/dashboard"
	"github.com/yourusername/kubmonitor/internal/i18n"
)

const (
	headerLines = 3 // title, status, blank
	footerLines = 2 // blank, hints
	// panelChrome is two border lines plus a title line and a table header
	// (or the log position line)
	panelChrome = 4

	sideWidth    = 34
	minSideTotal = 90
	coreColumns  = 4

	defaultWidth  = 120
	defaultHeight = 30
)

// Table column widths; the name column takes the rest
const (
	colUser     = 10
	colStatus   = 10
	colGPU      = 9
	colComp     = 5
	colDuration = 14
	colGaps     = 5
	minColName  = 12
)

// Renderer draws a dashboard.ViewModel as a full-screen frame
type Renderer struct {
	localizer *i18n.Localizer
	width     int
	height    int
}

// NewRenderer creates a renderer with a default terminal size
func NewRenderer(localizer *i18n.Localizer) *Renderer {
	if localizer == nil {
		localizer = i18n.NewLocalizer("en")
	}
	return &Renderer{localizer: localizer, width: defaultWidth, height: defaultHeight}
}

// SetSize updates the terminal size; non-positive values are ignored
func (r *Renderer) SetSize(width, height int) {
	if width > 0 {
		r.width = width
	}
	if height > 0 {
		r.height = height
	}
}

// Size returns the current terminal size
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Viewport returns how many list rows and log lines fit on screen
func (r *Renderer) Viewport() (listHeight, logHeight int) {
	h := r.height - headerLines - footerLines - panelChrome
	if h < 1 {
		h = 1
	}
	return h, h
}

// T translates a message id
func (r *Renderer) T(messageID string) string {
	return r.localizer.T(messageID)
}

// TF translates a message id with template data
func (r *Renderer) TF(messageID string, data map[string]interface{}) string {
	return r.localizer.TF(messageID, data)
}

// Render produces one frame. The result has at most height lines.
func (r *Renderer) Render(vm dashboard.ViewModel) string {
	var body string
	if vm.Mode == dashboard.ModeLogViewer {
		body = r.renderLogs(vm)
	} else {
		body = r.renderList(vm)
	}

	frame := strings.Join([]string{r.renderHeader(vm), body, r.renderFooter(vm)}, "\n")
	return clipLines(frame, r.height)
}

func (r *Renderer) renderHeader(vm dashboard.ViewModel) string {
	title := StyleTitle.Render(r.T("app.title")) + "  " +
		StyleSubtitle.Render(r.TF("header.namespace", map[string]interface{}{"Namespace": vm.Namespace}))

	var status []string
	if vm.LastUpdated.IsZero() {
		status = append(status, StyleTextMuted.Render(r.T("header.never")))
	} else {
		status = append(status, StyleTextSecondary.Render(r.TF("header.updated", map[string]interface{}{
			"Time": vm.LastUpdated.Local().Format(time.TimeOnly),
		})))
	}
	if vm.RefreshInterval > 0 {
		status = append(status, StyleTextMuted.Render(r.TF("header.interval", map[string]interface{}{
			"Interval": vm.RefreshInterval.String(),
		})))
	}
	if vm.StaleErr != "" {
		status = append(status, StyleWarning.Render(r.TF("header.stale", map[string]interface{}{
			"Error": vm.StaleErr,
		})))
	}

	return truncate(title, r.width) + "\n" + truncate(strings.Join(status, " • "), r.width) + "\n"
}

func (r *Renderer) renderFooter(vm dashboard.ViewModel) string {
	hints := make([]string, 0, len(vm.Hints))
	for _, h := range vm.Hints {
		hints = append(hints, RenderKeyBinding(h.Key, r.T(h.MessageID)))
	}
	line := strings.Join(hints, " • ")

	if vm.Notice != nil {
		text := r.TF(vm.Notice.MessageID, vm.Notice.Data)
		if vm.Notice.Error {
			line += "  " + StyleError.Render(text)
		} else {
			line += "  " + StyleHighlight.Render(text)
		}
	}
	return "\n" + truncate(line, r.width)
}

func (r *Renderer) renderList(vm dashboard.ViewModel) string {
	listHeight, _ := r.Viewport()
	bodyHeight := listHeight + panelChrome

	tableWidth := r.width
	var side []string
	if r.width >= minSideTotal {
		tableWidth = r.width - sideWidth - 1
		side = strings.Split(r.renderSide(vm, bodyHeight), "\n")
	}

	table := strings.Split(r.renderTable(vm, tableWidth, listHeight), "\n")
	if side == nil {
		return strings.Join(table, "\n")
	}

	lines := make([]string, bodyHeight)
	for i := range lines {
		left := ""
		if i < len(side) {
			left = side[i]
		}
		right := ""
		if i < len(table) {
			right = table[i]
		}
		lines[i] = padRight(left, sideWidth) + " " + right
	}
	return strings.Join(lines, "\n")
}

// panel draws a titled, bordered box whose outer width is width
func panel(title string, content []string, width int) string {
	inner := width - 2
	lines := make([]string, 0, len(content)+1)
	lines = append(lines, fit(StyleSubHeader.Render(title), inner))
	for _, c := range content {
		lines = append(lines, fit(c, inner))
	}
	return StylePanel.Width(inner).Render(strings.Join(lines, "\n"))
}

// keyValue renders a label on the left and a value on the right
func keyValue(label, value string, width int) string {
	gap := width - visualLength(label) - visualLength(value)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

// renderSide stacks the quota, GPU and local panels. The per-core grid is
// cut to what fits in height, ending with a "+N more" line.
func (r *Renderer) renderSide(vm dashboard.ViewModel, height int) string {
	inner := sideWidth - 2

	quotaRow := func(id string, text string, hasPercent bool, percent float64) string {
		value := text
		if hasPercent {
			value += " " + RenderPercent(percent)
		}
		return keyValue(StyleTextSecondary.Render(r.T(id)), value, inner)
	}
	quota := panel(r.T("panel.quota"), []string{
		quotaRow("quota.cpu", vm.Quota.CPU.Text, vm.Quota.CPU.HasPercent, vm.Quota.CPU.Percent),
		quotaRow("quota.mem", vm.Quota.Memory.Text, vm.Quota.Memory.HasPercent, vm.Quota.Memory.Percent),
		quotaRow("quota.gpu", vm.Quota.GPU.Text, vm.Quota.GPU.HasPercent, vm.Quota.GPU.Percent),
	}, sideWidth)

	var gpuLines []string
	if len(vm.GPUs.Nodes) == 0 {
		gpuLines = []string{StyleTextMuted.Render(r.T("gpu.none"))}
	} else {
		num := func(n int) string { return fmt.Sprintf("%d", n) }
		gpuLines = []string{
			keyValue(StyleTextSecondary.Render(r.T("gpu.nodes")), num(len(vm.GPUs.Nodes)), inner),
			keyValue(StyleTextSecondary.Render(r.T("gpu.capacity")), num(int(vm.GPUs.Capacity)), inner),
			keyValue(StyleTextSecondary.Render(r.T("gpu.allocatable")), num(int(vm.GPUs.Allocatable)), inner),
			keyValue(StyleTextSecondary.Render(r.T("gpu.requested")), num(int(vm.GPUs.Requested)), inner),
		}
	}
	gpus := panel(r.T("panel.gpu"), gpuLines, sideWidth)

	accel := vm.Local.AcceleratorText
	if accel == "" {
		accel = "N/A"
	}
	localLines := []string{
		keyValue(StyleTextSecondary.Render(r.T("local.cpu")), RenderPercent(vm.Local.CPUTotalPercent), inner),
		keyValue(StyleTextSecondary.Render(r.T("local.mem")), RenderPercent(vm.Local.MemPercent), inner),
		keyValue(StyleTextSecondary.Render(r.T("local.gpu")), accel, inner),
	}
	if n := len(vm.Local.CPUPerCore); n > 0 {
		// the local panel adds two borders and a title around its lines
		avail := height - lipgloss.Height(quota) - lipgloss.Height(gpus) - 2 - 1 - len(localLines)
		grid := coreGrid(vm.Local.CPUPerCore, inner)
		switch {
		case 1+len(grid) <= avail:
			localLines = append(localLines, StyleTextMuted.Render(r.T("local.cores")))
			localLines = append(localLines, grid...)
		case avail >= 3:
			shown := avail - 2
			localLines = append(localLines, StyleTextMuted.Render(r.T("local.cores")))
			localLines = append(localLines, grid[:shown]...)
			localLines = append(localLines, StyleTextMuted.Render(r.localizer.TP("local.more_cores", n-shown*coreColumns)))
		case avail >= 1:
			localLines = append(localLines, StyleTextMuted.Render(r.localizer.TP("local.more_cores", n)))
		}
	}
	local := panel(r.T("panel.local"), localLines, sideWidth)

	return lipgloss.JoinVertical(lipgloss.Left, quota, gpus, local)
}

// coreGrid lays per-core percentages out in rows of four cells
func coreGrid(cores []float64, width int) []string {
	cell := width / coreColumns
	var rows []string
	var row strings.Builder
	for i, p := range cores {
		text := fmt.Sprintf("C%d:", i) + percentStyle(p).Render(fmt.Sprintf("%.0f%%", p))
		row.WriteString(padRight(text, cell))
		if (i+1)%coreColumns == 0 {
			rows = append(rows, row.String())
			row.Reset()
		}
	}
	if row.Len() > 0 {
		rows = append(rows, row.String())
	}
	return rows
}

func (r *Renderer) renderTable(vm dashboard.ViewModel, width, listHeight int) string {
	inner := width - 2
	nameWidth := inner - colUser - colStatus - colGPU - colComp - colDuration - colGaps
	if nameWidth < minColName {
		nameWidth = minColName
	}

	title := r.TF("panel.jobs", map[string]interface{}{"Count": vm.JobCount})
	counts := StyleTextMuted.Render(r.TF("table.pods", map[string]interface{}{"Jobs": vm.JobCount, "Pods": vm.PodCount}))
	lines := []string{
		fit(keyValue(StyleSubHeader.Render(title), counts, inner), inner),
		StyleHeader.Render(fit(strings.Join([]string{
			fit(r.T("table.job"), nameWidth),
			fit(r.T("table.user"), colUser),
			fit(r.T("table.status"), colStatus),
			fit(r.T("table.gpu"), colGPU),
			fit(r.T("table.comp"), colComp),
			fit(r.T("table.duration"), colDuration),
		}, " "), inner)),
	}

	selected := vm.SelectedVisible()
	for i, row := range vm.Rows {
		lines = append(lines, r.renderRow(row, i == selected, nameWidth, inner))
	}
	if len(vm.Rows) == 0 {
		lines = append(lines, StyleTextMuted.Render(fit(r.T("table.empty"), inner)))
	}
	for len(lines) < listHeight+2 {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = fit(lines[i], inner)
	}

	return StylePanel.Width(inner).Render(strings.Join(lines, "\n"))
}

func (r *Renderer) renderRow(row dashboard.DisplayRow, selected bool, nameWidth, inner int) string {
	status := r.localizer.TWithDefault("status."+row.StatusText, row.StatusText)

	cells := []string{
		fit(dashboard.ShortenLabel(row.Label, nameWidth), nameWidth),
		fit(row.OwnerText, colUser),
		fit(status, colStatus),
		fit(row.GPUText, colGPU),
		fit(row.CompletionsText, colComp),
		fit(row.DurationText, colDuration),
	}
	if selected {
		return StyleSelected.Render(fit(strings.Join(cells, " "), inner))
	}

	if row.IsPod() {
		cells[0] = StyleTextSecondary.Render(cells[0])
	} else {
		cells[0] = lipgloss.NewStyle().Bold(true).Render(cells[0])
	}
	cells[1] = StyleTextMuted.Render(cells[1])
	cells[2] = RenderSeverity(cells[2], row.Severity)
	return strings.Join(cells, " ")
}

func (r *Renderer) renderLogs(vm dashboard.ViewModel) string {
	_, logHeight := r.Viewport()
	inner := r.width - 2
	log := vm.Log

	lines := []string{StyleSubHeader.Render(r.TF("panel.logs", map[string]interface{}{"Pod": log.PodID}))}

	var status string
	switch {
	case log.Err != "":
		status = StyleError.Render(r.TF("logs.error", map[string]interface{}{"Error": log.Err}))
	case log.Total == 0:
		status = StyleTextMuted.Render(r.T("logs.empty"))
	default:
		from := log.Offset + 1
		to := log.Offset + len(log.Lines)
		if to < from {
			from = to
		}
		status = StyleTextSecondary.Render(r.TF("logs.position", map[string]interface{}{
			"From": from, "To": to, "Total": log.Total,
		}))
	}
	if !log.LastUpdated.IsZero() {
		status += StyleTextMuted.Render(" • " + r.TF("logs.updated", map[string]interface{}{
			"Time": log.LastUpdated.Local().Format(time.TimeOnly),
		}))
	}
	lines = append(lines, status)

	for _, l := range log.Lines {
		lines = append(lines, StyleTextMuted.Render(fmt.Sprintf("%4d│ ", l.Number))+l.Text)
	}
	for len(lines) < logHeight+2 {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = fit(lines[i], inner)
	}

	return StylePanel.Width(inner).Render(strings.Join(lines, "\n"))
}

// clipLines keeps at most n lines of s
func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
