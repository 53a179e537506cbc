package dashboard

// ClampCursor keeps a selection inside [0, total-1], or 0 when empty
func ClampCursor(selected, total int) int {
	if total <= 0 || selected < 0 {
		return 0
	}
	if selected >= total {
		return total - 1
	}
	return selected
}

// AdjustScroll moves the window the minimum distance needed to reveal the
// selected row.
func AdjustScroll(selected, offset, visible int) int {
	if visible < 1 {
		visible = 1
	}
	switch {
	case selected < offset:
		return selected
	case selected >= offset+visible:
		return selected - visible + 1
	default:
		return offset
	}
}

// ClampScroll keeps an offset inside [0, max(0, total-visible)]
func ClampScroll(offset, total, visible int) int {
	maxOffset := total - visible
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

// VisibleSlice returns rows[offset:offset+visible], truncated at the end
func VisibleSlice[T any](rows []T, offset, visible int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) || visible <= 0 {
		return nil
	}
	end := offset + visible
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

// CursorState is the selection and scroll position of one view
type CursorState struct {
	Selected int
	Offset   int
}

// Move shifts the cursor by delta and scrolls to keep it visible
func (c CursorState) Move(delta, total, visible int) CursorState {
	c.Selected = ClampCursor(c.Selected+delta, total)
	c.Offset = AdjustScroll(c.Selected, c.Offset, visible)
	return c
}

// Fit re-clamps the state after the row count or window size changed
func (c CursorState) Fit(total, visible int) CursorState {
	c.Selected = ClampCursor(c.Selected, total)
	c.Offset = ClampScroll(AdjustScroll(c.Selected, c.Offset, visible), total, visible)
	return c
}
