// Package pagination slices tabular results into fixed-size pages.
package pagination

import (
	"github.com/doeshing/kgq/internal/domain"
)

// State is a snapshot of the controller position.
type State struct {
	PageSize    int `json:"page_size"`
	CurrentPage int `json:"current_page"`
	TotalRows   int `json:"total_rows"`
	PageCount   int `json:"page_count"`
}

// Controller tracks the current page of the installed tabular result.
// It is not safe for concurrent mutation.
type Controller struct {
	pageSize int
	current  int
	rows     []map[string]string
}

// New returns a controller with a fixed page size. Sizes below 1 use the default.
func New(pageSize int) *Controller {
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	return &Controller{pageSize: pageSize}
}

// Install replaces the paginated rows and resets to page 1. Results other
// than Tabular leave the controller with zero pages.
func (c *Controller) Install(res domain.NormalizedResult) {
	c.rows = nil
	c.current = 0
	if res.Class != domain.DisplayTabular || res.Tabular == nil {
		return
	}
	c.rows = res.Tabular.Rows
	if len(c.rows) > 0 {
		c.current = 1
	}
}

// Reset drops the installed rows.
func (c *Controller) Reset() {
	c.rows = nil
	c.current = 0
}

// PageSize returns the fixed page size.
func (c *Controller) PageSize() int { return c.pageSize }

// TotalRows returns the number of installed rows.
func (c *Controller) TotalRows() int { return len(c.rows) }

// PageCount is ceil(totalRows / pageSize).
func (c *Controller) PageCount() int {
	return (len(c.rows) + c.pageSize - 1) / c.pageSize
}

// CurrentPage is 1-based, or 0 when nothing is paginated.
func (c *Controller) CurrentPage() int { return c.current }

// GoTo moves to page n and returns its rows. Out-of-range pages leave the
// position unchanged and return the current page.
func (c *Controller) GoTo(n int) []map[string]string {
	if n >= 1 && n <= c.PageCount() {
		c.current = n
	}
	return c.Rows()
}

// Next and Prev step one page, with the same bounds as GoTo.
func (c *Controller) Next() []map[string]string { return c.GoTo(c.current + 1) }
func (c *Controller) Prev() []map[string]string { return c.GoTo(c.current - 1) }

// Rows returns the rows of the current page.
func (c *Controller) Rows() []map[string]string {
	start, end := c.Window()
	return c.rows[start:end]
}

// Window returns the [start, end) row bounds of the current page.
func (c *Controller) Window() (int, int) {
	if c.current < 1 {
		return 0, 0
	}
	start := (c.current - 1) * c.pageSize
	end := start + c.pageSize
	if end > len(c.rows) {
		end = len(c.rows)
	}
	return start, end
}

// State reports the current position.
func (c *Controller) State() State {
	return State{
		PageSize:    c.pageSize,
		CurrentPage: c.current,
		TotalRows:   len(c.rows),
		PageCount:   c.PageCount(),
	}
}
