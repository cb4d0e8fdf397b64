package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// defaultPageSize matches the page size used by every listing endpoint.
const defaultPageSize = 10

// parsePage reads the page query parameter, defaulting to 1 and clamping
// junk or negative values back to 1.
func parsePage(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parseIntDefault reads an optional integer query parameter.
func parseIntDefault(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// parseFloat reads an optional float query parameter, nil when absent or
// unparsable.
func parseFloat(c echo.Context, name string) *float64 {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// invalidPageMsg builds the error body shared by listing endpoints when the
// requested page exceeds the total.
func invalidPageMsg(totalPages int) string {
	return "Invalid page number, total pages are " + strconv.Itoa(totalPages)
}
