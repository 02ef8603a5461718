package viewer

import (
	"strconv"
	"strings"

	"pdf-viewer/internal/domain"
)

// NavigationController owns page transitions. GoToPage is the only
// function that changes CurrentPage.
type NavigationController struct{}

// GoToPage moves to page n, or returns s unchanged when n is outside
// [1, NumPages].
func (NavigationController) GoToPage(s domain.ViewerState, n int) domain.ViewerState {
	if n < 1 || n > s.NumPages {
		return s
	}
	s.CurrentPage = n
	return s
}

// NextPage advances one page; no wraparound.
func (c NavigationController) NextPage(s domain.ViewerState) domain.ViewerState {
	return c.GoToPage(s, s.CurrentPage+1)
}

// PreviousPage goes back one page; no wraparound.
func (c NavigationController) PreviousPage(s domain.ViewerState) domain.ViewerState {
	return c.GoToPage(s, s.CurrentPage-1)
}

// CanGoToPrevious is derived on every read.
func CanGoToPrevious(s domain.ViewerState) bool {
	return s.CurrentPage > 1
}

// CanGoToNext is derived on every read.
func CanGoToNext(s domain.ViewerState) bool {
	return s.CurrentPage < s.NumPages
}

// FilterPages lists the thumbnail pages matching filter: all pages when the
// filter is blank, the single page when it is an in-range number, and
// nothing otherwise.
func FilterPages(numPages int, filter string) []int {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		pages := make([]int, numPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}
	n, err := strconv.Atoi(filter)
	if err != nil || n < 1 || n > numPages {
		return []int{}
	}
	return []int{n}
}
