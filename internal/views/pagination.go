package views

import (
	"net/url"
	"strconv"
)

// pageRadius is how many page links are shown on each side of the current one.
const pageRadius = 2

// PageWindow returns the page numbers linked around current: current±2
// clamped to [1, total]. current itself is clamped first.
func PageWindow(current, total int) []int {
	if total <= 0 {
		return nil
	}
	current = max(1, min(current, total))

	first := max(1, current-pageRadius)
	last := min(total, current+pageRadius)

	pages := make([]int, 0, last-first+1)
	for n := first; n <= last; n++ {
		pages = append(pages, n)
	}
	return pages
}

func pageHref(basePath string, page int) string {
	return basePath + "?" + url.Values{"page": {strconv.Itoa(page)}}.Encode()
}
