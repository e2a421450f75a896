package params

// PageSize is the fixed number of rows per list page.
const PageSize = 10

// PageCount is ceil(count / PageSize).
func PageCount(count int64) int {
	if count <= 0 {
		return 0
	}
	return int((count + PageSize - 1) / PageSize)
}

// Range returns the inclusive row offsets for page.
func Range(page int) (from, to int) {
	from = (page - 1) * PageSize
	to = from + PageSize - 1
	return from, to
}

// Neighbors lists the pages worth prefetching around page: the next one while
// more pages exist, and the previous one unless page is the first.
func Neighbors(page int, count int64) []int {
	var pages []int
	if page < PageCount(count) {
		pages = append(pages, page+1)
	}
	if page > 1 {
		pages = append(pages, page-1)
	}
	return pages
}
