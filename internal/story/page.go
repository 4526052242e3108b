package story

// DefaultPageSize matches the list page the web client opens with.
const DefaultPageSize = 10

// Page is one window of a story list.
type Page struct {
	Items []Story `json:"items"`
	Page  int     `json:"page"`
	Size  int     `json:"size"`
	Total int     `json:"total"`
	Pages int     `json:"pages"`
}

// Paginate slices stories into 1-based pages of size items. Pages past the
// end come back empty with correct totals.
func Paginate(stories []Story, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(stories)
	pages := total / size
	if total%size != 0 {
		pages++
	}

	p := Page{
		Items: []Story{},
		Page:  page,
		Size:  size,
		Total: total,
		Pages: pages,
	}

	// page <= pages keeps (page-1)*size below total.
	if page > pages {
		return p
	}
	start := (page - 1) * size
	end := start + min(size, total-start)
	p.Items = stories[start:end]
	return p
}
