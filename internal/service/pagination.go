package service

const (
	maxPageLimit = 100
	// MaxPage keeps (page-1)*limit well inside the int range and the OFFSET sane.
	MaxPage = 1_000_000
)

// pageBounds clamps page and limit and returns the row offset of the page.
func pageBounds(page, limit, defaultLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, (page - 1) * limit
}
