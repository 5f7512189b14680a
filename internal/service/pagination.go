package service

import (
	"net/url"
	"strconv"
)

// NextLink builds the URL of the next page for a paginated listing, or nil
// when no rows exist beyond the current window. total, offset and limit are
// the only determinants; the size of the returned page plays no part.
func NextLink(baseURL, search, sortBy string, offset, limit, total int) *string {
	if total <= offset+limit {
		return nil
	}

	return pageLink(baseURL, search, sortBy, offset+limit, limit)
}

// PrevLink builds the URL of the previous page, or nil when the current
// window starts at the first row.
func PrevLink(baseURL, search, sortBy string, offset, limit int) *string {
	if offset <= 0 {
		return nil
	}

	prev := offset - limit
	if prev < 0 {
		prev = 0
	}

	return pageLink(baseURL, search, sortBy, prev, limit)
}

func pageLink(baseURL, search, sortBy string, offset, limit int) *string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	if sortBy != "" {
		params.Set("sortby", sortBy)
	}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))

	u.RawQuery = params.Encode()
	link := u.String()

	return &link
}
