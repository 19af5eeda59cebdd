package movie

// SortKey selects the ordering of a listing. Unrecognized values fall back
// to SortDefault without error.
type SortKey string

const (
	SortDefault    SortKey = ""
	SortTitleAsc   SortKey = "title_asc"
	SortTitleDesc  SortKey = "title_desc"
	SortRatingAsc  SortKey = "rating_asc"
	SortRatingDesc SortKey = "rating_desc"
)

// ParseSortKey maps a raw sort parameter to a SortKey. Anything it does not
// recognize becomes SortDefault.
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortTitleAsc, SortTitleDesc, SortRatingAsc, SortRatingDesc:
		return SortKey(raw)
	default:
		return SortDefault
	}
}

// ListQuery holds the optional listing parameters. Ordering guarantees:
// title sorts compare case-insensitively, rating sorts treat a missing
// rating as 0, SortDefault orders by creation time newest first, and every
// ordering breaks ties by id ascending so repeated calls over an unchanged
// store return identical sequences.
type ListQuery struct {
	Search   string
	Genre    string
	Sort     SortKey
	Page     int
	PageSize int
}

// Paginated reports whether pagination applies. Page or PageSize values of
// zero or less disable pagination entirely and the full filtered sequence
// is returned; clients rely on this for unpaginated listing.
func (q ListQuery) Paginated() bool {
	return q.Page > 0 && q.PageSize > 0
}

// Offset returns the number of records to skip. Only meaningful when
// Paginated reports true.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}
