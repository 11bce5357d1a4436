package gorem

import (
	"errors"
)

// Pagination is used to control result windows and ordering of a Query
type Pagination struct {
	// PageNumber specifies which page number to load
	PageNumber int
	// LimitPerPage limits how many records per page
	LimitPerPage int
	// OrderByField specifies field to order by on
	OrderByField string
	// OrderByDesc specifies whether orderby is desc or asc
	OrderByDesc bool
}

func (p *Pagination) Paginate(query *Query) error {
	if query == nil {
		return errors.New("query can not be nil")
	}

	if p.OrderByField != "" {
		if p.OrderByDesc {
			query.OrderByDesc(p.OrderByField)
		} else {
			query.OrderByAsc(p.OrderByField)
		}
	}

	if p.PageNumber < 0 {
		return errors.New("pagination configuration invalid: PageNumber is below 0")
	}

	if p.LimitPerPage < 0 {
		return errors.New("pagination configuration invalid: LimitPerPage is below 0")
	}

	if p.PageNumber > 0 {
		if p.LimitPerPage < 1 {
			return errors.New("pagination configuration invalid: PageNumber is set but LimitPerPage is below 1")
		}
		query.Skip(p.LimitPerPage * p.PageNumber)
	}

	if p.LimitPerPage > 0 {
		query.Limit(p.LimitPerPage)
	}

	return nil
}
