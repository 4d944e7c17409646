package services

import "kiliheights.com/pkg/queryparams"

// paginate wraps a repository page into the shared result envelope.
func paginate(data any, totalCount int64, params queryparams.ListParams) *queryparams.PaginatedResult {
	return &queryparams.PaginatedResult{
		Data: data,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page,
			PerPage:     params.PerPage,
			TotalItems:  totalCount,
			TotalPages:  queryparams.CalculateTotalPages(totalCount, params.PerPage),
		},
	}
}
