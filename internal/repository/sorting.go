package repository

import "strings"

// SortOrder is the direction of a list query.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// List defaults.
const (
	DefaultSortField = "createdAt"
	DefaultLimit     = 10
)

var sortableFields = map[string]struct{}{
	"createdAt": {},
	"updatedAt": {},
	"srNo":      {},
	"ticketId":  {},
	"status":    {},
	"category":  {},
	"priority":  {},
	"subject":   {},
	"raisedOn":  {},
}

// ResolveSortField returns field when it is sortable and DefaultSortField otherwise.
func ResolveSortField(field string) string {
	if _, ok := sortableFields[field]; ok {
		return field
	}
	return DefaultSortField
}

// ParseSortOrder maps "asc" (any case) to SortAsc and everything else to SortDesc.
func ParseSortOrder(order string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(order), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}
