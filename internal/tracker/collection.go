// Package tracker owns the job-search collections (companies, applications
// and references): CRUD with cascade delete, and CSV import/export with
// merge-by-id semantics.
package tracker

// entity is satisfied by every tracked record type.
type entity interface {
	EntityID() string
}

// Upsert returns items with the element whose id matches item's replaced in
// place, or with item appended when no element matches. items is not modified.
func Upsert[T entity](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	for i := range out {
		if out[i].EntityID() == item.EntityID() {
			out[i] = item
			return out
		}
	}
	return append(out, item)
}

// Remove returns items without the element whose id is id. A missing id is a no-op.
func Remove[T entity](items []T, id string) []T {
	return Filter(items, func(v T) bool { return v.EntityID() != id })
}

// Filter returns the elements of items for which keep is true.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func indexOf[T entity](items []T, id string) int {
	for i := range items {
		if items[i].EntityID() == id {
			return i
		}
	}
	return -1
}
