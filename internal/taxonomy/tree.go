// Package taxonomy walks the service category tree. Categories point up to
// their parent, so traversal first builds a reverse child index.
package taxonomy

import "providerhub-backend/internal/model"

// Descendants returns the IDs of startID and every category below it.
// Category data is externally editable, so the walk tracks visited IDs and
// survives accidental cycles.
func Descendants(categories []model.Category, startID string) map[string]struct{} {
	children := make(map[string][]string, len(categories))
	for _, c := range categories {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	out := make(map[string]struct{})
	stack := []string{startID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := out[cur]; seen {
			continue
		}
		out[cur] = struct{}{}
		stack = append(stack, children[cur]...)
	}
	return out
}
