package taxonomy

import (
	"strings"

	"providerhub-backend/internal/model"
)

// Path is a category chain from root to leaf, at most four levels deep.
type Path struct {
	Primary   string `json:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty"`
	Tertiary  string `json:"tertiary,omitempty"`
	Specific  string `json:"specific,omitempty"`
}

// Suggestion is a non-authoritative categorization hint attached to a
// listing at creation time.
type Suggestion struct {
	CategoryID string `json:"suggested_category_id"`
	Path       Path   `json:"category_path"`
}

// Suggest scans the listing text for a category name match and, if found,
// returns the matched category with its full path up to the root. Purely
// deterministic; a smarter classifier can replace it behind the same shape.
func Suggest(text string, categories []model.Category) *Suggestion {
	if text == "" || len(categories) == 0 {
		return nil
	}
	t := strings.ToLower(text)
	for _, c := range categories {
		if c.Name == "" {
			continue
		}
		if strings.Contains(t, strings.ToLower(c.Name)) {
			return &Suggestion{CategoryID: c.ID, Path: buildPath(c, categories)}
		}
	}
	return nil
}

func buildPath(cat model.Category, categories []model.Category) Path {
	byID := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	var chain []string
	cur := &cat
	seen := map[string]bool{}
	for cur != nil && !seen[cur.ID] {
		seen[cur.ID] = true
		chain = append([]string{cur.Name}, chain...)
		if cur.ParentID == nil {
			break
		}
		parent, ok := byID[*cur.ParentID]
		if !ok {
			break
		}
		cur = &parent
	}

	var p Path
	if len(chain) > 0 {
		p.Primary = chain[0]
	}
	if len(chain) > 1 {
		p.Secondary = chain[1]
	}
	if len(chain) > 2 {
		p.Tertiary = chain[2]
	}
	if len(chain) > 3 {
		p.Specific = chain[3]
	}
	return p
}
