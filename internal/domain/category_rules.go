package domain

// ValidateParent enforces the two-level category tree. id is empty for a new
// category; existing is the current full category list.
func ValidateParent(id, parentID string, existing []Category) error {
	if parentID == "" {
		return nil
	}
	if parentID == id {
		return &ErrValidation{Field: "parent_id", Message: "a category cannot be its own parent"}
	}

	var parent *Category
	for i := range existing {
		if existing[i].ID == parentID {
			parent = &existing[i]
			break
		}
	}
	if parent == nil {
		return &ErrValidation{Field: "parent_id", Message: "parent category not found"}
	}
	if !parent.IsRoot() {
		return &ErrValidation{Field: "parent_id", Message: "parent must be a top-level category"}
	}

	if id != "" {
		for _, c := range existing {
			if !c.IsRoot() && *c.ParentID == id {
				return &ErrValidation{Field: "parent_id", Message: "a category with subcategories cannot be nested"}
			}
		}
	}
	return nil
}
