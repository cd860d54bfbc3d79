package models

// SystemModule is a node of the two-level system/module navigation tree.
// Systems have no ParentID; modules point at their system.
type SystemModule struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Count    int            `json:"testCaseCount"`
	ParentID *string        `json:"parentId,omitempty"`
	Children []SystemModule `json:"children,omitempty"`
}

// IsSystem reports whether the node is a top-level system.
func (s SystemModule) IsSystem() bool { return s.ParentID == nil }
