package schema

// CoreImageTable represents the 'core.image' table
type CoreImageTable struct {
	Table       string
	ID          string
	SectionID   string
	Order       string
	Content     string
	ContentType string
	Description string
	CreatedAt   string
}

// CoreImage is the schema definition for core.image
var CoreImage = CoreImageTable{
	Table:       "core.image",
	ID:          "id",
	SectionID:   "sectionid",
	Order:       "ordering",
	Content:     "content",
	ContentType: "contenttype",
	Description: "description",
	CreatedAt:   "createdat",
}

func (t CoreImageTable) Columns() []string {
	return []string{t.ID, t.SectionID, t.Order, t.Content, t.ContentType, t.Description, t.CreatedAt}
}
