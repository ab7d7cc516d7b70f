package schema

// CoreSectionTable represents the 'core.section' table
type CoreSectionTable struct {
	Table     string
	ID        string
	ChapterID string
	Order     string
	Prompt    string
	Title     string
	Summary   string
	Original  string
	Link3D    string
	Feedback  string
	Order3D   string
	CreatedAt string
	UpdatedAt string
}

// CoreSection is the schema definition for core.section
var CoreSection = CoreSectionTable{
	Table:     "core.section",
	ID:        "id",
	ChapterID: "chapterid",
	Order:     "ordering",
	Prompt:    "prompt",
	Title:     "title",
	Summary:   "summary",
	Original:  "original",
	Link3D:    "link3d",
	Feedback:  "feedback",
	Order3D:   "order3d",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CoreSectionTable) Columns() []string {
	return []string{
		t.ID, t.ChapterID, t.Order, t.Prompt, t.Title, t.Summary,
		t.Original, t.Link3D, t.Feedback, t.Order3D, t.CreatedAt, t.UpdatedAt,
	}
}
