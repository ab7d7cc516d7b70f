package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table             string
	ID                string
	Name              string
	BookID            string
	AuthorUserID      string
	OriginalChapterID string
	CreatedAt         string
	UpdatedAt         string

	// DraftUniqueIndex is the partial unique index on (authoruserid, originalchapterid)
	DraftUniqueIndex string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:             "core.chapter",
	ID:                "id",
	Name:              "name",
	BookID:            "bookid",
	AuthorUserID:      "authoruserid",
	OriginalChapterID: "originalchapterid",
	CreatedAt:         "createdat",
	UpdatedAt:         "updatedat",
	DraftUniqueIndex:  "chapter_author_original_uniq",
}

func (t CoreChapterTable) Columns() []string {
	return []string{t.ID, t.Name, t.BookID, t.AuthorUserID, t.OriginalChapterID, t.CreatedAt, t.UpdatedAt}
}
