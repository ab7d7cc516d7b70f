package schema

// CoreAudioTable represents the 'core.audio' table
type CoreAudioTable struct {
	Table       string
	ID          string
	ChapterID   string
	Content     string
	ContentType string
	CreatedAt   string
}

// CoreAudio is the schema definition for core.audio
var CoreAudio = CoreAudioTable{
	Table:       "core.audio",
	ID:          "id",
	ChapterID:   "chapterid",
	Content:     "content",
	ContentType: "contenttype",
	CreatedAt:   "createdat",
}

func (t CoreAudioTable) Columns() []string {
	return []string{t.ID, t.ChapterID, t.Content, t.ContentType, t.CreatedAt}
}
