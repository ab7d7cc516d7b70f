package schema

// CoreBookTable represents the 'core.book' table
type CoreBookTable struct {
	Table     string
	ID        string
	Name      string
	CreatedAt string
	UpdatedAt string
}

// CoreBook is the schema definition for core.book
var CoreBook = CoreBookTable{
	Table:     "core.book",
	ID:        "id",
	Name:      "name",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CoreBookTable) Columns() []string {
	return []string{t.ID, t.Name, t.CreatedAt, t.UpdatedAt}
}
