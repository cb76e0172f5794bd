package domain

// Field is a tagged value for a partial update: a column can be left
// alone, explicitly cleared to NULL, or set to a new value. Omitting a
// field and clearing it are different operations and the store treats
// them as such.
type Field struct {
	set   bool
	clear bool
	value string
}

// Keep leaves the column unchanged.
func Keep() Field {
	return Field{}
}

// Clear sets the column to NULL.
func Clear() Field {
	return Field{clear: true}
}

// Set assigns a new value to the column.
func Set(v string) Field {
	return Field{set: true, value: v}
}

// IsKeep reports whether the field should be left untouched.
func (f Field) IsKeep() bool {
	return !f.set && !f.clear
}

// IsClear reports whether the field should be set to NULL.
func (f Field) IsClear() bool {
	return f.clear
}

// Value returns the assigned value; only meaningful when IsKeep and
// IsClear are both false.
func (f Field) Value() string {
	return f.value
}

// LocationUpdate describes a partial update of a recording's location
// and status columns. One LocationUpdate is applied as a single UPDATE
// statement, so the fields it touches change atomically.
type LocationUpdate struct {
	LocalPath  Field
	RemoteURL  Field
	SyncStatus Field
	Error      Field
}

// IsEmpty reports whether the update would touch no columns.
func (u LocationUpdate) IsEmpty() bool {
	return u.LocalPath.IsKeep() && u.RemoteURL.IsKeep() && u.SyncStatus.IsKeep() && u.Error.IsKeep()
}
