package models

// TeacherAssignment links a teacher to a class. TeacherKey may hold either the
// teacher row id or the shared account id depending on who wrote the row.
type TeacherAssignment struct {
	ID         string `db:"id" json:"id"`
	ClassID    string `db:"class_id" json:"class_id"`
	TeacherKey string `db:"teacher_id" json:"teacher_id"`
	IsPrimary  bool   `db:"is_main" json:"is_main"`
}
