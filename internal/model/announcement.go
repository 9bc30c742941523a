package model

// Announcement is the rendered content of a chat message. Content carries the
// plain text part, e.g. role and user mentions.
type Announcement struct {
	Content     string
	Title       string
	Description string
	Color       int
	Fields      []AnnouncementField
	Buttons     []AnnouncementButton
	Footer      string
}

type AnnouncementField struct {
	Name   string
	Value  string
	Inline bool
}

type AnnouncementButton struct {
	Label    string
	CustomID string
}
