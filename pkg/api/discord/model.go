package discord

import "time"

type Message struct {
	Content string
	Embed   *Embed
	Buttons []Button
}

type Embed struct {
	Title       string
	Description string
	URL         string
	Color       int
	Footer      string
	Fields      []Field
	Timestamp   time.Time
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

type Button struct {
	Label    string
	CustomID string
}
