package models

import "time"

// JournalNote is a free-form farm journal entry.
type JournalNote struct {
	ID    string    `bson:"id" json:"id"`
	Title string    `bson:"title" json:"title"`
	Body  string    `bson:"body" json:"body"`
	Date  time.Time `bson:"date" json:"date"`
}
