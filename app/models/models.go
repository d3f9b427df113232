// Package models contains DAO objects
package models

import "time"

// Status presents a single tweet as received from the list timeline
type Status struct {
	ID        int64
	User      *User // nil if the source didn't attach an author
	Text      string
	CreatedAt time.Time

	URLs  []URLEntity
	Media []MediaEntity

	QuotedStatus    *Status
	RetweetedStatus *Status
}

// User presents status author
type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
}

// URLEntity presents a link embedded in status text
type URLEntity struct {
	URL         string `json:"url"` // short form, as it appears in the text
	ExpandedURL string `json:"expanded_url"`
	DisplayURL  string `json:"display_url"`
}

// MediaEntity presents an attached picture
type MediaEntity struct {
	MediaURLHTTPS string `json:"media_url_https"`
	URL           string `json:"url"`
}

// List presents a twitter list
type List struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
