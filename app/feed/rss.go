// Package feed converts statuses to rss items and serializes rss documents
package feed

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// Rss2 feed document
type Rss2 struct {
	XMLName     xml.Name `xml:"rss"`
	Version     string   `xml:"version,attr"`
	Title       string   `xml:"channel>title"`
	Link        string   `xml:"channel>link"`
	Description string   `xml:"channel>description"`
	ItemList    []Item   `xml:"channel>item"`
}

// Item for rss
type Item struct {
	Title       string `xml:"title"`
	Description CDATA  `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	GUID        GUID   `xml:"guid"`
}

// GUID of an item, never a permalink for statuses
type GUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// CDATA wraps html content
type CDATA struct {
	Text string `xml:",cdata"`
}

// NewRss2 makes empty rss document with channel metadata
func NewRss2(title, link, description string) *Rss2 {
	return &Rss2{Version: "2.0", Title: title, Link: link, Description: description, ItemList: []Item{}}
}

// WriteTo serializes the document with xml header
func (r *Rss2) WriteTo(w io.Writer) (int64, error) {
	data, err := r.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), errors.Wrap(err, "can't write rss")
}

// Marshal returns rss document as bytes
func (r *Rss2) Marshal() ([]byte, error) {
	b, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal rss")
	}
	return append([]byte(xml.Header), b...), nil
}
