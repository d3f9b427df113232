package feed

import (
	"fmt"
	"strings"

	"github.com/umputun/list-feed/app/models"
)

const noUsername = "No username"

// RenderContent makes html fragment from status text. Every short url of url entities
// replaced by a link, media entities appended as images with their short urls removed.
// The text itself is not escaped.
func RenderContent(s models.Status, shortLinks bool) string {
	content := s.Text

	// entities with the same short url: the last one wins
	for _, u := range s.URLs {
		if u.URL == "" {
			continue
		}
		href := u.ExpandedURL
		if shortLinks || href == "" {
			href = u.URL
		}
		content = strings.ReplaceAll(content, u.URL, fmt.Sprintf("<a href=\"%s\">%s</a>", href, u.DisplayURL))
	}

	for _, m := range s.Media {
		content = fmt.Sprintf("\n%s<img src=\"%s\">", content, m.MediaURLHTTPS)
		if m.URL != "" {
			content = strings.ReplaceAll(content, m.URL, "")
		}
	}

	return content
}

// DisplayName returns author name or placeholder for statuses without author
func DisplayName(s models.Status) string {
	if s.User == nil {
		return noUsername
	}
	return s.User.Name
}
