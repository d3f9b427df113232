package feed

import (
	"fmt"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"

	"github.com/umputun/list-feed/app/models"
)

// StatusURL is the base of status permalinks
const StatusURL = "https://twitter.com"

// ErrNoAuthor returned for statuses without author, link can't be made for them
var ErrNoAuthor = errors.New("status has no author")

// Builder makes rss items from statuses
type Builder struct {
	ShortLinks bool // link to t.co short urls instead of expanded ones
	Sanitize   bool // pass description through ugc policy
}

// Item converts status to rss item
func (b Builder) Item(s models.Status) (Item, error) {
	link, err := statusLink(s)
	if err != nil {
		return Item{}, err
	}

	return Item{
		Title:       DisplayName(s),
		Description: CDATA{Text: b.Description(s)},
		Link:        link,
		PubDate:     s.CreatedAt.Format(time.RFC1123Z),
		GUID:        GUID{Value: strconv.FormatInt(s.ID, 10), IsPermaLink: false},
	}, nil
}

// Description makes html body of the item. Retweet replaces everything, quote appended to the status content.
func (b Builder) Description(s models.Status) string {
	content := fmt.Sprintf("<p>%s</p>", RenderContent(s, b.ShortLinks))

	if q := s.QuotedStatus; q != nil {
		content = fmt.Sprintf("%s\n%s:\n<blockquote>%s</blockquote>", content, DisplayName(*q), RenderContent(*q, b.ShortLinks))
	}

	if rt := s.RetweetedStatus; rt != nil {
		content = fmt.Sprintf("<p>Retweet %s: %s</p>", DisplayName(*rt), RenderContent(*rt, b.ShortLinks))
	}

	if b.Sanitize {
		content = bluemonday.UGCPolicy().Sanitize(content)
	}
	return content
}

func statusLink(s models.Status) (string, error) {
	if s.User == nil {
		return "", errors.Wrapf(ErrNoAuthor, "status %d", s.ID)
	}
	return fmt.Sprintf("%s/%s/status/%d", StatusURL, s.User.ScreenName, s.ID), nil
}
