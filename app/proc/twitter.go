package proc

import (
	"context"
	"net/http"
	"time"

	"github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"
	log "github.com/go-pkgz/lgr"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/umputun/list-feed/app/models"
)

// ErrAuth returned when twitter rejects credentials
var ErrAuth = errors.New("twitter authentication failed")

// maxNesting limits quoted/retweeted statuses below the top one
const maxNesting = 2

// TwitterClient implements Source with twitter api v1.1
type TwitterClient struct {
	config    *oauth1.Config
	token     *oauth1.Token
	timeout   time.Duration
	transport http.RoundTripper
}

// TwitterOpts are credentials and http options of twitter client
type TwitterOpts struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	Timeout           time.Duration
	Transport         http.RoundTripper // http.DefaultTransport if nil
}

// NewTwitterClient init twitter client
func NewTwitterClient(opts TwitterOpts) (*TwitterClient, error) {
	if opts.ConsumerKey == "" || opts.ConsumerSecret == "" {
		return nil, errors.New("empty twitter consumer key or secret")
	}
	if opts.AccessToken == "" || opts.AccessTokenSecret == "" {
		return nil, errors.New("empty twitter access token or secret")
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	return &TwitterClient{
		config:    oauth1.NewConfig(opts.ConsumerKey, opts.ConsumerSecret),
		token:     oauth1.NewToken(opts.AccessToken, opts.AccessTokenSecret),
		timeout:   opts.Timeout,
		transport: opts.Transport,
	}, nil
}

// UserID returns id of the account with given screen name
func (c *TwitterClient) UserID(ctx context.Context, screenName string) (int64, error) {
	user, resp, err := c.client(ctx).Users.Show(&twitter.UserShowParams{ScreenName: screenName})
	if err = checkResponse(resp, err); err != nil {
		return 0, err
	}
	log.Printf("[DEBUG] twitter user %s, id %d", screenName, user.ID)
	return user.ID, nil
}

// Lists returns all lists of the user, owned lists first
func (c *TwitterClient) Lists(ctx context.Context, userID int64) ([]models.List, error) {
	lists, resp, err := c.client(ctx).Lists.List(&twitter.ListsListParams{UserID: userID, Reverse: true})
	if err = checkResponse(resp, err); err != nil {
		return nil, err
	}
	return lo.Map(lists, func(l twitter.List, _ int) models.List {
		return models.List{ID: l.ID, Name: l.Name}
	}), nil
}

// ListStatuses returns up to count most recent statuses of the list
func (c *TwitterClient) ListStatuses(ctx context.Context, listID int64, count int, withRetweets bool) ([]models.Status, error) {
	tweets, resp, err := c.client(ctx).Lists.Statuses(&twitter.ListsStatusesParams{
		ListID:          listID,
		Count:           count,
		IncludeEntities: twitter.Bool(true),
		IncludeRetweets: twitter.Bool(withRetweets),
	})
	if err = checkResponse(resp, err); err != nil {
		return nil, err
	}

	res := make([]models.Status, 0, len(tweets))
	for _, t := range tweets {
		s, err := toStatus(t, 0, nil)
		if err != nil {
			return nil, err
		}
		res = append(res, *s)
	}
	return res, nil
}

// client makes api client bound to ctx, every request made by it is canceled with ctx
func (c *TwitterClient) client(ctx context.Context) *twitter.Client {
	base := &http.Client{Transport: ctxTransport{ctx: ctx, base: c.transport}}
	httpClient := c.config.Client(context.WithValue(ctx, oauth1.HTTPClient, base), c.token)
	httpClient.Timeout = c.timeout
	return twitter.NewClient(httpClient)
}

type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

func checkResponse(resp *http.Response, err error) error {
	if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		if err == nil {
			return errors.Wrapf(ErrAuth, "status %d", resp.StatusCode)
		}
		return errors.Wrapf(ErrAuth, "%v", err)
	}
	if err != nil {
		return errors.Wrap(err, "twitter request failed")
	}
	if resp != nil && resp.StatusCode >= 300 {
		return errors.Errorf("twitter request failed, status %d", resp.StatusCode)
	}
	return nil
}

// toStatus converts tweet, nested statuses limited by maxNesting and statuses referencing
// one of their ancestors dropped
func toStatus(t twitter.Tweet, depth int, ancestors []int64) (*models.Status, error) {
	created, err := t.CreatedAtTime()
	if err != nil {
		return nil, errors.Wrapf(err, "bad created_at %q of status %d", t.CreatedAt, t.ID)
	}

	text := t.Text
	if t.FullText != "" {
		text = t.FullText
	}

	res := &models.Status{ID: t.ID, Text: text, CreatedAt: created}
	if t.User != nil {
		res.User = &models.User{ID: t.User.ID, Name: t.User.Name, ScreenName: t.User.ScreenName}
	}
	if t.Entities != nil {
		res.URLs = lo.Map(t.Entities.Urls, func(u twitter.URLEntity, _ int) models.URLEntity {
			return models.URLEntity{URL: u.URL, ExpandedURL: u.ExpandedURL, DisplayURL: u.DisplayURL}
		})
	}
	if t.ExtendedEntities != nil {
		res.Media = lo.Map(t.ExtendedEntities.Media, func(m twitter.MediaEntity, _ int) models.MediaEntity {
			return models.MediaEntity{MediaURLHTTPS: m.MediaURLHttps, URL: m.URL}
		})
	}

	if depth >= maxNesting {
		return res, nil
	}
	ancestors = append(ancestors[:len(ancestors):len(ancestors)], t.ID)
	nested := func(n *twitter.Tweet) (*models.Status, error) {
		if n == nil {
			return nil, nil
		}
		if lo.Contains(ancestors, n.ID) {
			log.Printf("[WARN] status %d references its ancestor %d, ignored", t.ID, n.ID)
			return nil, nil
		}
		return toStatus(*n, depth+1, ancestors)
	}
	if res.QuotedStatus, err = nested(t.QuotedStatus); err != nil {
		return nil, err
	}
	if res.RetweetedStatus, err = nested(t.RetweetedStatus); err != nil {
		return nil, err
	}
	return res, nil
}
