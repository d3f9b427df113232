package proc

import (
	"bytes"
	"context"
	"encoding/xml"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/list-feed/app/feed"
	"github.com/umputun/list-feed/app/models"
)

func testConf() Conf {
	return Conf{
		Username: "umputun", ListName: "News",
		RssTitle: "news list", RssURL: "https://example.com/rss", RssDescription: "statuses of news list",
		Concurrent: 4,
	}
}

func TestProcessor_Feed(t *testing.T) {
	user := &models.User{Name: "Umputun", ScreenName: "umputun"}
	t1 := time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)
	src := &sourceMock{
		users: map[string]int64{"umputun": 10},
		lists: map[int64][]models.List{10: {{ID: 1000, Name: "Tech"}, {ID: 2000, Name: "News"}}},
		statuses: map[int64][]models.Status{2000: {
			{ID: 2, User: user, Text: "second", CreatedAt: t1.Add(time.Hour)},
			{ID: 1, User: user, Text: "first", CreatedAt: t1},
		}},
	}

	p := Processor{Conf: testConf(), Source: src}
	rss, err := p.Feed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "news list", rss.Title)
	assert.Equal(t, "https://example.com/rss", rss.Link)
	assert.Equal(t, "statuses of news list", rss.Description)
	require.Len(t, rss.ItemList, 2)
	assert.Equal(t, "2", rss.ItemList[0].GUID.Value)
	assert.Equal(t, "1", rss.ItemList[1].GUID.Value)
	for _, item := range rss.ItemList {
		assert.False(t, item.GUID.IsPermaLink)
		assert.Equal(t, "Umputun", item.Title)
	}
	assert.Equal(t, "<p>second</p>", rss.ItemList[0].Description.Text)
	assert.Equal(t, "https://twitter.com/umputun/status/1", rss.ItemList[1].Link)
	assert.Equal(t, "Sat, 01 May 2021 10:00:00 +0000", rss.ItemList[1].PubDate)
	assert.Equal(t, []string{"user:umputun", "lists:10", "statuses:2000:100:true"}, src.calls)
}

func TestProcessor_FeedOrderManyItems(t *testing.T) {
	user := &models.User{Name: "A", ScreenName: "a"}
	statuses := make([]models.Status, PageSize)
	for i := range statuses {
		statuses[i] = models.Status{ID: int64(PageSize - i), User: user, Text: "t"}
	}
	src := &sourceMock{
		users:    map[string]int64{"umputun": 10},
		lists:    map[int64][]models.List{10: {{ID: 2000, Name: "News"}}},
		statuses: map[int64][]models.Status{2000: statuses},
	}

	rss, err := (&Processor{Conf: testConf(), Source: src}).Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, rss.ItemList, PageSize)
	for i, item := range rss.ItemList {
		assert.Equal(t, statuses[i].ID, mustAtoi(t, item.GUID.Value))
	}
}

func TestProcessor_FeedListNotFound(t *testing.T) {
	src := &sourceMock{
		users: map[string]int64{"umputun": 10},
		lists: map[int64][]models.List{10: {{ID: 1000, Name: "Tech"}}},
	}
	p := Processor{Conf: testConf(), Source: src}

	var buf bytes.Buffer
	require.NoError(t, p.Write(context.Background(), &buf))

	var rss feed.Rss2
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &rss))
	assert.Equal(t, "2.0", rss.Version)
	assert.Equal(t, "news list", rss.Title)
	assert.Empty(t, rss.ItemList)
	assert.Equal(t, []string{"user:umputun", "lists:10"}, src.calls, "no timeline fetch")
}

func TestProcessor_FeedNoAuthor(t *testing.T) {
	user := &models.User{Name: "A", ScreenName: "a"}
	src := &sourceMock{
		users: map[string]int64{"umputun": 10},
		lists: map[int64][]models.List{10: {{ID: 2000, Name: "News"}}},
		statuses: map[int64][]models.Status{2000: {
			{ID: 3, User: user, Text: "ok"},
			{ID: 2, Text: "no author"},
			{ID: 1, User: user, Text: "ok"},
		}},
	}
	p := Processor{Conf: testConf(), Source: src}

	var buf bytes.Buffer
	err := p.Write(context.Background(), &buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, feed.ErrNoAuthor))
	assert.Contains(t, err.Error(), "status 2")
	assert.Zero(t, buf.Len(), "nothing written on failure")
}

func TestProcessor_FeedSourceError(t *testing.T) {
	p := Processor{Conf: testConf(), Source: &sourceMock{err: ErrAuth}}
	_, err := p.Feed(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuth))
}

func TestProcessor_FeedQuoteAndRetweet(t *testing.T) {
	alice := &models.User{Name: "Alice", ScreenName: "alice"}
	bob := &models.User{Name: "Bob", ScreenName: "bob"}
	src := &sourceMock{
		users: map[string]int64{"umputun": 10},
		lists: map[int64][]models.List{10: {{ID: 2000, Name: "News"}}},
		statuses: map[int64][]models.Status{2000: {
			{ID: 3, User: alice, Text: "RT @bob: hi", RetweetedStatus: &models.Status{ID: 1, User: bob, Text: "hi"},
				QuotedStatus: &models.Status{ID: 9, User: bob, Text: "ignored"}},
			{ID: 2, User: alice, Text: "look", QuotedStatus: &models.Status{ID: 1, User: bob, Text: "hi"}},
		}},
	}

	conf := testConf()
	conf.Concurrent = 0
	rss, err := (&Processor{Conf: conf, Source: src}).Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, rss.ItemList, 2)
	assert.Equal(t, "<p>Retweet Bob: hi</p>", rss.ItemList[0].Description.Text)
	assert.Equal(t, "<p>look</p>\nBob:\n<blockquote>hi</blockquote>", rss.ItemList[1].Description.Text)
}

func mustAtoi(t *testing.T, s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return v
}
