package proc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/umputun/list-feed/app/models"
)

// PageSize is the number of statuses requested from list timeline
const PageSize = 100

// Source is the remote api with lists and statuses
type Source interface {
	UserID(ctx context.Context, screenName string) (int64, error)
	Lists(ctx context.Context, userID int64) ([]models.List, error)
	ListStatuses(ctx context.Context, listID int64, count int, withRetweets bool) ([]models.Status, error)
}

// ListResolver finds list by name among user's lists
type ListResolver struct {
	Source Source
}

// Resolve returns id of the first list named exactly as listName. Lists of the account are
// fetched in one call, found is false if nothing matched.
func (r ListResolver) Resolve(ctx context.Context, screenName, listName string) (id int64, found bool, err error) {
	userID, err := r.Source.UserID(ctx, screenName)
	if err != nil {
		return 0, false, errors.Wrapf(err, "can't get user %s", screenName)
	}

	lists, err := r.Source.Lists(ctx, userID)
	if err != nil {
		return 0, false, errors.Wrapf(err, "can't get lists of %s", screenName)
	}

	list, found := lo.Find(lists, func(l models.List) bool { return l.Name == listName })
	if !found {
		return 0, false, nil
	}
	return list.ID, true, nil
}

// TimelineFetcher gets the last page of list statuses
type TimelineFetcher struct {
	Source Source
}

// Fetch returns up to PageSize statuses of the list, newest first as the source sends them
func (f TimelineFetcher) Fetch(ctx context.Context, listID int64) ([]models.Status, error) {
	statuses, err := f.Source.ListStatuses(ctx, listID, PageSize, true)
	if err != nil {
		return nil, errors.Wrapf(err, "can't get statuses of list %d", listID)
	}
	if len(statuses) > PageSize {
		statuses = statuses[:PageSize]
	}
	return statuses, nil
}
