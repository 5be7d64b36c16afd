package threadlog

import (
	"context"
	"fmt"
)

// VisiblePager paginates the visible slice of a transcript by reading raw
// pages and filtering. MaxPages bounds how many raw pages a single call may
// read so a long run of hidden tool turns cannot stall a request; when the
// bound trips, the returned page is short but its cursor still makes
// progress.
type VisiblePager struct {
	Lister   Lister
	MaxPages int
}

const defaultMaxPages = 8

func NewVisiblePager(lister Lister, maxPages int) *VisiblePager {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &VisiblePager{
		Lister:   lister,
		MaxPages: maxPages,
	}
}

// Paginate returns up to numItems visible messages starting after the given
// cursor, in log order.
func (p *VisiblePager) Paginate(ctx context.Context, cursor string, numItems int) (*Page, error) {
	if numItems <= 0 {
		return nil, fmt.Errorf("numItems must be positive, got %d", numItems)
	}

	afterSeq, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	page := &Page{Items: make([]Message, 0, numItems)}
	lastConsumed := afterSeq
	exhausted := false

	for pages := 0; pages < p.MaxPages && len(page.Items) < numItems; pages++ {
		raw, err := p.Lister.ListAfter(ctx, lastConsumed, numItems)
		if err != nil {
			return nil, err
		}
		if len(raw) < numItems {
			exhausted = true
		}

		for _, msg := range raw {
			if Visible(msg.Role) {
				if len(page.Items) == numItems {
					// Target reached mid-batch; the rest belongs to the
					// next page, so stop consuming here.
					exhausted = false
					break
				}
				page.Items = append(page.Items, msg)
			}
			lastConsumed = msg.Seq
		}

		if exhausted {
			break
		}
	}

	page.ContinueCursor = EncodeCursor(lastConsumed)
	page.IsDone = exhausted
	return page, nil
}
