package threadlog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister serves a fixed transcript from memory.
type fakeLister struct {
	messages []Message
	calls    int
}

func (f *fakeLister) ListAfter(ctx context.Context, afterSeq int64, limit int) ([]Message, error) {
	f.calls++
	var out []Message
	for _, m := range f.messages {
		if m.Seq > afterSeq {
			out = append(out, m)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func makeTranscript(roles ...string) []Message {
	messages := make([]Message, len(roles))
	for i, role := range roles {
		messages[i] = Message{
			Seq:     int64(i + 1),
			Role:    role,
			Content: fmt.Sprintf("msg-%d", i+1),
		}
	}
	return messages
}

func TestVisible(t *testing.T) {
	assert.True(t, Visible("user"))
	assert.True(t, Visible("assistant"))
	assert.True(t, Visible("operator"))
	assert.False(t, Visible("tool"))
	assert.False(t, Visible("system"))
	assert.False(t, Visible(""))
}

func TestCursorRoundTrip(t *testing.T) {
	for _, seq := range []int64{0, 1, 42, 1 << 40} {
		decoded, err := DecodeCursor(EncodeCursor(seq))
		require.NoError(t, err)
		assert.Equal(t, seq, decoded)
	}
}

func TestDecodeCursorEmpty(t *testing.T) {
	seq, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)
}

func TestDecodeCursorMalformed(t *testing.T) {
	for _, cursor := range []string{"not-base64!!", "c2VxOi0x", "Zm9vOjEy"} {
		_, err := DecodeCursor(cursor)
		assert.Error(t, err, "cursor %q", cursor)
	}
}

func TestPaginateFiltersToolTurns(t *testing.T) {
	lister := &fakeLister{messages: makeTranscript(
		"user", "tool", "tool", "assistant", "user", "tool", "assistant",
	)}
	pager := NewVisiblePager(lister, 0)

	page, err := pager.Paginate(context.Background(), "", 10)
	require.NoError(t, err)

	require.Len(t, page.Items, 4)
	assert.Equal(t, "msg-1", page.Items[0].Content)
	assert.Equal(t, "msg-4", page.Items[1].Content)
	assert.Equal(t, "msg-5", page.Items[2].Content)
	assert.Equal(t, "msg-7", page.Items[3].Content)
	assert.True(t, page.IsDone)
}

func TestPaginateChainCoversVisibleExactlyOnce(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		numItems int
	}{
		{
			name:     "alternating",
			roles:    []string{"user", "assistant", "user", "assistant", "user", "assistant", "user"},
			numItems: 2,
		},
		{
			name:     "hidden run longer than page",
			roles:    []string{"user", "tool", "tool", "tool", "tool", "tool", "assistant", "user"},
			numItems: 2,
		},
		{
			name:     "all hidden tail",
			roles:    []string{"user", "assistant", "tool", "tool", "tool"},
			numItems: 3,
		},
		{
			name:     "single item pages",
			roles:    []string{"tool", "user", "tool", "assistant", "operator", "tool"},
			numItems: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{messages: makeTranscript(tt.roles...)}
			pager := NewVisiblePager(lister, 0)

			var collected []Message
			cursor := ""
			for i := 0; i < 50; i++ {
				page, err := pager.Paginate(context.Background(), cursor, tt.numItems)
				require.NoError(t, err)
				assert.LessOrEqual(t, len(page.Items), tt.numItems)
				collected = append(collected, page.Items...)
				cursor = page.ContinueCursor
				if page.IsDone {
					break
				}
			}

			var wantContents []string
			for _, m := range lister.messages {
				if Visible(m.Role) {
					wantContents = append(wantContents, m.Content)
				}
			}
			gotContents := make([]string, len(collected))
			for i, m := range collected {
				gotContents[i] = m.Content
			}
			assert.Equal(t, wantContents, gotContents)
		})
	}
}

func TestPaginateMaxPagesBound(t *testing.T) {
	// 30 tool turns before any visible content, raw page of 2 per fetch.
	roles := make([]string, 0, 32)
	for i := 0; i < 30; i++ {
		roles = append(roles, "tool")
	}
	roles = append(roles, "user", "assistant")

	lister := &fakeLister{messages: makeTranscript(roles...)}
	pager := NewVisiblePager(lister, 3)

	page, err := pager.Paginate(context.Background(), "", 2)
	require.NoError(t, err)

	assert.Empty(t, page.Items)
	assert.False(t, page.IsDone)
	assert.Equal(t, 3, lister.calls)

	// The returned cursor made progress, so the chain still terminates.
	seq, err := DecodeCursor(page.ContinueCursor)
	require.NoError(t, err)
	assert.Equal(t, int64(6), seq)
}

func TestPaginateStopsMidBatch(t *testing.T) {
	lister := &fakeLister{messages: makeTranscript(
		"user", "assistant", "user", "assistant",
	)}
	pager := NewVisiblePager(lister, 0)

	page, err := pager.Paginate(context.Background(), "", 3)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.False(t, page.IsDone)

	next, err := pager.Paginate(context.Background(), page.ContinueCursor, 3)
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	assert.Equal(t, "msg-4", next.Items[0].Content)
	assert.True(t, next.IsDone)
}

func TestPaginateRejectsBadInput(t *testing.T) {
	pager := NewVisiblePager(&fakeLister{}, 0)

	_, err := pager.Paginate(context.Background(), "", 0)
	assert.Error(t, err)

	_, err = pager.Paginate(context.Background(), "garbage!!", 5)
	assert.Error(t, err)
}
