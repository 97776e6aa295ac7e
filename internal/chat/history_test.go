package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryLogKeepsMostRecent(t *testing.T) {
	for _, n := range []int{0, 1, 50, 99, 100, 101, 250} {
		t.Run(fmt.Sprintf("%d appends", n), func(t *testing.T) {
			log := NewHistoryLog(DefaultHistoryLimit)
			for i := 0; i < n; i++ {
				log.Append(ChatEvent{Time: int64(i), Text: fmt.Sprintf("msg %d", i)})
			}

			snapshot := log.Snapshot()
			want := min(n, DefaultHistoryLimit)
			require.Len(t, snapshot, want)
			assert.Equal(t, want, log.Len())

			first := n - want
			for i, e := range snapshot {
				assert.Equal(t, int64(first+i), e.Time)
			}
		})
	}
}

func TestHistoryLogSnapshotIsCopy(t *testing.T) {
	log := NewHistoryLog(3)
	log.Append(ChatEvent{Text: "one"})

	snapshot := log.Snapshot()
	snapshot[0].Text = "changed"

	assert.Equal(t, "one", log.Snapshot()[0].Text)
}

func TestHistoryLogDefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, NewHistoryLog(0).Limit())
	assert.Equal(t, DefaultHistoryLimit, NewHistoryLog(-5).Limit())
	assert.Equal(t, 7, NewHistoryLog(7).Limit())
}
