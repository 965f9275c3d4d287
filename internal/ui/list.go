package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/setlist/internal/repositories"
)

var (
	_ list.Item = snapshotItem{}
)

// snapshotItem wraps [repositories.SnapshotEntry] to implement [list.Item].
type snapshotItem struct {
	entry repositories.SnapshotEntry
}

func (i snapshotItem) FilterValue() string { return i.entry.Name }
func (i snapshotItem) Title() string       { return i.entry.Name }
func (i snapshotItem) Description() string {
	desc := fmt.Sprintf("%d tracks • fetched %s", i.entry.StoredTracks, i.entry.FetchedAt.Local().Format("2006-01-02 15:04"))
	if i.entry.Owner != "" {
		desc = fmt.Sprintf("%s • %s", i.entry.Owner, desc)
	}
	return desc
}

func newRecentList(entries []repositories.SnapshotEntry, width, height int) list.Model {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = snapshotItem{entry: e}
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Recent playlists"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}
