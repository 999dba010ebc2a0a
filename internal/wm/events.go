package wm

import (
	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
)

// Events published on the bus. Handlers run on the manager goroutine and
// must not call back into the manager synchronously.
type (
	FocusChanged struct {
		Desktop int         `json:"desktop"`
		NodeID  int64       `json:"node_id"`
		Name    string      `json:"name"`
		Title   string      `json:"title,omitempty"`
		Handle  tree.Handle `json:"handle,omitempty"`
	}

	DesktopChanged struct {
		Old int `json:"old"`
		New int `json:"new"`
	}

	RectRequested struct {
		Desktop int         `json:"desktop"`
		NodeID  int64       `json:"node_id"`
		Old     mosaic.Rect `json:"old"`
		New     mosaic.Rect `json:"new"`
	}

	// Reloaded is published after the settings were read again.
	Reloaded struct {
		Settings Settings
	}
)

// publishTree republishes the notifications of c on the bus.
func publishTree(c *tree.Collection) {
	c.OnDesktopChanged(func(ev tree.DesktopChangedEvent) {
		bus.Publish(DesktopChanged{Old: ev.Old.Index(), New: ev.New.Index()})
	})

	for _, d := range c.Desktops() {
		index := d.Index()
		d.FocusTracker().OnFocusChanged(func(ev tree.FocusChangedEvent) {
			bus.Publish(newFocusChanged(index, ev.New))
		})
		d.OnRequestRectChange(func(ev tree.RequestRectChangeEvent) {
			bus.Publish(RectRequested{
				Desktop: index,
				NodeID:  ev.Requester.ID(),
				Old:     ev.Old,
				New:     ev.New,
			})
		})
	}
}

func newFocusChanged(desktop int, n tree.Node) FocusChanged {
	ev := FocusChanged{Desktop: desktop}
	if n == nil {
		return ev
	}
	ev.NodeID = n.ID()
	ev.Name = n.Name()
	if l, ok := n.(*tree.Leaf); ok {
		ev.Title = l.Title()
		ev.Handle = l.Handle()
	}
	return ev
}
