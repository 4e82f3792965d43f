package syntax

import "sync"

// RecentList keeps recently successful syntaxes, most recent first. The
// resolver tries them before the others.
type RecentList struct {
	mu    sync.Mutex
	items []*Info
	limit int
}

// NewRecentList returns a list holding at most limit entries. A limit of
// zero or less means unbounded.
func NewRecentList(limit int) *RecentList {
	return &RecentList{limit: limit}
}

// Promote moves info to the front, inserting it if needed.
func (l *RecentList) Promote(info *Info) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it == info {
			copy(l.items[1:i+1], l.items[:i])
			l.items[0] = info
			return
		}
	}
	l.items = append([]*Info{info}, l.items...)
	if l.limit > 0 && len(l.items) > l.limit {
		l.items = l.items[:l.limit]
	}
}

// Remove drops info from the list.
func (l *RecentList) Remove(info *Info) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it == info {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// Snapshot returns the current order.
func (l *RecentList) Snapshot() []*Info {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Info, len(l.items))
	copy(out, l.items)
	return out
}

func (l *RecentList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Clear empties the list.
func (l *RecentList) Clear() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
}
