package onboarding

import (
	"sync"
	"time"

	"nearby_market/internal/domain"
)

// TransientTTL is how long a transient notice stays visible.
const TransientTTL = 3 * time.Second

type timedNotice struct {
	domain.Notice
	expires time.Time // zero for blocking notices
}

// Notices collects user-visible messages. Transient ones expire on their
// own; blocking ones stay until Dismiss.
type Notices struct {
	mu    sync.Mutex
	items []timedNotice
	now   func() time.Time
}

func NewNotices(now func() time.Time) *Notices {
	if now == nil {
		now = time.Now
	}
	return &Notices{now: now}
}

func (n *Notices) Notify(notice domain.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	tn := timedNotice{Notice: notice}
	if notice.Level == domain.Transient {
		tn.expires = n.now().Add(TransientTTL)
	}
	n.items = append(n.items, tn)
}

// Active returns the notices visible at t and forgets expired ones.
func (n *Notices) Active(t time.Time) []domain.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	kept := n.items[:0]
	var out []domain.Notice
	for _, it := range n.items {
		if !it.expires.IsZero() && !t.Before(it.expires) {
			continue
		}
		kept = append(kept, it)
		out = append(out, it.Notice)
	}
	n.items = kept
	return out
}

func (n *Notices) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = nil
}
