package httpserver

import (
	"sync"

	"nearby_market/internal/domain"
)

// redirectLauncher records the URI a card action would open so the handler
// can answer with a redirect.
type redirectLauncher struct {
	uri    string
	target domain.LaunchTarget
}

func (l *redirectLauncher) Launch(uri string, target domain.LaunchTarget) {
	l.uri, l.target = uri, target
}

// noticeSink collects notices raised while handling one request.
type noticeSink struct {
	mu    sync.Mutex
	items []domain.Notice
}

func (n *noticeSink) Notify(notice domain.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notice)
}

func (n *noticeSink) first() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return ""
	}
	return n.items[0].Message
}
