package service

import (
	"hackassist_web/internal/util"
	"time"
)

// Navigation is a flow's request to move the browser elsewhere.
type Navigation struct {
	To    string
	After time.Duration
}

func (n *Navigation) Redirect() *util.Redirect {
	if n == nil {
		return nil
	}
	return &util.Redirect{To: n.To, AfterMS: n.After.Milliseconds()}
}
