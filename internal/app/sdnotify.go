package app

import (
	"github.com/coreos/go-systemd/v22/daemon"

	"tickd/internal/eventbus"
	"tickd/pkg/logx"
)

const (
	notifyReady    = daemon.SdNotifyReady
	notifyStopping = daemon.SdNotifyStopping
)

// notifyHandler forwards lifecycle milestones to systemd. Outside a systemd
// unit SdNotify is a no-op.
type notifyHandler struct {
	state string
	log   logx.Logger
}

func (h notifyHandler) HandleEvent(eventbus.Event) {
	sent, err := daemon.SdNotify(false, h.state)
	if err != nil {
		h.log.Warn("sd_notify failed", logx.String("state", h.state), logx.Err(err))
		return
	}
	if sent {
		h.log.Debug("sd_notify", logx.String("state", h.state))
	}
}
