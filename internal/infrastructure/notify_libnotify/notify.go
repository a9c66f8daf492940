package notify_libnotify

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const appName = "release-reporter"

type Notifier struct {
	soft bool
	run  func(ctx context.Context, args []string) error
}

func New() *Notifier     { return &Notifier{soft: false, run: notifySend} }
func NewSoft() *Notifier { return &Notifier{soft: true, run: notifySend} }

type Options struct {
	Urgency string
	Expire  time.Duration
}

func (n *Notifier) Notify(ctx context.Context, title, body, url string) error {
	return n.NotifyWith(ctx, title, body, url, Options{})
}

// NotifyUrgent sends a critical notification when critical is set, a normal
// one otherwise.
func (n *Notifier) NotifyUrgent(ctx context.Context, title, body, url string, critical bool) error {
	urgency := "normal"
	if critical {
		urgency = "critical"
	}
	return n.NotifyWith(ctx, title, body, url, Options{Urgency: urgency})
}

func (n *Notifier) NotifyWith(ctx context.Context, title, body, url string, opt Options) error {
	if err := n.run(ctx, buildArgs(title, body, url, opt)); err != nil {
		if n.soft {
			return nil
		}
		return err
	}
	return nil
}

func buildArgs(title, body, url string, opt Options) []string {
	if strings.TrimSpace(url) != "" {
		if body == "" {
			body = url
		} else {
			body = body + "\n" + url
		}
	}

	args := []string{"--app-name=" + appName}
	if opt.Urgency != "" {
		args = append(args, "--urgency="+opt.Urgency)
	}
	if opt.Expire > 0 {
		ms := strconv.Itoa(int(opt.Expire / time.Millisecond))
		args = append(args, "--expire-time="+ms)
	}
	return append(args, title, body)
}

func notifySend(ctx context.Context, args []string) error {
	return exec.CommandContext(ctx, "notify-send", args...).Run()
}
