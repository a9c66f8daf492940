package notify_libnotify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildArgs(t *testing.T) {
	args := buildArgs("title", "body", "https://x/1", Options{Urgency: "critical", Expire: 3 * time.Second})
	assert.Equal(t, []string{
		"--app-name=release-reporter",
		"--urgency=critical",
		"--expire-time=3000",
		"title",
		"body\nhttps://x/1",
	}, args)

	assert.Equal(t, []string{"--app-name=release-reporter", "t", "u"}, buildArgs("t", "", "u", Options{}))
}

func TestNotifyUrgent_PassesUrgency(t *testing.T) {
	var got []string
	n := &Notifier{run: func(_ context.Context, args []string) error {
		got = args
		return nil
	}}

	assert.NoError(t, n.NotifyUrgent(context.Background(), "t", "b", "", true))
	assert.Contains(t, got, "--urgency=critical")

	assert.NoError(t, n.NotifyUrgent(context.Background(), "t", "b", "", false))
	assert.Contains(t, got, "--urgency=normal")
}

func TestNotify_SoftSwallowsErrors(t *testing.T) {
	fail := func(context.Context, []string) error { return errors.New("notify-send: not found") }

	assert.NoError(t, (&Notifier{soft: true, run: fail}).Notify(context.Background(), "t", "b", ""))
	assert.Error(t, (&Notifier{soft: false, run: fail}).Notify(context.Background(), "t", "b", ""))
}
