package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

const (
	maxSpamCount = 50
	spamDelay    = 1500 * time.Millisecond
)

// Spam sends a message repeatedly. The loop holds a cancellation token in
// the session store and checks it every iteration; deleting the token (the
// stopspam command) is the only way to stop it early.
func Spam() *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "spam",
			Description: "Repeat a message with a delay",
			Usage:       "spam <count> <text>",
			Category:    "fun",
			Permissions: []int{2},
			Cooldowns:   10,
		},
		Run: func(c *plugin.Ctx) error {
			if len(c.Args) < 2 {
				_, err := c.Reply("Usage: spam <count> <text>")
				return err
			}

			count, err := strconv.Atoi(c.Args[0])
			if err != nil || count < 1 {
				_, err := c.Reply("Count must be a positive number.")
				return err
			}
			if count > maxSpamCount {
				count = maxSpamCount
			}
			text := strings.Join(c.Args[1:], " ")

			loopCtx, ok := c.WithCancel(c.LoopKey())
			if !ok {
				_, err := c.Reply("A spam loop is already running in this thread.")
				return err
			}
			defer c.Sessions.Release(c.LoopKey())

			for i := 0; i < count; i++ {
				select {
				case <-loopCtx.Done():
					_, err := c.Send(fmt.Sprintf("🛑 Stopped after %d messages.", i))
					return err
				case <-time.After(spamDelay):
				}
				if _, err := c.Send(text); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

func StopSpam() *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "stopspam",
			Aliases:     []string{"stop"},
			Description: "Stop a running spam loop in this thread",
			Usage:       "stopspam",
			Category:    "fun",
			Permissions: []int{0},
			Cooldowns:   0,
		},
		Run: func(c *plugin.Ctx) error {
			key := "spam:" + c.Event.ThreadID
			if !c.Sessions.Cancel(key) {
				_, err := c.Reply("No spam loop is running here.")
				return err
			}
			return nil
		},
	})
}
