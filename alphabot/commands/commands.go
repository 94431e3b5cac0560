// Package commands contains the built-in command plugins.
package commands

import (
	"time"

	"github.com/alphabot-dev/alphabot/alphabot/handlers"
	"github.com/alphabot-dev/alphabot/alphabot/plugin"
	"github.com/alphabot-dev/alphabot/alphabot/services"
)

// Deps carries the bot-level state some commands close over.
type Deps struct {
	StartedAt time.Time
	Prefix    string
	Registry  *plugin.Registry
	Users     *services.UserInfoService
}

// Register loads every built-in command into the registry, each wrapped with
// logging.
func Register(reg *plugin.Registry, deps Deps) error {
	cmds := []*plugin.Command{
		Ping(),
		Uptime(deps),
		Help(deps),
		Prefix(deps),
		SetPermission(),
		Ban(),
		Unban(),
		NSFW(),
		Language(),
		Spam(),
		StopSpam(),
		Me(deps),
	}

	for _, cmd := range cmds {
		cmd.Run = handlers.WrapWithLogging(cmd.Name, cmd.Run)
		if err := reg.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}
