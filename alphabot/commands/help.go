package commands

import (
	"fmt"
	"strings"

	"github.com/alphabot-dev/alphabot/alphabot/plugin"
)

func Help(deps Deps) *plugin.Command {
	return plugin.MustAdapt(plugin.Spec{
		Config: plugin.SpecConfig{
			Name:        "help",
			Aliases:     []string{"h", "menu"},
			Description: "List commands or show details for one",
			Usage:       "help [command]",
			Category:    "system",
			Permissions: []int{0},
			Cooldowns:   3,
		},
		Run: func(c *plugin.Ctx) error {
			if len(c.Args) > 0 {
				return helpDetail(c, deps, c.Args[0])
			}
			return helpOverview(c, deps)
		},
	})
}

func helpOverview(c *plugin.Ctx, deps Deps) error {
	byCategory := make(map[string][]string)
	for _, cmd := range deps.Registry.Commands() {
		cat := cmd.Category
		if cat == "" {
			cat = "other"
		}
		byCategory[cat] = append(byCategory[cat], cmd.Name)
	}

	var sb strings.Builder
	sb.WriteString("📖 Commands\n")
	for cat, names := range byCategory {
		fmt.Fprintf(&sb, "\n[%s] %s", cat, strings.Join(names, ", "))
	}
	fmt.Fprintf(&sb, "\n\nUse %shelp <command> for details.", deps.Prefix)

	_, err := c.Reply(sb.String())
	return err
}

func helpDetail(c *plugin.Ctx, deps Deps, name string) error {
	cmd, ok := deps.Registry.Resolve(name)
	if !ok {
		_, err := c.Reply(fmt.Sprintf("Command %q does not exist.", name))
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 %s\n", cmd.Name)
	if cmd.Description != "" {
		fmt.Fprintf(&sb, "%s\n", cmd.Description)
	}
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&sb, "Aliases: %s\n", strings.Join(cmd.Aliases, ", "))
	}
	if cmd.Usage != "" {
		fmt.Fprintf(&sb, "Usage: %s%s\n", deps.Prefix, cmd.Usage)
	}
	if cmd.CooldownSeconds > 0 {
		fmt.Fprintf(&sb, "Cooldown: %ds\n", cmd.CooldownSeconds)
	}
	if cmd.NSFW {
		sb.WriteString("NSFW: requires an NSFW-enabled thread\n")
	}

	_, err := c.Reply(strings.TrimRight(sb.String(), "\n"))
	return err
}
