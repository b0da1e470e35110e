// Package general holds the everyday commands.
package general

import "github.com/glotchimo/warden/internal/commands"

const Category = "General"

func Commands(r *commands.Registry, prefix string) []*commands.Command {
	return []*commands.Command{
		Help(r, prefix),
		Ping(),
		ServerInfo(),
	}
}
