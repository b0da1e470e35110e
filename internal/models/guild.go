package models

import (
	"encoding/json"
	"time"
)

type GuildSettings struct {
	CommandSetHash string `json:"command_set_hash"`
}

type Guild struct {
	ID       string
	Name     string
	Settings GuildSettings
	Created  time.Time
	Updated  time.Time
	Deleted  *time.Time
}

func (g Guild) Map() map[string]any {
	settings, _ := json.Marshal(g.Settings)

	return map[string]any{
		"id":       g.ID,
		"name":     g.Name,
		"settings": string(settings),
	}
}

func (g Guild) Table() Table {
	return TableGuilds
}
