package bot

import (
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/utils"
	"github.com/graxinc/errutil"
)

// prepare trims definitions to API limits. It never returns nil so an empty
// set serializes as [] and clears stale commands.
func (b *Bot) prepare(defs []*dg.ApplicationCommand, guildID string) []*dg.ApplicationCommand {
	out := make([]*dg.ApplicationCommand, 0, len(defs))
	for _, def := range defs {
		result := utils.ValidateCommand(def)
		if result.WasModified {
			b.l.Warn("command was modified during validation", "command", def.Name, "errors", result.Errors, "guild", guildID)
		}
		out = append(out, result.Command)
	}
	return out
}

func commandSetHash(defs []*dg.ApplicationCommand) (string, error) {
	bytes, err := json.Marshal(defs)
	if err != nil {
		return "", errutil.With(err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(bytes)), nil
}

func (b *Bot) registerGlobal() {
	start := time.Now()
	defs := b.prepare(b.commands.Definitions(""), "")

	if err := b.limiter.Wait(b.ctx); err != nil {
		return
	}
	if _, err := b.s.ApplicationCommandBulkOverwrite(b.selfID(), "", defs); err != nil {
		b.l.Error("error loading global commands", "error", err)
		return
	}

	b.l.Info("global command set loaded", "loaded", len(defs), "duration", time.Since(start))
}

// registerGuild overwrites the guild's scoped commands, skipping the call when
// the stored hash shows the set is unchanged.
func (b *Bot) registerGuild(guildID string) {
	start := time.Now()
	defs := b.prepare(b.commands.Definitions(guildID), guildID)

	hash, err := commandSetHash(defs)
	if err != nil {
		b.l.Warn("error hashing command set", "error", err, "guild", guildID)
	}

	if b.store != nil && hash != "" {
		g, err := b.store.GetGuild(b.ctx, guildID)
		switch {
		case err == nil && g.Settings.CommandSetHash == hash:
			b.l.Info("command set unchanged", "guild", guildID)
			return
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			b.l.Warn("error getting guild", "error", err, "guild", guildID)
		}
	}

	if err := b.limiter.Wait(b.ctx); err != nil {
		return
	}
	if _, err := b.s.ApplicationCommandBulkOverwrite(b.selfID(), guildID, defs); err != nil {
		b.l.Error("error loading guild commands", "error", err, "guild", guildID)
		return
	}

	if b.store != nil && hash != "" {
		if err := b.store.SetCommandSetHash(b.ctx, guildID, hash); err != nil {
			b.l.Warn("error updating command set hash", "error", err, "guild", guildID, "hash", hash)
		}
	}

	b.l.Info("command set loaded", "loaded", len(defs), "guild", guildID, "duration", time.Since(start))
}
