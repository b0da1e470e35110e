package bot

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/models"
	"github.com/graxinc/errutil"
)

func (b *Bot) status() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			msg, err := b.statusMessage(step)
			step++
			if err != nil {
				b.l.Error("error building bot status", "error", err)
				continue
			}

			if err := b.s.UpdateStatusComplex(dg.UpdateStatusData{
				Status: string(dg.StatusOnline),
				Activities: []*dg.Activity{
					{
						Name:  b.s.State.User.Username,
						Type:  dg.ActivityTypeCustom,
						State: msg,
					},
				},
			}); err != nil {
				b.l.Error("error setting bot status", "error", err)
			}
		}
	}
}

// statusMessage alternates between server count and commands handled. Counts
// come from the database when there is one, so they span restarts and shards.
func (b *Bot) statusMessage(step int) (string, error) {
	switch step % 2 {
	case 0:
		count := b.Guilds()
		if b.d != nil {
			n, err := b.d.Count(b.ctx, models.TableGuilds, sq.Eq{"deleted": nil})
			if err != nil {
				return "", errutil.With(err)
			}
			count = n
		}
		return fmt.Sprintf("Helping %d servers", count), nil

	default:
		count := b.Handled()
		if b.d != nil {
			n, err := b.d.Count(b.ctx, models.TableInvocations, sq.Eq{"outcome": string(models.OutcomeExecuted)})
			if err != nil {
				return "", errutil.With(err)
			}
			count = int64(n)
		}
		return fmt.Sprintf("%d commands handled", count), nil
	}
}
