// Package audience resolves the set of members a poll can reach: every
// non-bot guild member with read access to the poll's channel.
package audience

import (
	"context"
	"fmt"

	"github.com/JpegDev/poll-discord/src/shared/data"
	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Session is the slice of discordgo the resolver needs.
type Session interface {
	GuildMembers(guildID string, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

type Resolver struct {
	session Session
	rdb     *redis.Client
	log     *zap.SugaredLogger
}

func NewResolver(session Session, rdb *redis.Client, log *zap.SugaredLogger) *Resolver {
	return &Resolver{session: session, rdb: rdb, log: log}
}

// Resolve returns the member ids able to read the channel. Results are
// cached briefly in redis: the scheduler and every display refresh hit this,
// and member enumeration is the most expensive platform call we make.
func (r *Resolver) Resolve(ctx context.Context, guildID, channelID string) ([]string, error) {
	if r.rdb != nil {
		if members, ok := data.CachedAudience(ctx, r.rdb, channelID); ok {
			return members, nil
		}
	}

	var out []string
	after := ""
	for {
		members, err := r.session.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, fmt.Errorf("enumerate members: %w", err)
		}
		if len(members) == 0 {
			break
		}

		for _, m := range members {
			after = m.User.ID
			if m.User.Bot {
				continue
			}
			perms, err := r.session.UserChannelPermissions(m.User.ID, channelID)
			if err != nil {
				r.log.Warnw("permission check failed", "user", m.User.ID, "channel", channelID, "error", err)
				continue
			}
			if perms&discordgo.PermissionViewChannel == 0 {
				continue
			}
			out = append(out, m.User.ID)
		}

		if len(members) < 1000 {
			break
		}
	}

	if r.rdb != nil {
		if err := data.CacheAudience(ctx, r.rdb, channelID, out); err != nil {
			r.log.Debugw("audience cache write failed", "channel", channelID, "error", err)
		}
	}
	return out, nil
}
