package admingate

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Role string

const (
	RoleCreator       = Role("creator")
	RoleAdministrator = Role("administrator")
	RoleMember        = Role("member")
)

func (r Role) IsAdmin() bool {
	return r == RoleCreator || r == RoleAdministrator
}

// MembershipQuery is the chat platform's member-role lookup capability.
type MembershipQuery interface {
	RoleOf(ctx context.Context, chatID string, userID int64) (Role, error)
}

// Gate authorizes privileged commands. Private (one-to-one) chats are always
// authorized; in group chats only administrators and the chat creator pass.
// Any lookup failure resolves to not-authorized: fail closed, never open.
type Gate struct {
	Logger  *slog.Logger
	Members MembershipQuery

	cache *expirable.LRU[string, Role]
}

func NewGate(members MembershipQuery, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		Logger:  logger,
		Members: members,
		cache:   expirable.NewLRU[string, Role](5_000, nil, 2*time.Minute),
	}
}

func (g *Gate) IsAuthorized(ctx context.Context, chatID string, userID int64, private bool) bool {
	if private {
		return true
	}
	role, err := g.roleOf(ctx, chatID, userID)
	if err != nil {
		g.Logger.Warn("member role lookup failed, treating as unauthorized", "chatID", chatID, "userID", userID, "err", err)
		return false
	}
	return role.IsAdmin()
}

func (g *Gate) roleOf(ctx context.Context, chatID string, userID int64) (Role, error) {
	key := roleCacheKey(chatID, userID)
	if role, ok := g.cache.Get(key); ok {
		return role, nil
	}
	role, err := g.Members.RoleOf(ctx, chatID, userID)
	if err != nil {
		// lookup errors are not cached; the next command retries
		return "", err
	}
	g.cache.Add(key, role)
	return role, nil
}

func roleCacheKey(chatID string, userID int64) string {
	return chatID + "/" + strconv.FormatInt(userID, 10)
}
