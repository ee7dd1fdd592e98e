package subscription

import (
	"context"
	"corp-bot/model"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrUnknownRole = errors.New("unknown role")
	ErrMissingRole = errors.New("role does not exist on the server")
)

// RoleGateway is the part of the discord session the manager needs.
type RoleGateway interface {
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// Manager lets members opt in and out of the roles in the catalog. It works
// against the one configured guild.
type Manager struct {
	gw      RoleGateway
	guildID string
	catalog []model.SubscribableRole
}

func NewManager(gw RoleGateway, guildID string, catalog []model.SubscribableRole) *Manager {
	return &Manager{gw: gw, guildID: guildID, catalog: catalog}
}

// Subscribe grants roleName to the user. With an empty roleName it lists the
// catalog roles the user can still subscribe to.
func (m *Manager) Subscribe(ctx context.Context, userID, roleName string) (string, error) {
	roleName = strings.TrimSpace(roleName)
	state, err := m.load(ctx, userID)
	if err != nil {
		return "", err
	}

	if roleName == "" {
		var available []model.SubscribableRole
		for _, entry := range state.available {
			if !state.held[entry.role.ID] {
				available = append(available, entry.SubscribableRole)
			}
		}
		if len(available) == 0 {
			return "There are no roles left for you to subscribe to.", nil
		}
		return "Roles you can subscribe to:\n" + renderRoles(available), nil
	}

	entry, err := state.resolve(roleName)
	if err != nil {
		return "", err
	}
	if state.held[entry.role.ID] {
		return fmt.Sprintf("You're already subscribed to **%s**.", entry.Name), nil
	}
	if err := m.gw.GuildMemberRoleAdd(m.guildID, userID, entry.role.ID, discordgo.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("failed to add role %s: %w", entry.Name, err)
	}
	log.Printf("Subscribed user %s to role %s", userID, entry.Name)
	return fmt.Sprintf("Subscribed you to **%s**.", entry.Name), nil
}

// Unsubscribe removes roleName from the user. With an empty roleName it lists
// the catalog roles the user currently holds.
func (m *Manager) Unsubscribe(ctx context.Context, userID, roleName string) (string, error) {
	roleName = strings.TrimSpace(roleName)
	state, err := m.load(ctx, userID)
	if err != nil {
		return "", err
	}

	if roleName == "" {
		var subscribed []model.SubscribableRole
		for _, entry := range state.available {
			if state.held[entry.role.ID] {
				subscribed = append(subscribed, entry.SubscribableRole)
			}
		}
		if len(subscribed) == 0 {
			return "You aren't subscribed to any roles.", nil
		}
		return "Roles you can unsubscribe from:\n" + renderRoles(subscribed), nil
	}

	entry, err := state.resolve(roleName)
	if err != nil {
		return "", err
	}
	if !state.held[entry.role.ID] {
		return fmt.Sprintf("You aren't subscribed to **%s**.", entry.Name), nil
	}
	if err := m.gw.GuildMemberRoleRemove(m.guildID, userID, entry.role.ID, discordgo.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("failed to remove role %s: %w", entry.Name, err)
	}
	log.Printf("Unsubscribed user %s from role %s", userID, entry.Name)
	return fmt.Sprintf("Unsubscribed you from **%s**.", entry.Name), nil
}

type catalogRole struct {
	model.SubscribableRole
	role *discordgo.Role
}

type memberState struct {
	catalog   []model.SubscribableRole
	available []catalogRole
	held      map[string]bool
}

func (m *Manager) load(ctx context.Context, userID string) (*memberState, error) {
	roles, err := m.gw.GuildRoles(m.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild roles: %w", err)
	}
	member, err := m.gw.GuildMember(m.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member %s: %w", userID, err)
	}

	byName := make(map[string]*discordgo.Role, len(roles))
	for _, r := range roles {
		key := strings.ToLower(r.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = r
		}
	}

	state := &memberState{catalog: m.catalog, held: make(map[string]bool, len(member.Roles))}
	for _, id := range member.Roles {
		state.held[id] = true
	}
	for _, entry := range m.catalog {
		if r, ok := byName[strings.ToLower(entry.Name)]; ok {
			state.available = append(state.available, catalogRole{SubscribableRole: entry, role: r})
		}
	}
	sort.SliceStable(state.available, func(i, j int) bool {
		return strings.ToLower(state.available[i].Name) < strings.ToLower(state.available[j].Name)
	})
	return state, nil
}

func (s *memberState) resolve(name string) (catalogRole, error) {
	for _, entry := range s.available {
		if strings.EqualFold(entry.Name, name) {
			return entry, nil
		}
	}
	for _, entry := range s.catalog {
		if strings.EqualFold(entry.Name, name) {
			return catalogRole{}, model.NewUserError(ErrMissingRole, "The role **%s** doesn't exist on this server.", entry.Name)
		}
	}
	return catalogRole{}, model.NewUserError(ErrUnknownRole, "**%s** is not a role you can subscribe to.", name)
}

func renderRoles(roles []model.SubscribableRole) string {
	var builder strings.Builder
	for _, r := range roles {
		builder.WriteString("- **")
		builder.WriteString(r.Name)
		builder.WriteString("**")
		if r.Description != "" {
			builder.WriteString(": ")
			builder.WriteString(r.Description)
		}
		builder.WriteString("\n")
	}
	return strings.TrimRight(builder.String(), "\n")
}
