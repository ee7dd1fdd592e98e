package query

import (
	"context"
	"corp-bot/api"
	"corp-bot/model"
	"corp-bot/utils/database"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUsage            = errors.New("bad query usage")
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrNotFound         = errors.New("nothing found")
	ErrNoCharacterID    = errors.New("no character id")
)

const usage = "Usage: `query reddit|<name>` or `query char|<name>`"

// Members is the member store as seen by the query service.
type Members interface {
	GetMemberByName(ctx context.Context, name string) (*model.Member, error)
	CharacterNamesByMain(ctx context.Context, main string) ([]string, error)
	CharacterNamesByReddit(ctx context.Context, handle string) ([]string, error)
	CharacterID(ctx context.Context, name string) (int64, bool, error)
}

// HistorySource returns a character's corporation history.
type HistorySource interface {
	CorporationHistory(ctx context.Context, characterID int64) ([]api.CorporationHistoryEntry, error)
}

// KillSource returns a character's most recent kill, nil if there is none.
type KillSource interface {
	LatestKill(ctx context.Context, characterID int64) (*api.Kill, error)
}

// Service answers member lookups.
type Service struct {
	members         Members
	history         HistorySource
	kills           KillSource
	corporationID   int64
	corporationName string
	now             func() time.Time
}

func NewService(members Members, history HistorySource, kills KillSource, corporation model.CorporationConfig) *Service {
	return &Service{
		members:         members,
		history:         history,
		kills:           kills,
		corporationID:   corporation.ID,
		corporationName: corporation.Name,
		now:             time.Now,
	}
}

// Query runs a "kind|value" query. kind is either "reddit" or "char".
func (s *Service) Query(ctx context.Context, arg string) (string, error) {
	kind, value, ok := strings.Cut(strings.TrimSpace(arg), "|")
	kind = strings.ToLower(strings.TrimSpace(kind))
	value = strings.TrimSpace(value)
	if !ok || kind == "" || value == "" {
		return "", model.NewUserError(ErrUsage, usage)
	}

	switch kind {
	case "reddit":
		return s.reddit(ctx, value)
	case "char":
		return s.character(ctx, value)
	default:
		return "", model.NewUserError(ErrUnknownQueryType, "Unknown query type %q. %s", kind, usage)
	}
}

func (s *Service) reddit(ctx context.Context, handle string) (string, error) {
	names, err := s.members.CharacterNamesByReddit(ctx, handle)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", model.NewUserError(ErrNotFound, "No characters are linked to reddit user %s.", handle)
	}
	return fmt.Sprintf("Characters linked to /u/%s: %s", handle, strings.Join(names, ", ")), nil
}

func (s *Service) character(ctx context.Context, name string) (string, error) {
	member, err := s.members.GetMemberByName(ctx, name)
	if err != nil {
		if errors.Is(err, database.ErrMemberNotFound) {
			return "", model.NewUserError(ErrNotFound, "No member named %s was found.", name)
		}
		return "", err
	}

	characterID, ok, err := s.members.CharacterID(ctx, member.CharacterName)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", model.NewUserError(ErrNoCharacterID, "%s has no character ID on record.", member.CharacterName)
	}

	main := member.CharacterName
	if member.Main.Valid && member.Main.String != "" {
		main = member.Main.String
	}
	linked, err := s.members.CharacterNamesByMain(ctx, main)
	if err != nil {
		return "", err
	}
	var alts []string
	for _, n := range linked {
		if !strings.EqualFold(n, main) {
			alts = append(alts, n)
		}
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "**%s**\n", member.CharacterName)
	fmt.Fprintf(&builder, "Main: %s\n", main)
	fmt.Fprintf(&builder, "Alts: %s\n", orNone(strings.Join(alts, ", ")))
	fmt.Fprintf(&builder, "Corporation: %s\n", orNone(member.Corporation))
	fmt.Fprintf(&builder, "Reddit: %s\n", orNone(member.Reddit.String))

	if s.corporationName != "" && member.Corporation == s.corporationName {
		tags := member.Knowledge.Tags()
		parts := make([]string, len(tags))
		for i, tag := range tags {
			box := "☐"
			if tag.Known {
				box = "☑"
			}
			parts[i] = box + " " + tag.Label
		}
		fmt.Fprintf(&builder, "Knowledge: %s\n", strings.Join(parts, "  "))
	}

	history, err := s.history.CorporationHistory(ctx, characterID)
	if err != nil {
		return "", fmt.Errorf("corporation history of %s: %w", member.CharacterName, err)
	}
	now := s.now()
	if start, ok := api.TenureStart(history, s.corporationID); ok {
		fmt.Fprintf(&builder, "Time in corp: %s\n", days(now.Sub(start)))
	} else {
		builder.WriteString("Time in corp: never joined\n")
	}

	kill, err := s.kills.LatestKill(ctx, characterID)
	if err != nil {
		return "", fmt.Errorf("latest kill of %s: %w", member.CharacterName, err)
	}
	if kill == nil {
		fmt.Fprintf(&builder, "%s has never gotten a kill.", member.CharacterName)
	} else {
		fmt.Fprintf(&builder, "Last kill: %s ago (%s)", days(now.Sub(kill.KillmailTime)), kill.KillmailTime.UTC().Format("2006-01-02 15:04 UTC"))
	}
	return builder.String(), nil
}

func days(d time.Duration) string {
	n := int(d.Hours() / 24)
	if n < 0 {
		n = 0
	}
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
