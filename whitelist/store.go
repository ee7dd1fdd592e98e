package whitelist

import (
	"context"
	"corp-bot/model"
	"corp-bot/utils/database"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrUnknownMember      = errors.New("unknown member")
	ErrAlreadyWhitelisted = errors.New("already whitelisted")
	ErrNotWhitelisted     = errors.New("not whitelisted")
)

// MemberLookup resolves a character name against the member store.
type MemberLookup interface {
	GetMemberByName(ctx context.Context, name string) (*model.Member, error)
}

// Store is the activity whitelist. All reads and writes go through one mutex
// so the auditor and whitelist commands never interleave a read-then-write.
type Store struct {
	mu           sync.Mutex
	repo         Repository
	members      MemberLookup
	activityDays int
	now          func() time.Time
}

// NewStore creates a whitelist store for an activity window of activityDays.
func NewStore(repo Repository, members MemberLookup, activityDays int) *Store {
	return &Store{
		repo:         repo,
		members:      members,
		activityDays: activityDays,
		now:          time.Now,
	}
}

// ActivityDays returns the activity window the store decays against.
func (s *Store) ActivityDays() int {
	return s.activityDays
}

// Add whitelists a member for days audit cycles. days <= 0 whitelists permanently.
func (s *Store) Add(ctx context.Context, name, description string, days int) (model.WhitelistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	member, err := s.members.GetMemberByName(ctx, name)
	if err != nil {
		if errors.Is(err, database.ErrMemberNotFound) {
			return model.WhitelistEntry{}, model.NewUserError(ErrUnknownMember, "%s is not a known member.", name)
		}
		return model.WhitelistEntry{}, err
	}

	expiry := days
	if days <= 0 {
		expiry = model.PermanentExpiry(s.activityDays)
	}
	entry := model.WhitelistEntry{
		Name:        member.CharacterName,
		Description: strings.TrimSpace(description),
		ExpiryDays:  expiry,
		AddedAt:     s.now().UTC(),
	}

	err = s.repo.InTx(ctx, func(r Repository) error {
		existing, err := r.Get(ctx, entry.Name)
		if err == nil {
			return model.NewUserError(ErrAlreadyWhitelisted, "%s is already on the whitelist.", existing.Name)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return r.Insert(ctx, entry)
	})
	if err != nil {
		return model.WhitelistEntry{}, err
	}
	return entry, nil
}

// Remove deletes the entry for name, ignoring case.
func (s *Store) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if err := s.repo.Delete(ctx, name); err != nil {
		if errors.Is(err, database.ErrWhitelistEntryNotFound) {
			return model.NewUserError(ErrNotWhitelisted, "%s is not on the whitelist.", name)
		}
		return err
	}
	return nil
}

// List returns the active entries sorted by name. Entries that have counted
// down to zero but have not been evicted yet are left out.
func (s *Store) List(ctx context.Context) ([]model.WhitelistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]model.WhitelistEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsActive(s.activityDays) {
			active = append(active, e)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return strings.ToLower(active[i].Name) < strings.ToLower(active[j].Name)
	})
	return active, nil
}

// Decay runs one audit cycle over the whitelist. Every main with an entry
// (exact name match) is reported as exempt for this cycle. Non-permanent
// entries lose a day; an entry whose next value would fall into the permanent
// range is evicted instead. Changes are committed before Decay returns.
func (s *Store) Decay(ctx context.Context, mains []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exempt := make(map[string]bool)
	err := s.repo.InTx(ctx, func(r Repository) error {
		entries, err := r.List(ctx)
		if err != nil {
			return err
		}
		byName := make(map[string]model.WhitelistEntry, len(entries))
		for _, e := range entries {
			byName[e.Name] = e
		}

		for _, main := range mains {
			entry, ok := byName[main]
			if !ok || exempt[main] {
				continue
			}
			exempt[main] = true
			if entry.IsPermanent(s.activityDays) {
				continue
			}
			next := entry.ExpiryDays - 1
			if next < -s.activityDays {
				if err := r.Delete(ctx, entry.Name); err != nil {
					return err
				}
				continue
			}
			if err := r.UpdateExpiry(ctx, entry.Name, next); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decay whitelist: %w", err)
	}
	return exempt, nil
}

// Seed imports entries into an empty whitelist. It returns how many were
// imported; a non-empty whitelist is left untouched. Zero or negative expiry
// values are stored as permanent.
func (s *Store) Seed(ctx context.Context, entries []model.WhitelistEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	imported := 0
	err := s.repo.InTx(ctx, func(r Repository) error {
		count, err := r.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		seen := make(map[string]bool)
		for _, e := range entries {
			key := strings.ToLower(strings.TrimSpace(e.Name))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			e.Name = strings.TrimSpace(e.Name)
			if e.ExpiryDays <= 0 {
				e.ExpiryDays = model.PermanentExpiry(s.activityDays)
			}
			e.AddedAt = s.now().UTC()
			if err := r.Insert(ctx, e); err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed whitelist: %w", err)
	}
	return imported, nil
}

// Render formats entries for chat.
func Render(entries []model.WhitelistEntry, activityDays int) string {
	if len(entries) == 0 {
		return "The activity whitelist is empty."
	}
	var builder strings.Builder
	builder.WriteString("**Activity whitelist:**\n")
	for _, e := range entries {
		builder.WriteString("- ")
		builder.WriteString(e.Name)
		if e.Description != "" {
			builder.WriteString(fmt.Sprintf(" (%s)", e.Description))
		}
		switch {
		case e.IsPermanent(activityDays):
			builder.WriteString(": permanent")
		case e.ExpiryDays == 1:
			builder.WriteString(": 1 day left")
		default:
			builder.WriteString(fmt.Sprintf(": %d days left", e.ExpiryDays))
		}
		builder.WriteString("\n")
	}
	return strings.TrimRight(builder.String(), "\n")
}
