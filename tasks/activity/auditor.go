package activity

import (
	"context"
	"corp-bot/api"
	"corp-bot/utils"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// ErrNoMains is returned when the member store has no accepted mains at all.
var ErrNoMains = errors.New("no mains in the member database")

// MemberSource reads the member store.
type MemberSource interface {
	AcceptedMains(ctx context.Context) ([]string, error)
	AltCharacterIDs(ctx context.Context, main string) ([]int64, error)
	CharacterID(ctx context.Context, name string) (int64, bool, error)
}

// HistorySource returns a character's corporation history.
type HistorySource interface {
	CorporationHistory(ctx context.Context, characterID int64) ([]api.CorporationHistoryEntry, error)
}

// Killboard answers whether any of a set of characters has killed anything recently.
type Killboard interface {
	HasKillsSince(ctx context.Context, characterIDs []int64, since time.Time) (bool, error)
}

// Whitelist exempts mains from the audit and decays once per cycle.
type Whitelist interface {
	Decay(ctx context.Context, mains []string) (map[string]bool, error)
}

// Auditor finds mains without recent killboard activity.
type Auditor struct {
	members       MemberSource
	history       HistorySource
	killboard     Killboard
	whitelist     Whitelist
	corporationID int64
	activityDays  int
	now           func() time.Time
}

// NewAuditor creates an auditor for corporationID with an activity window of activityDays.
func NewAuditor(members MemberSource, history HistorySource, killboard Killboard, whitelist Whitelist, corporationID int64, activityDays int) *Auditor {
	return &Auditor{
		members:       members,
		history:       history,
		killboard:     killboard,
		whitelist:     whitelist,
		corporationID: corporationID,
		activityDays:  activityDays,
		now:           time.Now,
	}
}

// Report is the outcome of one audit cycle.
type Report struct {
	GeneratedAt  time.Time
	ActivityDays int
	Inactive     []string
	Audited      int
	Exempt       int
	TooNew       int
	Skipped      int
}

// Run performs one audit cycle. Failures for a single main are logged and
// that main is skipped; the cycle only fails as a whole when the member store
// or the whitelist cannot be read.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	log.Println("Starting killboard check ...")
	now := a.now().UTC()
	cutoff := now.Add(-time.Duration(a.activityDays) * 24 * time.Hour)

	mains, err := a.members.AcceptedMains(ctx)
	if err != nil {
		return nil, err
	}
	if len(mains) == 0 {
		log.Println("No mains in the database!")
		return nil, ErrNoMains
	}

	exempt, err := a.whitelist.Decay(ctx, mains)
	if err != nil {
		return nil, err
	}

	report := &Report{GeneratedAt: now, ActivityDays: a.activityDays}
	for _, name := range mains {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if exempt[name] {
			report.Exempt++
			continue
		}

		eligible, err := a.hasTenure(ctx, name, cutoff)
		if err != nil {
			log.Printf("Skipping %s: %v", name, err)
			report.Skipped++
			continue
		}
		if !eligible {
			log.Printf("%s hasn't been in corp for %d days, skipping", name, a.activityDays)
			report.TooNew++
			continue
		}

		ids, err := a.members.AltCharacterIDs(ctx, name)
		if err != nil {
			log.Printf("Skipping %s: %v", name, err)
			report.Skipped++
			continue
		}
		if len(ids) == 0 {
			log.Printf("Warning: no valid IDs found for characters linked to %s", name)
			report.Skipped++
			continue
		}

		active, err := a.killboard.HasKillsSince(ctx, ids, cutoff)
		if err != nil {
			log.Printf("Killboard request for %s failed: %v", name, err)
			report.Skipped++
			continue
		}
		report.Audited++
		if !active {
			log.Printf("%s has no kills, adding to list", name)
			report.Inactive = append(report.Inactive, name)
		}
	}

	sort.Strings(report.Inactive)
	log.Printf("Killboard check done: %d audited, %d inactive, %d whitelisted, %d too new, %d skipped",
		report.Audited, len(report.Inactive), report.Exempt, report.TooNew, report.Skipped)
	return report, nil
}

func (a *Auditor) hasTenure(ctx context.Context, name string, cutoff time.Time) (bool, error) {
	characterID, ok, err := a.members.CharacterID(ctx, name)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("no character id found")
	}
	history, err := a.history.CorporationHistory(ctx, characterID)
	if err != nil {
		return false, fmt.Errorf("corporation history: %w", err)
	}
	return api.HasTenure(history, a.corporationID, cutoff), nil
}

// Messages renders the report as chat messages: a timestamped header followed
// by the sorted inactive names in code blocks of at most ChunkBudget
// characters, fences included.
// pasteLink is included in the header when set.
func (r *Report) Messages(pasteLink string) []string {
	stamp := r.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC")
	if len(r.Inactive) == 0 {
		return []string{fmt.Sprintf("**Activity check** %s\nNo action needed: every audited main has a kill in the last %d days.", stamp, r.ActivityDays)}
	}

	header := fmt.Sprintf("**Activity check** %s\n%d main(s) without a kill in the last %d days:", stamp, len(r.Inactive), r.ActivityDays)
	if pasteLink != "" {
		header += "\nFull list: " + pasteLink
	}
	messages := []string{header}
	for _, chunk := range utils.ChunkLines(r.Inactive, utils.CodeBlockBudget) {
		messages = append(messages, utils.CodeBlock(chunk))
	}
	return messages
}

// PasteContent is the newline-joined inactive list.
func (r *Report) PasteContent() string {
	return strings.Join(r.Inactive, "\n")
}
