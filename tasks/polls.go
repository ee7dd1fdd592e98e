package tasks

import (
	"context"
	"corp-bot/api"
	"corp-bot/model"
	"corp-bot/tasks/activity"
	"errors"
	"log"
)

// Roster is the roster endpoint pair polled by the scheduler.
type Roster interface {
	Sync(ctx context.Context) model.Result
	Apps(ctx context.Context) model.Result
}

// Paster uploads the full inactive list.
type Paster interface {
	Upload(ctx context.Context, content string) (string, error)
}

// CheckApps polls the application queue.
func CheckApps(roster Roster) func(ctx context.Context) model.Result {
	return func(ctx context.Context) model.Result {
		log.Println("Scheduler: check_apps()")
		return roster.Apps(ctx)
	}
}

// SyncRoster polls the roster sync endpoint.
func SyncRoster(roster Roster) func(ctx context.Context) model.Result {
	return func(ctx context.Context) model.Result {
		log.Println("Scheduler: sync()")
		return roster.Sync(ctx)
	}
}

// GenerateActivityReport runs one audit cycle and renders it. paster may be nil.
func GenerateActivityReport(ctx context.Context, auditor *activity.Auditor, paster Paster) model.Result {
	report, err := auditor.Run(ctx)
	if err != nil {
		return model.Failed(err)
	}

	link := ""
	if paster != nil && len(report.Inactive) > 0 {
		link, err = paster.Upload(ctx, report.PasteContent())
		if err != nil {
			log.Printf("Paste upload failed, posting without link: %v", err)
			link = ""
		} else {
			log.Printf("Paste link is %s", link)
		}
	}
	result := model.Ok(report.Messages(link)...)
	if report.Skipped > 0 {
		result = result.WithWarning("%d main(s) were skipped because a lookup failed, see the bot log", report.Skipped)
	}
	return result
}

// CheckActivity runs the killboard audit on the scheduler.
func CheckActivity(auditor *activity.Auditor, paster Paster) func(ctx context.Context) model.Result {
	return func(ctx context.Context) model.Result {
		log.Println("Scheduler: killboard()")
		return GenerateActivityReport(ctx, auditor, paster)
	}
}

// NewPaster returns the paste client as a Paster, or nil when pasting is not configured.
func NewPaster(c *api.PasteClient) Paster {
	if c == nil {
		return nil
	}
	return c
}

// Describe renders a result for a command reply, using emptyMessage when
// there is nothing to report.
func Describe(result model.Result, emptyMessage string) []string {
	switch result.Kind {
	case model.ResultOk:
		return result.Messages
	case model.ResultEmpty:
		return []string{emptyMessage}
	default:
		if errors.Is(result.Err, activity.ErrNoMains) {
			return []string{"No mains found in the member database."}
		}
		return []string{"An error occurred"}
	}
}
