package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

// Discord rejects embed fields longer than this.
const maxFieldLength = 1024

// PostBulletin posts an overview of every running event. Nothing is posted
// when no event is running.
func (e *engine) PostBulletin(ctx context.Context) error {
	now := e.now()

	competitions, err := e.competitionRepo.GetRunning(ctx, now)
	if err != nil {
		return err
	}

	raffles, err := e.raffleRepo.GetOpen(ctx, now)
	if err != nil {
		return err
	}

	giveaways, err := e.giveawayRepo.GetRunning(ctx, now)
	if err != nil {
		return err
	}

	activities, err := e.activityRepo.GetUpcoming(ctx, now)
	if err != nil {
		return err
	}

	if len(competitions)+len(raffles)+len(giveaways)+len(activities) == 0 {
		xcontext.Logger(ctx).Debugf("No running event, skip the bulletin")
		return nil
	}

	a := e.writer.Write(ctx, announce.Bulletin, model.BulletinDetails{
		Competitions: len(competitions),
		Raffles:      len(raffles),
		Giveaways:    len(giveaways),
		Activities:   len(activities),
	})

	lines := []string{}
	for _, c := range competitions {
		lines = append(lines, fmt.Sprintf("**%s** ends %s", c.Title, announce.RelativeTime(c.EndsAt)))
	}
	a.Fields = appendField(a.Fields, "Skill of the Week", lines)

	lines = []string{}
	for _, r := range raffles {
		lines = append(lines, fmt.Sprintf("**%s** ends %s", r.Prize, announce.RelativeTime(r.EndsAt)))
	}
	a.Fields = appendField(a.Fields, "Raffles", lines)

	lines = []string{}
	for _, g := range giveaways {
		lines = append(lines, fmt.Sprintf("**%s** ends %s", g.Prize, announce.RelativeTime(g.EndsAt)))
	}
	a.Fields = appendField(a.Fields, "Giveaways", lines)

	lines = []string{}
	for _, act := range activities {
		lines = append(lines, fmt.Sprintf("**%s** starts %s", act.Title, announce.RelativeTime(act.StartsAt)))
	}
	a.Fields = appendField(a.Fields, "Upcoming Events", lines)

	if _, err := e.dispatcher.PostAnnouncement(ctx, xcontext.Configs(ctx).Channels.Announcements, a); err != nil {
		e.notificationFailed(ctx, KindBulletin, err)
		return err
	}

	return nil
}

func appendField(fields []model.AnnouncementField, name string, lines []string) []model.AnnouncementField {
	if len(lines) == 0 {
		return fields
	}

	value := strings.Join(lines, "\n")
	if runes := []rune(value); len(runes) > maxFieldLength {
		value = string(runes[:maxFieldLength-3]) + "..."
	}

	return append(fields, model.AnnouncementField{Name: name, Value: value})
}
