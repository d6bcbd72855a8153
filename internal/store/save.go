package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mwhitfield/gantry/internal/project"
)

// Meta keys in the meta table.
const (
	metaStartDate       = "start_date"
	metaProjectCalendar = "project_calendar"
	metaRevision        = "revision"
	metaSavedAt         = "saved_at"
)

// SaveProject writes a full snapshot of the project's authoritative
// state in one transaction: existing rows are wiped and the wire data
// rewritten. Readers in other connections keep seeing the previous
// snapshot until the transaction commits (WAL).
func (s *Store) SaveProject(ctx context.Context, data project.ProjectData, revision int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	defer tx.Rollback()

	// Child tables first, foreign keys point upward.
	for _, table := range []string{"assignments", "dependencies", "calendar_intervals", "resources", "events", "calendars", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("save project: clear %s: %w", table, err)
		}
	}

	meta := map[string]string{
		metaStartDate:       data.StartDate,
		metaProjectCalendar: data.ProjectCalendar,
		metaRevision:        strconv.FormatInt(revision, 10),
		metaSavedAt:         s.now().UTC().Format(time.RFC3339),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("save project: meta %s: %w", key, err)
		}
	}

	for seq, cd := range data.Calendars {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO calendars (id, name, unspecified_non_working, seq)
			VALUES (?, ?, ?, ?)
		`, cd.ID, cd.Name, boolToInt(cd.Unworking), seq); err != nil {
			return fmt.Errorf("save project: calendar %s: %w", cd.ID, err)
		}
		for ivSeq, iv := range cd.Intervals {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO calendar_intervals (calendar_id, seq, rule, start_at, end_at, working)
				VALUES (?, ?, ?, ?, ?, ?)
			`, cd.ID, ivSeq, iv.Rule, iv.Start, iv.End, boolToInt(iv.Working)); err != nil {
				return fmt.Errorf("save project: calendar %s interval %d: %w", cd.ID, ivSeq, err)
			}
		}
	}

	for seq, ed := range data.Events {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events
			(id, name, start_date, end_date, duration, constraint_type, constraint_date, manually_scheduled, calendar_id, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, ed.ID, ed.Name, ed.StartDate, ed.EndDate, ed.Duration,
			ed.ConstraintType, ed.ConstraintDate, boolToInt(ed.ManuallyScheduled), ed.Calendar, seq); err != nil {
			return fmt.Errorf("save project: event %s: %w", ed.ID, err)
		}
	}

	for seq, dd := range data.Dependencies {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dependencies
			(id, from_event, to_event, type, lag, calendar_source, inactive, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, dd.ID, dd.From, dd.To, dd.Type, dd.Lag, dd.CalendarSource, boolToInt(dd.Inactive), seq); err != nil {
			return fmt.Errorf("save project: dependency %s: %w", dd.ID, err)
		}
	}

	for seq, rd := range data.Resources {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO resources (id, name, calendar_id, seq)
			VALUES (?, ?, ?, ?)
		`, rd.ID, rd.Name, rd.Calendar, seq); err != nil {
			return fmt.Errorf("save project: resource %s: %w", rd.ID, err)
		}
	}

	for seq, ad := range data.Assignments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assignments (id, event_id, resource_id, units, seq)
			VALUES (?, ?, ?, ?, ?)
		`, ad.ID, ad.Event, ad.Resource, ad.Units, seq); err != nil {
			return fmt.Errorf("save project: assignment %s: %w", ad.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
