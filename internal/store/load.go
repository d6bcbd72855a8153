package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mwhitfield/gantry/internal/project"
)

// LoadProject reads the stored snapshot back into wire form, plus the
// revision it was saved at. An empty database yields zero-valued data
// and revision 0.
func (s *Store) LoadProject(ctx context.Context) (project.ProjectData, int64, error) {
	var data project.ProjectData

	meta, err := s.readMeta(ctx)
	if err != nil {
		return data, 0, fmt.Errorf("load project: %w", err)
	}
	data.StartDate = meta[metaStartDate]
	data.ProjectCalendar = meta[metaProjectCalendar]
	var revision int64
	if v := meta[metaRevision]; v != "" {
		if revision, err = strconv.ParseInt(v, 10, 64); err != nil {
			return data, 0, fmt.Errorf("load project: revision: %w", err)
		}
	}

	if data.Calendars, err = s.readCalendars(ctx); err != nil {
		return data, 0, fmt.Errorf("load project: %w", err)
	}
	if data.Events, err = s.readEvents(ctx); err != nil {
		return data, 0, fmt.Errorf("load project: %w", err)
	}
	if data.Dependencies, err = s.readDependencies(ctx); err != nil {
		return data, 0, fmt.Errorf("load project: %w", err)
	}
	if data.Resources, err = s.readResources(ctx); err != nil {
		return data, 0, fmt.Errorf("load project: %w", err)
	}
	if data.Assignments, err = s.readAssignments(ctx); err != nil {
		return data, 0, fmt.Errorf("load project: %w", err)
	}
	return data, revision, nil
}

// SavedAt returns when the current snapshot was written. The zero time
// means no snapshot exists.
func (s *Store) SavedAt(ctx context.Context) (time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, metaSavedAt).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("saved at: %w", err)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("saved at: %w", err)
	}
	return t, nil
}

func (s *Store) readMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("meta: %w", err)
	}
	defer rows.Close()
	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("meta: %w", err)
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

func (s *Store) readCalendars(ctx context.Context) ([]project.CalendarData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unspecified_non_working FROM calendars ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("calendars: %w", err)
	}
	defer rows.Close()

	var out []project.CalendarData
	for rows.Next() {
		var cd project.CalendarData
		var unworking int
		if err := rows.Scan(&cd.ID, &cd.Name, &unworking); err != nil {
			return nil, fmt.Errorf("calendars: %w", err)
		}
		cd.Unworking = unworking != 0
		out = append(out, cd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("calendars: %w", err)
	}

	for i := range out {
		ivs, err := s.readIntervals(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Intervals = ivs
	}
	return out, nil
}

func (s *Store) readIntervals(ctx context.Context, calendarID string) ([]project.IntervalData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule, start_at, end_at, working
		FROM calendar_intervals WHERE calendar_id = ? ORDER BY seq
	`, calendarID)
	if err != nil {
		return nil, fmt.Errorf("calendar %s intervals: %w", calendarID, err)
	}
	defer rows.Close()

	var out []project.IntervalData
	for rows.Next() {
		var iv project.IntervalData
		var working int
		if err := rows.Scan(&iv.Rule, &iv.Start, &iv.End, &working); err != nil {
			return nil, fmt.Errorf("calendar %s intervals: %w", calendarID, err)
		}
		iv.Working = working != 0
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (s *Store) readEvents(ctx context.Context) ([]project.EventData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, start_date, end_date, duration,
		       constraint_type, constraint_date, manually_scheduled, calendar_id
		FROM events ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	defer rows.Close()

	var out []project.EventData
	for rows.Next() {
		var ed project.EventData
		var manual int
		if err := rows.Scan(&ed.ID, &ed.Name, &ed.StartDate, &ed.EndDate, &ed.Duration,
			&ed.ConstraintType, &ed.ConstraintDate, &manual, &ed.Calendar); err != nil {
			return nil, fmt.Errorf("events: %w", err)
		}
		ed.ManuallyScheduled = manual != 0
		out = append(out, ed)
	}
	return out, rows.Err()
}

func (s *Store) readDependencies(ctx context.Context) ([]project.DependencyData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_event, to_event, type, lag, calendar_source, inactive
		FROM dependencies ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("dependencies: %w", err)
	}
	defer rows.Close()

	var out []project.DependencyData
	for rows.Next() {
		var dd project.DependencyData
		var inactive int
		if err := rows.Scan(&dd.ID, &dd.From, &dd.To, &dd.Type, &dd.Lag, &dd.CalendarSource, &inactive); err != nil {
			return nil, fmt.Errorf("dependencies: %w", err)
		}
		dd.Inactive = inactive != 0
		out = append(out, dd)
	}
	return out, rows.Err()
}

func (s *Store) readResources(ctx context.Context) ([]project.ResourceData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, calendar_id FROM resources ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("resources: %w", err)
	}
	defer rows.Close()

	var out []project.ResourceData
	for rows.Next() {
		var rd project.ResourceData
		if err := rows.Scan(&rd.ID, &rd.Name, &rd.Calendar); err != nil {
			return nil, fmt.Errorf("resources: %w", err)
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (s *Store) readAssignments(ctx context.Context) ([]project.AssignmentData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, resource_id, units FROM assignments ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("assignments: %w", err)
	}
	defer rows.Close()

	var out []project.AssignmentData
	for rows.Next() {
		var ad project.AssignmentData
		if err := rows.Scan(&ad.ID, &ad.Event, &ad.Resource, &ad.Units); err != nil {
			return nil, fmt.Errorf("assignments: %w", err)
		}
		out = append(out, ad)
	}
	return out, rows.Err()
}
