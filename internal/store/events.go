package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().
		Insert(tableSessionEvents).
		Columns("sequence", "timestamp", "session_id", "collection_id", "mode", "action",
			"words_served", "correct", "incorrect", "skipped", "rechecks", "duration_secs").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.CollectionID, data.Mode, data.Action,
			data.WordsServed, data.Correct, data.Incorrect, data.Skipped, data.Rechecks, data.DurationSecs).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().
		Insert(tableAnswerEvents).
		Columns("sequence", "timestamp", "session_id", "collection_id", "item_id", "word_id",
			"word", "user_input", "skip", "correct", "status", "recheck").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.CollectionID, data.ItemID, data.WordID,
			data.Word, data.UserInput, data.Skip, data.Correct, data.Status, data.Recheck).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

// eventSelector applies QueryOpts to a select over an event table.
func eventSelector(table string, opts QueryOpts, columns ...string) *entsql.Selector {
	sel := builder().Select(columns...).From(entsql.Table(table))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.CollectionID != "" {
		preds = append(preds, entsql.EQ("collection_id", opts.CollectionID))
	}
	if opts.SessionID != "" {
		preds = append(preds, entsql.EQ("session_id", opts.SessionID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}

	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	query, args := eventSelector(tableSessionEvents, opts,
		"sequence", "timestamp", "session_id", "collection_id", "mode", "action",
		"words_served", "correct", "incorrect", "skipped", "rechecks", "duration_secs",
	).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		var e SessionEvent
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.SessionID, &e.CollectionID, &e.Mode, &e.Action,
			&e.WordsServed, &e.Correct, &e.Incorrect, &e.Skipped, &e.Rechecks, &e.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) QueryAnswerEvents(ctx context.Context, opts QueryOpts) ([]AnswerEvent, error) {
	query, args := eventSelector(tableAnswerEvents, opts,
		"sequence", "timestamp", "session_id", "collection_id", "item_id", "word_id",
		"word", "user_input", "skip", "correct", "status", "recheck",
	).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var events []AnswerEvent
	for rows.Next() {
		var e AnswerEvent
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.SessionID, &e.CollectionID, &e.ItemID, &e.WordID,
			&e.Word, &e.UserInput, &e.Skip, &e.Correct, &e.Status, &e.Recheck); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) CollectionStats(ctx context.Context) ([]CollectionStat, error) {
	events, err := r.QueryAnswerEvents(ctx, QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("query collection stats: %w", err)
	}

	byID := map[string]*CollectionStat{}
	sessions := map[string]map[string]bool{}
	for _, e := range events {
		st, ok := byID[e.CollectionID]
		if !ok {
			st = &CollectionStat{CollectionID: e.CollectionID}
			byID[e.CollectionID] = st
			sessions[e.CollectionID] = map[string]bool{}
		}
		st.Answers++
		switch {
		case e.Skip:
			st.Skipped++
		case e.Correct:
			st.Correct++
		}
		sessions[e.CollectionID][e.SessionID] = true
	}

	stats := make([]CollectionStat, 0, len(byID))
	for id, st := range byID {
		st.Sessions = len(sessions[id])
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].CollectionID < stats[j].CollectionID })
	return stats, nil
}
