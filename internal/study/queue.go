package study

import (
	"fmt"

	"go.uber.org/zap"
)

// Advance moves the cursor forward by one, first splicing in every pending
// recheck whose target index equals the new cursor position.
//
// Matching is exact: an entry whose target index has already been passed is
// never inserted. Advancing past the end keeps incrementing the cursor.
func (e *Engine) Advance() {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.Cursor + 1

	var due []PendingRecheck
	kept := e.state.Pending[:0:0]
	for _, p := range e.state.Pending {
		if p.TargetIndex == next {
			due = append(due, p)
		} else {
			kept = append(kept, p)
		}
	}

	if len(due) > 0 {
		queue := e.state.Queue
		for _, p := range due {
			orig, ok := findOriginal(queue, p.WordID)
			if !ok {
				e.logger.Warn("recheck word not in queue", zap.String("word_id", p.WordID))
				continue
			}
			copyItem := orig
			copyItem.Sentences = append([]string(nil), orig.Sentences...)
			copyItem.IsRecheck = true
			copyItem.RecheckCount = p.RecheckCount + 1
			copyItem.InstanceKey = fmt.Sprintf("%s-recheck-%s", orig.WordID, e.newKey())
			queue = insertAt(queue, next, copyItem)
			e.rechecks++

			e.logger.Debug("recheck inserted",
				zap.String("session_id", e.state.SessionID),
				zap.String("word_id", p.WordID),
				zap.Int("target_index", next),
				zap.Int("recheck_count", copyItem.RecheckCount))
		}
		e.state.Queue = queue
		e.state.Pending = kept
	}

	e.state.Cursor = next
	if e.phase == PhaseActive && e.completeLocked() {
		e.phase = PhaseComplete
		e.logger.Info("session complete",
			zap.String("session_id", e.state.SessionID),
			zap.Int("correct", e.state.CorrectCount),
			zap.Int("incorrect", e.state.IncorrectCount),
			zap.Int("skipped", e.state.SkipCount))
	}
}

// Previous moves the cursor back by one. It is a no-op at the first item.
func (e *Engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Cursor > 0 {
		e.state.Cursor--
		if e.phase == PhaseComplete && !e.completeLocked() {
			e.phase = PhaseActive
		}
	}
}

// ScheduleRecheck queues wordID for re-insertion RecheckDelay positions after
// the cursor, clamped to the current queue length. It returns false and does
// nothing when there is no item under the cursor.
//
// A word that already has a pending entry gets a second one.
func (e *Engine) ScheduleRecheck(wordID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.currentLocked(); !ok {
		return false
	}
	e.scheduleLocked(wordID)
	return true
}

func (e *Engine) scheduleLocked(wordID string) {
	target := min(e.state.Cursor+e.delay, len(e.state.Queue))
	e.state.Pending = append(e.state.Pending, PendingRecheck{
		WordID:      wordID,
		TargetIndex: target,
	})
	e.logger.Debug("recheck scheduled",
		zap.String("session_id", e.state.SessionID),
		zap.String("word_id", wordID),
		zap.Int("cursor", e.state.Cursor),
		zap.Int("target_index", target))
}

// findOriginal returns the first non-recheck item for wordID, falling back to
// the first item with that word ID.
func findOriginal(queue []Item, wordID string) (Item, bool) {
	fallback := -1
	for i, it := range queue {
		if it.WordID != wordID {
			continue
		}
		if !it.IsRecheck {
			return it, true
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback >= 0 {
		return queue[fallback], true
	}
	return Item{}, false
}

func insertAt(queue []Item, idx int, it Item) []Item {
	if idx >= len(queue) {
		return append(queue, it)
	}
	queue = append(queue, Item{})
	copy(queue[idx+1:], queue[idx:])
	queue[idx] = it
	return queue
}
