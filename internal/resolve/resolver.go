// Package resolve picks a winner between competing values for the same
// logical field under a deterministic policy, and records every losing
// update in the profile's conflict log.
package resolve

import (
	"time"

	"github.com/caseflow-app/client-aggregator/internal/entity"
)

// Candidate is one incoming value for a field, already normalized.
type Candidate struct {
	Field      string
	Value      string
	Normalized string
	DocID      string
	Time       *time.Time // nil = unknown recency
	Seq        int        // process-order ingest counter, final tiebreak
	Confidence *float32
}

// Outcome is the result of resolving one candidate against the current
// record. Conflict is nil only when there was no existing record.
type Outcome struct {
	Record   entity.FieldRecord
	Conflict *entity.Conflict
	Replaced bool
}

// Resolve applies the tiebreak cascade:
//  1. no existing record: incoming wins,
//  2. strictly more recent source timestamp wins,
//  3. equal timestamps: the earlier-admitted ingest (lower Seq) wins;
//     an older timestamp always loses,
//  4. a parsable timestamp always beats an unparsable one; when both
//     are unparsable the later ingest (higher Seq) wins.
//
// A losing update is never silently dropped: every resolution against
// an existing record emits a conflict entry, with identical_value
// distinguishing no-ops from real overwrites.
func Resolve(existing *entity.FieldRecord, in Candidate) Outcome {
	record := entity.FieldRecord{
		Field:       in.Field,
		Value:       in.Value,
		Normalized:  in.Normalized,
		SourceDocID: in.DocID,
		SourceTime:  in.Time,
		Seq:         in.Seq,
		Confidence:  in.Confidence,
	}

	if existing == nil {
		return Outcome{Record: record, Replaced: true}
	}

	incomingWins := NewerThan(in.Time, in.Seq, existing.SourceTime, existing.Seq)

	kind := entity.ConflictOverwritten
	if !incomingWins {
		kind = entity.ConflictRejectedStale
	}
	if in.Normalized == existing.Normalized {
		kind = entity.ConflictIdenticalValue
	}

	if incomingWins {
		return Outcome{
			Record:   record,
			Replaced: true,
			Conflict: &entity.Conflict{
				Kind:        kind,
				Field:       in.Field,
				WinnerValue: in.Value,
				WinnerDocID: in.DocID,
				LoserValue:  existing.Value,
				LoserDocID:  existing.SourceDocID,
			},
		}
	}
	return Outcome{
		Record:   *existing,
		Replaced: false,
		Conflict: &entity.Conflict{
			Kind:        kind,
			Field:       in.Field,
			WinnerValue: existing.Value,
			WinnerDocID: existing.SourceDocID,
			LoserValue:  in.Value,
			LoserDocID:  in.DocID,
		},
	}
}

// NewerThan reports whether (t, seq) should replace (ot, oseq) under the
// tiebreak cascade. Shared with the salary aggregator so both kinds of
// recurring records replace under one policy. Equal timestamps are
// decided by admission order (lower Seq wins), not by the order the
// records happen to reach the aggregator, so concurrent ingest stays
// deterministic.
func NewerThan(t *time.Time, seq int, ot *time.Time, oseq int) bool {
	switch {
	case t != nil && ot != nil:
		if t.Equal(*ot) {
			return seq < oseq
		}
		return t.After(*ot)
	case t != nil:
		return true
	case ot != nil:
		return false
	default:
		return seq > oseq
	}
}
