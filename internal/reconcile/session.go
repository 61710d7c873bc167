package reconcile

import (
	"context"

	"notevault-be/internal/entity"
	"notevault-be/internal/repository/unitofwork"
)

// ProgressFunc receives incremental progress: the stage name, items done,
// and items total. Implementations must be cheap; it is called per record.
type ProgressFunc func(stage string, done, total int)

const (
	StageCategories = "categories"
	StageNotes      = "notes"
	StageRekey      = "rekey"
)

func noProgress(string, int, int) {}

// Session is the ephemeral state of one merge call: the incoming-to-live
// category id map built by the category merge and consumed by the note
// merge, plus the id allocators used when a fresh id must be minted.
// Allocators are seeded once, from one greater than the highest id present
// in the store, so mints never collide within the session. A session is
// never reused across merges.
type Session struct {
	categoryMap    map[int64]int64
	nextCategoryId int64
	nextNoteId     int64
}

// NewSession seeds a session from the current store content.
func NewSession(ctx context.Context, uow unitofwork.UnitOfWork) (*Session, error) {
	maxCategory, err := uow.CategoryRepository().MaxId(ctx)
	if err != nil {
		return nil, err
	}
	maxNote, err := uow.NoteRepository().MaxId(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{
		categoryMap:    map[int64]int64{entity.UnfiledCategoryId: entity.UnfiledCategoryId},
		nextCategoryId: maxCategory + 1,
		nextNoteId:     maxNote + 1,
	}, nil
}

// RecordCategory registers the live id assigned to an incoming category id.
func (s *Session) RecordCategory(incomingId, liveId int64) {
	s.categoryMap[incomingId] = liveId
}

// MapCategory resolves an incoming category reference. Unknown incoming
// categories land in Unfiled.
func (s *Session) MapCategory(incomingId int64) int64 {
	if liveId, ok := s.categoryMap[incomingId]; ok {
		return liveId
	}
	return entity.UnfiledCategoryId
}

// CategoryMap returns a copy of the identity map built so far.
func (s *Session) CategoryMap() map[int64]int64 {
	out := make(map[int64]int64, len(s.categoryMap))
	for k, v := range s.categoryMap {
		out[k] = v
	}
	return out
}

func (s *Session) MintCategoryId() int64 {
	id := s.nextCategoryId
	s.nextCategoryId++
	return id
}

func (s *Session) MintNoteId() int64 {
	id := s.nextNoteId
	s.nextNoteId++
	return id
}
