// Package repository holds the append-only registry of completed interviews.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
	"github.com/AVSAkash/interview-assistant/pkg/metrics"
)

// SortField selects the dashboard ordering.
type SortField string

// Sort fields.
const (
	SortByDate  SortField = "date"
	SortByName  SortField = "name"
	SortByScore SortField = "score"
)

// Order is the sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Query describes a registry listing. The zero value lists newest first.
type Query struct {
	Sort  SortField
	Order Order
}

// ParseQuery validates user supplied sort parameters. Empty values take the
// defaults: date, descending.
func ParseQuery(sortField, order string) (Query, error) {
	q := Query{Sort: SortByDate, Order: Desc}
	switch SortField(strings.ToLower(strings.TrimSpace(sortField))) {
	case "", SortByDate:
	case SortByName:
		q.Sort = SortByName
	case SortByScore:
		q.Sort = SortByScore
	default:
		return Query{}, fmt.Errorf("%w: sort %q", ErrInvalidQuery, sortField)
	}
	switch Order(strings.ToLower(strings.TrimSpace(order))) {
	case "", Desc:
	case Asc:
		q.Order = Asc
	default:
		return Query{}, fmt.Errorf("%w: order %q", ErrInvalidQuery, order)
	}
	return q, nil
}

// Entry is a listed record with its standing among all candidates by final
// score. Equal scores share a rank and ranks are consecutive.
type Entry struct {
	Rank   int
	Record interview.CandidateRecord
}

// snapshot is an immutable view published after every write.
type snapshot struct {
	records  []interview.CandidateRecord // newest first
	rankByID map[string]int
}

// Registry is the append-only, newest-first collection of candidate records.
// Writers serialize on a mutex; readers use the last published snapshot.
type Registry struct {
	mu      sync.Mutex
	records []interview.CandidateRecord
	byID    map[string]struct{}

	snap atomic.Pointer[snapshot]
}

// NewRegistry returns a registry seeded with records, which must already be
// ordered newest first as persisted.
func NewRegistry(records ...interview.CandidateRecord) (*Registry, error) {
	r := &Registry{byID: make(map[string]struct{}, len(records))}
	for _, rec := range records {
		if err := r.check(rec); err != nil {
			return nil, err
		}
		r.byID[rec.ID] = struct{}{}
		r.records = append(r.records, rec)
	}
	r.publish()
	return r, nil
}

func (r *Registry) check(rec interview.CandidateRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if _, ok := r.byID[rec.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	return nil
}

// Prepend adds rec as the newest record.
func (r *Registry) Prepend(_ context.Context, rec interview.CandidateRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(rec); err != nil {
		return err
	}
	if r.byID == nil {
		r.byID = make(map[string]struct{})
	}
	r.byID[rec.ID] = struct{}{}
	r.records = append([]interview.CandidateRecord{rec}, r.records...)
	r.publish()
	return nil
}

// Remove drops the record with id. It only exists to undo a Prepend whose
// persistence failed.
func (r *Registry) Remove(_ context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	out := make([]interview.CandidateRecord, 0, len(r.records)-1)
	for _, rec := range r.records {
		if rec.ID != id {
			out = append(out, rec)
		}
	}
	r.records = out
	r.publish()
	return true
}

// publish rebuilds the read snapshot (assumes lock is held or no readers yet).
func (r *Registry) publish() {
	records := append([]interview.CandidateRecord(nil), r.records...)
	r.snap.Store(&snapshot{records: records, rankByID: ranks(records)})
	metrics.UpdateCandidatesTotal(len(records))
}

func (r *Registry) view() *snapshot {
	if s := r.snap.Load(); s != nil {
		return s
	}
	return &snapshot{}
}

// Get returns the record with id.
func (r *Registry) Get(_ context.Context, id string) (Entry, error) {
	s := r.view()
	for _, rec := range s.records {
		if rec.ID == id {
			return Entry{Rank: s.rankByID[id], Record: rec}, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns all records ordered by q.
func (r *Registry) List(_ context.Context, q Query) []Entry {
	s := r.view()
	out := make([]Entry, len(s.records))
	for i, rec := range s.records {
		out[i] = Entry{Rank: s.rankByID[rec.ID], Record: rec}
	}
	sortEntries(out, q)
	return out
}

// Records returns a newest-first copy of every record.
func (r *Registry) Records() []interview.CandidateRecord {
	return append([]interview.CandidateRecord(nil), r.view().records...)
}

// Count returns the number of records.
func (r *Registry) Count(_ context.Context) int {
	return len(r.view().records)
}

// MarshalJSON encodes the registry as its newest-first array.
func (r *Registry) MarshalJSON() ([]byte, error) {
	records := r.Records()
	if records == nil {
		records = []interview.CandidateRecord{}
	}
	return json.Marshal(records)
}

// UnmarshalJSON replaces the registry contents with a newest-first array.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var records []interview.CandidateRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	fresh, err := NewRegistry(records...)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = fresh.records
	r.byID = fresh.byID
	r.publish()
	return nil
}

// sortEntries orders entries by q. The input is newest first and the sort is
// stable, so ties keep newest first.
func sortEntries(entries []Entry, q Query) {
	sign := 1
	if q.Order == Asc {
		sign = -1
	}
	switch q.Sort {
	case SortByName:
		sort.SliceStable(entries, func(i, j int) bool {
			c := strings.Compare(nameKey(entries[i].Record), nameKey(entries[j].Record))
			return sign*c > 0
		})
	case SortByScore:
		sort.SliceStable(entries, func(i, j int) bool {
			return sign*(entries[i].Record.FinalScore-entries[j].Record.FinalScore) > 0
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i].Record.Date, entries[j].Record.Date
			if sign > 0 {
				return a.After(b)
			}
			return a.Before(b)
		})
	}
}

func nameKey(rec interview.CandidateRecord) string {
	return strings.ToLower(strings.TrimSpace(rec.Candidate.Name))
}

// ranks assigns dense ranks by final score, highest first.
func ranks(records []interview.CandidateRecord) map[string]int {
	scores := make([]int, 0, len(records))
	seen := make(map[int]struct{}, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.FinalScore]; !ok {
			seen[rec.FinalScore] = struct{}{}
			scores = append(scores, rec.FinalScore)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))
	rankOf := make(map[int]int, len(scores))
	for i, s := range scores {
		rankOf[s] = i + 1
	}
	out := make(map[string]int, len(records))
	for _, rec := range records {
		out[rec.ID] = rankOf[rec.FinalScore]
	}
	return out
}
