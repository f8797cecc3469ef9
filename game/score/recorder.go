package score

import (
	"fmt"
	"log"
	"sync"
)

// Recorder saves scores in the background. Failures are logged and reported to
// the caller's notify function; they never reach gameplay.
type Recorder struct {
	store Store
	wg    sync.WaitGroup
}

// NewRecorder creates a recorder over store. A nil store records nothing.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Store returns the underlying store
func (r *Recorder) Store() Store {
	return r.store
}

// Record saves entry asynchronously. notify, when non-nil, is called once with the
// outcome: a nil error on success.
func (r *Recorder) Record(entry Entry, notify func(Entry, int, error)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		saved, rank, err := r.save(entry)
		if err != nil {
			log.Printf("Warning: Failed to record score for %s: %v", entry.PlayerName, err)
		}
		if notify != nil {
			notify(saved, rank, err)
		}
	}()
}

// RecordSync saves entry and returns the outcome
func (r *Recorder) RecordSync(entry Entry) (Entry, int, error) {
	return r.save(entry)
}

func (r *Recorder) save(entry Entry) (Entry, int, error) {
	if r == nil || r.store == nil {
		return Entry{}, 0, fmt.Errorf("%w: no score store configured", ErrScoreNotRecorded)
	}
	saved, rank, err := r.store.Add(entry)
	if err != nil {
		return Entry{}, 0, fmt.Errorf("%w: %v", ErrScoreNotRecorded, err)
	}
	return saved, rank, nil
}

// Wait blocks until pending recordings finish
func (r *Recorder) Wait() {
	r.wg.Wait()
}
