package detector_test

import (
	"context"
	"errors"
	"time"

	"github.com/cardwatch/amlengine/internal/aml"
)

var errStoreDown = errors.New("window store unreachable")

// failingStore simulates a window-store outage.
type failingStore struct{}

func (failingStore) Append(context.Context, string, aml.WindowEntry, time.Duration) error {
	return errStoreDown
}

func (failingStore) RangeSince(context.Context, string, int64) ([]aml.WindowEntry, error) {
	return nil, errStoreDown
}

// fakeHistory serves canned records for the rapid-movement detector.
type fakeHistory struct {
	records []aml.HistoryRecord
	err     error
}

func (f fakeHistory) RecentTransactions(_ context.Context, _ string, since time.Time) ([]aml.HistoryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []aml.HistoryRecord
	for _, r := range f.records {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}
