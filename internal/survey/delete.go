package survey

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"abxsurvey/internal/logging"
	"abxsurvey/internal/manifest"
)

// DeleteOptions tunes Delete.
type DeleteOptions struct {
	// Force deletes surveys whose forms already have HITs. The HITs stay on
	// the marketplace.
	Force bool
}

// Removal reports what Delete cleaned up.
type Removal struct {
	SurveyID  string
	Objects   int
	Documents int
}

// Delete removes a survey's uploaded objects, its rendered survey documents
// and its manifest record.
func (s *Service) Delete(ctx context.Context, id string, opts DeleteOptions) (Removal, error) {
	var removal Removal
	err := s.withLock(func() error {
		var err error
		removal, err = s.delete(ctx, id, opts)
		return err
	})
	return removal, err
}

func (s *Service) delete(ctx context.Context, id string, opts DeleteOptions) (Removal, error) {
	removal := Removal{SurveyID: id}
	record, err := s.Survey(ctx, id)
	if err != nil {
		return removal, err
	}
	if live := publishedCount(record); live > 0 && !opts.Force {
		return removal, Wrap(ErrConfiguration, "delete", "published forms",
			fmt.Sprintf("survey %s has %d HITs; pass force to delete it anyway", id, live), nil)
	}
	if s.stores == nil {
		return removal, Wrap(ErrConfiguration, "delete", "storage", "no object store configured", nil)
	}
	store, err := s.stores(record.Bucket, record.ID)
	if err != nil {
		return removal, Wrap(ErrConfiguration, "delete", "open storage", record.Bucket, err)
	}
	ctx = logging.WithSurveyID(ctx, id)
	logger := logging.WithContext(ctx, s.logger)

	for _, key := range objectKeys(record) {
		if err := checkContext(ctx, "delete"); err != nil {
			return removal, err
		}
		exists, err := store.Exists(ctx, key)
		if err != nil {
			return removal, Wrap(ErrExternal, "delete", "stat object", key, err)
		}
		if !exists {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			return removal, Wrap(ErrExternal, "delete", "remove object", key, err)
		}
		removal.Objects++
	}

	for _, f := range record.Forms {
		err := os.Remove(f.XMLPath)
		switch {
		case err == nil:
			removal.Documents++
		case errors.Is(err, os.ErrNotExist):
		default:
			return removal, Wrap(ErrConfiguration, "delete", "remove survey document", f.XMLPath, err)
		}
	}

	if err := s.manifest.Delete(ctx, id); err != nil {
		return removal, Wrap(ErrExternal, "delete", "manifest", "", err)
	}
	logger.Info("survey deleted",
		logging.Int("objects", removal.Objects),
		logging.Int("documents", removal.Documents),
	)
	return removal, nil
}

func publishedCount(record *manifest.Survey) int {
	n := 0
	for _, f := range record.Forms {
		if f.Published() {
			n++
		}
	}
	return n
}

// objectKeys lists every ciphered object name the survey's forms reference.
func objectKeys(record *manifest.Survey) []string {
	seen := map[string]struct{}{}
	for _, f := range record.Forms {
		for _, q := range f.Questions {
			for _, key := range []string{q.CipherA, q.CipherB, q.CipherX} {
				seen[key] = struct{}{}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
