package survey

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"abxsurvey/internal/logging"
	"abxsurvey/internal/manifest"
	"abxsurvey/internal/marketplace"
)

// Quote is the cost summary shown before publishing.
type Quote struct {
	SurveyID string
	Forms    int
	Coverage int
	Reward   string
	Cost     float64
	// Balance is empty when the marketplace could not be queried.
	Balance string
}

// PublishedForm reports the HIT created for one form.
type PublishedForm struct {
	Index      int
	HITID      string
	GroupID    string
	PreviewURL string
}

// Quote computes the charge for publishing every unpublished form of record
// from the reward and coverage saved with it, and fetches the available balance.
func (s *Service) Quote(ctx context.Context, record *manifest.Survey) (Quote, error) {
	pending := len(record.Forms) - publishedCount(record)
	reward, err := strconv.ParseFloat(record.Reward, 64)
	if err != nil || reward <= 0 {
		return Quote{}, Wrap(ErrConfiguration, "quote", "reward",
			fmt.Sprintf("survey %s has invalid reward %q", record.ID, record.Reward), err)
	}
	q := Quote{
		SurveyID: record.ID,
		Forms:    pending,
		Coverage: record.Coverage,
		Reward:   record.Reward,
		Cost:     marketplace.Cost(record.Coverage, pending, reward),
	}
	if err := s.requireMarket("quote"); err != nil {
		return q, err
	}
	balance, err := s.market.Balance(ctx)
	if err != nil {
		return q, Wrap(ErrExternal, "quote", "balance", "", err)
	}
	q.Balance = balance
	return q, nil
}

// Survey loads a survey from the manifest.
func (s *Service) Survey(ctx context.Context, id string) (*manifest.Survey, error) {
	record, err := s.manifest.Get(ctx, id)
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return nil, Wrap(ErrConfiguration, "survey", "load", "", err)
		}
		return nil, Wrap(ErrExternal, "survey", "load", "", err)
	}
	return record, nil
}

// Surveys lists every survey in the manifest, newest first.
func (s *Service) Surveys(ctx context.Context) ([]*manifest.Survey, error) {
	list, err := s.manifest.List(ctx)
	if err != nil {
		return nil, Wrap(ErrExternal, "survey", "list", "", err)
	}
	return list, nil
}

// Publish creates one HIT per unpublished form of survey id. Forms already
// carrying a HIT are skipped, so a failed publish can be resumed.
func (s *Service) Publish(ctx context.Context, id string) ([]PublishedForm, error) {
	var published []PublishedForm
	err := s.withLock(func() error {
		var err error
		published, err = s.publish(ctx, id)
		return err
	})
	return published, err
}

func (s *Service) publish(ctx context.Context, id string) ([]PublishedForm, error) {
	if err := s.requireMarket("publish"); err != nil {
		return nil, err
	}
	record, err := s.Survey(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Sandbox != s.market.Sandbox() {
		return nil, Wrap(ErrConfiguration, "publish", "marketplace",
			fmt.Sprintf("survey %s was created for sandbox=%t but the marketplace client targets sandbox=%t", id, record.Sandbox, s.market.Sandbox()), nil)
	}
	ctx = logging.WithSurveyID(ctx, id)
	cfg := s.cfg.Survey

	var published []PublishedForm
	for _, form := range record.Forms {
		if form.Published() {
			continue
		}
		if err := checkContext(ctx, "publish"); err != nil {
			return published, err
		}
		doc, err := os.ReadFile(form.XMLPath)
		if err != nil {
			return published, Wrap(ErrConfiguration, "publish", "read survey document", form.XMLPath, err)
		}
		req := marketplace.HITRequest{
			Title:         HITTitle(record.Title, id, form.Index),
			Description:   cfg.Description,
			Keywords:      cfg.Keywords,
			Reward:        record.Reward,
			MaxAssignment: record.Coverage,
			Lifetime:      time.Duration(cfg.Lifetime) * time.Second,
			Duration:      time.Duration(cfg.Duration) * time.Second,
			ApprovalDelay: time.Duration(cfg.ApprovalDelay) * time.Second,
			Question:      string(doc),
			Annotation:    fmt.Sprintf("%s-%d", id, form.Index),
		}
		hit, err := s.market.CreateHIT(ctx, req)
		if err != nil {
			return published, Wrap(ErrExternal, "publish", "create hit", fmt.Sprintf("form %d", form.Index), err)
		}
		if err := s.manifest.RecordHIT(ctx, id, form.Index, hit.ID, hit.GroupID); err != nil {
			return published, Wrap(ErrExternal, "publish", "record hit", hit.ID, err)
		}
		entry := PublishedForm{
			Index:      form.Index,
			HITID:      hit.ID,
			GroupID:    hit.GroupID,
			PreviewURL: s.market.PreviewURL(hit.GroupID),
		}
		published = append(published, entry)
		logging.WithContext(logging.WithFormIndex(ctx, form.Index), s.logger).Info("form published",
			logging.String(logging.FieldHITID, hit.ID),
			logging.String("preview", entry.PreviewURL),
		)
	}
	return published, nil
}

// HITTitle names the HIT for one form of a survey.
func HITTitle(title, surveyID string, form int) string {
	return fmt.Sprintf("%s (%s-%d)", title, surveyID, form)
}
