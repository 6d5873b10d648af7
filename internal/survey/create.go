package survey

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"abxsurvey/internal/audio"
	"abxsurvey/internal/cipher"
	"abxsurvey/internal/logging"
	"abxsurvey/internal/manifest"
	"abxsurvey/internal/marketplace"
	"abxsurvey/internal/partition"
	"abxsurvey/internal/render"
	"abxsurvey/internal/storage"
)

const idDigits = 6

// CreateOptions tunes a Create run.
type CreateOptions struct {
	// DryRun renders documents without uploading audio or saving the manifest.
	DryRun bool
}

// Plan describes a created survey and what publishing it will cost.
type Plan struct {
	Survey *manifest.Survey
	DryRun bool
	// Uploaded counts objects written to storage.
	Uploaded int
	Dummies  []audio.Asset
	Cost     float64
}

// Create partitions the configured audio into forms, publishes the form audio
// and survey documents, and records the survey in the manifest.
func (s *Service) Create(ctx context.Context, opts CreateOptions) (*Plan, error) {
	var plan *Plan
	err := s.withLock(func() error {
		var err error
		plan, err = s.create(ctx, opts)
		return err
	})
	return plan, err
}

func (s *Service) create(ctx context.Context, opts CreateOptions) (*Plan, error) {
	if err := checkContext(ctx, "create"); err != nil {
		return nil, err
	}
	cfg := s.cfg
	tpl, err := render.LoadTemplates(cfg.Paths.AssetsDir)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "create", "load templates", "", err)
	}

	set, err := audio.Discover(cfg.Paths.AudioDir, cfg.Audio.Ext)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "create", "discover audio", "", err)
	}
	mode, err := partition.DetectMode(set.Reference, set.Proposed, set.Baseline)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "create", "detect mode", "", err)
	}
	layout := partition.Layout{
		MaxQuestions:   cfg.Survey.MaxQuestionsPerForm,
		DummyQuestions: cfg.Survey.DummyQuestionsPerForm,
	}

	id, err := s.newSurveyID(ctx)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithSurveyID(ctx, id)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("survey creation started",
		logging.String("mode", string(mode)),
		logging.Int("references", len(set.Reference)),
		logging.Int("forms", layout.FormCount(len(set.Reference))),
		logging.Int("padding", layout.Padding(len(set.Reference))),
		logging.Bool("dry_run", opts.DryRun),
	)

	synth := audio.NewSynthesizer(s.src, logging.NewComponentLogger(s.base, "audio"))
	forms, err := partition.Partition(set.Reference, set.Proposed, set.Baseline, layout, s.src, synth)
	if err != nil {
		if errors.Is(err, partition.ErrPrecondition) {
			return nil, Wrap(ErrConfiguration, "create", "partition", "", err)
		}
		return nil, Wrap(ErrExternal, "create", "partition", "", err)
	}

	bucket := cfg.Storage.Bucket
	if bucket == "" {
		bucket = "survey-" + id
	}
	if s.stores == nil {
		return nil, Wrap(ErrConfiguration, "create", "storage", "no object store configured", nil)
	}
	store, err := s.stores(bucket, id)
	if err != nil {
		return nil, Wrap(ErrConfiguration, "create", "open storage", bucket, err)
	}

	plan := &Plan{DryRun: opts.DryRun, Dummies: synth.Written()}
	if !opts.DryRun {
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, Wrap(ErrExternal, "create", "ensure bucket", bucket, err)
		}
		if plan.Uploaded, err = s.uploadForms(ctx, store, forms); err != nil {
			return nil, err
		}
	}

	record := &manifest.Survey{
		ID:             id,
		RunID:          s.runID,
		Mode:           string(mode),
		Title:          cfg.Survey.Title,
		Backend:        cfg.Storage.Backend,
		Bucket:         bucket,
		Region:         store.Region(),
		Sandbox:        cfg.MTurk.Sandbox,
		Coverage:       cfg.Survey.Coverage,
		Reward:         cfg.Survey.Reward,
		MaxQuestions:   layout.MaxQuestions,
		DummyQuestions: layout.DummyQuestions,
		Status:         manifest.StatusDraft,
		CreatedAt:      s.now().UTC(),
	}

	for _, form := range forms {
		if err := checkContext(ctx, "create"); err != nil {
			return nil, err
		}
		fragments, err := tpl.Form(form, store)
		if err != nil {
			return nil, Wrap(ErrConfiguration, "create", "render questions", fmt.Sprintf("form %d", form.Index), err)
		}
		doc, err := tpl.Survey(fragments)
		if err != nil {
			return nil, Wrap(ErrConfiguration, "create", "render survey", fmt.Sprintf("form %d", form.Index), err)
		}
		xmlPath := filepath.Join(cfg.Paths.WorkDir, fmt.Sprintf("survey-%s-%d.xml", id, form.Index))
		if err := os.WriteFile(xmlPath, []byte(doc), 0o644); err != nil {
			return nil, Wrap(ErrConfiguration, "create", "write survey document", xmlPath, err)
		}
		entry, err := manifestForm(form, xmlPath)
		if err != nil {
			return nil, Wrap(ErrConfiguration, "create", "record form", "", err)
		}
		record.Forms = append(record.Forms, entry)
		logging.WithContext(logging.WithFormIndex(ctx, form.Index), s.logger).Debug("form rendered",
			logging.String("path", xmlPath),
			logging.Int("dummy_slots", len(form.DummySlots())),
		)
	}

	reward, err := cfg.RewardAmount()
	if err != nil {
		return nil, Wrap(ErrConfiguration, "create", "reward", "", err)
	}
	plan.Survey = record
	plan.Cost = marketplace.Cost(cfg.Survey.Coverage, len(record.Forms), reward)

	if !opts.DryRun {
		if err := s.manifest.Save(ctx, record); err != nil {
			return nil, Wrap(ErrExternal, "create", "save manifest", "", err)
		}
	}
	logger.Info("survey created",
		logging.Int("forms", len(record.Forms)),
		logging.Int("uploaded", plan.Uploaded),
		logging.String("cost", marketplace.FormatCost(plan.Cost)),
	)
	return plan, nil
}

// newSurveyID draws a six digit id not yet present in the manifest.
func (s *Service) newSurveyID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		var sb strings.Builder
		for range idDigits {
			sb.WriteString(strconv.Itoa(s.rng.IntN(10)))
		}
		id := sb.String()
		taken, err := s.manifest.Exists(ctx, id)
		if err != nil {
			return "", Wrap(ErrExternal, "create", "allocate id", "", err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", Wrap(ErrExternal, "create", "allocate id", "no free survey id after 100 attempts", nil)
}

// uploadForms puts every asset used by forms into store under its ciphered
// name. Each object is uploaded once even when several slots use it.
func (s *Service) uploadForms(ctx context.Context, store storage.ObjectStore, forms []partition.Form) (int, error) {
	uploaded := map[string]string{}
	for _, form := range forms {
		for _, q := range form.Questions {
			for _, asset := range questionAssets(q) {
				if err := checkContext(ctx, "upload"); err != nil {
					return len(uploaded), err
				}
				key, err := cipher.Encode(asset.Name())
				if err != nil {
					return len(uploaded), Wrap(ErrConfiguration, "upload", "cipher", asset.Path, err)
				}
				if prev, ok := uploaded[key]; ok {
					if prev != asset.Path {
						return len(uploaded), Wrap(ErrConfiguration, "upload", "name collision",
							fmt.Sprintf("%s and %s share object name %s", prev, asset.Path, key), nil)
					}
					continue
				}
				if err := store.Upload(ctx, key, asset.Path); err != nil {
					return len(uploaded), Wrap(ErrExternal, "upload", key, asset.Path, err)
				}
				uploaded[key] = asset.Path
				s.logger.Debug("asset uploaded", logging.String("key", key), logging.String("source", asset.Path))
			}
		}
	}
	return len(uploaded), nil
}

func questionAssets(q partition.Question) []audio.Asset {
	switch a := q.Assignment.(type) {
	case partition.Dummy:
		return []audio.Asset{a.Ref, a.Noised}
	case partition.Comparison:
		assets := []audio.Asset{a.Ref, a.Proposed}
		if a.Baseline != nil {
			assets = append(assets, *a.Baseline)
		}
		return assets
	}
	return nil
}

func manifestForm(form partition.Form, xmlPath string) (manifest.Form, error) {
	entry := manifest.Form{Index: form.Index, XMLPath: xmlPath}
	for _, q := range form.Questions {
		a, err := cipher.Encode(q.AssetA().Name())
		if err != nil {
			return entry, err
		}
		b, err := cipher.Encode(q.AssetB().Name())
		if err != nil {
			return entry, err
		}
		x, err := cipher.Encode(q.Assignment.Reference().Name())
		if err != nil {
			return entry, err
		}
		mq := manifest.Question{
			Slot:        q.Slot,
			PlacementA:  string(q.Placement.A),
			PlacementB:  string(q.Placement.B),
			Reference:   q.Assignment.Reference().Path,
			CipherA:     a,
			CipherB:     b,
			CipherX:     x,
			SourceIndex: -1,
		}
		switch as := q.Assignment.(type) {
		case partition.Dummy:
			mq.Kind = manifest.KindDummy
			mq.Dummy = as.Noised.Path
		case partition.Comparison:
			mq.Kind = manifest.KindComparison
			mq.Proposed = as.Proposed.Path
			if as.Baseline != nil {
				mq.Baseline = as.Baseline.Path
			}
			mq.SourceIndex = as.Index
			mq.Padded = as.Padded
		}
		entry.Questions = append(entry.Questions, mq)
	}
	return entry, nil
}
