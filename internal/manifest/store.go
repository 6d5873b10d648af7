package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when no survey has the requested id.
	ErrNotFound = errors.New("survey not found")
	// ErrDuplicate is returned when saving a survey id that already exists.
	ErrDuplicate = errors.New("survey already exists")
)

// Store manages manifest persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the manifest database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure manifest directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Exists reports whether a survey id is taken.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM surveys WHERE id = ?", id).Scan(&count); err != nil {
		return false, fmt.Errorf("check survey %s: %w", id, err)
	}
	return count > 0, nil
}

// Save inserts a survey with all of its forms and questions.
func (s *Store) Save(ctx context.Context, survey *Survey) error {
	if survey == nil {
		return errors.New("survey is nil")
	}
	exists, err := s.Exists(ctx, survey.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, survey.ID)
	}
	if survey.CreatedAt.IsZero() {
		survey.CreatedAt = time.Now().UTC()
	}
	if survey.Status == "" {
		survey.Status = StatusDraft
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO surveys (
            id, run_id, mode, title, backend, bucket, region, sandbox, coverage, reward,
            max_questions, dummy_questions, status, created_at, published_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		survey.ID, survey.RunID, survey.Mode, survey.Title, survey.Backend, survey.Bucket, survey.Region,
		boolToInt(survey.Sandbox), survey.Coverage, survey.Reward, survey.MaxQuestions, survey.DummyQuestions,
		survey.Status, formatTime(survey.CreatedAt), nullableTime(survey.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert survey: %w", err)
	}

	for _, form := range survey.Forms {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO forms (survey_id, form_index, xml_path, hit_id, hit_group_id, published_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			survey.ID, form.Index, form.XMLPath,
			nullableString(form.HITID), nullableString(form.HITGroupID), nullableTime(form.PublishedAt),
		)
		if err != nil {
			return fmt.Errorf("insert form %d: %w", form.Index, err)
		}
		for _, q := range form.Questions {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO questions (
                    survey_id, form_index, slot, kind, placement_a, placement_b,
                    reference, proposed, baseline, dummy, cipher_a, cipher_b, cipher_x,
                    source_index, padded
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				survey.ID, form.Index, q.Slot, q.Kind, q.PlacementA, q.PlacementB,
				q.Reference, nullableString(q.Proposed), nullableString(q.Baseline), nullableString(q.Dummy),
				q.CipherA, q.CipherB, q.CipherX, q.SourceIndex, boolToInt(q.Padded),
			)
			if err != nil {
				return fmt.Errorf("insert question %d/%d: %w", form.Index, q.Slot, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit survey: %w", err)
	}
	return nil
}

const surveyColumns = "id, run_id, mode, title, backend, bucket, region, sandbox, coverage, reward, max_questions, dummy_questions, status, created_at, published_at"

func scanSurvey(scanner interface{ Scan(dest ...any) error }) (*Survey, error) {
	var (
		survey      Survey
		sandbox     int
		status      string
		createdRaw  string
		publishedAt sql.NullString
	)
	if err := scanner.Scan(
		&survey.ID, &survey.RunID, &survey.Mode, &survey.Title, &survey.Backend, &survey.Bucket,
		&survey.Region, &sandbox, &survey.Coverage, &survey.Reward, &survey.MaxQuestions,
		&survey.DummyQuestions, &status, &createdRaw, &publishedAt,
	); err != nil {
		return nil, err
	}
	survey.Sandbox = sandbox != 0
	survey.Status = Status(status)
	survey.CreatedAt = parseTime(createdRaw)
	survey.PublishedAt = parseNullableTime(publishedAt)
	return &survey, nil
}

// Get loads a survey with its forms and questions.
func (s *Store) Get(ctx context.Context, id string) (*Survey, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE id = ?`, id)
	survey, err := scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get survey: %w", err)
	}
	if survey.Forms, err = s.loadForms(ctx, id); err != nil {
		return nil, err
	}
	return survey, nil
}

// List returns all surveys, newest first, without forms.
func (s *Store) List(ctx context.Context) ([]*Survey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+surveyColumns+` FROM surveys ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	var surveys []*Survey
	for rows.Next() {
		survey, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		surveys = append(surveys, survey)
	}
	return surveys, rows.Err()
}

func (s *Store) loadForms(ctx context.Context, id string) ([]Form, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT form_index, xml_path, hit_id, hit_group_id, published_at
         FROM forms WHERE survey_id = ? ORDER BY form_index`, id)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	var forms []Form
	for rows.Next() {
		var (
			form                      Form
			hitID, groupID, published sql.NullString
		)
		if err := rows.Scan(&form.Index, &form.XMLPath, &hitID, &groupID, &published); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan form: %w", err)
		}
		form.HITID = hitID.String
		form.HITGroupID = groupID.String
		form.PublishedAt = parseNullableTime(published)
		forms = append(forms, form)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range forms {
		if forms[i].Questions, err = s.loadQuestions(ctx, id, forms[i].Index); err != nil {
			return nil, err
		}
	}
	return forms, nil
}

func (s *Store) loadQuestions(ctx context.Context, id string, form int) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slot, kind, placement_a, placement_b, reference, proposed, baseline, dummy,
                cipher_a, cipher_b, cipher_x, source_index, padded
         FROM questions WHERE survey_id = ? AND form_index = ? ORDER BY slot`, id, form)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var (
			q                         Question
			kind                      string
			proposed, baseline, dummy sql.NullString
			padded                    int
		)
		if err := rows.Scan(&q.Slot, &kind, &q.PlacementA, &q.PlacementB, &q.Reference,
			&proposed, &baseline, &dummy, &q.CipherA, &q.CipherB, &q.CipherX, &q.SourceIndex, &padded); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Kind = Kind(kind)
		q.Proposed = proposed.String
		q.Baseline = baseline.String
		q.Dummy = dummy.String
		q.Padded = padded != 0
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// RecordHIT stores the HIT created for a form and advances the survey status.
func (s *Store) RecordHIT(ctx context.Context, surveyID string, formIndex int, hitID, groupID string) error {
	if strings.TrimSpace(hitID) == "" {
		return errors.New("hit id is empty")
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin hit tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE forms SET hit_id = ?, hit_group_id = ?, published_at = ?
         WHERE survey_id = ? AND form_index = ?`,
		hitID, nullableString(groupID), formatTime(now), surveyID, formIndex)
	if err != nil {
		return fmt.Errorf("record hit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s form %d", ErrNotFound, surveyID, formIndex)
	}

	var total, published int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1), COUNT(hit_id) FROM forms WHERE survey_id = ?`, surveyID,
	).Scan(&total, &published); err != nil {
		return fmt.Errorf("count published forms: %w", err)
	}
	status := StatusPartial
	var publishedAt any
	if published == total {
		status = StatusPublished
		publishedAt = formatTime(now)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE surveys SET status = ?, published_at = COALESCE(?, published_at) WHERE id = ?`,
		status, publishedAt, surveyID,
	); err != nil {
		return fmt.Errorf("update survey status: %w", err)
	}
	return tx.Commit()
}

// Delete removes a survey and its forms.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM surveys WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
