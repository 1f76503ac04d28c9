package interview

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SQLStore implements Store on sqlite or postgres. Queries use $n placeholders,
// which both drivers accept.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func newID() string { return uuid.NewString() }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

// where accumulates AND-ed conditions; "?" in a condition becomes the next $n.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(cond string, v any) {
	w.args = append(w.args, v)
	w.clauses = append(w.clauses, strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *where) page(limit, offset int) string {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	w.args = append(w.args, limit, offset)
	return " LIMIT $" + strconv.Itoa(len(w.args)-1) + " OFFSET $" + strconv.Itoa(len(w.args))
}

func likeArg(q string) string { return "%" + strings.ToLower(strings.TrimSpace(q)) + "%" }

// ---- questions ----

func validateQuestion(q Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return invalid("text", "required")
	}
	if err := validateWeight(q.Weight); err != nil {
		return err
	}
	return nil
}

const questionCols = `id, text, weight, docs_reference, unit_id, difficulty_id, level_id, group_id, created_at`

func scanQuestion(sc interface{ Scan(...any) error }) (Question, error) {
	var q Question
	err := sc.Scan(&q.ID, &q.Text, &q.Weight, &q.DocsReference, &q.UnitID, &q.DifficultyID, &q.LevelID, &q.GroupID, &q.CreatedAt)
	return q, err
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	if q.Weight == 0 {
		q.Weight = 1
	}
	if err := validateQuestion(q); err != nil {
		return Question{}, err
	}
	q.ID = newID()
	q.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO questions (`+questionCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		q.ID, q.Text, q.Weight, q.DocsReference, q.UnitID, q.DifficultyID, q.LevelID, q.GroupID, q.CreatedAt)
	if err != nil {
		return Question{}, errors.Wrap(err, "insert question")
	}
	return q, nil
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, q Question) (Question, error) {
	if err := validateQuestion(q); err != nil {
		return Question{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE questions
		SET text=$1, weight=$2, docs_reference=$3, unit_id=$4, difficulty_id=$5, level_id=$6, group_id=$7
		WHERE id=$8`,
		q.Text, q.Weight, q.DocsReference, q.UnitID, q.DifficultyID, q.LevelID, q.GroupID, q.ID)
	if err != nil {
		return Question{}, errors.Wrap(err, "update question")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Question{}, notFound("question", q.ID)
	}
	return s.GetQuestion(ctx, q.ID)
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, notFound("question", id)
		}
		return Question{}, errors.Wrap(err, "get question")
	}
	return q, nil
}

func (s *SQLStore) GetQuestions(ctx context.Context, ids []string) ([]Question, error) {
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		q, err := s.GetQuestion(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, f QuestionFilter) ([]Question, error) {
	var w where
	if strings.TrimSpace(f.TextSearch) != "" {
		w.add("LOWER(text) LIKE ?", likeArg(f.TextSearch))
	}
	if f.UnitID != "" {
		w.add("unit_id = ?", f.UnitID)
	}
	if f.DifficultyID != "" {
		w.add("difficulty_id = ?", f.DifficultyID)
	}
	if f.LevelID != "" {
		w.add("level_id = ?", f.LevelID)
	}
	if f.GroupID != "" {
		w.add("group_id = ?", f.GroupID)
	}
	q := `SELECT ` + questionCols + ` FROM questions` + w.String() + ` ORDER BY created_at DESC, id`
	q += w.page(f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "list questions")
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		qq, err := scanQuestion(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan question")
		}
		out = append(out, qq)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return errors.Wrap(err, "delete question")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("question", id)
	}
	return nil
}

// ---- dictionaries ----

func (s *SQLStore) ListDictionary(ctx context.Context, kind DictKind) ([]DictEntry, error) {
	if !kind.Valid() {
		return nil, invalid("kind", "unknown dictionary "+string(kind))
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, subject FROM dictionary_entries WHERE kind=$1 ORDER BY name`, string(kind))
	if err != nil {
		return nil, errors.Wrap(err, "list dictionary")
	}
	defer rows.Close()
	out := []DictEntry{}
	for rows.Next() {
		var e DictEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Subject); err != nil {
			return nil, errors.Wrap(err, "scan dictionary entry")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateDictionaryEntry(ctx context.Context, kind DictKind, e DictEntry) (DictEntry, error) {
	if !kind.Valid() {
		return DictEntry{}, invalid("kind", "unknown dictionary "+string(kind))
	}
	if strings.TrimSpace(e.Name) == "" {
		return DictEntry{}, invalid("name", "required")
	}
	e.ID = newID()
	_, err := s.db.ExecContext(ctx, `INSERT INTO dictionary_entries (id, kind, name, subject, created_at) VALUES ($1,$2,$3,$4,$5)`,
		e.ID, string(kind), e.Name, e.Subject, time.Now().Unix())
	if err != nil {
		return DictEntry{}, errors.Wrap(err, "insert dictionary entry")
	}
	return e, nil
}

// ---- templates ----

func (s *SQLStore) CreateTemplate(ctx context.Context, t Template) (Template, error) {
	if strings.TrimSpace(t.Name) == "" {
		return Template{}, invalid("name", "required")
	}
	t.ID = newID()
	t.CreatedAt = time.Now().Unix()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO templates (id, name, description, position, created_at) VALUES ($1,$2,$3,$4,$5)`,
			t.ID, t.Name, t.Description, t.Position, t.CreatedAt); err != nil {
			return errors.Wrap(err, "insert template")
		}
		return replaceTemplateQuestions(ctx, tx, t.ID, t.Questions)
	})
	if err != nil {
		return Template{}, err
	}
	return s.GetTemplate(ctx, t.ID)
}

func (s *SQLStore) UpdateTemplate(ctx context.Context, t Template) (Template, error) {
	if strings.TrimSpace(t.Name) == "" {
		return Template{}, invalid("name", "required")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE templates SET name=$1, description=$2, position=$3 WHERE id=$4`,
		t.Name, t.Description, t.Position, t.ID)
	if err != nil {
		return Template{}, errors.Wrap(err, "update template")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Template{}, notFound("template", t.ID)
	}
	return s.GetTemplate(ctx, t.ID)
}

func (s *SQLStore) GetTemplate(ctx context.Context, id string) (Template, error) {
	return getTemplate(ctx, s.db, id)
}

func getTemplate(ctx context.Context, q execer, id string) (Template, error) {
	var t Template
	err := q.QueryRowContext(ctx, `SELECT id, name, description, position, created_at FROM templates WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.Description, &t.Position, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, notFound("template", id)
		}
		return Template{}, errors.Wrap(err, "get template")
	}
	t.Questions, err = templateQuestionIDs(ctx, q, id)
	if err != nil {
		return Template{}, err
	}
	return t, nil
}

func templateQuestionIDs(ctx context.Context, q execer, templateID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT question_id FROM template_questions WHERE template_id=$1 ORDER BY ord`, templateID)
	if err != nil {
		return nil, errors.Wrap(err, "list template questions")
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan template question")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLStore) ListTemplates(ctx context.Context, f TemplateFilter) ([]Template, error) {
	var w where
	if strings.TrimSpace(f.Q) != "" {
		w.add("LOWER(name) LIKE ?", likeArg(f.Q))
	}
	if strings.TrimSpace(f.Position) != "" {
		w.add("LOWER(position) LIKE ?", likeArg(f.Position))
	}
	q := `SELECT id FROM templates` + w.String() + ` ORDER BY created_at DESC, id` + w.page(f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan template")
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Template, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTemplate(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *SQLStore) DeleteTemplate(ctx context.Context, id string) error {
	var inUse int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interviews WHERE template_id=$1`, id).Scan(&inUse)
	if err != nil {
		return errors.Wrap(err, "count template interviews")
	}
	if inUse > 0 {
		return invalid("template", "used by "+strconv.Itoa(inUse)+" interview(s)")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id=$1`, id)
	if err != nil {
		return errors.Wrap(err, "delete template")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("template", id)
	}
	return nil
}

func (s *SQLStore) SetTemplateQuestions(ctx context.Context, id string, questionIDs []string) (Template, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getTemplate(ctx, tx, id); err != nil {
			return err
		}
		return replaceTemplateQuestions(ctx, tx, id, questionIDs)
	})
	if err != nil {
		return Template{}, err
	}
	return s.GetTemplate(ctx, id)
}

// replaceTemplateQuestions rewrites the ordered question list; duplicates keep
// their first position and every id must resolve to a question.
func replaceTemplateQuestions(ctx context.Context, tx *sql.Tx, templateID string, questionIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM template_questions WHERE template_id=$1`, templateID); err != nil {
		return errors.Wrap(err, "clear template questions")
	}
	seen := make(map[string]struct{}, len(questionIDs))
	ord := 0
	for _, qid := range questionIDs {
		if _, dup := seen[qid]; dup {
			continue
		}
		seen[qid] = struct{}{}
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM questions WHERE id=$1`, qid).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("question", qid)
			}
			return errors.Wrap(err, "check question")
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO template_questions (template_id, question_id, ord) VALUES ($1,$2,$3)`,
			templateID, qid, ord); err != nil {
			return errors.Wrap(err, "insert template question")
		}
		ord++
	}
	return nil
}

func (s *SQLStore) CloneTemplate(ctx context.Context, id, name, position string) (Template, error) {
	src, err := s.GetTemplate(ctx, id)
	if err != nil {
		return Template{}, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Copy of " + src.Name
	}
	if strings.TrimSpace(position) == "" {
		position = src.Position
	}
	return s.CreateTemplate(ctx, Template{
		Name:        name,
		Description: src.Description,
		Position:    position,
		Questions:   src.Questions,
	})
}
