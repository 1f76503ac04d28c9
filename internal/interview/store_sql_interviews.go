package interview

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mind-engage/interview-console/internal/rbac"
	"github.com/mind-engage/interview-console/internal/scoring"
)

// ---- interviewers ----

// validateRole accepts the roles the access policy defines.
func validateRole(role string) error {
	if !rbac.Default().Known(role) {
		return invalid("role", "unknown role "+role+", want one of "+strings.Join(rbac.Default().Roles(), ", "))
	}
	return nil
}

func (s *SQLStore) CreateInterviewer(ctx context.Context, iv Interviewer) (Interviewer, error) {
	iv.Name = strings.TrimSpace(iv.Name)
	iv.Email = strings.ToLower(strings.TrimSpace(iv.Email))
	if iv.Name == "" {
		return Interviewer{}, invalid("name", "required")
	}
	if iv.Email == "" || !strings.Contains(iv.Email, "@") {
		return Interviewer{}, invalid("email", "invalid address")
	}
	if iv.Role == "" {
		iv.Role = "interviewer"
	}
	if err := validateRole(iv.Role); err != nil {
		return Interviewer{}, err
	}
	if _, err := s.FindInterviewerByEmail(ctx, iv.Email); err == nil {
		return Interviewer{}, invalid("email", "already registered")
	} else if !errors.Is(err, ErrNotFound) {
		return Interviewer{}, err
	}

	iv.ID = newID()
	_, err := s.db.ExecContext(ctx, `INSERT INTO interviewers (id, name, email, role, password_hash, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`, iv.ID, iv.Name, iv.Email, iv.Role, iv.PasswordHash, time.Now().Unix())
	if err != nil {
		return Interviewer{}, errors.Wrap(err, "insert interviewer")
	}
	return iv, nil
}

const interviewerCols = `id, name, email, role, password_hash`

func scanInterviewer(sc interface{ Scan(...any) error }) (Interviewer, error) {
	var iv Interviewer
	err := sc.Scan(&iv.ID, &iv.Name, &iv.Email, &iv.Role, &iv.PasswordHash)
	return iv, err
}

func (s *SQLStore) GetInterviewer(ctx context.Context, id string) (Interviewer, error) {
	iv, err := scanInterviewer(s.db.QueryRowContext(ctx, `SELECT `+interviewerCols+` FROM interviewers WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Interviewer{}, notFound("interviewer", id)
		}
		return Interviewer{}, errors.Wrap(err, "get interviewer")
	}
	return iv, nil
}

func (s *SQLStore) FindInterviewerByEmail(ctx context.Context, email string) (Interviewer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	iv, err := scanInterviewer(s.db.QueryRowContext(ctx, `SELECT `+interviewerCols+` FROM interviewers WHERE email=$1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Interviewer{}, notFound("interviewer", email)
		}
		return Interviewer{}, errors.Wrap(err, "find interviewer")
	}
	return iv, nil
}

func (s *SQLStore) ListInterviewers(ctx context.Context) ([]Interviewer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+interviewerCols+` FROM interviewers ORDER BY name, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list interviewers")
	}
	defer rows.Close()
	out := []Interviewer{}
	for rows.Next() {
		iv, err := scanInterviewer(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan interviewer")
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// SetInterviewerRole changes a role. The last admin cannot be demoted.
func (s *SQLStore) SetInterviewerRole(ctx context.Context, id, role string) (Interviewer, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if err := validateRole(role); err != nil {
		return Interviewer{}, err
	}
	var out Interviewer
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var cur string
		err := tx.QueryRowContext(ctx, `SELECT role FROM interviewers WHERE id=$1`, id).Scan(&cur)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("interviewer", id)
		}
		if err != nil {
			return errors.Wrap(err, "get interviewer role")
		}
		if cur == "admin" && role != "admin" {
			var admins int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM interviewers WHERE role='admin'`).Scan(&admins); err != nil {
				return errors.Wrap(err, "count admins")
			}
			if admins <= 1 {
				return invalid("role", "cannot demote the last admin")
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE interviewers SET role=$2 WHERE id=$1`, id, role); err != nil {
			return errors.Wrap(err, "update interviewer role")
		}
		out, err = scanInterviewer(tx.QueryRowContext(ctx, `SELECT `+interviewerCols+` FROM interviewers WHERE id=$1`, id))
		return errors.Wrap(err, "reload interviewer")
	})
	return out, err
}

func (s *SQLStore) SetInterviewerPassword(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE interviewers SET password_hash=$2 WHERE id=$1`, id, hash)
	if err != nil {
		return errors.Wrap(err, "update password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("interviewer", id)
	}
	return nil
}

// ---- phrases ----

func (s *SQLStore) CreatePhrase(ctx context.Context, p Phrase) (Phrase, error) {
	if strings.TrimSpace(p.Text) == "" {
		return Phrase{}, invalid("text", "required")
	}
	switch p.Category {
	case "":
		p.Category = PhraseNeutral
	case PhrasePositive, PhraseNegative, PhraseNeutral:
	default:
		return Phrase{}, invalid("category", "must be positive, negative or neutral")
	}
	p.ID = newID()
	_, err := s.db.ExecContext(ctx, `INSERT INTO phrases (id, text, category, created_at) VALUES ($1,$2,$3,$4)`,
		p.ID, p.Text, p.Category, time.Now().Unix())
	if err != nil {
		return Phrase{}, errors.Wrap(err, "insert phrase")
	}
	return p, nil
}

func (s *SQLStore) ListPhrases(ctx context.Context) ([]Phrase, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, category FROM phrases ORDER BY category, text`)
	if err != nil {
		return nil, errors.Wrap(err, "list phrases")
	}
	defer rows.Close()
	out := []Phrase{}
	for rows.Next() {
		var p Phrase
		if err := rows.Scan(&p.ID, &p.Text, &p.Category); err != nil {
			return nil, errors.Wrap(err, "scan phrase")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- interviews ----

func validStatus(s string) bool {
	return s == StatusScheduled || s == StatusInProgress || s == StatusEvaluated
}

func (s *SQLStore) CreateInterview(ctx context.Context, in Interview) (Interview, error) {
	if strings.TrimSpace(in.CandidateName) == "" {
		return Interview{}, invalid("candidate_name", "required")
	}
	if in.TemplateID == "" {
		return Interview{}, invalid("template_id", "required")
	}
	if in.Status == "" {
		in.Status = StatusScheduled
	}
	if !validStatus(in.Status) {
		return Interview{}, invalid("status", "unknown status "+in.Status)
	}
	if in.InterviewDate.IsZero() {
		in.InterviewDate = time.Now()
	}
	in.ID = newID()
	in.CreatedAt = time.Now().Unix()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		tpl, err := getTemplate(ctx, tx, in.TemplateID)
		if err != nil {
			return err
		}
		if in.Position == "" {
			in.Position = tpl.Position
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO interviews
			(id, template_id, candidate_id, candidate_name, position, interview_date, status, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			in.ID, in.TemplateID, in.CandidateID, in.CandidateName, in.Position, in.InterviewDate.Unix(), in.Status, in.CreatedAt); err != nil {
			return errors.Wrap(err, "insert interview")
		}
		seen := map[string]bool{}
		for _, ivID := range in.InterviewerIDs {
			if seen[ivID] {
				continue
			}
			seen[ivID] = true
			var one int
			if err := tx.QueryRowContext(ctx, `SELECT 1 FROM interviewers WHERE id=$1`, ivID).Scan(&one); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return notFound("interviewer", ivID)
				}
				return errors.Wrap(err, "check interviewer")
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO interview_interviewers (interview_id, interviewer_id) VALUES ($1,$2)`,
				in.ID, ivID); err != nil {
				return errors.Wrap(err, "assign interviewer")
			}
		}
		return nil
	})
	if err != nil {
		return Interview{}, err
	}
	return s.GetInterview(ctx, in.ID)
}

const interviewCols = `id, template_id, candidate_id, candidate_name, position, interview_date, status, created_at`

func scanInterview(sc interface{ Scan(...any) error }) (Interview, error) {
	var (
		in   Interview
		date int64
	)
	err := sc.Scan(&in.ID, &in.TemplateID, &in.CandidateID, &in.CandidateName, &in.Position, &date, &in.Status, &in.CreatedAt)
	in.InterviewDate = time.Unix(date, 0).UTC()
	return in, err
}

// GetInterview loads the interview with its panel, snapshot history and feedback.
func (s *SQLStore) GetInterview(ctx context.Context, id string) (Interview, error) {
	in, err := scanInterview(s.db.QueryRowContext(ctx, `SELECT `+interviewCols+` FROM interviews WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Interview{}, notFound("interview", id)
		}
		return Interview{}, errors.Wrap(err, "get interview")
	}
	if in.Interviewers, err = s.panel(ctx, id); err != nil {
		return Interview{}, err
	}
	in.InterviewerIDs = make([]string, 0, len(in.Interviewers))
	for _, iv := range in.Interviewers {
		in.InterviewerIDs = append(in.InterviewerIDs, iv.ID)
	}
	if in.Evaluations, err = s.ListEvaluations(ctx, id); err != nil {
		return Interview{}, err
	}
	if in.Feedback, err = s.GetFeedback(ctx, id); err != nil {
		return Interview{}, err
	}
	return in, nil
}

func (s *SQLStore) panel(ctx context.Context, interviewID string) ([]Interviewer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT i.id, i.name, i.email, i.role, i.password_hash
		FROM interviewers i JOIN interview_interviewers ii ON ii.interviewer_id = i.id
		WHERE ii.interview_id=$1 ORDER BY i.name, i.id`, interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "list panel")
	}
	defer rows.Close()
	out := []Interviewer{}
	for rows.Next() {
		iv, err := scanInterviewer(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan panel")
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListInterviews(ctx context.Context, f InterviewFilter) ([]Interview, error) {
	var w where
	if f.CandidateID != "" {
		w.add("candidate_id = ?", f.CandidateID)
	}
	if strings.TrimSpace(f.Position) != "" {
		w.add("LOWER(position) LIKE ?", likeArg(f.Position))
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.TemplateID != "" {
		w.add("template_id = ?", f.TemplateID)
	}
	if !f.StartDate.IsZero() {
		w.add("interview_date >= ?", f.StartDate.Unix())
	}
	if !f.EndDate.IsZero() {
		w.add("interview_date <= ?", f.EndDate.Unix())
	}
	q := `SELECT ` + interviewCols + ` FROM interviews` + w.String() + ` ORDER BY interview_date DESC, id` + w.page(f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, q, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "list interviews")
	}
	out := []Interview{}
	for rows.Next() {
		in, err := scanInterview(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan interview")
		}
		out = append(out, in)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		panel, err := s.panel(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].InterviewerIDs = make([]string, 0, len(panel))
		for _, iv := range panel {
			out[i].InterviewerIDs = append(out[i].InterviewerIDs, iv.ID)
		}
	}
	return out, nil
}

func (s *SQLStore) DeleteInterview(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM interviews WHERE id=$1`, id)
	if err != nil {
		return errors.Wrap(err, "delete interview")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("interview", id)
	}
	return nil
}

func (s *SQLStore) SetInterviewStatus(ctx context.Context, id, status string) error {
	if !validStatus(status) {
		return invalid("status", "unknown status "+status)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE interviews SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return errors.Wrap(err, "update interview status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("interview", id)
	}
	return nil
}

// ---- scores ----

// UpsertScore keeps one row per (interview, question, interviewer); a repeated
// rating replaces the value and bumps updated_at.
func (s *SQLStore) UpsertScore(ctx context.Context, sc Score) (Score, error) {
	sc.UpdatedAt = time.Now().UnixNano()
	_, err := s.db.ExecContext(ctx, `INSERT INTO scores (id, interview_id, question_id, interviewer_id, value, comment, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (interview_id, question_id, interviewer_id)
		DO UPDATE SET value=excluded.value, comment=excluded.comment, updated_at=excluded.updated_at`,
		newID(), sc.InterviewID, sc.QuestionID, sc.InterviewerID, sc.Value, sc.Comment, sc.UpdatedAt)
	if err != nil {
		return Score{}, errors.Wrap(err, "upsert score")
	}
	err = s.db.QueryRowContext(ctx, `SELECT id FROM scores WHERE interview_id=$1 AND question_id=$2 AND interviewer_id=$3`,
		sc.InterviewID, sc.QuestionID, sc.InterviewerID).Scan(&sc.ID)
	if err != nil {
		return Score{}, errors.Wrap(err, "reload score")
	}
	return sc, nil
}

func (s *SQLStore) ListScores(ctx context.Context, interviewID string) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, interview_id, question_id, interviewer_id, value, comment, updated_at
		FROM scores WHERE interview_id=$1 ORDER BY updated_at, id`, interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "list scores")
	}
	defer rows.Close()
	out := []Score{}
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.ID, &sc.InterviewID, &sc.QuestionID, &sc.InterviewerID, &sc.Value, &sc.Comment, &sc.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan score")
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ---- evaluations ----

func (s *SQLStore) GetDraft(ctx context.Context, interviewID string) (*scoring.Evaluation, error) {
	var ev scoring.Evaluation
	err := s.db.QueryRowContext(ctx, `SELECT total_score, passed, minimal_rate, overridden, score_digest
		FROM evaluation_drafts WHERE interview_id=$1`, interviewID).
		Scan(&ev.TotalScore, &ev.Passed, &ev.MinimalRate, &ev.Overridden, &ev.ScoreDigest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get draft")
	}
	return &ev, nil
}

func (s *SQLStore) SaveDraft(ctx context.Context, interviewID string, ev scoring.Evaluation) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO evaluation_drafts
		(interview_id, total_score, passed, minimal_rate, overridden, score_digest, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (interview_id) DO UPDATE SET
		  total_score=excluded.total_score, passed=excluded.passed, minimal_rate=excluded.minimal_rate,
		  overridden=excluded.overridden, score_digest=excluded.score_digest, updated_at=excluded.updated_at`,
		interviewID, ev.TotalScore, ev.Passed, ev.MinimalRate, ev.Overridden, ev.ScoreDigest, time.Now().UnixNano())
	return errors.Wrap(err, "save draft")
}

func (s *SQLStore) AddEvaluation(ctx context.Context, interviewID string, ev scoring.Evaluation) (EvaluationRecord, error) {
	rec := EvaluationRecord{
		ID:          newID(),
		InterviewID: interviewID,
		Evaluation:  ev,
		CreatedAt:   time.Now().UnixNano(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO evaluations
		(id, interview_id, total_score, passed, minimal_rate, overridden, score_digest, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, interviewID, ev.TotalScore, ev.Passed, ev.MinimalRate, ev.Overridden, ev.ScoreDigest, rec.CreatedAt)
	if err != nil {
		return EvaluationRecord{}, errors.Wrap(err, "insert evaluation")
	}
	return rec, nil
}

func (s *SQLStore) ListEvaluations(ctx context.Context, interviewID string) ([]EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, interview_id, total_score, passed, minimal_rate, overridden, score_digest, created_at
		FROM evaluations WHERE interview_id=$1 ORDER BY created_at DESC, id DESC`, interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "list evaluations")
	}
	defer rows.Close()
	out := []EvaluationRecord{}
	for rows.Next() {
		var r EvaluationRecord
		if err := rows.Scan(&r.ID, &r.InterviewID, &r.TotalScore, &r.Passed, &r.MinimalRate, &r.Overridden, &r.ScoreDigest, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan evaluation")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ---- feedback ----

// SaveFeedback replaces the interview's feedback text and phrase selection.
func (s *SQLStore) SaveFeedback(ctx context.Context, f Feedback) (Feedback, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM interviews WHERE id=$1`, f.InterviewID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("interview", f.InterviewID)
			}
			return errors.Wrap(err, "check interview")
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO feedback (interview_id, text, updated_at) VALUES ($1,$2,$3)
			ON CONFLICT (interview_id) DO UPDATE SET text=excluded.text, updated_at=excluded.updated_at`,
			f.InterviewID, f.Text, time.Now().Unix()); err != nil {
			return errors.Wrap(err, "upsert feedback")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM feedback_phrases WHERE interview_id=$1`, f.InterviewID); err != nil {
			return errors.Wrap(err, "clear feedback phrases")
		}
		seen := map[string]bool{}
		for _, pid := range f.PredefinedPhraseIDs {
			if seen[pid] {
				continue
			}
			seen[pid] = true
			if err := tx.QueryRowContext(ctx, `SELECT 1 FROM phrases WHERE id=$1`, pid).Scan(&one); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return notFound("phrase", pid)
				}
				return errors.Wrap(err, "check phrase")
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO feedback_phrases (interview_id, phrase_id) VALUES ($1,$2)`,
				f.InterviewID, pid); err != nil {
				return errors.Wrap(err, "insert feedback phrase")
			}
		}
		return nil
	})
	if err != nil {
		return Feedback{}, err
	}
	saved, err := s.GetFeedback(ctx, f.InterviewID)
	if err != nil {
		return Feedback{}, err
	}
	return *saved, nil
}

func (s *SQLStore) GetFeedback(ctx context.Context, interviewID string) (*Feedback, error) {
	f := Feedback{InterviewID: interviewID}
	err := s.db.QueryRowContext(ctx, `SELECT text, updated_at FROM feedback WHERE interview_id=$1`, interviewID).
		Scan(&f.Text, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get feedback")
	}
	rows, err := s.db.QueryContext(ctx, `SELECT p.id, p.text, p.category
		FROM phrases p JOIN feedback_phrases fp ON fp.phrase_id = p.id
		WHERE fp.interview_id=$1 ORDER BY p.category, p.text`, interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "list feedback phrases")
	}
	defer rows.Close()
	f.PredefinedPhraseIDs = []string{}
	for rows.Next() {
		var p Phrase
		if err := rows.Scan(&p.ID, &p.Text, &p.Category); err != nil {
			return nil, errors.Wrap(err, "scan feedback phrase")
		}
		f.Phrases = append(f.Phrases, p)
		f.PredefinedPhraseIDs = append(f.PredefinedPhraseIDs, p.ID)
	}
	return &f, rows.Err()
}

// ---- stats ----

func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{InterviewsByStatus: map[string]int{}}
	for _, c := range []struct {
		dst   *int
		query string
	}{
		{&st.Questions, `SELECT COUNT(*) FROM questions`},
		{&st.Templates, `SELECT COUNT(*) FROM templates`},
		{&st.Interviews, `SELECT COUNT(*) FROM interviews`},
	} {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return Stats{}, errors.Wrap(err, "count")
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM interviews GROUP BY status`)
	if err != nil {
		return Stats{}, errors.Wrap(err, "count by status")
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return Stats{}, errors.Wrap(err, "scan status count")
		}
		st.InterviewsByStatus[status] = n
	}
	rows.Close()

	// the latest snapshot per interview decides pass/fail
	rows, err = s.db.QueryContext(ctx, `SELECT interview_id, passed, created_at FROM evaluations`)
	if err != nil {
		return Stats{}, errors.Wrap(err, "list evaluations")
	}
	type latest struct {
		at     int64
		passed bool
	}
	byInterview := map[string]latest{}
	for rows.Next() {
		var (
			id string
			l  latest
		)
		if err := rows.Scan(&id, &l.passed, &l.at); err != nil {
			rows.Close()
			return Stats{}, errors.Wrap(err, "scan evaluation")
		}
		if cur, ok := byInterview[id]; !ok || l.at >= cur.at {
			byInterview[id] = l
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	for _, l := range byInterview {
		st.Evaluated++
		if l.passed {
			st.Passed++
		}
	}
	if st.Evaluated > 0 {
		st.PassRate = scoring.Round1(float64(st.Passed) / float64(st.Evaluated) * 100)
	}
	return st, nil
}
