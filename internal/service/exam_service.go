package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
)

// Final exam rules.
const (
	TotalExamQuestions = 50
	PassPercentage     = 86.0 // 43 of 50
	ExamDuration       = 60 * time.Minute
)

// Exam errors.
var ErrSessionNotFound = errors.New("no active exam session")

// InsufficientQuestionsError is returned when the catalog is too small to
// draw a full exam from.
type InsufficientQuestionsError struct {
	Required  int
	Available int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("not enough questions in catalog: need %d, have %d", e.Required, e.Available)
}

// QuestionNotInExamError is returned when an answer references a question
// outside the exam's fixed set.
type QuestionNotInExamError struct {
	QuestionID int
}

func (e *QuestionNotInExamError) Error() string {
	return fmt.Sprintf("question %d is not part of this exam", e.QuestionID)
}

// ExamExpiredError is returned when lazy expiry fires: the session has been
// auto-scored and the result is attached, so expiry is never a dead end.
type ExamExpiredError struct {
	Result ExamScore
}

func (e *ExamExpiredError) Error() string {
	return "exam time has expired"
}

// ExamStore is the persistence surface the exam engine needs.
type ExamStore interface {
	PendingByUser(ctx context.Context, userID int) (*model.FinalExam, error)
	ByIDAndUser(ctx context.Context, examID, userID int) (*model.FinalExam, error)
	Create(ctx context.Context, e *model.FinalExam) error
	MergeAnswers(ctx context.Context, examID int, answers map[int]int) (map[int]int, error)
	Complete(ctx context.Context, examID int, answers map[int]int, correct, wrong int, passed bool, completedAt time.Time) error
	DeletePending(ctx context.Context, examID, userID int) error
	ListByUser(ctx context.Context, userID int) ([]model.FinalExam, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]model.FinalExam, error)
}

// QuestionCatalog is the read-only catalog surface the exam engine needs.
type QuestionCatalog interface {
	CountAll(ctx context.Context) (int, error)
	SampleIDs(ctx context.Context, n int) ([]int, error)
	ListByIDs(ctx context.Context, ids []int) ([]model.Question, error)
}

// ExamService owns the final exam session lifecycle: start/resume, answer
// recording, lazy expiry, scoring, history and cancellation.
//
// There is no background timer: expiry is a pure function of (now,
// expires_at) evaluated on every access. The sweep worker only tidies up
// sessions nobody touches.
type ExamService struct {
	exams   ExamStore
	catalog QuestionCatalog
	log     zerolog.Logger
	now     func() time.Time
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamStore, catalog QuestionCatalog, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams:   exams,
		catalog: catalog,
		log:     log.With().Str("component", "exam_service").Logger(),
		now:     time.Now,
	}
}

// ExamSummary is the compact session state returned with every start/resume.
type ExamSummary struct {
	ID             int              `json:"id"`
	Status         model.ExamStatus `json:"status"`
	TotalQuestions int              `json:"total_questions"`
	AnsweredCount  int              `json:"answered_count"`
	StartedAt      time.Time        `json:"started_at"`
	ExpiresAt      time.Time        `json:"expires_at"`
	RemainingTime  int              `json:"remaining_time"` // whole seconds
}

// StartExamResult is the payload for a started or resumed exam. The question
// order matches the sampled order exactly and is part of the contract.
type StartExamResult struct {
	Exam      ExamSummary            `json:"exam"`
	Questions []model.QuestionPublic `json:"questions"`
	Answers   map[int]int            `json:"answers,omitempty"`
	Resumed   bool                   `json:"-"`
}

// AnswerStatus classifies one question in a scored result.
type AnswerStatus string

const (
	AnswerStatusCorrect    AnswerStatus = "correct"
	AnswerStatusWrong      AnswerStatus = "wrong"
	AnswerStatusUnanswered AnswerStatus = "unanswered"
	AnswerStatusSolved     AnswerStatus = "solved"
)

// QuestionResult is the per-question line of a scored exam.
type QuestionResult struct {
	QuestionID    int          `json:"question_id"`
	UserAnswer    *int         `json:"user_answer"`
	CorrectAnswer int          `json:"correct_answer"`
	IsCorrect     bool         `json:"is_correct"`
	Status        AnswerStatus `json:"status"`
}

// ExamScore is the summary of a scored exam. Percentage is always computed
// against the fixed total of 50; unanswered questions count as wrong.
type ExamScore struct {
	ExamID             int       `json:"exam_id"`
	CorrectCount       int       `json:"correct_count"`
	WrongCount         int       `json:"wrong_count"`
	UnansweredCount    int       `json:"unanswered_count"`
	TotalQuestions     int       `json:"total_questions"`
	Percentage         string    `json:"percentage"`
	Passed             bool      `json:"passed"`
	RequiredPercentage int       `json:"required_percentage"`
	StartedAt          time.Time `json:"started_at"`
	CompletedAt        time.Time `json:"completed_at"`
}

// SubmitExamResult combines the score with the per-question breakdown.
type SubmitExamResult struct {
	Result  ExamScore        `json:"result"`
	Details []QuestionResult `json:"details"`
}

// AnswerProgress is returned after recording answers.
type AnswerProgress struct {
	AnsweredCount  int `json:"answered_count"`
	TotalQuestions int `json:"total_questions"`
	RemainingTime  int `json:"remaining_time"`
}

// HistoryEntry is one row of a user's exam history. Percentage is nil while
// the session is still pending.
type HistoryEntry struct {
	ID             int              `json:"id"`
	CorrectCount   int              `json:"correct_count"`
	WrongCount     int              `json:"wrong_count"`
	TotalQuestions int              `json:"total_questions"`
	Percentage     *string          `json:"percentage"`
	Status         model.ExamStatus `json:"status"`
	Passed         bool             `json:"passed"`
	StartedAt      time.Time        `json:"started_at"`
	CompletedAt    *time.Time       `json:"completed_at"`
}

// ExamHistory is a user's full exam history, newest first.
type ExamHistory struct {
	Total       int            `json:"total"`
	PassedCount int            `json:"passed_count"`
	History     []HistoryEntry `json:"history"`
}

// ResultQuestion joins a question's full payload with the user's stored answer.
type ResultQuestion struct {
	Question   model.Question `json:"question"`
	UserAnswer *int           `json:"user_answer"`
	IsCorrect  bool           `json:"is_correct"`
}

// ExamResultView is the post-hoc detail view of one exam, any status,
// with correct options and explanations revealed.
type ExamResultView struct {
	Exam      HistoryEntry     `json:"exam"`
	Questions []ResultQuestion `json:"questions"`
}

// StartOrResume returns the user's pending exam or creates a new one from a
// fresh random sample of the whole catalog. An expired pending exam is
// auto-scored and reported as ExamExpiredError; no new session is created
// in the same call.
func (s *ExamService) StartOrResume(ctx context.Context, userID int) (*StartExamResult, error) {
	existing, err := s.exams.PendingByUser(ctx, userID)
	if err == nil {
		return s.resume(ctx, existing)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find pending exam: %w", err)
	}

	res, err := s.startNew(ctx, userID)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a concurrent start race, the other call's session wins.
		existing, err := s.exams.PendingByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("concurrent start detected, but fetch failed: %w", err)
		}
		return s.resume(ctx, existing)
	}
	return res, err
}

func (s *ExamService) startNew(ctx context.Context, userID int) (*StartExamResult, error) {
	available, err := s.catalog.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if available < TotalExamQuestions {
		return nil, &InsufficientQuestionsError{Required: TotalExamQuestions, Available: available}
	}

	ids, err := s.catalog.SampleIDs(ctx, TotalExamQuestions)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	if len(ids) < TotalExamQuestions {
		return nil, &InsufficientQuestionsError{Required: TotalExamQuestions, Available: len(ids)}
	}

	now := s.now()
	exam := &model.FinalExam{
		UserID:         userID,
		QuestionIDs:    ids,
		Answers:        map[int]int{},
		TotalQuestions: TotalExamQuestions,
		Status:         model.ExamStatusPending,
		StartedAt:      now,
		ExpiresAt:      now.Add(ExamDuration),
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("create exam: %w", err)
	}

	questions, err := s.orderedQuestions(ctx, exam.QuestionIDs)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("user_id", userID).Int("exam_id", exam.ID).Msg("final exam started")

	return &StartExamResult{
		Exam:      s.summary(exam),
		Questions: questions,
	}, nil
}

func (s *ExamService) resume(ctx context.Context, exam *model.FinalExam) (*StartExamResult, error) {
	if exam.ExpiredAt(s.now()) {
		score, err := s.finalize(ctx, exam, nil)
		if err != nil {
			return nil, err
		}
		return nil, &ExamExpiredError{Result: score}
	}

	questions, err := s.orderedQuestions(ctx, exam.QuestionIDs)
	if err != nil {
		return nil, err
	}

	return &StartExamResult{
		Exam:      s.summary(exam),
		Questions: questions,
		Answers:   exam.Answers,
		Resumed:   true,
	}, nil
}

// RecordAnswer saves one answer into a pending exam, last write wins.
func (s *ExamService) RecordAnswer(ctx context.Context, userID, examID, questionID, selectedOption int) (*AnswerProgress, error) {
	return s.RecordAnswers(ctx, userID, examID, map[int]int{questionID: selectedOption})
}

// RecordAnswers merges a batch of answers into a pending exam. The expiry
// check runs first: an expired exam is auto-scored and the call fails with
// ExamExpiredError carrying the result. Every question id must belong to
// the exam's fixed set.
func (s *ExamService) RecordAnswers(ctx context.Context, userID, examID int, answers map[int]int) (*AnswerProgress, error) {
	exam, err := s.pendingByIDAndUser(ctx, examID, userID)
	if err != nil {
		return nil, err
	}

	if exam.ExpiredAt(s.now()) {
		score, err := s.finalize(ctx, exam, nil)
		if err != nil {
			return nil, err
		}
		return nil, &ExamExpiredError{Result: score}
	}

	for id := range answers {
		if !exam.HasQuestion(id) {
			return nil, &QuestionNotInExamError{QuestionID: id}
		}
	}

	merged, err := s.exams.MergeAnswers(ctx, exam.ID, answers)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Scored out from under us (sweep or concurrent submit).
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("save answers: %w", err)
	}

	return &AnswerProgress{
		AnsweredCount:  len(merged),
		TotalQuestions: exam.TotalQuestions,
		RemainingTime:  exam.RemainingSeconds(s.now()),
	}, nil
}

// Submit scores a pending exam, merging an optional final answer batch
// first. There is deliberately no expiry check here: a late submit still
// scores whatever is stored. Re-submission of a completed exam fails with
// ErrSessionNotFound.
func (s *ExamService) Submit(ctx context.Context, userID, examID int, answers map[int]int) (*SubmitExamResult, error) {
	exam, err := s.pendingByIDAndUser(ctx, examID, userID)
	if err != nil {
		return nil, err
	}

	final := exam.Answers
	if len(answers) > 0 {
		final = make(map[int]int, len(exam.Answers)+len(answers))
		for id, sel := range exam.Answers {
			final[id] = sel
		}
		for id, sel := range answers {
			final[id] = sel
		}
	}

	score, details, err := s.scoreAndComplete(ctx, exam, final)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("user_id", userID).
		Int("exam_id", examID).
		Int("correct", score.CorrectCount).
		Bool("passed", score.Passed).
		Msg("final exam submitted")

	return &SubmitExamResult{Result: score, Details: details}, nil
}

// GetHistory returns all of the user's exams, newest first, annotated with
// the pass percentage (nil while pending).
func (s *ExamService) GetHistory(ctx context.Context, userID int) (*ExamHistory, error) {
	exams, err := s.exams.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	history := make([]HistoryEntry, 0, len(exams))
	passed := 0
	for i := range exams {
		entry := s.historyEntry(&exams[i])
		if entry.Passed {
			passed++
		}
		history = append(history, entry)
	}

	return &ExamHistory{Total: len(history), PassedCount: passed, History: history}, nil
}

// GetResult returns one exam with full per-question detail, regardless of
// status or expiry. Correct options and explanations are revealed post hoc.
func (s *ExamService) GetResult(ctx context.Context, userID, examID int) (*ExamResultView, error) {
	exam, err := s.exams.ByIDAndUser(ctx, examID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("find exam: %w", err)
	}

	questions, err := s.catalog.ListByIDs(ctx, exam.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[int]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	details := make([]ResultQuestion, 0, len(exam.QuestionIDs))
	for _, id := range exam.QuestionIDs {
		q, ok := byID[id]
		if !ok {
			continue // question deleted since the exam was drawn
		}
		rq := ResultQuestion{Question: *q}
		if sel, answered := exam.Answers[id]; answered {
			sel := sel
			rq.UserAnswer = &sel
			rq.IsCorrect = sel == q.CorrectOption
		}
		details = append(details, rq)
	}

	return &ExamResultView{Exam: s.historyEntry(exam), Questions: details}, nil
}

// Cancel hard-deletes a pending exam. Completed exams cannot be cancelled.
func (s *ExamService) Cancel(ctx context.Context, userID, examID int) error {
	err := s.exams.DeletePending(ctx, examID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

// State reports the live countdown for a pending exam. An expired exam is
// auto-scored here too, keeping the websocket timer on the same lazy-expiry
// path as every other access.
func (s *ExamService) State(ctx context.Context, userID, examID int) (*ExamSummary, error) {
	exam, err := s.exams.ByIDAndUser(ctx, examID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("find exam: %w", err)
	}
	if exam.Status != model.ExamStatusPending {
		return nil, ErrSessionNotFound
	}
	if exam.ExpiredAt(s.now()) {
		score, err := s.finalize(ctx, exam, nil)
		if err != nil {
			return nil, err
		}
		return nil, &ExamExpiredError{Result: score}
	}
	summary := s.summary(exam)
	return &summary, nil
}

// SweepExpired scores overdue pending exams in one hygiene pass. Returns
// the number of exams scored.
func (s *ExamService) SweepExpired(ctx context.Context, limit int) (int, error) {
	overdue, err := s.exams.ListExpiredPending(ctx, s.now(), limit)
	if err != nil {
		return 0, fmt.Errorf("list expired exams: %w", err)
	}

	scored := 0
	for i := range overdue {
		if _, err := s.finalize(ctx, &overdue[i], nil); err != nil {
			s.log.Error().Err(err).Int("exam_id", overdue[i].ID).Msg("sweep: auto-score failed")
			continue
		}
		scored++
	}
	return scored, nil
}

// ─── Internal helpers ──────────────────────────────────────────────────────

func (s *ExamService) pendingByIDAndUser(ctx context.Context, examID, userID int) (*model.FinalExam, error) {
	exam, err := s.exams.ByIDAndUser(ctx, examID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("find exam: %w", err)
	}
	if exam.Status != model.ExamStatusPending {
		return nil, ErrSessionNotFound
	}
	return exam, nil
}

// finalize auto-scores an exam with whatever answers are stored.
func (s *ExamService) finalize(ctx context.Context, exam *model.FinalExam, answers map[int]int) (ExamScore, error) {
	score, _, err := s.scoreAndComplete(ctx, exam, answers)
	if err != nil {
		return ExamScore{}, err
	}
	s.log.Info().
		Int("user_id", exam.UserID).
		Int("exam_id", exam.ID).
		Int("correct", score.CorrectCount).
		Msg("expired exam auto-scored")
	return score, nil
}

// scoreAndComplete classifies every question of the exam, persists the
// completed state exactly once, and returns the score with details.
// A nil answers map means "score what is stored".
func (s *ExamService) scoreAndComplete(ctx context.Context, exam *model.FinalExam, answers map[int]int) (ExamScore, []QuestionResult, error) {
	if answers == nil {
		answers = exam.Answers
	}

	questions, err := s.catalog.ListByIDs(ctx, exam.QuestionIDs)
	if err != nil {
		return ExamScore{}, nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[int]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	var correct, wrong, unanswered int
	details := make([]QuestionResult, 0, len(exam.QuestionIDs))
	for _, id := range exam.QuestionIDs {
		q, ok := byID[id]
		if !ok {
			continue // question deleted since the exam was drawn
		}

		sel, answered := answers[id]
		switch {
		case !answered:
			unanswered++
			wrong++ // unanswered counts as wrong
			details = append(details, QuestionResult{
				QuestionID:    id,
				CorrectAnswer: q.CorrectOption,
				Status:        AnswerStatusUnanswered,
			})
		case sel == q.CorrectOption:
			correct++
			sel := sel
			details = append(details, QuestionResult{
				QuestionID:    id,
				UserAnswer:    &sel,
				CorrectAnswer: q.CorrectOption,
				IsCorrect:     true,
				Status:        AnswerStatusCorrect,
			})
		default:
			wrong++
			sel := sel
			details = append(details, QuestionResult{
				QuestionID:    id,
				UserAnswer:    &sel,
				CorrectAnswer: q.CorrectOption,
				Status:        AnswerStatusWrong,
			})
		}
	}

	// Percentage over the fixed total, never over the answered count.
	percentage := float64(correct) / float64(exam.TotalQuestions) * 100
	passed := percentage >= PassPercentage
	completedAt := s.now()

	err = s.exams.Complete(ctx, exam.ID, answers, correct, wrong, passed, completedAt)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return ExamScore{}, nil, fmt.Errorf("complete exam: %w", err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		// Someone else scored it first; the stored result is equivalent.
		s.log.Warn().Int("exam_id", exam.ID).Msg("exam already completed, keeping stored result")
	}

	return ExamScore{
		ExamID:             exam.ID,
		CorrectCount:       correct,
		WrongCount:         wrong,
		UnansweredCount:    unanswered,
		TotalQuestions:     exam.TotalQuestions,
		Percentage:         formatPercentage(percentage),
		Passed:             passed,
		RequiredPercentage: int(PassPercentage),
		StartedAt:          exam.StartedAt,
		CompletedAt:        completedAt,
	}, details, nil
}

func (s *ExamService) summary(exam *model.FinalExam) ExamSummary {
	return ExamSummary{
		ID:             exam.ID,
		Status:         exam.Status,
		TotalQuestions: exam.TotalQuestions,
		AnsweredCount:  len(exam.Answers),
		StartedAt:      exam.StartedAt,
		ExpiresAt:      exam.ExpiresAt,
		RemainingTime:  exam.RemainingSeconds(s.now()),
	}
}

func (s *ExamService) historyEntry(exam *model.FinalExam) HistoryEntry {
	entry := HistoryEntry{
		ID:             exam.ID,
		CorrectCount:   exam.CorrectCount,
		WrongCount:     exam.WrongCount,
		TotalQuestions: exam.TotalQuestions,
		Status:         exam.Status,
		Passed:         exam.Passed,
		StartedAt:      exam.StartedAt,
		CompletedAt:    exam.CompletedAt,
	}
	if exam.Status == model.ExamStatusCompleted {
		pct := formatPercentage(float64(exam.CorrectCount) / float64(exam.TotalQuestions) * 100)
		entry.Percentage = &pct
	}
	return entry
}

// orderedQuestions loads the questions and restores the sampled order.
// The same order must be echoed back on every resume.
func (s *ExamService) orderedQuestions(ctx context.Context, ids []int) ([]model.QuestionPublic, error) {
	questions, err := s.catalog.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[int]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	ordered := make([]model.QuestionPublic, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q.Public())
		}
	}
	return ordered, nil
}

func formatPercentage(p float64) string {
	return fmt.Sprintf("%.1f", p)
}
