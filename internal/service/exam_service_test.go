package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
)

type examFixture struct {
	store   *fakeExamStore
	catalog *fakeCatalog
	svc     *ExamService
	now     time.Time
}

func newExamFixture(t *testing.T, questionCount int) *examFixture {
	t.Helper()
	f := &examFixture{
		store:   newFakeExamStore(),
		catalog: newFakeCatalog(questionCount),
		now:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewExamService(f.store, f.catalog, zerolog.Nop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *examFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// correctAnswers answers the first n sampled questions correctly
// (option 1 is always correct in the fake catalog).
func correctAnswers(ids []int, n int) map[int]int {
	answers := make(map[int]int, n)
	for _, id := range ids[:n] {
		answers[id] = 1
	}
	return answers
}

func mustStart(t *testing.T, f *examFixture, userID int) *StartExamResult {
	t.Helper()
	res, err := f.svc.StartOrResume(context.Background(), userID)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	return res
}

func TestStartOrResumeCreatesExam(t *testing.T) {
	f := newExamFixture(t, 120)
	res := mustStart(t, f, 7)

	if res.Resumed {
		t.Error("fresh exam reported as resumed")
	}
	if got := len(res.Questions); got != TotalExamQuestions {
		t.Fatalf("question count = %d, want %d", got, TotalExamQuestions)
	}
	if res.Exam.Status != model.ExamStatusPending {
		t.Errorf("status = %q, want pending", res.Exam.Status)
	}
	if res.Exam.RemainingTime != 3600 {
		t.Errorf("remaining = %d, want 3600", res.Exam.RemainingTime)
	}
	if res.Exam.AnsweredCount != 0 {
		t.Errorf("answered = %d, want 0", res.Exam.AnsweredCount)
	}
	if !res.Exam.ExpiresAt.Equal(f.now.Add(ExamDuration)) {
		t.Errorf("expires_at = %v, want start + %v", res.Exam.ExpiresAt, ExamDuration)
	}
}

func TestStartOrResumeInsufficientQuestions(t *testing.T) {
	f := newExamFixture(t, TotalExamQuestions-1)

	_, err := f.svc.StartOrResume(context.Background(), 7)
	var insufficient *InsufficientQuestionsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientQuestionsError", err)
	}
	if insufficient.Available != TotalExamQuestions-1 || insufficient.Required != TotalExamQuestions {
		t.Errorf("got %d/%d, want %d/%d",
			insufficient.Available, insufficient.Required, TotalExamQuestions-1, TotalExamQuestions)
	}
}

func TestStartOrResumeResumesPending(t *testing.T) {
	f := newExamFixture(t, 120)
	first := mustStart(t, f, 7)

	qID := first.Questions[3].ID
	if _, err := f.svc.RecordAnswer(context.Background(), 7, first.Exam.ID, qID, 2); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	f.advance(10 * time.Minute)
	second := mustStart(t, f, 7)

	if !second.Resumed {
		t.Fatal("expected a resumed session")
	}
	if second.Exam.ID != first.Exam.ID {
		t.Fatalf("resume returned exam %d, want %d", second.Exam.ID, first.Exam.ID)
	}
	for i := range first.Questions {
		if second.Questions[i].ID != first.Questions[i].ID {
			t.Fatalf("question order changed at %d: %d != %d",
				i, second.Questions[i].ID, first.Questions[i].ID)
		}
	}
	if got := second.Answers[qID]; got != 2 {
		t.Errorf("saved answer = %d, want 2", got)
	}
	if second.Exam.RemainingTime != 3000 {
		t.Errorf("remaining = %d, want 3000", second.Exam.RemainingTime)
	}
}

func TestStartOrResumeExpiredAutoScores(t *testing.T) {
	f := newExamFixture(t, 120)
	first := mustStart(t, f, 7)

	f.advance(ExamDuration + time.Second)

	_, err := f.svc.StartOrResume(context.Background(), 7)
	var expired *ExamExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("err = %v, want ExamExpiredError", err)
	}
	if expired.Result.Percentage != "0.0" || expired.Result.Passed {
		t.Errorf("auto-score = %s passed=%v, want 0.0 failed",
			expired.Result.Percentage, expired.Result.Passed)
	}
	if expired.Result.UnansweredCount != TotalExamQuestions {
		t.Errorf("unanswered = %d, want %d", expired.Result.UnansweredCount, TotalExamQuestions)
	}

	stored := f.store.exams[first.Exam.ID]
	if stored.Status != model.ExamStatusCompleted {
		t.Errorf("stored status = %q, want completed", stored.Status)
	}

	// The slot is free again: the next call starts a fresh exam.
	second := mustStart(t, f, 7)
	if second.Exam.ID == first.Exam.ID || second.Resumed {
		t.Error("expected a brand new session after expiry")
	}
}

// racyExamStore misses the first pending lookups, reproducing two
// concurrent starts racing past each other.
type racyExamStore struct {
	*fakeExamStore
	misses int
}

func (r *racyExamStore) PendingByUser(ctx context.Context, userID int) (*model.FinalExam, error) {
	if r.misses > 0 {
		r.misses--
		return nil, repository.ErrNotFound
	}
	return r.fakeExamStore.PendingByUser(ctx, userID)
}

func TestStartOrResumeConcurrentStartResumesWinner(t *testing.T) {
	f := newExamFixture(t, 120)
	first := mustStart(t, f, 7)

	racy := &racyExamStore{fakeExamStore: f.store, misses: 1}
	svc := NewExamService(racy, f.catalog, zerolog.Nop())
	svc.now = func() time.Time { return f.now }

	res, err := svc.StartOrResume(context.Background(), 7)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if !res.Resumed || res.Exam.ID != first.Exam.ID {
		t.Errorf("got exam %d resumed=%v, want winner %d resumed", res.Exam.ID, res.Resumed, first.Exam.ID)
	}
}

func TestRecordAnswersProgress(t *testing.T) {
	f := newExamFixture(t, 120)
	res := mustStart(t, f, 7)
	ids := make([]int, 0, len(res.Questions))
	for _, q := range res.Questions {
		ids = append(ids, q.ID)
	}

	progress, err := f.svc.RecordAnswers(context.Background(), 7, res.Exam.ID, map[int]int{
		ids[0]: 1,
		ids[1]: 3,
	})
	if err != nil {
		t.Fatalf("RecordAnswers: %v", err)
	}
	if progress.AnsweredCount != 2 || progress.TotalQuestions != TotalExamQuestions {
		t.Errorf("progress = %d/%d, want 2/%d",
			progress.AnsweredCount, progress.TotalQuestions, TotalExamQuestions)
	}

	// Re-answering the same question must overwrite, not double count.
	progress, err = f.svc.RecordAnswer(context.Background(), 7, res.Exam.ID, ids[0], 0)
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if progress.AnsweredCount != 2 {
		t.Errorf("answered = %d after overwrite, want 2", progress.AnsweredCount)
	}
	if got := f.store.exams[res.Exam.ID].Answers[ids[0]]; got != 0 {
		t.Errorf("stored answer = %d, want 0 (last write wins)", got)
	}
}

func TestRecordAnswersRejectsForeignQuestion(t *testing.T) {
	f := newExamFixture(t, 120)
	res := mustStart(t, f, 7)

	// Question 120 exists in the catalog but was not sampled (the fake
	// samples ids 1..50).
	_, err := f.svc.RecordAnswer(context.Background(), 7, res.Exam.ID, 120, 1)
	var foreign *QuestionNotInExamError
	if !errors.As(err, &foreign) {
		t.Fatalf("err = %v, want QuestionNotInExamError", err)
	}
	if foreign.QuestionID != 120 {
		t.Errorf("offending id = %d, want 120", foreign.QuestionID)
	}
}

func TestRecordAnswerAfterExpiryAutoScores(t *testing.T) {
	f := newExamFixture(t, 120)
	res := mustStart(t, f, 7)
	qID := res.Questions[0].ID

	if _, err := f.svc.RecordAnswer(context.Background(), 7, res.Exam.ID, qID, 1); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	f.advance(ExamDuration + time.Minute)

	_, err := f.svc.RecordAnswer(context.Background(), 7, res.Exam.ID, res.Questions[1].ID, 1)
	var expired *ExamExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("err = %v, want ExamExpiredError", err)
	}
	// Only the pre-expiry answer counts.
	if expired.Result.CorrectCount != 1 {
		t.Errorf("correct = %d, want 1", expired.Result.CorrectCount)
	}
	if f.store.exams[res.Exam.ID].Status != model.ExamStatusCompleted {
		t.Error("expired exam not persisted as completed")
	}
}

func TestSubmitScoring(t *testing.T) {
	tests := []struct {
		name           string
		correct        int
		wantPercentage string
		wantPassed     bool
	}{
		{"perfect", 50, "100.0", true},
		{"exactly at threshold", 43, "86.0", true},
		{"one below threshold", 42, "84.0", false},
		{"nothing answered", 0, "0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExamFixture(t, 120)
			res := mustStart(t, f, 7)
			ids := make([]int, 0, len(res.Questions))
			for _, q := range res.Questions {
				ids = append(ids, q.ID)
			}

			out, err := f.svc.Submit(context.Background(), 7, res.Exam.ID, correctAnswers(ids, tt.correct))
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if out.Result.Percentage != tt.wantPercentage {
				t.Errorf("percentage = %s, want %s", out.Result.Percentage, tt.wantPercentage)
			}
			if out.Result.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", out.Result.Passed, tt.wantPassed)
			}
			if out.Result.CorrectCount != tt.correct {
				t.Errorf("correct = %d, want %d", out.Result.CorrectCount, tt.correct)
			}
			if got := out.Result.CorrectCount + out.Result.WrongCount; got != TotalExamQuestions {
				t.Errorf("correct+wrong = %d, want %d", got, TotalExamQuestions)
			}
		})
	}
}

func TestSubmitUnansweredCountsAsWrong(t *testing.T) {
	f := newExamFixture(t, 120)
	res := mustStart(t, f, 7)
	ids := make([]int, 0, len(res.Questions))
	for _, q := range res.Questions {
		ids = append(ids, q.ID)
	}

	out, err := f.svc.Submit(context.Background(), 7, res.Exam.ID, correctAnswers(ids, 10))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Result.UnansweredCount != 40 || out.Result.WrongCount != 40 {
		t.Errorf("unanswered=%d wrong=%d, want 40/40",
			out.Result.UnansweredCount, out.Result.WrongCount)
	}
	if out.Result.Percentage != "20.0" {
		t.Errorf("percentage = %s, want 20.0", out.Result.Percentage)
	}

	unanswered := 0
	for _, d := range out.Details {
		if d.Status == AnswerStatusUnanswered {
			unanswered++
			if d.UserAnswer != nil {
				t.Error("unanswered detail carries a user answer")
			}
		}
	}
	if unanswered != 40 {
		t.Errorf("unanswered details = %d, want 40", unanswered)
	}
}

func TestSubmitMergesFinalBatch(t *testing.T) {
	f := newExamFixture(t, 120)
	res := mustStart(t, f, 7)
	qID := res.Questions[0].ID

	// Wrong answer stored during the session, corrected at submit time.
	if _, err := f.svc.RecordAnswer(context.Background(), 7, res.Exam.ID, qID, 0); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	out, err := f.svc.Submit(context.Background(), 7, res.Exam.ID, map[int]int{qID: 1})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Result.CorrectCount != 1 {
		t.Errorf("correct = %d, want 1 (submit batch wins)", out.Result.CorrectCount)
	}
}

func TestSubmitAfterDeadlineStillScores(t *testing.T) {
	f := newExamFixture(t, 120)
	res := mustStart(t, f, 7)
	ids := make([]int, 0, len(res.Questions))
	for _, q := range res.Questions {
		ids = append(ids, q.ID)
	}

	if _, err := f.svc.RecordAnswers(context.Background(), 7, res.Exam.ID, correctAnswers(ids, 45)); err != nil {
		t.Fatalf("RecordAnswers: %v", err)
	}

	// A submit that races past the deadline keeps the stored answers.
	f.advance(ExamDuration + time.Minute)

	out, err := f.svc.Submit(context.Background(), 7, res.Exam.ID, nil)
	if err != nil {
		t.Fatalf("Submit after deadline: %v", err)
	}
	if !out.Result.Passed || out.Result.CorrectCount != 45 {
		t.Errorf("got %d correct passed=%v, want 45 passed", out.Result.CorrectCount, out.Result.Passed)
	}
}

func TestResubmitFails(t *testing.T) {
	f := newExamFixture(t, 120)
	res := mustStart(t, f, 7)

	if _, err := f.svc.Submit(context.Background(), 7, res.Exam.ID, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err := f.svc.Submit(context.Background(), 7, res.Exam.ID, nil)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("resubmit err = %v, want ErrSessionNotFound", err)
	}

	_, err = f.svc.RecordAnswer(context.Background(), 7, res.Exam.ID, res.Questions[0].ID, 1)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("answer after submit err = %v, want ErrSessionNotFound", err)
	}
}

func TestCancelFreesTheSlot(t *testing.T) {
	f := newExamFixture(t, 120)
	first := mustStart(t, f, 7)

	if err := f.svc.Cancel(context.Background(), 7, first.Exam.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := f.svc.Cancel(context.Background(), 7, first.Exam.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second cancel err = %v, want ErrSessionNotFound", err)
	}

	second := mustStart(t, f, 7)
	if second.Exam.ID == first.Exam.ID || second.Resumed {
		t.Error("cancel did not free the pending slot")
	}
}

func TestGetHistory(t *testing.T) {
	f := newExamFixture(t, 120)

	first := mustStart(t, f, 7)
	ids := make([]int, 0, len(first.Questions))
	for _, q := range first.Questions {
		ids = append(ids, q.ID)
	}
	if _, err := f.svc.Submit(context.Background(), 7, first.Exam.ID, correctAnswers(ids, 43)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	f.advance(time.Hour * 2)
	second := mustStart(t, f, 7)

	history, err := f.svc.GetHistory(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if history.Total != 2 || history.PassedCount != 1 {
		t.Fatalf("total=%d passed=%d, want 2/1", history.Total, history.PassedCount)
	}

	// Newest first.
	if history.History[0].ID != second.Exam.ID {
		t.Errorf("first entry = exam %d, want newest %d", history.History[0].ID, second.Exam.ID)
	}
	if history.History[0].Percentage != nil {
		t.Error("pending exam has a percentage")
	}
	if got := history.History[1].Percentage; got == nil || *got != "86.0" {
		t.Errorf("completed percentage = %v, want 86.0", got)
	}
}

func TestGetResultRevealsAnswers(t *testing.T) {
	f := newExamFixture(t, 120)
	res := mustStart(t, f, 7)
	qID := res.Questions[0].ID

	if _, err := f.svc.Submit(context.Background(), 7, res.Exam.ID, map[int]int{qID: 3}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	view, err := f.svc.GetResult(context.Background(), 7, res.Exam.ID)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if view.Exam.Status != model.ExamStatusCompleted {
		t.Errorf("status = %q, want completed", view.Exam.Status)
	}
	if len(view.Questions) != TotalExamQuestions {
		t.Fatalf("questions = %d, want %d", len(view.Questions), TotalExamQuestions)
	}

	got := view.Questions[0]
	if got.Question.CorrectOption != 1 {
		t.Error("result view must reveal the correct option")
	}
	if got.UserAnswer == nil || *got.UserAnswer != 3 || got.IsCorrect {
		t.Errorf("user answer = %v correct=%v, want 3 wrong", got.UserAnswer, got.IsCorrect)
	}

	// Not the owner.
	if _, err := f.svc.GetResult(context.Background(), 8, res.Exam.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("foreign result err = %v, want ErrSessionNotFound", err)
	}
}

func TestSweepExpired(t *testing.T) {
	f := newExamFixture(t, 120)

	mustStart(t, f, 1)
	f.advance(30 * time.Minute)
	mustStart(t, f, 2)
	f.advance(45 * time.Minute) // user 1 is overdue, user 2 is not

	scored, err := f.svc.SweepExpired(context.Background(), 100)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if scored != 1 {
		t.Fatalf("scored = %d, want 1", scored)
	}

	for _, e := range f.store.exams {
		switch e.UserID {
		case 1:
			if e.Status != model.ExamStatusCompleted {
				t.Error("overdue exam not completed by sweep")
			}
		case 2:
			if e.Status != model.ExamStatusPending {
				t.Error("live exam touched by sweep")
			}
		}
	}
}
