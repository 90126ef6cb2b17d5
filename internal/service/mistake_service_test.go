package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
)

type mistakeFixture struct {
	mistakes *fakeMistakeStore
	tickets  *fakeTicketStore
	catalog  *fakeCatalog
	svc      *MistakeService
	now      time.Time
}

// newMistakeFixture sets up two tickets: demo ticket 1 with questions
// 1..3 and paid ticket 2 with questions 4..6. Option 1 is always correct.
func newMistakeFixture(t *testing.T) *mistakeFixture {
	t.Helper()

	catalog := &fakeCatalog{}
	for i := 1; i <= 6; i++ {
		ticketID := 1
		if i > 3 {
			ticketID = 2
		}
		catalog.questions = append(catalog.questions, model.Question{
			ID:            i,
			TicketID:      ticketID,
			QuestionText:  "savol",
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: 1,
		})
	}

	tickets := &fakeTicketStore{tickets: map[int]*model.Ticket{
		1: {ID: 1, TicketNumber: 1, Name: "Bilet 1", IsDemo: true},
		2: {ID: 2, TicketNumber: 2, Name: "Bilet 2"},
	}}

	f := &mistakeFixture{
		mistakes: newFakeMistakeStore(catalog, tickets),
		tickets:  tickets,
		catalog:  catalog,
		now:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewMistakeService(f.mistakes, f.tickets, f.catalog, zerolog.Nop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func plainUser(id int) *model.User {
	return &model.User{ID: id, Role: model.RoleUser}
}

func subscribedUser(id int, now time.Time) *model.User {
	end := now.Add(10 * 24 * time.Hour)
	return &model.User{ID: id, Role: model.RoleUser, IsSubscribed: true, SubscriptionEnd: &end}
}

func TestSubmitTicketAnswersGrades(t *testing.T) {
	f := newMistakeFixture(t)

	// Q1 correct, Q2 wrong, Q3 unanswered.
	res, err := f.svc.SubmitTicketAnswers(context.Background(), plainUser(7), 1, map[int]int{1: 1, 2: 3})
	if err != nil {
		t.Fatalf("SubmitTicketAnswers: %v", err)
	}

	s := res.Summary
	if s.CorrectCount != 1 || s.WrongCount != 1 || s.UnansweredCount != 1 {
		t.Errorf("summary = %d/%d/%d, want 1/1/1", s.CorrectCount, s.WrongCount, s.UnansweredCount)
	}
	if s.Percentage != "33.3" {
		t.Errorf("percentage = %s, want 33.3", s.Percentage)
	}
	if s.AnsweredCount != 2 || s.TotalQuestions != 3 {
		t.Errorf("answered/total = %d/%d, want 2/3", s.AnsweredCount, s.TotalQuestions)
	}
	if res.Ticket.TicketNumber != 1 {
		t.Errorf("ticket number = %d, want 1", res.Ticket.TicketNumber)
	}

	// Only the wrong answer lands in the ledger.
	n, _ := f.mistakes.CountByUser(context.Background(), 7)
	if n != 1 {
		t.Fatalf("ledger size = %d, want 1", n)
	}
	list, err := f.svc.ListMyMistakes(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListMyMistakes: %v", err)
	}
	entry := list.Mistakes[0]
	if entry.Question.ID != 2 || entry.WrongCount != 1 || entry.LastWrongAnswer != 3 {
		t.Errorf("entry = q%d count=%d last=%d, want q2 count=1 last=3",
			entry.Question.ID, entry.WrongCount, entry.LastWrongAnswer)
	}
}

func TestSubmitTicketAnswersRepeatWrongIncrements(t *testing.T) {
	f := newMistakeFixture(t)
	user := plainUser(7)

	if _, err := f.svc.SubmitTicketAnswers(context.Background(), user, 1, map[int]int{2: 3}); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	f.now = f.now.Add(time.Hour)
	if _, err := f.svc.SubmitTicketAnswers(context.Background(), user, 1, map[int]int{2: 0}); err != nil {
		t.Fatalf("second submission: %v", err)
	}

	list, _ := f.svc.ListMyMistakes(context.Background(), 7)
	if list.Total != 1 {
		t.Fatalf("ledger size = %d, want a single row per question", list.Total)
	}
	entry := list.Mistakes[0]
	if entry.WrongCount != 2 {
		t.Errorf("wrong count = %d, want 2", entry.WrongCount)
	}
	if entry.LastWrongAnswer != 0 {
		t.Errorf("last wrong answer = %d, want the most recent (0)", entry.LastWrongAnswer)
	}
	if !entry.LastWrongAt.Equal(f.now) {
		t.Errorf("last wrong at = %v, want %v", entry.LastWrongAt, f.now)
	}
}

func TestSubmitTicketAnswersAccessGate(t *testing.T) {
	f := newMistakeFixture(t)
	answers := map[int]int{4: 1}

	tests := []struct {
		name    string
		user    *model.User
		wantErr error
	}{
		{"unsubscribed user on paid ticket", plainUser(7), ErrSubscriptionRequired},
		{"subscribed user on paid ticket", subscribedUser(8, f.now), nil},
		{"admin on paid ticket", &model.User{ID: 9, Role: model.RoleAdmin}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitTicketAnswers(context.Background(), tt.user, 2, answers)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Expired subscription no longer opens the gate.
	lapsed := subscribedUser(10, f.now.Add(-30*24*time.Hour))
	if _, err := f.svc.SubmitTicketAnswers(context.Background(), lapsed, 2, answers); !errors.Is(err, ErrSubscriptionRequired) {
		t.Errorf("lapsed subscription err = %v, want ErrSubscriptionRequired", err)
	}

	// Demo tickets stay free for everyone.
	if _, err := f.svc.SubmitTicketAnswers(context.Background(), plainUser(7), 1, map[int]int{1: 1}); err != nil {
		t.Errorf("demo ticket err = %v, want nil", err)
	}
}

func TestSubmitTicketAnswersValidation(t *testing.T) {
	f := newMistakeFixture(t)

	if _, err := f.svc.SubmitTicketAnswers(context.Background(), plainUser(7), 99, map[int]int{1: 1}); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("unknown ticket err = %v, want ErrTicketNotFound", err)
	}

	// Question 4 belongs to ticket 2.
	_, err := f.svc.SubmitTicketAnswers(context.Background(), plainUser(7), 1, map[int]int{4: 1})
	var foreign *ForeignQuestionError
	if !errors.As(err, &foreign) {
		t.Fatalf("err = %v, want ForeignQuestionError", err)
	}
	if foreign.QuestionID != 4 {
		t.Errorf("offending id = %d, want 4", foreign.QuestionID)
	}

	// Empty ticket.
	f.tickets.tickets[3] = &model.Ticket{ID: 3, TicketNumber: 3, Name: "Bo'sh", IsDemo: true}
	if _, err := f.svc.SubmitTicketAnswers(context.Background(), plainUser(7), 3, map[int]int{}); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("empty ticket err = %v, want ErrNoQuestions", err)
	}
}

func TestListMyMistakesOrderAndDangling(t *testing.T) {
	f := newMistakeFixture(t)
	user := plainUser(7)

	if _, err := f.svc.SubmitTicketAnswers(context.Background(), user, 1, map[int]int{2: 3}); err != nil {
		t.Fatal(err)
	}
	f.now = f.now.Add(time.Hour)
	if _, err := f.svc.SubmitTicketAnswers(context.Background(), user, 1, map[int]int{3: 0}); err != nil {
		t.Fatal(err)
	}

	list, err := f.svc.ListMyMistakes(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListMyMistakes: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("total = %d, want 2", list.Total)
	}
	if list.Mistakes[0].Question.ID != 3 {
		t.Errorf("first entry = q%d, want the most recent (q3)", list.Mistakes[0].Question.ID)
	}
	if list.Mistakes[0].Question.Ticket == nil || list.Mistakes[0].Question.Ticket.ID != 1 {
		t.Error("entry missing its ticket summary")
	}

	// Entries pointing at deleted questions disappear from the view.
	f.catalog.remove(3)
	list, _ = f.svc.ListMyMistakes(context.Background(), 7)
	if list.Total != 1 || list.Mistakes[0].Question.ID != 2 {
		t.Errorf("after delete total = %d, want only q2", list.Total)
	}
}

func TestPracticeSubmitSolvesAndIncrements(t *testing.T) {
	f := newMistakeFixture(t)
	user := plainUser(7)

	// Seed two mistakes.
	if _, err := f.svc.SubmitTicketAnswers(context.Background(), user, 1, map[int]int{2: 3, 3: 0}); err != nil {
		t.Fatal(err)
	}

	f.now = f.now.Add(time.Hour)
	res, err := f.svc.PracticeSubmit(context.Background(), 7, map[int]int{
		2: 1, // solved
		3: 2, // still wrong
	})
	if err != nil {
		t.Fatalf("PracticeSubmit: %v", err)
	}

	s := res.Summary
	if s.SolvedCount != 1 || s.StillWrongCount != 1 || s.SubmittedCount != 2 {
		t.Errorf("summary = solved %d wrong %d submitted %d, want 1/1/2",
			s.SolvedCount, s.StillWrongCount, s.SubmittedCount)
	}
	if s.RemainingCount != 1 {
		t.Errorf("remaining = %d, want 1", s.RemainingCount)
	}

	for _, d := range res.Details {
		switch d.QuestionID {
		case 2:
			if d.Status != AnswerStatusSolved || !d.IsCorrect {
				t.Errorf("q2 status = %s, want solved", d.Status)
			}
		case 3:
			if d.Status != AnswerStatusWrong || d.IsCorrect {
				t.Errorf("q3 status = %s, want wrong", d.Status)
			}
		}
	}

	// Solving deletes the row for good; the still-wrong one is bumped.
	list, _ := f.svc.ListMyMistakes(context.Background(), 7)
	if list.Total != 1 {
		t.Fatalf("ledger size = %d, want 1", list.Total)
	}
	entry := list.Mistakes[0]
	if entry.Question.ID != 3 || entry.WrongCount != 2 || entry.LastWrongAnswer != 2 {
		t.Errorf("surviving entry = q%d count=%d last=%d, want q3 count=2 last=2",
			entry.Question.ID, entry.WrongCount, entry.LastWrongAnswer)
	}
}

func TestPracticeSubmitSolvedCanReturn(t *testing.T) {
	f := newMistakeFixture(t)
	user := plainUser(7)

	if _, err := f.svc.SubmitTicketAnswers(context.Background(), user, 1, map[int]int{2: 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.PracticeSubmit(context.Background(), 7, map[int]int{2: 1}); err != nil {
		t.Fatal(err)
	}

	// Getting it wrong again starts a fresh row at count 1.
	if _, err := f.svc.SubmitTicketAnswers(context.Background(), user, 1, map[int]int{2: 0}); err != nil {
		t.Fatal(err)
	}
	list, _ := f.svc.ListMyMistakes(context.Background(), 7)
	if list.Total != 1 || list.Mistakes[0].WrongCount != 1 {
		t.Errorf("re-entered mistake count = %d, want 1", list.Mistakes[0].WrongCount)
	}
}

func TestPracticeSubmitValidation(t *testing.T) {
	f := newMistakeFixture(t)

	if _, err := f.svc.PracticeSubmit(context.Background(), 7, nil); !errors.Is(err, ErrEmptyAnswers) {
		t.Errorf("nil answers err = %v, want ErrEmptyAnswers", err)
	}
	if _, err := f.svc.PracticeSubmit(context.Background(), 7, map[int]int{}); !errors.Is(err, ErrEmptyAnswers) {
		t.Errorf("empty answers err = %v, want ErrEmptyAnswers", err)
	}

	// Ledger is empty, so nothing can match.
	if _, err := f.svc.PracticeSubmit(context.Background(), 7, map[int]int{2: 1}); !errors.Is(err, ErrNoMatchingMistakes) {
		t.Errorf("no matches err = %v, want ErrNoMatchingMistakes", err)
	}

	// Unmatched questions ride along with matched ones without failing.
	if _, err := f.svc.SubmitTicketAnswers(context.Background(), plainUser(7), 1, map[int]int{2: 3}); err != nil {
		t.Fatal(err)
	}
	res, err := f.svc.PracticeSubmit(context.Background(), 7, map[int]int{2: 1, 999: 1})
	if err != nil {
		t.Fatalf("mixed practice err = %v", err)
	}
	if res.Summary.SubmittedCount != 1 {
		t.Errorf("submitted = %d, want only the matched row", res.Summary.SubmittedCount)
	}
}

func TestRecordOutcomeUpsert(t *testing.T) {
	f := newMistakeFixture(t)

	count, err := f.svc.RecordOutcome(context.Background(), 7, 2, 1, 3)
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if count != 1 {
		t.Errorf("first wrong count = %d, want 1", count)
	}

	count, err = f.svc.RecordOutcome(context.Background(), 7, 2, 1, 0)
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if count != 2 {
		t.Errorf("second wrong count = %d, want 2", count)
	}
}
