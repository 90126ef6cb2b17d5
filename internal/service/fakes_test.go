package service

import (
	"context"
	"sort"
	"time"

	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
)

// In-memory stores backing the service tests. They enforce the same
// constraints as the SQL schema: one pending exam per user and one ledger
// row per (user, question).

type fakeExamStore struct {
	nextID int
	exams  map[int]*model.FinalExam
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{exams: map[int]*model.FinalExam{}}
}

func cloneExam(e *model.FinalExam) *model.FinalExam {
	c := *e
	c.QuestionIDs = append([]int(nil), e.QuestionIDs...)
	c.Answers = make(map[int]int, len(e.Answers))
	for k, v := range e.Answers {
		c.Answers[k] = v
	}
	return &c
}

func (f *fakeExamStore) PendingByUser(_ context.Context, userID int) (*model.FinalExam, error) {
	for _, e := range f.exams {
		if e.UserID == userID && e.Status == model.ExamStatusPending {
			return cloneExam(e), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeExamStore) ByIDAndUser(_ context.Context, examID, userID int) (*model.FinalExam, error) {
	e, ok := f.exams[examID]
	if !ok || e.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return cloneExam(e), nil
}

func (f *fakeExamStore) Create(_ context.Context, e *model.FinalExam) error {
	for _, existing := range f.exams {
		if existing.UserID == e.UserID && existing.Status == model.ExamStatusPending {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	e.ID = f.nextID
	e.CreatedAt = e.StartedAt
	f.exams[e.ID] = cloneExam(e)
	return nil
}

func (f *fakeExamStore) MergeAnswers(_ context.Context, examID int, answers map[int]int) (map[int]int, error) {
	e, ok := f.exams[examID]
	if !ok || e.Status != model.ExamStatusPending {
		return nil, repository.ErrNotFound
	}
	for k, v := range answers {
		e.Answers[k] = v
	}
	merged := make(map[int]int, len(e.Answers))
	for k, v := range e.Answers {
		merged[k] = v
	}
	return merged, nil
}

func (f *fakeExamStore) Complete(_ context.Context, examID int, answers map[int]int, correct, wrong int, passed bool, completedAt time.Time) error {
	e, ok := f.exams[examID]
	if !ok || e.Status != model.ExamStatusPending {
		return repository.ErrNotFound
	}
	e.Answers = make(map[int]int, len(answers))
	for k, v := range answers {
		e.Answers[k] = v
	}
	e.CorrectCount = correct
	e.WrongCount = wrong
	e.Passed = passed
	e.Status = model.ExamStatusCompleted
	at := completedAt
	e.CompletedAt = &at
	return nil
}

func (f *fakeExamStore) DeletePending(_ context.Context, examID, userID int) error {
	e, ok := f.exams[examID]
	if !ok || e.UserID != userID || e.Status != model.ExamStatusPending {
		return repository.ErrNotFound
	}
	delete(f.exams, examID)
	return nil
}

func (f *fakeExamStore) ListByUser(_ context.Context, userID int) ([]model.FinalExam, error) {
	var out []model.FinalExam
	for _, e := range f.exams {
		if e.UserID == userID {
			out = append(out, *cloneExam(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeExamStore) ListExpiredPending(_ context.Context, cutoff time.Time, limit int) ([]model.FinalExam, error) {
	var out []model.FinalExam
	for _, e := range f.exams {
		if e.Status == model.ExamStatusPending && cutoff.After(e.ExpiresAt) {
			out = append(out, *cloneExam(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCatalog struct {
	questions []model.Question
}

// newFakeCatalog builds n questions with ids 1..n; option 1 is always
// correct so tests can choose outcomes deterministically.
func newFakeCatalog(n int) *fakeCatalog {
	f := &fakeCatalog{}
	for i := 1; i <= n; i++ {
		f.questions = append(f.questions, model.Question{
			ID:            i,
			TicketID:      (i-1)%10 + 1,
			QuestionText:  "savol",
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: 1,
		})
	}
	return f
}

func (f *fakeCatalog) CountAll(_ context.Context) (int, error) {
	return len(f.questions), nil
}

func (f *fakeCatalog) SampleIDs(_ context.Context, n int) ([]int, error) {
	ids := make([]int, 0, n)
	for i := range f.questions {
		if len(ids) == n {
			break
		}
		ids = append(ids, f.questions[i].ID)
	}
	return ids, nil
}

func (f *fakeCatalog) ListByIDs(_ context.Context, ids []int) ([]model.Question, error) {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Question
	for i := range f.questions {
		if want[f.questions[i].ID] {
			out = append(out, f.questions[i])
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListByTicket(_ context.Context, ticketID int) ([]model.Question, error) {
	var out []model.Question
	for i := range f.questions {
		if f.questions[i].TicketID == ticketID {
			out = append(out, f.questions[i])
		}
	}
	return out, nil
}

func (f *fakeCatalog) byID(id int) *model.Question {
	for i := range f.questions {
		if f.questions[i].ID == id {
			return &f.questions[i]
		}
	}
	return nil
}

func (f *fakeCatalog) remove(id int) {
	for i := range f.questions {
		if f.questions[i].ID == id {
			f.questions = append(f.questions[:i], f.questions[i+1:]...)
			return
		}
	}
}

type fakeTicketStore struct {
	tickets map[int]*model.Ticket
}

func (f *fakeTicketStore) GetByID(_ context.Context, id int) (*model.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *t
	return &c, nil
}

type fakeMistakeStore struct {
	nextID  int
	rows    map[int]*model.Mistake
	catalog *fakeCatalog
	tickets *fakeTicketStore
}

func newFakeMistakeStore(catalog *fakeCatalog, tickets *fakeTicketStore) *fakeMistakeStore {
	return &fakeMistakeStore{rows: map[int]*model.Mistake{}, catalog: catalog, tickets: tickets}
}

func (f *fakeMistakeStore) UpsertWrong(_ context.Context, m *model.Mistake) (bool, error) {
	for _, row := range f.rows {
		if row.UserID == m.UserID && row.QuestionID == m.QuestionID {
			row.WrongCount++
			row.TicketID = m.TicketID
			row.LastWrongAnswer = m.LastWrongAnswer
			row.LastWrongAt = m.LastWrongAt
			m.ID = row.ID
			m.WrongCount = row.WrongCount
			return false, nil
		}
	}
	f.nextID++
	m.ID = f.nextID
	m.WrongCount = 1
	c := *m
	f.rows[m.ID] = &c
	return true, nil
}

func (f *fakeMistakeStore) joined(row *model.Mistake) model.MistakeWithQuestion {
	out := model.MistakeWithQuestion{Mistake: *row}
	if q := f.catalog.byID(row.QuestionID); q != nil {
		qc := *q
		out.Question = &qc
		if f.tickets != nil {
			if t, ok := f.tickets.tickets[q.TicketID]; ok {
				out.Ticket = &model.TicketRef{ID: t.ID, TicketNumber: t.TicketNumber, Name: t.Name}
			}
		}
	}
	return out
}

func (f *fakeMistakeStore) ListByUser(_ context.Context, userID int) ([]model.MistakeWithQuestion, error) {
	var out []model.MistakeWithQuestion
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, f.joined(row))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastWrongAt.Equal(out[j].LastWrongAt) {
			return out[i].LastWrongAt.After(out[j].LastWrongAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeMistakeStore) ListByUserAndQuestions(_ context.Context, userID int, questionIDs []int) ([]model.MistakeWithQuestion, error) {
	want := make(map[int]bool, len(questionIDs))
	for _, id := range questionIDs {
		want[id] = true
	}
	var out []model.MistakeWithQuestion
	for _, row := range f.rows {
		if row.UserID == userID && want[row.QuestionID] {
			out = append(out, f.joined(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMistakeStore) IncrementWrong(_ context.Context, id, selectedOption int, at time.Time) error {
	row, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.WrongCount++
	row.LastWrongAnswer = selectedOption
	row.LastWrongAt = at
	return nil
}

func (f *fakeMistakeStore) Delete(_ context.Context, id int) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeMistakeStore) CountByUser(_ context.Context, userID int) (int, error) {
	n := 0
	for _, row := range f.rows {
		if row.UserID == userID {
			n++
		}
	}
	return n, nil
}
