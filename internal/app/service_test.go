package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AVSAkash/interview-assistant/internal/adapters/ai"
	"github.com/AVSAkash/interview-assistant/internal/adapters/repository"
	"github.com/AVSAkash/interview-assistant/internal/adapters/storage"
	service "github.com/AVSAkash/interview-assistant/internal/app"
	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
	"github.com/AVSAkash/interview-assistant/internal/domain/resume"
	"github.com/AVSAkash/interview-assistant/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// stubGateway answers every AI call locally.
type stubGateway struct {
	mu           sync.Mutex
	generated    int
	score        int
	questionErr  error
	evalErr      error
	summaryErr   error
	evalHook     func(question, answer string)
	answers      []string
	summaryInput []interview.Question
}

func newStubGateway() *stubGateway { return &stubGateway{score: 7} }

func (g *stubGateway) set(fn func(g *stubGateway)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g)
}

func (g *stubGateway) GenerateQuestion(_ context.Context, d interview.Difficulty) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.questionErr != nil {
		return "", g.questionErr
	}
	g.generated++
	return fmt.Sprintf("%s question %d", d, g.generated), nil
}

func (g *stubGateway) EvaluateAnswer(_ context.Context, question, answer string) (ai.Evaluation, error) {
	g.mu.Lock()
	hook, err, score := g.evalHook, g.evalErr, g.score
	g.answers = append(g.answers, answer)
	g.mu.Unlock()

	if hook != nil {
		hook(question, answer)
	}
	if err != nil {
		return ai.Evaluation{}, err
	}
	return ai.Evaluation{Score: score, Feedback: "fine"}, nil
}

func (g *stubGateway) GenerateSummary(_ context.Context, questions []interview.Question) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.summaryErr != nil {
		return "", g.summaryErr
	}
	g.summaryInput = questions
	return "Solid fundamentals; could go deeper on system design.", nil
}

func (g *stubGateway) recordedAnswers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.answers...)
}

// flakyStore fails saves on demand.
type flakyStore struct {
	*storage.Memory
	failSave atomic.Bool
}

func (s *flakyStore) Save(ctx context.Context, key string, data []byte) error {
	if s.failSave.Load() {
		return errors.New("disk full")
	}
	return s.Memory.Save(ctx, key, data)
}

// recordingSink collects completion events.
type recordingSink struct {
	events chan interview.Completed
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(_ context.Context, e interview.Completed) error {
	s.events <- e
	return nil
}

var candidate = interview.Identity{Name: "Jane Doe", Email: "jane@example.com", Phone: "415-555-2671"}

func newService(g *stubGateway, store storage.Store, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithLogger(logger.NewNop()),
		service.WithCountdown(func(int) time.Duration { return time.Hour }),
	}
	return service.New(store, g, append(base, opts...)...)
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that was not started", t, func() {
		svc := newService(newStubGateway(), storage.NewMemory())

		Convey("Then operations fail with ErrNotStarted", func() {
			_, err := svc.Snapshot(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.StartInterview(ctx, candidate)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a started service", t, func() {
		svc := newService(newStubGateway(), storage.NewMemory(),
			service.WithWorkerCount(2),
			service.WithQueueSize(8),
			service.WithDedupeSize(16),
		)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		Convey("Then it reports its configuration", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 8)
			So(stats["candidates"], ShouldEqual, 0)
			So(stats["sink"], ShouldEqual, "log")
		})

		Convey("And an empty store yields an idle session", func() {
			view, err := svc.Snapshot(ctx)
			So(err, ShouldBeNil)
			So(view.Status, ShouldEqual, interview.StatusIdle)
			So(view.Questions, ShouldBeEmpty)
			So(view.Resumable, ShouldBeFalse)
		})

		Convey("When it is stopped", func() {
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it is marked as stopped and a second stop is a no-op", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_StartInterview(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		g := newStubGateway()
		svc := newService(g, storage.NewMemory())
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		Convey("When a required field is missing", func() {
			_, err := svc.StartInterview(ctx, interview.Identity{Name: "Jane Doe", Email: "jane@example.com"})

			Convey("Then it fails validation and the session stays idle", func() {
				So(errors.Is(err, interview.ErrValidation), ShouldBeTrue)
				view, _ := svc.Snapshot(ctx)
				So(view.Status, ShouldEqual, interview.StatusIdle)
			})
		})

		Convey("When the candidate is complete", func() {
			view, err := svc.StartInterview(ctx, candidate)

			Convey("Then the first easy question is pending with its countdown", func() {
				So(err, ShouldBeNil)
				So(view.Status, ShouldEqual, interview.StatusInProgress)
				So(view.ID, ShouldNotBeEmpty)
				So(view.Candidate.Name, ShouldEqual, "Jane Doe")
				So(view.Questions, ShouldHaveLength, 1)
				So(view.Questions[0].Text, ShouldEqual, "easy question 1")
				So(view.Pending, ShouldBeTrue)
				So(view.Difficulty, ShouldEqual, interview.DifficultyEasy)
				So(view.TimerSeconds, ShouldEqual, 20)
				So(view.RemainingSeconds, ShouldNotBeNil)
			})

			Convey("And generating again returns the pending question unchanged", func() {
				again, err := svc.GenerateQuestion(ctx)
				So(err, ShouldBeNil)
				So(again.Questions, ShouldHaveLength, 1)
				So(again.Questions[0].Text, ShouldEqual, "easy question 1")
			})
		})

		Convey("When the first question cannot be generated", func() {
			g.set(func(g *stubGateway) { g.questionErr = fmt.Errorf("%w: timeout", ai.ErrAIUnavailable) })
			_, err := svc.StartInterview(ctx, candidate)

			Convey("Then the session is started without a question", func() {
				So(errors.Is(err, ai.ErrAIUnavailable), ShouldBeTrue)
				view, _ := svc.Snapshot(ctx)
				So(view.Status, ShouldEqual, interview.StatusInProgress)
				So(view.Questions, ShouldBeEmpty)
				So(view.Pending, ShouldBeFalse)
			})

			Convey("And a retry records it", func() {
				g.set(func(g *stubGateway) { g.questionErr = nil })
				view, err := svc.GenerateQuestion(ctx)
				So(err, ShouldBeNil)
				So(view.Pending, ShouldBeTrue)
			})
		})
	})
}

func TestService_FullInterview(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with a recording sink", t, func() {
		g := newStubGateway()
		sink := &recordingSink{events: make(chan interview.Completed, 1)}
		svc := newService(g, storage.NewMemory(), service.WithSink(sink),
			service.WithClock(func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		_, err := svc.StartInterview(ctx, candidate)
		So(err, ShouldBeNil)

		Convey("When all six questions are answered", func() {
			var res service.AnswerResult
			difficulties := []interview.Difficulty{}
			for i := 0; i < interview.MaxQuestions; i++ {
				view, _ := svc.Snapshot(ctx)
				difficulties = append(difficulties, view.Difficulty)
				res, err = svc.SubmitAnswer(ctx, i, fmt.Sprintf("answer %d", i))
				So(err, ShouldBeNil)
			}

			Convey("Then the difficulty follows the question position", func() {
				So(difficulties, ShouldResemble, []interview.Difficulty{
					interview.DifficultyEasy, interview.DifficultyEasy,
					interview.DifficultyMedium, interview.DifficultyMedium,
					interview.DifficultyHard, interview.DifficultyHard,
				})
			})

			Convey("Then the session is finished and the record archived", func() {
				So(res.Session.Status, ShouldEqual, interview.StatusFinished)
				So(res.Record, ShouldNotBeNil)
				So(res.Record.FinalScore, ShouldEqual, 7)
				So(res.Record.Interview, ShouldHaveLength, interview.MaxQuestions)
				So(res.Record.Candidate, ShouldResemble, candidate)
				So(res.Record.Date.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(res.Session.LastRecord.ID, ShouldEqual, res.Record.ID)

				q, _ := repository.ParseQuery("", "")
				entries, err := svc.Candidates(ctx, q)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Rank, ShouldEqual, 1)

				entry, err := svc.Candidate(ctx, res.Record.ID)
				So(err, ShouldBeNil)
				So(entry.Record.Summary, ShouldNotBeEmpty)
			})

			Convey("Then the summary saw the last answer", func() {
				So(g.summaryInput, ShouldHaveLength, interview.MaxQuestions)
				So(g.summaryInput[5].Answer, ShouldEqual, "answer 5")
				So(g.summaryInput[5].Answered, ShouldBeTrue)
			})

			Convey("Then a completion event is published", func() {
				select {
				case e := <-sink.events:
					So(e.RecordID, ShouldEqual, res.Record.ID)
					So(e.FinalScore, ShouldEqual, 7)
					So(e.Band, ShouldEqual, interview.BandOrange)
				case <-time.After(2 * time.Second):
					So("no completion event", ShouldBeEmpty)
				}
			})

			Convey("Then further answers are rejected", func() {
				_, err := svc.SubmitAnswer(ctx, 5, "again")
				So(errors.Is(err, service.ErrStaleResponse), ShouldBeTrue)
			})
		})
	})
}

func TestService_SubmissionGuard(t *testing.T) {
	ctx := context.Background()

	Convey("Given an interview with a pending question", t, func() {
		g := newStubGateway()
		svc := newService(g, storage.NewMemory())
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })
		_, err := svc.StartInterview(ctx, candidate)
		So(err, ShouldBeNil)

		entered := make(chan struct{}, 1)
		release := make(chan struct{})
		g.set(func(g *stubGateway) {
			g.evalHook = func(string, string) {
				entered <- struct{}{}
				<-release
			}
		})

		Convey("When a second submission arrives while the first is evaluated", func() {
			done := make(chan error, 1)
			go func() {
				_, err := svc.SubmitAnswer(ctx, 0, "first")
				done <- err
			}()
			<-entered
			_, err := svc.SubmitAnswer(ctx, 0, "second")
			close(release)

			Convey("Then only the first answer is recorded", func() {
				So(errors.Is(err, service.ErrDuplicateSubmission), ShouldBeTrue)
				So(<-done, ShouldBeNil)
				view, _ := svc.Snapshot(ctx)
				So(view.Questions[0].Answer, ShouldEqual, "first")
				So(view.CurrentQuestionIndex, ShouldEqual, 1)
			})
		})

		Convey("When the session is reset during evaluation", func() {
			done := make(chan error, 1)
			go func() {
				_, err := svc.SubmitAnswer(ctx, 0, "first")
				done <- err
			}()
			<-entered
			_, resetErr := svc.Reset(ctx)
			close(release)

			Convey("Then the evaluation is discarded", func() {
				So(resetErr, ShouldBeNil)
				So(errors.Is(<-done, service.ErrStaleResponse), ShouldBeTrue)
				view, _ := svc.Snapshot(ctx)
				So(view.Status, ShouldEqual, interview.StatusIdle)
				So(view.Questions, ShouldBeEmpty)
			})
		})
	})

	Convey("Given an evaluation that fails", t, func() {
		g := newStubGateway()
		svc := newService(g, storage.NewMemory())
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })
		_, err := svc.StartInterview(ctx, candidate)
		So(err, ShouldBeNil)
		g.set(func(g *stubGateway) { g.evalErr = fmt.Errorf("%w: score out of range", ai.ErrAIResponse) })

		_, err = svc.SubmitAnswer(ctx, 0, "my answer")

		Convey("Then nothing is recorded and the countdown keeps running", func() {
			So(errors.Is(err, ai.ErrAIResponse), ShouldBeTrue)
			view, _ := svc.Snapshot(ctx)
			So(view.Pending, ShouldBeTrue)
			So(view.Questions[0].Answered, ShouldBeFalse)
			So(view.RemainingSeconds, ShouldNotBeNil)
		})

		Convey("Then the candidate may retry", func() {
			g.set(func(g *stubGateway) { g.evalErr = nil })
			res, err := svc.SubmitAnswer(ctx, 0, "my answer")
			So(err, ShouldBeNil)
			So(res.Evaluation.Score, ShouldEqual, 7)
			So(res.Session.CurrentQuestionIndex, ShouldEqual, 1)
		})
	})

	Convey("Given an answer for a question that is not current", t, func() {
		svc := newService(newStubGateway(), storage.NewMemory())
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })
		_, err := svc.StartInterview(ctx, candidate)
		So(err, ShouldBeNil)

		_, err = svc.SubmitAnswer(ctx, 3, "ahead of time")
		So(errors.Is(err, interview.ErrInvalidTransition), ShouldBeTrue)
		So(errors.Is(svc.SaveDraft(ctx, 2, "draft"), interview.ErrInvalidTransition), ShouldBeTrue)
	})
}

func TestService_NextQuestionFailure(t *testing.T) {
	ctx := context.Background()

	Convey("Given the next question cannot be generated", t, func() {
		g := newStubGateway()
		svc := newService(g, storage.NewMemory())
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })
		_, err := svc.StartInterview(ctx, candidate)
		So(err, ShouldBeNil)
		g.set(func(g *stubGateway) { g.questionErr = fmt.Errorf("%w: connection refused", ai.ErrAIUnavailable) })

		res, err := svc.SubmitAnswer(ctx, 0, "my answer")

		Convey("Then the answer is still recorded", func() {
			So(err, ShouldBeNil)
			So(res.NextQuestionError, ShouldNotBeEmpty)
			So(res.Session.CurrentQuestionIndex, ShouldEqual, 1)
			So(res.Session.Pending, ShouldBeFalse)
			So(res.Session.Questions[0].Answered, ShouldBeTrue)
		})

		Convey("Then the question can be generated again", func() {
			g.set(func(g *stubGateway) { g.questionErr = nil })
			view, err := svc.GenerateQuestion(ctx)
			So(err, ShouldBeNil)
			So(view.Pending, ShouldBeTrue)
			So(view.Questions, ShouldHaveLength, 2)
		})
	})
}

func TestService_CountdownExpiry(t *testing.T) {
	ctx := context.Background()

	Convey("Given a short countdown on the first question", t, func() {
		g := newStubGateway()
		svc := newService(g, storage.NewMemory(), service.WithCountdown(func(index int) time.Duration {
			if index == 0 {
				return 300 * time.Millisecond
			}
			return time.Hour
		}))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })
		_, err := svc.StartInterview(ctx, candidate)
		So(err, ShouldBeNil)
		So(svc.SaveDraft(ctx, 0, "typed so far"), ShouldBeNil)

		Convey("When the countdown expires", func() {
			deadline := time.Now().Add(3 * time.Second)
			var view service.SessionView
			for time.Now().Before(deadline) {
				view, _ = svc.Snapshot(ctx)
				if view.CurrentQuestionIndex == 1 && view.Pending {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}

			Convey("Then the draft is submitted and the interview moves on", func() {
				So(view.CurrentQuestionIndex, ShouldEqual, 1)
				So(view.Questions[0].Answer, ShouldEqual, "typed so far")
				So(view.Questions[0].Answered, ShouldBeTrue)
				So(g.recordedAnswers(), ShouldResemble, []string{"typed so far"})
			})

			Convey("Then a late manual submission is suppressed", func() {
				_, err := svc.SubmitAnswer(ctx, 0, "late")
				So(errors.Is(err, service.ErrDuplicateSubmission), ShouldBeTrue)
			})
		})
	})
}

func TestService_Persistence(t *testing.T) {
	ctx := context.Background()

	Convey("Given an interview interrupted by a restart", t, func() {
		store := storage.NewMemory()
		first := newService(newStubGateway(), store)
		So(first.Start(ctx), ShouldBeNil)
		started, err := first.StartInterview(ctx, candidate)
		So(err, ShouldBeNil)
		So(first.Stop(ctx), ShouldBeNil)

		second := newService(newStubGateway(), store)
		So(second.Start(ctx), ShouldBeNil)
		Reset(func() { _ = second.Stop(ctx) })

		Convey("Then the restored session is resumable without a running countdown", func() {
			view, err := second.Snapshot(ctx)
			So(err, ShouldBeNil)
			So(view.ID, ShouldEqual, started.ID)
			So(view.Resumable, ShouldBeTrue)
			So(view.Pending, ShouldBeTrue)
			So(view.RemainingSeconds, ShouldBeNil)
		})

		Convey("When it is resumed", func() {
			view, err := second.Resume(ctx)

			Convey("Then the countdown restarts", func() {
				So(err, ShouldBeNil)
				So(view.Resumable, ShouldBeFalse)
				So(view.RemainingSeconds, ShouldNotBeNil)
				So(view.Questions[0].Text, ShouldEqual, started.Questions[0].Text)
			})
		})

		Convey("When it is reset instead", func() {
			view, err := second.Reset(ctx)

			Convey("Then the session is idle", func() {
				So(err, ShouldBeNil)
				So(view.Status, ShouldEqual, interview.StatusIdle)
				So(view.Resumable, ShouldBeFalse)
				_, err := second.Resume(ctx)
				So(errors.Is(err, interview.ErrInvalidTransition), ShouldBeTrue)
			})
		})
	})

	Convey("Given the final save fails", t, func() {
		store := &flakyStore{Memory: storage.NewMemory()}
		svc := newService(newStubGateway(), store)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })
		_, err := svc.StartInterview(ctx, candidate)
		So(err, ShouldBeNil)
		for i := 0; i < interview.LastQuestionIndex; i++ {
			_, err = svc.SubmitAnswer(ctx, i, "answer")
			So(err, ShouldBeNil)
		}

		store.failSave.Store(true)
		_, err = svc.SubmitAnswer(ctx, interview.LastQuestionIndex, "last answer")

		Convey("Then neither the answer nor the record is committed", func() {
			So(err, ShouldNotBeNil)
			view, _ := svc.Snapshot(ctx)
			So(view.Status, ShouldEqual, interview.StatusInProgress)
			So(view.CurrentQuestionIndex, ShouldEqual, interview.LastQuestionIndex)
			So(view.Pending, ShouldBeTrue)
			So(svc.GetStats()["candidates"], ShouldEqual, 0)
		})

		Convey("Then the answer can be submitted again", func() {
			store.failSave.Store(false)
			res, err := svc.SubmitAnswer(ctx, interview.LastQuestionIndex, "last answer")
			So(err, ShouldBeNil)
			So(res.Record, ShouldNotBeNil)
			So(svc.GetStats()["candidates"], ShouldEqual, 1)
		})
	})
}

func TestService_ExtractResume(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a plain text converter", t, func() {
		svc := newService(newStubGateway(), storage.NewMemory(), service.WithExtractor(
			resume.NewExtractor(resume.WithFormat("text/plain", func(_ context.Context, data []byte) (string, error) {
				return string(data), nil
			})),
		))

		Convey("Then the fields are extracted", func() {
			d, err := svc.ExtractResume(ctx, []byte("Jane Doe jane@example.com 415-555-2671"), "text/plain")
			So(err, ShouldBeNil)
			So(*d.Name, ShouldEqual, "Jane Doe")
			So(*d.Email, ShouldEqual, "jane@example.com")
			So(*d.Phone, ShouldEqual, "415-555-2671")
		})

		Convey("Then unknown formats are rejected", func() {
			_, err := svc.ExtractResume(ctx, []byte("x"), "image/png")
			So(errors.Is(err, resume.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}
