package interview

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/types"
	"golang.org/x/sync/errgroup"
)

// Complete finishes one of the company's interviews.
func (s *Service) Complete(ctx context.Context, companyID, id uuid.UUID, req types.CompleteInterviewRequest) (*db.Interview, error) {
	iv, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.complete(ctx, iv, req); err != nil {
		return nil, err
	}
	return s.Get(ctx, companyID, id)
}

// CompleteByCode finishes the interview behind an access code.
func (s *Service) CompleteByCode(ctx context.Context, code string, req types.CompleteInterviewRequest) (*db.Interview, error) {
	iv, err := s.byCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.complete(ctx, iv, req); err != nil {
		return nil, err
	}
	return s.store.GetInterviewByAccessCode(ctx, iv.AccessCode)
}

// complete scores any outstanding answers if configured, then stores the
// overall score. Without an explicit score the overall score is the mean of
// the scored answers, or null when none are scored.
func (s *Service) complete(ctx context.Context, iv *db.Interview, req types.CompleteInterviewRequest) error {
	if iv.IsTerminal() {
		return &types.InvalidTransitionError{From: iv.Status, To: db.InterviewStatusCompleted, Reason: "interview has already ended"}
	}

	var score *float64
	if req.Score != nil {
		v := float64(*req.Score)
		score = &v
	} else {
		responses, err := s.store.ListResponses(ctx, iv.ID)
		if err != nil {
			return err
		}
		if s.opts.ScoreOnComplete {
			if responses, err = s.scoreOutstanding(ctx, iv, responses); err != nil {
				return err
			}
		}
		score = AggregateScore(responses)
	}

	ok, err := s.store.CompleteInterview(ctx, iv.ID, score, strings.TrimSpace(req.Feedback))
	if err != nil {
		return err
	}
	if !ok {
		return &types.InvalidTransitionError{From: iv.Status, To: db.InterviewStatusCompleted, Reason: "interview changed state concurrently"}
	}

	if iv.PublicLinkID != nil {
		if _, err := s.store.IncrementLinkCounter(ctx, *iv.PublicLinkID, db.CounterCompleted); err != nil {
			log.Printf("[interview] failed to count completion on link %s: %v", *iv.PublicLinkID, err)
		}
	}
	log.Printf("[interview] completed interview %s", iv.ID)
	return nil
}

// scoreOutstanding analyzes answers that have a transcript but no score, with
// at most ScoringConcurrency evaluations in flight.
func (s *Service) scoreOutstanding(ctx context.Context, iv *db.Interview, responses []db.VideoResponse) ([]db.VideoResponse, error) {
	var pending []int
	for i, r := range responses {
		if r.Score == nil && strings.TrimSpace(r.Transcript) != "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return responses, nil
	}

	qs, err := s.store.ListQuestions(ctx, iv.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*db.Question, len(qs))
	for i := range qs {
		byID[qs[i].ID] = &qs[i]
	}
	job, err := s.store.GetJobByID(ctx, iv.JobID)
	if err != nil {
		return nil, err
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.opts.ScoringConcurrency)
	for _, i := range pending {
		q, ok := byID[responses[i].QuestionID]
		if !ok {
			continue
		}
		eg.Go(func() error {
			saved, err := s.score(gctx, q, &responses[i], job)
			if err != nil {
				return err
			}
			responses[i] = *saved
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	log.Printf("[interview] scored %d outstanding responses for interview %s", len(pending), iv.ID)
	return responses, nil
}

// AggregateScore is the mean of the scored responses, or nil when none are scored.
func AggregateScore(responses []db.VideoResponse) *float64 {
	var sum, n int
	for _, r := range responses {
		if r.Score != nil {
			sum += *r.Score
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := float64(sum) / float64(n)
	return &mean
}

// TranscriptEntry is one question of an interview with its answer, if any.
type TranscriptEntry struct {
	QuestionID  uuid.UUID            `json:"question_id"`
	OrderNumber int                  `json:"order_number"`
	Question    string               `json:"question"`
	Type        string               `json:"type"`
	Answered    bool                 `json:"answered"`
	Transcript  string               `json:"transcript,omitempty"`
	VideoURL    string               `json:"video_url,omitempty"`
	WasEdited   bool                 `json:"was_edited,omitempty"`
	Duration    int                  `json:"duration,omitempty"`
	Score       *int                 `json:"score,omitempty"`
	Feedback    string               `json:"feedback,omitempty"`
	Analysis    *types.VideoAnalysis `json:"analysis,omitempty"`
}

// Transcript returns every question of the interview in order, joined with its answer.
func (s *Service) Transcript(ctx context.Context, companyID, id uuid.UUID) ([]TranscriptEntry, error) {
	iv, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	qs, err := s.store.ListQuestions(ctx, iv.ID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(ctx, iv.ID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[uuid.UUID]db.VideoResponse, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	entries := make([]TranscriptEntry, 0, len(qs))
	for _, q := range qs {
		e := TranscriptEntry{QuestionID: q.ID, OrderNumber: q.OrderNumber, Question: q.Question, Type: q.Type}
		if r, ok := byQuestion[q.ID]; ok {
			e.Answered = true
			e.Transcript = r.Transcript
			e.VideoURL = r.VideoURL
			e.WasEdited = r.WasEdited
			e.Duration = r.Duration
			e.Score = r.Score
			e.Feedback = r.Feedback
			e.Analysis = r.Analysis
		}
		entries = append(entries, e)
	}
	return entries, nil
}
