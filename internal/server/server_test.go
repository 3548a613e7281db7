package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/db/dbtest"
	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/llm/llmtest"
	"github.com/jonathan/interview-agent/internal/publiclink"
	"github.com/jonathan/interview-agent/internal/server/ratelimit"
	"github.com/jonathan/interview-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeQuestions = `[
	{"question": "Hello! Tell me about a Go service you own.", "type": "technical"},
	{"question": "Describe a time you disagreed with a teammate.", "type": "behavioral"},
	{"question": "How would you design rate limiting?", "type": "problem_solving"}
]`

const fakeAnalysis = `{"score": 72, "feedback": "Good.", "key_points": ["Owns billing"], "strengths": ["Clear"], "areas_to_improve": [], "red_flags": [], "outstanding_qualities": []}`

const fakeMatch = `{"match_score": 81, "strengths": ["Go"], "improvements": [], "feedback": "Strong fit."}`

const fakeResume = `{
	"name": "Ada Mary Lovelace",
	"email": "ada@example.com",
	"phone": "555-0100",
	"location": "London",
	"resume_text": "Analyst and programmer.",
	"work_experience": [{"title": "Analyst", "company": "Babbage & Co", "start_date": "1842", "end_date": "1843"}],
	"education": [],
	"skills": {"technical": ["Mathematics"], "soft": ["Writing"]}
}`

func newMockLLM() *llmtest.MockClient {
	return &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			switch {
			case strings.Contains(prompt, "video interview response"):
				return fakeAnalysis, nil
			case strings.Contains(prompt, "resume matches"):
				return fakeMatch, nil
			case strings.Contains(prompt, "generate interview questions"):
				return fakeQuestions, nil
			default:
				return fakeResume, nil
			}
		},
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "Thanks, that was helpful.", nil
		},
		TranscribeFunc: func(_ context.Context, _ string, audio io.Reader) (string, error) {
			_, err := io.ReadAll(audio)
			return "hello there", err
		},
		SpeakFunc: func(context.Context, string) ([]byte, error) {
			return []byte("ID3-audio"), nil
		},
	}
}

type testEnv struct {
	srv     *Server
	store   *dbtest.Store
	mock    *llmtest.MockClient
	handler http.Handler
}

type envOption func(cfg *config.Config, deps *Deps)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := config.Defaults()
	cfg.UploadDir = t.TempDir()
	cfg.FrontendURL = "https://jobs.example.com"

	store := dbtest.NewStore()
	mock := newMockLLM()
	deps := Deps{
		Store:     store,
		LLM:       mock,
		JWT:       &config.JWTConfig{Secret: testJWTSecret, Issuer: "interview-agent", ExpirationHours: 1},
		Passwords: fastPasswords,
		RateLimit: &ratelimit.Config{Enabled: false},
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	srv, err := New(&cfg, deps)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: store, mock: mock, handler: srv.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// upload sends a multipart form with one file and the given fields.
func (e *testEnv) upload(t *testing.T, path, token, field, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// register creates a company account and returns its token.
func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name":         "Owner",
		"company_name": "Acme",
		"email":        email,
		"password":     "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[types.LoginResponse](t, w).Token
}

func (e *testEnv) createJob(t *testing.T, token string) db.Job {
	t.Helper()
	w := e.do(t, http.MethodPost, "/jobs", token, map[string]any{
		"title":        "Backend Engineer",
		"description":  "Build APIs in Go.",
		"requirements": "Go, PostgreSQL",
		"salary_min":   90000,
		"salary_max":   120000,
		"show_salary":  true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[db.Job](t, w)
}

func (e *testEnv) createCandidate(t *testing.T, token string, job db.Job) db.Candidate {
	t.Helper()
	w := e.do(t, http.MethodPost, "/candidates", token, map[string]any{
		"job_id":     job.ID,
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "Ada@Example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[db.Candidate](t, w)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/jobs", "/candidates", "/interviews", "/auth/me"} {
		w := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := env.do(t, http.MethodGet, "/jobs", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORS(t *testing.T) {
	t.Run("allow all", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodOptions, "/jobs", nil)
		req.Header.Set("Origin", "https://anywhere.test")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("configured origins", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *config.Config, _ *Deps) {
			cfg.CORSOrigins = []string{"https://app.example.com"}
		})

		req := httptest.NewRequest(http.MethodOptions, "/jobs", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))

		req = httptest.NewRequest(http.MethodOptions, "/jobs", nil)
		req.Header.Set("Origin", "https://evil.test")
		w = httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(_ *config.Config, deps *Deps) {
		deps.RateLimit = &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: time.Minute,
			EndpointConfigs: []ratelimit.EndpointConfig{
				{Path: "/auth/login", Method: http.MethodPost, Group: "login", Limit: 2, Window: time.Minute},
			},
		}
	})

	body := map[string]string{"email": "nobody@acme.test", "password": "whatever"}
	for i := 0; i < 2; i++ {
		w := env.do(t, http.MethodPost, "/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := env.do(t, http.MethodPost, "/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")

	// Other routes draw from their own bucket.
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", "", nil).Code)
}

func TestRedactPath(t *testing.T) {
	tests := map[string]string{
		"/access/AB12CD34":                  "/access/***",
		"/access/AB12CD34/questions/x/edit": "/access/***/questions/x/edit",
		"/public/ZZ99/start":                "/public/***/start",
		"/jobs/123":                         "/jobs/123",
	}
	for in, want := range tests {
		assert.Equal(t, want, redactPath(in), in)
	}
}

func TestJobs(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@acme.test")
	job := env.createJob(t, token)

	assert.Equal(t, "full-time", job.EmploymentType)
	assert.Equal(t, db.JobStatusActive, job.Status)

	w := env.do(t, http.MethodGet, "/jobs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["count"])

	t.Run("salary range", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/jobs", token, map[string]any{"title": "X", "salary_min": 10, "salary_max": 5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/jobs", token, map[string]any{"description": "no title"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("other company cannot see the job", func(t *testing.T) {
		other := env.register(t, "other@rival.test")
		w := env.do(t, http.MethodGet, "/jobs/"+job.ID.String(), other, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = env.do(t, http.MethodDelete, "/jobs/"+job.ID.String(), other, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/jobs/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("settings default then update", func(t *testing.T) {
		path := "/jobs/" + job.ID.String() + "/settings"
		w := env.do(t, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		settings := decode[db.InterviewSettings](t, w)
		assert.True(t, settings.IncludeTechnical)

		w = env.do(t, http.MethodPut, path, token, map[string]any{
			"include_technical":        true,
			"include_custom_questions": true,
			"custom_questions":         []string{"  Why Acme?  "},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		settings = decode[db.InterviewSettings](t, w)
		assert.Equal(t, db.StringArray{"Why Acme?"}, settings.CustomQuestions)
		assert.False(t, settings.IncludeBehavioral)
	})

	t.Run("delete", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/jobs/"+job.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = env.do(t, http.MethodGet, "/jobs/"+job.ID.String(), token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGenerateJobContent(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@acme.test")

	w := env.do(t, http.MethodPost, "/jobs/generate", token, map[string]any{"title": "Backend Engineer", "keywords": []string{"Go"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	content := decode[types.JobContent](t, w)
	assert.NotEmpty(t, content.Description)
	assert.NotEmpty(t, content.Requirements)
	assert.NotEmpty(t, content.Benefits)

	t.Run("upstream failure", func(t *testing.T) {
		env.mock.GenerateContentFunc = func(context.Context, string, llm.ModelTier) (string, error) {
			return "", errors.New("quota exceeded for key sk-secret")
		}
		w := env.do(t, http.MethodPost, "/jobs/generate", token, map[string]any{"title": "Backend Engineer"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.NotContains(t, w.Body.String(), "sk-secret")
	})
}

func TestInterviewFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@acme.test")
	job := env.createJob(t, token)
	cand := env.createCandidate(t, token, job)
	assert.Equal(t, "ada@example.com", cand.Email)

	w := env.do(t, http.MethodPost, "/candidates/"+cand.ID.String()+"/invite", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[interview.Invitation](t, w)
	require.Len(t, inv.Questions, 3)
	for i, q := range inv.Questions {
		assert.Equal(t, i+1, q.OrderNumber)
	}
	code := inv.Interview.AccessCode
	assert.Equal(t, "https://jobs.example.com/interview/"+code, inv.InterviewURL)
	assert.Equal(t, db.InterviewStatusPending, inv.Interview.Status)

	// The candidate opens the portal.
	w = env.do(t, http.MethodGet, "/access/"+code, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	session := decode[interview.Session](t, w)
	assert.Equal(t, "Backend Engineer", session.Job.Title)
	assert.Empty(t, session.AnsweredIDs)

	w = env.do(t, http.MethodGet, "/access/WRONGCOD", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Recording an answer and submitting it twice keeps one response.
	w = env.upload(t, "/access/"+code+"/video", "", "video", "answer.webm", []byte("webm-bytes"), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	videoURL := decode[map[string]string](t, w)["video_url"]
	assert.NotEmpty(t, videoURL)

	q1 := inv.Questions[0].ID.String()
	respPath := "/access/" + code + "/questions/" + q1 + "/response"
	w = env.do(t, http.MethodPost, respPath, "", map[string]any{"video_url": videoURL, "transcript": "I own the billing service.", "duration": 42})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = env.do(t, http.MethodPost, respPath, "", map[string]any{"video_url": videoURL, "transcript": "I own billing and invoicing.", "duration": 50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, respPath, "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/interviews/"+inv.Interview.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, db.InterviewStatusInProgress, decode[db.Interview](t, w).Status)

	// Edit and analyze the answer.
	w = env.do(t, http.MethodPut, "/access/"+code+"/questions/"+q1+"/transcript", "", map[string]string{"transcript": "I own billing, invoicing and payouts."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[db.VideoResponse](t, w).WasEdited)

	w = env.do(t, http.MethodPost, "/access/"+code+"/questions/"+q1+"/analyze", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	analyzed := decode[db.VideoResponse](t, w)
	require.NotNil(t, analyzed.Score)
	assert.Equal(t, 72, *analyzed.Score)

	w = env.do(t, http.MethodPost, "/access/"+code+"/questions/"+q1+"/follow-up", "", map[string]string{"response": "I own billing."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode[map[string]string](t, w)["follow_up"])

	// Complete through the portal; the score stays hidden from the candidate.
	w = env.do(t, http.MethodPost, "/access/"+code+"/complete", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "score")
	assert.Contains(t, w.Body.String(), db.InterviewStatusCompleted)

	w = env.do(t, http.MethodGet, "/interviews/"+inv.Interview.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	done := decode[db.Interview](t, w)
	assert.Equal(t, db.InterviewStatusCompleted, done.Status)
	require.NotNil(t, done.OverallScore)
	assert.InDelta(t, 72.0, *done.OverallScore, 0.001)

	w = env.do(t, http.MethodGet, "/interviews/"+inv.Interview.ID.String()+"/transcript", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	transcript := decode[struct {
		Transcript []interview.TranscriptEntry `json:"transcript"`
	}](t, w)
	assert.Len(t, transcript.Transcript, 3)

	// Completed interviews accept nothing further.
	w = env.do(t, http.MethodPost, "/access/"+code+"/complete", "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = env.do(t, http.MethodPost, respPath, "", map[string]any{"transcript": "late answer"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInterviewManagement(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@acme.test")
	job := env.createJob(t, token)
	cand := env.createCandidate(t, token, job)

	w := env.do(t, http.MethodPost, "/interviews", token, map[string]any{"candidate_id": cand.ID, "job_id": job.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	iv := decode[db.Interview](t, w)

	base := "/interviews/" + iv.ID.String()
	w = env.do(t, http.MethodPost, base+"/questions", token, map[string]any{
		"questions": []map[string]string{{"question": "Why Go?"}, {"question": "Why Acme?", "type": "custom"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, base+"/questions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[struct {
		Questions []db.Question `json:"questions"`
	}](t, w)
	require.Len(t, listed.Questions, 2)
	assert.Equal(t, 1, listed.Questions[0].OrderNumber)
	assert.Equal(t, 2, listed.Questions[1].OrderNumber)

	w = env.do(t, http.MethodGet, "/interviews?status=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/interviews?status=pending&job_id="+job.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["count"])

	w = env.do(t, http.MethodPost, base+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, db.InterviewStatusCancelled, decode[db.Interview](t, w).Status)

	w = env.do(t, http.MethodPost, base+"/complete", token, map[string]any{"score": 90})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodDelete, base, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateQuestionsPreview(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@acme.test")

	w := env.do(t, http.MethodPost, "/interviews/generate-questions", token, map[string]any{
		"job_title":       "Backend Engineer",
		"job_description": "Build APIs in Go.",
		"max_questions":   2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["count"])
}

func TestUploadResume(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@acme.test")
	job := env.createJob(t, token)

	w := env.upload(t, "/candidates/resume", token, "resume", "ada.txt",
		[]byte("Ada Lovelace\nAnalyst at Babbage & Co\nada@example.com"),
		map[string]string{"job_id": job.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	cand := decode[db.Candidate](t, w)
	assert.Equal(t, "Ada", cand.FirstName)
	assert.Equal(t, "Mary Lovelace", cand.LastName)
	assert.Equal(t, "ada@example.com", cand.Email)
	assert.Equal(t, []string{"Mathematics"}, []string(cand.Skills.Technical))
	assert.NotEmpty(t, cand.ResumeURL)
	require.NotNil(t, cand.ResumeMatchScore)
	assert.Equal(t, 81, *cand.ResumeMatchScore)

	w = env.do(t, http.MethodPost, "/candidates/"+cand.ID.String()+"/analyze", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 81, decode[map[string]any](t, w)["match_score"])

	t.Run("download stored resume", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/candidates/"+cand.ID.String()+"/resume", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Analyst at Babbage")
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".txt")
	})

	t.Run("no resume on file", func(t *testing.T) {
		other := env.createCandidate(t, token, job)
		w := env.do(t, http.MethodGet, "/candidates/"+other.ID.String()+"/resume", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unreadable resume creates nothing", func(t *testing.T) {
		before := env.store.CandidateCount()
		w := env.upload(t, "/candidates/resume", token, "resume", "blank.txt", []byte("   \n  "), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "could not read the resume document")
		assert.Equal(t, before, env.store.CandidateCount())
	})

	t.Run("unsupported format", func(t *testing.T) {
		w := env.upload(t, "/candidates/resume", token, "resume", "ada.exe", []byte("MZ"), nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		w := env.upload(t, "/candidates/resume", token, "", "", nil, map[string]string{"first_name": "Ada"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete removes the candidate", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/candidates/"+cand.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = env.do(t, http.MethodGet, "/candidates/"+cand.ID.String(), token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCandidateStatus(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@acme.test")
	job := env.createJob(t, token)
	cand := env.createCandidate(t, token, job)
	path := "/candidates/" + cand.ID.String() + "/status"

	w := env.do(t, http.MethodPut, path, token, map[string]string{"status": "hired"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "hired", decode[db.Candidate](t, w).Status)

	w = env.do(t, http.MethodPut, path, token, map[string]string{"status": "promoted"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/candidates/"+cand.ID.String()+"/analyze", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "candidate has no resume text")
}

func TestPublicLinkFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@acme.test")
	job := env.createJob(t, token)
	linksPath := "/jobs/" + job.ID.String() + "/public-links"

	w := env.do(t, http.MethodPost, linksPath, token, map[string]any{"name": "Careers page"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	link := decode[db.PublicLink](t, w)
	assert.True(t, link.IsActive)

	w = env.do(t, http.MethodGet, "/public/"+link.AccessCode, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[publiclink.Resolution](t, w)
	assert.Equal(t, 1, res.Link.Visits)
	assert.Equal(t, "Acme", res.Job.CompanyName)
	assert.Equal(t, "Backend Engineer", res.Job.Title)

	w = env.do(t, http.MethodPost, "/public/"+link.AccessCode+"/start", "", map[string]string{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"email":      "grace@navy.test",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[interview.Invitation](t, w)
	require.NotNil(t, inv.Interview.PublicLinkID)
	assert.Equal(t, link.ID, *inv.Interview.PublicLinkID)
	assert.Len(t, inv.Questions, 3)

	t.Run("start with resume upload", func(t *testing.T) {
		w := env.upload(t, "/public/"+link.AccessCode+"/start", "", "resume", "ada.txt",
			[]byte("Ada Lovelace\nAnalyst"),
			map[string]string{"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	w = env.do(t, http.MethodGet, linksPath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[struct {
		Links []db.PublicLink `json:"links"`
	}](t, w)
	require.Len(t, listed.Links, 1)
	assert.Equal(t, 2, listed.Links[0].StartedInterviews)
	assert.Equal(t, 1, listed.Links[0].Visits)

	t.Run("deactivated link is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, linksPath+"/"+link.ID.String(), token, map[string]bool{"is_active": false})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.False(t, decode[db.PublicLink](t, w).IsActive)

		before := env.store.CandidateCount()
		w = env.do(t, http.MethodGet, "/public/"+link.AccessCode, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		w = env.do(t, http.MethodPost, "/public/"+link.AccessCode+"/start", "", map[string]string{
			"first_name": "Late", "email": "late@example.com",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, before, env.store.CandidateCount())
	})

	t.Run("is_active is required", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, linksPath+"/"+link.ID.String(), token, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, linksPath+"/"+link.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = env.do(t, http.MethodGet, "/public/"+link.AccessCode, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAIUtilities(t *testing.T) {
	env := newTestEnv(t)

	t.Run("speech", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/ai/speech", "", map[string]string{"text": "Welcome to your interview."})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
		assert.Equal(t, "ID3-audio", w.Body.String())
	})

	t.Run("speech requires text", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/ai/speech", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("transcribe", func(t *testing.T) {
		w := env.upload(t, "/ai/transcribe", "", "audio", "clip.webm", []byte("audio-bytes"), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "hello there", decode[map[string]string](t, w)["text"])
	})

	t.Run("transcribe requires audio", func(t *testing.T) {
		w := env.upload(t, "/ai/transcribe", "", "", "", nil, map[string]string{"x": "y"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider failure", func(t *testing.T) {
		env.mock.SpeakFunc = func(context.Context, string) ([]byte, error) {
			return nil, errors.New("boom")
		}
		w := env.do(t, http.MethodPost, "/ai/speech", "", map[string]string{"text": "hi"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "AI service unavailable")
	})
}
