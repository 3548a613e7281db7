package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-agent/internal/artifacts"
	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/evaluation"
	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/jobs"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/publiclink"
	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/jonathan/interview-agent/internal/resume"
	"github.com/jonathan/interview-agent/internal/server/middleware"
	"github.com/jonathan/interview-agent/internal/server/ratelimit"
	"github.com/jonathan/interview-agent/internal/types"
)

// DBClient is everything the HTTP layer needs from storage. *db.DB and
// *dbtest.Store satisfy it.
type DBClient interface {
	interview.Store
	publiclink.Store
	UserStore

	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *db.Job) error
	ListJobs(ctx context.Context, companyID uuid.UUID) ([]db.Job, error)
	DeleteJob(ctx context.Context, companyID, id uuid.UUID) (bool, error)
	UpsertInterviewSettings(ctx context.Context, s *db.InterviewSettings) error

	ListCandidates(ctx context.Context, companyID uuid.UUID, jobID *uuid.UUID) ([]db.Candidate, error)
	UpdateCandidateResume(ctx context.Context, id uuid.UUID, resumeURL string, profile *types.ResumeProfile) error
	UpdateCandidateMatch(ctx context.Context, id uuid.UUID, score int, feedback string) error
	DeleteCandidate(ctx context.Context, companyID, id uuid.UUID) (bool, error)
}

// Deps are the external dependencies of a Server.
type Deps struct {
	Store DBClient
	// LLM may be nil; AI features then degrade or report the service as unavailable.
	LLM       llm.Client
	JWT       *config.JWTConfig
	Passwords *config.PasswordConfig
	// RateLimit defaults to ratelimit.LoadConfig().
	RateLimit *ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	cfg         *config.Config
	httpServer  *http.Server
	store       DBClient
	gateway     *llm.Gateway
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler

	interviews *interview.Service
	links      *publiclink.Service
	resumes    *resume.Normalizer
	generator  *questions.Generator
	jobContent *jobs.ContentGenerator
	artifacts  *artifacts.Store

	closers []func()
}

// New creates a server over already-connected dependencies.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}

	passwords := deps.Passwords
	if passwords == nil {
		var err error
		if passwords, err = config.NewPasswordConfig(); err != nil {
			return nil, fmt.Errorf("failed to create password config: %w", err)
		}
	}
	jwtConfig := deps.JWT
	if jwtConfig == nil {
		var err error
		if jwtConfig, err = config.NewJWTConfig(); err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
	}
	rateConfig := deps.RateLimit
	if rateConfig == nil {
		rateConfig = ratelimit.LoadConfig()
	}

	store, err := artifacts.NewStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	gateway := llm.NewGateway(deps.LLM, time.Duration(cfg.LLMTimeout)*time.Second)
	generator := questions.NewGenerator(gateway)
	interviews := interview.NewService(deps.Store, generator, evaluation.NewEvaluator(gateway), interview.Options{
		FrontendURL:           cfg.FrontendURL,
		QuestionsPerInterview: cfg.QuestionsPerInterview,
		ScoringConcurrency:    cfg.ScoringConcurrency,
		ScoreOnComplete:       cfg.ScoreOnComplete,
	})

	s := &Server{
		cfg:         cfg,
		store:       deps.Store,
		gateway:     gateway,
		rateLimiter: ratelimit.NewLimiter(rateConfig),
		jwtService:  NewJWTService(jwtConfig),
		interviews:  interviews,
		links:       publiclink.NewService(deps.Store, interviews),
		resumes:     resume.NewNormalizer(gateway),
		generator:   generator,
		jobContent:  jobs.NewContentGenerator(gateway),
		artifacts:   store,
	}
	s.authHandler = NewAuthHandler(NewUserService(deps.Store, passwords), s.jwtService)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  60 * time.Second, // Video uploads
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Open connects to the database and the configured AI provider and returns a
// server over them. Start closes both on shutdown.
func Open(ctx context.Context, cfg *config.Config) (*Server, error) {
	database, err := db.ConnectWithConfig(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	provider := llm.ParseProvider(cfg.LLMProvider)
	client, err := llm.NewClient(ctx, llm.DefaultConfigFor(provider), cfg.APIKey())
	if err != nil {
		log.Printf("[server] AI provider %s unavailable, continuing without it: %v", provider, err)
		client = nil
	}

	s, err := New(cfg, Deps{Store: database, LLM: client})
	if err != nil {
		database.Close()
		if client != nil {
			_ = client.Close()
		}
		return nil, err
	}
	s.closers = append(s.closers, database.Close)
	if client != nil {
		s.closers = append(s.closers, func() { _ = client.Close() })
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("GET /auth/me", s.protect(s.authHandler.Me))
	mux.Handle("PUT /auth/password", s.protect(s.authHandler.UpdatePassword))

	// Jobs
	mux.Handle("GET /jobs", s.protect(s.handleListJobs))
	mux.Handle("POST /jobs", s.protect(s.handleCreateJob))
	mux.Handle("POST /jobs/generate", s.protect(s.handleGenerateJobContent))
	mux.Handle("GET /jobs/{id}", s.protect(s.handleGetJob))
	mux.Handle("DELETE /jobs/{id}", s.protect(s.handleDeleteJob))
	mux.Handle("GET /jobs/{id}/settings", s.protect(s.handleGetSettings))
	mux.Handle("PUT /jobs/{id}/settings", s.protect(s.handleUpdateSettings))

	// Public links (company side)
	mux.Handle("GET /jobs/{id}/public-links", s.protect(s.handleListPublicLinks))
	mux.Handle("POST /jobs/{id}/public-links", s.protect(s.handleCreatePublicLink))
	mux.Handle("PATCH /jobs/{id}/public-links/{link_id}", s.protect(s.handleSetPublicLinkActive))
	mux.Handle("DELETE /jobs/{id}/public-links/{link_id}", s.protect(s.handleDeletePublicLink))

	// Candidates
	mux.Handle("GET /candidates", s.protect(s.handleListCandidates))
	mux.Handle("POST /candidates", s.protect(s.handleCreateCandidate))
	mux.Handle("POST /candidates/resume", s.protect(s.handleUploadResume))
	mux.Handle("GET /candidates/{id}", s.protect(s.handleGetCandidate))
	mux.Handle("DELETE /candidates/{id}", s.protect(s.handleDeleteCandidate))
	mux.Handle("PUT /candidates/{id}/status", s.protect(s.handleUpdateCandidateStatus))
	mux.Handle("GET /candidates/{id}/resume", s.protect(s.handleDownloadResume))
	mux.Handle("POST /candidates/{id}/analyze", s.protect(s.handleAnalyzeCandidate))
	mux.Handle("POST /candidates/{id}/invite", s.protect(s.handleInviteCandidate))

	// Interviews (company side)
	mux.Handle("GET /interviews", s.protect(s.handleListInterviews))
	mux.Handle("POST /interviews", s.protect(s.handleCreateInterview))
	mux.Handle("POST /interviews/generate-questions", s.protect(s.handleGenerateQuestions))
	mux.Handle("GET /interviews/{id}", s.protect(s.handleGetInterview))
	mux.Handle("DELETE /interviews/{id}", s.protect(s.handleDeleteInterview))
	mux.Handle("GET /interviews/{id}/questions", s.protect(s.handleListQuestions))
	mux.Handle("POST /interviews/{id}/questions", s.protect(s.handleAddQuestions))
	mux.Handle("POST /interviews/{id}/complete", s.protect(s.handleCompleteInterview))
	mux.Handle("POST /interviews/{id}/cancel", s.protect(s.handleCancelInterview))
	mux.Handle("GET /interviews/{id}/transcript", s.protect(s.handleTranscript))

	// Candidate portal, authorized by access code only
	mux.HandleFunc("GET /access/{code}", s.handleAccess)
	mux.HandleFunc("POST /access/{code}/questions/{question_id}/response", s.handleSubmitResponse)
	mux.HandleFunc("PUT /access/{code}/questions/{question_id}/transcript", s.handleUpdateTranscript)
	mux.HandleFunc("POST /access/{code}/questions/{question_id}/analyze", s.handleAnalyzeResponse)
	mux.HandleFunc("POST /access/{code}/questions/{question_id}/follow-up", s.handleFollowup)
	mux.HandleFunc("POST /access/{code}/next-question", s.handleNextQuestion)
	mux.HandleFunc("POST /access/{code}/process", s.handleProcessResponse)
	mux.HandleFunc("POST /access/{code}/complete", s.handleCompleteByCode)
	mux.HandleFunc("POST /access/{code}/video", s.handleUploadVideo)

	// Public links (visitor side)
	mux.HandleFunc("GET /public/{code}", s.handleResolvePublicLink)
	mux.HandleFunc("POST /public/{code}/start", s.handleStartPublicInterview)

	// AI utilities
	mux.HandleFunc("POST /ai/transcribe", s.handleTranscribe)
	mux.HandleFunc("POST /ai/speech", s.handleSpeech)

	return mux
}

// protect requires a valid company token.
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	return middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(h)
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close stops background work and releases the server's connections.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// withCORS adds CORS headers for the configured origins
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowAll := slices.Contains(s.cfg.CORSOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.cfg.CORSOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging. Access codes in portal paths are masked.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := redactPath(r.URL.Path)
		log.Printf("[%s] %s %s", r.Method, path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, path, time.Since(start))
	})
}

// redactPath hides the access code segment of /access/ and /public/ paths.
func redactPath(path string) string {
	for _, prefix := range []string{"/access/", "/public/"} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				return prefix + "***" + rest[i:]
			}
			return prefix + "***"
		}
	}
	return path
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		log.Printf("[server] health check failed: %v", err)
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// writeError logs a failed operation and writes the client-safe error.
func writeError(w http.ResponseWriter, op string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %s failed: %v", op, err)
	} else {
		log.Printf("[server] %s rejected with %d: %v", op, status, err)
	}
	errorResponse(w, status, publicMessage(err, status))
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: client=%s %s %s limit=%d",
		s.extractClientID(r), r.Method, redactPath(r.URL.Path), info.Limit)

	jsonResponse(w, http.StatusTooManyRequests, response)
}
