package db

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/interview-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "interviews_access_code_key"}
	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("failed to create interview: %w", dup)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(fmt.Errorf("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestDefaultInterviewSettings(t *testing.T) {
	jobID := uuid.New()
	s := DefaultInterviewSettings(jobID)

	assert.Equal(t, jobID, s.JobID)
	assert.Equal(t, DefaultPreparationTime, s.PreparationTime)
	assert.Equal(t, []string{types.QuestionTechnical, types.QuestionBehavioral, types.QuestionProblemSolving}, s.Categories())
	assert.NotNil(t, s.CustomQuestions)
}

func TestInterviewSettings_Categories(t *testing.T) {
	s := &InterviewSettings{IncludeBehavioral: true}
	assert.Equal(t, []string{types.QuestionBehavioral}, s.Categories())

	s = &InterviewSettings{}
	assert.Empty(t, s.Categories())
}

func TestCandidate_FullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", (&Candidate{FirstName: "Jane", LastName: "Doe"}).FullName())
	assert.Equal(t, "Cher", (&Candidate{FirstName: "Cher"}).FullName())
}

func TestCandidate_Normalize(t *testing.T) {
	c := &Candidate{}
	c.normalize()

	assert.NotNil(t, c.WorkExperience)
	assert.NotNil(t, c.Education)
	assert.NotNil(t, c.Skills.Technical)
	assert.NotNil(t, c.Skills.Soft)
	assert.Equal(t, CandidateStatusNew, c.Status)
}

func TestInterview_IsTerminal(t *testing.T) {
	for status, want := range map[string]bool{
		InterviewStatusPending:    false,
		InterviewStatusInProgress: false,
		InterviewStatusCompleted:  true,
		InterviewStatusCancelled:  true,
	} {
		assert.Equal(t, want, (&Interview{Status: status}).IsTerminal(), status)
	}
}

func TestPublicLink_IsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	assert.False(t, (&PublicLink{}).IsExpired(now), "no expiry never expires")
	assert.True(t, (&PublicLink{ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&PublicLink{ExpiresAt: &future}).IsExpired(now))
}

func TestStringArray(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan([]byte(`["Why us?","Why now?"]`)))
	assert.Equal(t, StringArray{"Why us?", "Why now?"}, a)

	require.NoError(t, a.Scan(`["one"]`))
	assert.Equal(t, StringArray{"one"}, a)

	require.NoError(t, a.Scan(nil))
	assert.Equal(t, StringArray{}, a)

	assert.Error(t, a.Scan(42))

	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	out, err := json.Marshal(User{Email: "a@example.com", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
}
