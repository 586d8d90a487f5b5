package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "asha/internal/errors"
	"asha/internal/llm"
	"asha/internal/model"
	"asha/internal/scrape"
	"asha/internal/session"
)

// MockSearcher is a mock implementation of OpportunitySearcher.
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, skills []string, category model.Category) []model.Opportunity {
	args := m.Called(ctx, skills, category)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Opportunity)
}

type stubExtractor struct {
	skills []string
	calls  int
}

func (s *stubExtractor) Extract(context.Context, string) []string {
	s.calls++
	return s.skills
}

type stubScraper struct {
	details model.JobDetails
	err     error
	url     string
}

func (s *stubScraper) Details(_ context.Context, rawURL string) (model.JobDetails, error) {
	s.url = rawURL
	d := s.details
	d.URL = rawURL
	return d, s.err
}

type stubIngestor struct {
	text string
	err  error
}

func (s stubIngestor) Ingest(r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	return s.text, s.err
}

type chatFixture struct {
	sessions  *session.Registry
	extractor *stubExtractor
	searcher  *MockSearcher
	scraper   *stubScraper
	prompts   []string
	biasText  []string
	// returned for bias checks
	biasAnswer string
	svc        ChatService
}

func newChatFixture(t *testing.T, genErr error) *chatFixture {
	t.Helper()
	f := &chatFixture{
		sessions:  session.NewRegistry(),
		extractor: &stubExtractor{},
		searcher:  new(MockSearcher),
		scraper:   &stubScraper{},
	}
	gen := llm.GeneratorFunc(func(_ context.Context, system, prompt string) (string, error) {
		if system == biasCheckPrompt {
			f.biasText = append(f.biasText, prompt)
			if genErr != nil {
				return "", genErr
			}
			return f.biasAnswer, nil
		}
		f.prompts = append(f.prompts, prompt)
		if genErr != nil {
			return "", genErr
		}
		return "generated reply", nil
	})
	f.svc = NewChatService(f.sessions, f.extractor, f.searcher, f.scraper, stubIngestor{text: "resume text"}, gen)
	return f
}

func (f *chatFixture) history(t *testing.T, id string) []model.Message {
	t.Helper()
	s, ok := f.sessions.Get(id)
	require.True(t, ok)
	return s.History
}

func TestPlainChat_GreetingDefaultsToThere(t *testing.T) {
	f := newChatFixture(t, nil)

	reply := f.svc.PlainChat(context.Background(), "s1", "Hi there", ChatContext{})

	assert.Contains(t, reply.Response, "Hello there!")
	h := f.history(t, "s1")
	require.Len(t, h, 2)
	assert.Equal(t, model.RoleUser, h[0].Role)
	assert.Equal(t, "Hi there", h[0].Content)
	assert.Equal(t, model.RoleAssistant, h[1].Role)
}

func TestPlainChat_KeywordGroupsInOrder(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"hello, can you check my CV before the interview?", "resume"},
		{"I have an interview about salary", "interview"},
		{"How do I negotiate a raise?", "salary"},
		{"Thinking about a career change", "career_change"},
		{"Good morning!", "greeting"},
		{"Which city is best?", "fallback"},
		{"something else entirely", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			group, _ := cannedReply(tt.message, "")
			assert.Equal(t, tt.want, group)
		})
	}
}

func TestPlainChat_NameResolution(t *testing.T) {
	f := newChatFixture(t, nil)

	reply := f.svc.PlainChat(context.Background(), "s1", "hello", ChatContext{Name: "Priya"})
	assert.Contains(t, reply.Response, "Hello Priya!")

	// the session name wins over a later request name
	reply = f.svc.PlainChat(context.Background(), "s1", "hello", ChatContext{Name: "Someone Else"})
	assert.Contains(t, reply.Response, "Hello Priya!")
}

func TestConverse_SkillBearingJobMessageSearchesJobs(t *testing.T) {
	f := newChatFixture(t, nil)
	f.extractor.skills = []string{"Python", "SQL", "Tableau"}
	f.searcher.On("Search", mock.Anything, []string{"Python", "SQL", "Tableau"}, model.CategoryJobs).
		Return([]model.Opportunity{
			{Title: "Data Analyst", Company: "Acme", Location: "Remote", Link: "https://jobs.example/1", Source: "linkedin"},
		})

	reply := f.svc.Converse(context.Background(), "s1",
		"I have experience in Python, SQL and Tableau. Any job ideas?", ChatContext{})

	assert.True(t, strings.HasPrefix(reply.Response, "generated reply"))
	assert.Contains(t, reply.Response, "- **Data Analyst** at Acme (Remote)")
	assert.Contains(t, reply.Response, "https://jobs.example/1")
	assert.Equal(t, []string{"Python", "SQL", "Tableau"}, reply.Skills)
	assert.Len(t, f.history(t, "s1"), 2)
	f.searcher.AssertExpectations(t)
}

func TestConverse_ReusesStoredSkillsForJobQuestions(t *testing.T) {
	f := newChatFixture(t, nil)
	f.sessions.MergeSkills("s1", []string{"Go", "Docker", "AWS"})
	f.searcher.On("Search", mock.Anything, []string{"Go", "Docker", "AWS"}, model.CategoryJobs).
		Return([]model.Opportunity{})

	reply := f.svc.Converse(context.Background(), "s1", "Show me a job", ChatContext{})

	assert.Equal(t, "generated reply", reply.Response)
	assert.Equal(t, 0, f.extractor.calls)
	f.searcher.AssertExpectations(t)
}

func TestConverse_NotJobRelatedSkipsSearch(t *testing.T) {
	f := newChatFixture(t, nil)
	f.sessions.MergeSkills("s1", []string{"Go", "Docker", "AWS"})

	reply := f.svc.Converse(context.Background(), "s1", "What is a good book to read?", ChatContext{})

	assert.Equal(t, "generated reply", reply.Response)
	assert.Empty(t, reply.Skills)
	f.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestConverse_ShortSkillMessageIsNotExtracted(t *testing.T) {
	f := newChatFixture(t, nil)

	f.svc.Converse(context.Background(), "s1", "I know Go, any job?", ChatContext{})

	assert.Equal(t, 0, f.extractor.calls)
}

func TestConverse_GenerationFailureApologises(t *testing.T) {
	f := newChatFixture(t, errors.New("quota"))

	reply := f.svc.Converse(context.Background(), "s1", "hello", ChatContext{})

	assert.Equal(t, apologyReply, reply.Response)
	h := f.history(t, "s1")
	require.Len(t, h, 2)
	assert.Equal(t, apologyReply, h[1].Content)
}

func TestConverse_JobLinkBypassesChat(t *testing.T) {
	f := newChatFixture(t, nil)
	f.scraper.details = model.JobDetails{Title: "Frontend Developer", Company: "Globex", Source: "linkedin"}

	msg := "What do you think of https://www.linkedin.com/jobs/view/42 ? I know React and have worked on many job boards"
	reply := f.svc.Converse(context.Background(), "s1", msg, ChatContext{})

	assert.Equal(t, "generated reply", reply.Response)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/42", f.scraper.url)
	assert.Equal(t, 0, f.extractor.calls)
	require.Len(t, f.prompts, 1)
	assert.Contains(t, f.prompts[0], "Title: Frontend Developer")

	h := f.history(t, "s1")
	require.Len(t, h, 2)
	assert.Equal(t, msg, h[0].Content)
}

func TestAnalyzeJobLink(t *testing.T) {
	f := newChatFixture(t, nil)
	f.scraper.details = model.JobDetails{Title: "Analyst"}

	res, err := f.svc.AnalyzeJobLink(context.Background(), "s1", "https://careers.example.com/jobs/7")
	require.NoError(t, err)

	assert.Equal(t, "Analyst", res.JobDetails.Title)
	assert.Equal(t, "https://careers.example.com/jobs/7", res.JobDetails.URL)
	h := f.history(t, "s1")
	assert.Equal(t, "[Job link: https://careers.example.com/jobs/7]", h[0].Content)
}

func TestAnalyzeJobLink_ScrapeFailureStillAnswers(t *testing.T) {
	f := newChatFixture(t, nil)
	f.scraper.err = errors.New("403")

	res, err := f.svc.AnalyzeJobLink(context.Background(), "s1", "https://www.indeed.com/viewjob?jk=1")
	require.NoError(t, err)
	assert.Equal(t, "generated reply", res.Response)
	assert.Contains(t, f.prompts[0], "could not be read")
}

func TestAnalyzeJobLink_NonPublicAddressRefused(t *testing.T) {
	f := newChatFixture(t, nil)
	f.scraper.details = model.JobDetails{Title: "admin console", Description: "internal"}
	f.scraper.err = fmt.Errorf("fetch: %w: 127.0.0.1", scrape.ErrDisallowedAddress)

	res, err := f.svc.AnalyzeJobLink(context.Background(), "s1", "http://127.0.0.1:8080/admin")
	assert.ErrorIs(t, err, apperrors.ErrInvalidURL)
	assert.Nil(t, res)
	assert.Empty(t, f.prompts)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestConverse_NonPublicJobLinkKeepsOnlyURL(t *testing.T) {
	f := newChatFixture(t, nil)
	f.scraper.details = model.JobDetails{Title: "admin console"}
	f.scraper.err = fmt.Errorf("fetch: %w", scrape.ErrDisallowedAddress)

	f.svc.Converse(context.Background(), "s1", "check https://jobs.lever.co/acme/1 please", ChatContext{})

	require.Len(t, f.prompts, 1)
	assert.NotContains(t, f.prompts[0], "admin console")
}

func TestAnalyzeJobLink_InvalidURL(t *testing.T) {
	f := newChatFixture(t, nil)

	_, err := f.svc.AnalyzeJobLink(context.Background(), "s1", "not-a-url")
	assert.ErrorIs(t, err, apperrors.ErrInvalidURL)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestAnalyzeResume_WithEnoughSkillsSearchesAllCategories(t *testing.T) {
	f := newChatFixture(t, nil)
	f.extractor.skills = []string{"Go", "SQL", "Leadership"}
	for _, c := range model.Categories {
		f.searcher.On("Search", mock.Anything, f.extractor.skills, c).
			Return([]model.Opportunity{{Title: string(c) + " pick", Source: "test"}})
	}

	res, err := f.svc.AnalyzeResume(context.Background(), "s1", "cv.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "cv.pdf", res.Filename)
	assert.Equal(t, []string{"Go", "SQL", "Leadership"}, res.Skills)
	assert.Equal(t, "generated reply\n\ngenerated reply", res.Response)
	require.Len(t, f.prompts, 2)
	assert.Contains(t, f.prompts[1], "jobs pick")
	assert.Contains(t, f.prompts[1], "mentoring pick")

	h := f.history(t, "s1")
	require.Len(t, h, 2)
	assert.Equal(t, "[Uploaded resume: cv.pdf]", h[0].Content)
	f.searcher.AssertExpectations(t)
}

func TestAnalyzeResume_FewSkillsNoSearch(t *testing.T) {
	f := newChatFixture(t, nil)
	f.extractor.skills = []string{"Go"}

	res, err := f.svc.AnalyzeResume(context.Background(), "s1", "cv.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "generated reply", res.Response)
	f.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeResume_ExtractionFailureLeavesSessionUntouched(t *testing.T) {
	sessions := session.NewRegistry()
	svc := NewChatService(sessions, &stubExtractor{}, new(MockSearcher), &stubScraper{},
		stubIngestor{err: apperrors.ErrExtractionFailed}, llm.Disabled{})

	_, err := svc.AnalyzeResume(context.Background(), "s1", "cv.pdf", strings.NewReader("junk"))
	assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)
	assert.Equal(t, 0, sessions.Len())
}

func TestSearchOpportunities(t *testing.T) {
	f := newChatFixture(t, nil)
	f.searcher.On("Search", mock.Anything, []string{"Go", "SQL"}, model.CategoryEvents).
		Return([]model.Opportunity{{Title: "GopherCon", Source: "duckduckgo"}})

	res, err := f.svc.SearchOpportunities(context.Background(), "s1", []string{" Go ", "SQL", ""}, "events")
	require.NoError(t, err)

	require.Contains(t, res.Results, model.CategoryEvents)
	assert.Len(t, res.Results, 1)
	assert.Contains(t, res.Response, "GopherCon")

	s, _ := f.sessions.Get("s1")
	assert.Equal(t, []string{"Go", "SQL"}, s.UserInfo.Skills)
	assert.Len(t, s.History, 2)
}

func TestSearchOpportunities_AllCategories(t *testing.T) {
	f := newChatFixture(t, nil)
	f.searcher.On("Search", mock.Anything, []string{"Go"}, mock.Anything).Return(nil)

	res, err := f.svc.SearchOpportunities(context.Background(), "s1", []string{"Go"}, "")
	require.NoError(t, err)
	assert.Len(t, res.Results, 3)
	assert.Contains(t, res.Response, "No results found")
}

func TestSearchOpportunities_Validation(t *testing.T) {
	f := newChatFixture(t, nil)

	_, err := f.svc.SearchOpportunities(context.Background(), "s1", []string{" "}, "jobs")
	assert.ErrorIs(t, err, apperrors.ErrMissingSkills)

	_, err = f.svc.SearchOpportunities(context.Background(), "s1", []string{"Go"}, "webinars")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSearchType)

	assert.Equal(t, 0, f.sessions.Len())
}

func TestHistory(t *testing.T) {
	f := newChatFixture(t, nil)

	_, err := f.svc.History("missing")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	f.svc.PlainChat(context.Background(), "s1", "hi", ChatContext{})
	s, err := f.svc.History("s1")
	require.NoError(t, err)
	assert.Len(t, s.History, 2)
}

func TestIsSkillBearing_CountsCharacters(t *testing.T) {
	short := "I know Go " + strings.Repeat("é", 11)
	require.Greater(t, len(short), minSkillMessageLen)
	assert.False(t, isSkillBearing(short))

	assert.True(t, isSkillBearing("I know Go "+strings.Repeat("é", 20)))
	assert.False(t, isSkillBearing(strings.Repeat("é", 40)))
}

func TestConverse_BiasFlagged(t *testing.T) {
	f := newChatFixture(t, nil)
	f.biasAnswer = "Sure.\n```json\n" +
		`{"has_bias": true, "bias_type": "gender stereotype", "suggestion": "Skills matter, not gender."}` +
		"\n```"

	reply := f.svc.Converse(context.Background(), "s1", "Women are bad at engineering, right?", ChatContext{})

	assert.Equal(t, "generated reply", reply.Response)
	assert.True(t, reply.BiasDetected)
	assert.Equal(t, "gender stereotype", reply.BiasType)
	assert.Equal(t, "Skills matter, not gender.", reply.Suggestion)
	require.Len(t, f.biasText, 1)
	assert.Contains(t, f.biasText[0], "Women are bad at engineering")
}

func TestConverse_BiasCheckFailuresCountAsClear(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{"not json", "I cannot tell."},
		{"broken json", `{"has_bias": tru`},
		{"clear", `{"has_bias": false, "bias_type": "none", "suggestion": "n/a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t, nil)
			f.biasAnswer = tt.answer

			reply := f.svc.Converse(context.Background(), "s1", "How do I ask for a promotion?", ChatContext{})

			assert.Equal(t, "generated reply", reply.Response)
			assert.False(t, reply.BiasDetected)
			assert.Empty(t, reply.BiasType)
			assert.Empty(t, reply.Suggestion)
		})
	}
}

func TestConverse_BiasCheckGeneratorErrorIsClear(t *testing.T) {
	f := newChatFixture(t, errors.New("quota"))

	reply := f.svc.Converse(context.Background(), "s1", "hello", ChatContext{})

	assert.False(t, reply.BiasDetected)
}

func TestFeedback_AppendsSystemEntry(t *testing.T) {
	f := newChatFixture(t, nil)
	f.svc.PlainChat(context.Background(), "s1", "Hi there", ChatContext{})

	err := f.svc.Feedback(context.Background(), "s1", Feedback{MessageID: "m-7", Rating: 4, Comment: "  useful tips "})
	require.NoError(t, err)

	h := f.history(t, "s1")
	require.Len(t, h, 3)
	assert.Equal(t, model.RoleSystem, h[2].Role)
	assert.Equal(t, "[Feedback: 4/5 on m-7] useful tips", h[2].Content)
}

func TestFeedback_WithoutComment(t *testing.T) {
	f := newChatFixture(t, nil)
	f.svc.PlainChat(context.Background(), "s1", "Hi there", ChatContext{})

	require.NoError(t, f.svc.Feedback(context.Background(), "s1", Feedback{Rating: 2}))

	h := f.history(t, "s1")
	assert.Equal(t, "[Feedback: 2/5]", h[len(h)-1].Content)
}

func TestFeedback_UnknownSession(t *testing.T) {
	f := newChatFixture(t, nil)

	err := f.svc.Feedback(context.Background(), "missing", Feedback{Rating: 5})

	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	_, ok := f.sessions.Get("missing")
	assert.False(t, ok)
}
