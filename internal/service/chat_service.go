package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	apperrors "asha/internal/errors"
	"asha/internal/joblink"
	"asha/internal/llm"
	"asha/internal/logging"
	"asha/internal/metrics"
	"asha/internal/model"
	"asha/internal/scrape"
	"asha/internal/session"
)

// minSkillsForSearch is how many skills trigger an opportunity search.
const minSkillsForSearch = 3

// SkillExtractor derives skills from text.
type SkillExtractor interface {
	Extract(ctx context.Context, text string) []string
}

// OpportunitySearcher finds opportunities for a category.
type OpportunitySearcher interface {
	Search(ctx context.Context, skills []string, category model.Category) []model.Opportunity
}

// JobPageScraper recovers job details from a posting URL.
type JobPageScraper interface {
	Details(ctx context.Context, rawURL string) (model.JobDetails, error)
}

// DocumentIngestor turns an uploaded document into text.
type DocumentIngestor interface {
	Ingest(r io.Reader) (string, error)
}

// ChatContext is optional caller-supplied context for a chat message.
type ChatContext struct {
	Name string `json:"name,omitempty"`
}

// ChatReply is the result of a conversational turn. The bias fields are
// only filled on the generator path.
type ChatReply struct {
	Response     string   `json:"response"`
	SessionID    string   `json:"sessionId"`
	Skills       []string `json:"skills,omitempty"`
	BiasDetected bool     `json:"biasDetected"`
	BiasType     string   `json:"biasType,omitempty"`
	Suggestion   string   `json:"suggestion,omitempty"`
}

// BiasCheck is the generator's verdict on a message.
type BiasCheck struct {
	HasBias    bool   `json:"has_bias"`
	BiasType   string `json:"bias_type"`
	Suggestion string `json:"suggestion"`
}

// Feedback is a user's rating of an assistant reply.
type Feedback struct {
	MessageID string
	Rating    int
	Comment   string
}

// JobLinkReply is the result of analysing a job posting.
type JobLinkReply struct {
	Response   string           `json:"response"`
	SessionID  string           `json:"sessionId"`
	JobDetails model.JobDetails `json:"jobDetails"`
}

// ResumeReply is the result of analysing an uploaded resume.
type ResumeReply struct {
	Response  string   `json:"response"`
	SessionID string   `json:"sessionId"`
	Filename  string   `json:"filename"`
	Skills    []string `json:"skills"`
}

// SearchReply is the result of an explicit opportunity search.
type SearchReply struct {
	Response  string                                 `json:"response"`
	SessionID string                                 `json:"sessionId"`
	Results   map[model.Category][]model.Opportunity `json:"results"`
}

// ChatService is the conversational responder.
type ChatService interface {
	// PlainChat answers from the canned tip sheets.
	PlainChat(ctx context.Context, sessionID, text string, cc ChatContext) ChatReply
	// Converse answers through the text generator, extracting skills and
	// surfacing jobs when enough are known. Job portal links are analysed instead.
	Converse(ctx context.Context, sessionID, message string, cc ChatContext) ChatReply
	AnalyzeJobLink(ctx context.Context, sessionID, rawURL string) (*JobLinkReply, error)
	// AnalyzeResume extracts text and skills from a PDF and returns feedback.
	// The session is untouched when extraction fails.
	AnalyzeResume(ctx context.Context, sessionID, filename string, r io.Reader) (*ResumeReply, error)
	SearchOpportunities(ctx context.Context, sessionID string, skills []string, searchType string) (*SearchReply, error)
	// Listings runs a single category search without touching any session.
	Listings(ctx context.Context, skills []string, category model.Category) ([]model.Opportunity, error)
	History(sessionID string) (model.Session, error)
	// Feedback records a rating against an existing session.
	Feedback(ctx context.Context, sessionID string, fb Feedback) error
}

type chatService struct {
	sessions  *session.Registry
	extractor SkillExtractor
	searcher  OpportunitySearcher
	scraper   JobPageScraper
	ingestor  DocumentIngestor
	gen       llm.Generator
}

// NewChatService creates the conversational responder.
func NewChatService(
	sessions *session.Registry,
	extractor SkillExtractor,
	searcher OpportunitySearcher,
	scraper JobPageScraper,
	ingestor DocumentIngestor,
	gen llm.Generator,
) ChatService {
	return &chatService{
		sessions:  sessions,
		extractor: extractor,
		searcher:  searcher,
		scraper:   scraper,
		ingestor:  ingestor,
		gen:       gen,
	}
}

// resolveName prefers the name stored in the session, then the one from
// the request, then "there".
func (s *chatService) resolveName(sessionID string, cc ChatContext) string {
	sess := s.sessions.GetOrCreate(sessionID)
	if sess.UserInfo.Name != "" {
		return sess.UserInfo.Name
	}
	if name := strings.TrimSpace(cc.Name); name != "" {
		s.sessions.SetName(sessionID, name)
		return name
	}
	return defaultName
}

func (s *chatService) PlainChat(ctx context.Context, sessionID, text string, cc ChatContext) ChatReply {
	name := s.resolveName(sessionID, cc)
	group, reply := cannedReply(text, name)

	s.sessions.AppendMessage(sessionID, model.RoleUser, text)
	s.sessions.AppendMessage(sessionID, model.RoleAssistant, reply)

	metrics.ChatReplies.WithLabelValues("plain").Inc()
	logging.WithSession(sessionID).Debug("plain chat reply", "group", group)
	return ChatReply{Response: reply, SessionID: sessionID}
}

func (s *chatService) Converse(ctx context.Context, sessionID, message string, cc ChatContext) ChatReply {
	log := logging.WithSession(sessionID)
	name := s.resolveName(sessionID, cc)

	if link, ok := joblink.FindJobURL(message); ok {
		details, err := s.scrapeJob(ctx, sessionID, link)
		if err != nil {
			details = model.JobDetails{URL: link}
		}
		res := s.reviewJob(ctx, sessionID, details, message)
		return ChatReply{Response: res.Response, SessionID: sessionID}
	}

	s.sessions.AppendMessage(sessionID, model.RoleUser, message)
	bias := s.checkBias(ctx, sessionID, message)

	var skills []string
	jobRelated := isJobRelated(message)
	switch {
	case jobRelated && isSkillBearing(message):
		extracted := s.extractor.Extract(ctx, message)
		skills = s.sessions.MergeSkills(sessionID, extracted)
		log.Info("skills extracted from message", "extracted", len(extracted), "total", len(skills))
	case jobRelated:
		if sess, _ := s.sessions.Get(sessionID); len(sess.UserInfo.Skills) >= minSkillsForSearch {
			skills = sess.UserInfo.Skills
		}
	}

	reply, err := s.gen.Generate(ctx, personaPrompt, userPrompt(name, message))
	if err != nil {
		log.Warn("chat generation failed", "error", err)
		reply = apologyReply
	}

	if len(skills) >= minSkillsForSearch {
		if jobs := s.searchSafely(ctx, skills, model.CategoryJobs); len(jobs) > 0 {
			reply += "\n\nHere are some job opportunities that match your skills:\n" + bulletList(jobs, 5)
		}
	}

	s.sessions.AppendMessage(sessionID, model.RoleAssistant, reply)
	metrics.ChatReplies.WithLabelValues("llm").Inc()
	return ChatReply{
		Response:     reply,
		SessionID:    sessionID,
		Skills:       skills,
		BiasDetected: bias.HasBias,
		BiasType:     bias.BiasType,
		Suggestion:   bias.Suggestion,
	}
}

// checkBias asks the generator whether message carries gender bias. An
// error or an unreadable answer counts as no bias.
func (s *chatService) checkBias(ctx context.Context, sessionID, message string) BiasCheck {
	raw, err := s.gen.Generate(ctx, biasCheckPrompt, biasPrompt(message))
	if err != nil {
		metrics.BiasChecks.WithLabelValues(metrics.OutcomeError).Inc()
		return BiasCheck{}
	}
	var check BiasCheck
	if err := llm.DecodeJSONObject(raw, &check); err != nil {
		logging.WithSession(sessionID).Debug("bias check answer unreadable", "error", err)
		metrics.BiasChecks.WithLabelValues(metrics.OutcomeError).Inc()
		return BiasCheck{}
	}
	if !check.HasBias {
		metrics.BiasChecks.WithLabelValues("clear").Inc()
		return BiasCheck{}
	}
	metrics.BiasChecks.WithLabelValues("flagged").Inc()
	logging.WithSession(sessionID).Info("bias flagged in message", "type", check.BiasType)
	return check
}

func (s *chatService) AnalyzeJobLink(ctx context.Context, sessionID, rawURL string) (*JobLinkReply, error) {
	u, err := joblink.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	details, err := s.scrapeJob(ctx, sessionID, u.String())
	if err != nil {
		return nil, err
	}
	res := s.reviewJob(ctx, sessionID, details, "")
	return &res, nil
}

// scrapeJob fetches the posting behind link. Fetch failures degrade to
// details carrying only the URL; links pointing at non-public addresses are
// refused with ErrInvalidURL.
func (s *chatService) scrapeJob(ctx context.Context, sessionID, link string) (model.JobDetails, error) {
	details, err := s.scraper.Details(ctx, link)
	if err == nil {
		return details, nil
	}
	logging.WithSession(sessionID).Warn("job page scrape failed", "url", link, "error", err)
	if errors.Is(err, scrape.ErrDisallowedAddress) {
		return model.JobDetails{}, apperrors.ErrInvalidURL
	}
	return model.JobDetails{URL: link, Source: details.Source}, nil
}

// reviewJob asks the generator to review a scraped posting. inbound is the
// user's message, or empty when the link arrived on its own.
func (s *chatService) reviewJob(ctx context.Context, sessionID string, details model.JobDetails, inbound string) JobLinkReply {
	reply, err := s.gen.Generate(ctx, jobAnalysisPrompt, jobLinkPrompt(details, inbound))
	if err != nil {
		logging.WithSession(sessionID).Warn("job analysis generation failed", "error", err)
		reply = apologyReply
	}

	if inbound == "" {
		inbound = "[Job link: " + details.URL + "]"
	}
	s.sessions.AppendMessage(sessionID, model.RoleUser, inbound)
	s.sessions.AppendMessage(sessionID, model.RoleAssistant, reply)

	metrics.ChatReplies.WithLabelValues("job_link").Inc()
	return JobLinkReply{Response: reply, SessionID: sessionID, JobDetails: details}
}

func (s *chatService) AnalyzeResume(ctx context.Context, sessionID, filename string, r io.Reader) (*ResumeReply, error) {
	log := logging.WithSession(sessionID)

	text, err := s.ingestor.Ingest(r)
	if err != nil {
		return nil, fmt.Errorf("ingest resume: %w", err)
	}

	skills := s.extractor.Extract(ctx, text)
	s.sessions.MergeSkills(sessionID, skills)
	log.Info("resume processed", "filename", filename, "skills", len(skills))

	reply, err := s.gen.Generate(ctx, resumeAnalysisPrompt, resumePrompt(text, skills))
	if err != nil {
		log.Warn("resume feedback generation failed", "error", err)
		reply = apologyReply
	}

	if len(skills) >= minSkillsForSearch {
		results := s.searchAll(ctx, skills, model.Categories)
		listing := formatResults(results, 5)
		section, err := s.gen.Generate(ctx, personaPrompt, opportunitiesFormatPrompt(listing))
		if err != nil {
			log.Warn("opportunity formatting failed", "error", err)
			section = "## Opportunities for you\n\n" + listing
		}
		reply += "\n\n" + section
	}

	s.sessions.AppendMessage(sessionID, model.RoleUser, "[Uploaded resume: "+filename+"]")
	s.sessions.AppendMessage(sessionID, model.RoleAssistant, reply)

	metrics.ChatReplies.WithLabelValues("resume").Inc()
	return &ResumeReply{Response: reply, SessionID: sessionID, Filename: filename, Skills: skills}, nil
}

func (s *chatService) SearchOpportunities(ctx context.Context, sessionID string, skills []string, searchType string) (*SearchReply, error) {
	skills = cleanSkills(skills)
	if len(skills) == 0 {
		return nil, apperrors.ErrMissingSkills
	}
	categories, err := parseSearchType(searchType)
	if err != nil {
		return nil, err
	}

	s.sessions.MergeSkills(sessionID, skills)
	results := s.searchAll(ctx, skills, categories)

	reply := fmt.Sprintf("Here is what I found for %s:\n\n%s", strings.Join(skills, ", "), formatResults(results, 5))

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	s.sessions.AppendMessage(sessionID, model.RoleUser,
		fmt.Sprintf("[Opportunity search: %s for %s]", strings.Join(names, ", "), strings.Join(skills, ", ")))
	s.sessions.AppendMessage(sessionID, model.RoleAssistant, reply)

	metrics.ChatReplies.WithLabelValues("search").Inc()
	return &SearchReply{Response: reply, SessionID: sessionID, Results: results}, nil
}

func (s *chatService) Listings(ctx context.Context, skills []string, category model.Category) ([]model.Opportunity, error) {
	skills = cleanSkills(skills)
	if len(skills) == 0 {
		return nil, apperrors.ErrMissingSkills
	}
	return s.searchSafely(ctx, skills, category), nil
}

func (s *chatService) History(sessionID string) (model.Session, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return model.Session{}, apperrors.ErrSessionNotFound
	}
	return sess, nil
}

func (s *chatService) Feedback(ctx context.Context, sessionID string, fb Feedback) error {
	if _, ok := s.sessions.Get(sessionID); !ok {
		return apperrors.ErrSessionNotFound
	}

	entry := fmt.Sprintf("[Feedback: %d/5", fb.Rating)
	if fb.MessageID != "" {
		entry += " on " + fb.MessageID
	}
	entry += "]"
	if comment := strings.TrimSpace(fb.Comment); comment != "" {
		entry += " " + comment
	}
	s.sessions.AppendMessage(sessionID, model.RoleSystem, entry)

	metrics.FeedbackRatings.WithLabelValues(strconv.Itoa(fb.Rating)).Inc()
	logging.WithSession(sessionID).Info("feedback received", "rating", fb.Rating, "message_id", fb.MessageID)
	return nil
}

// searchSafely runs one search, turning a panic into an empty result.
func (s *chatService) searchSafely(ctx context.Context, skills []string, category model.Category) (out []model.Opportunity) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("opportunity search panicked", slog.String("category", string(category)), slog.Any("panic", r))
			out = []model.Opportunity{}
		}
	}()
	out = s.searcher.Search(ctx, skills, category)
	if out == nil {
		out = []model.Opportunity{}
	}
	return out
}

// searchAll queries every category concurrently.
func (s *chatService) searchAll(ctx context.Context, skills []string, categories []model.Category) map[model.Category][]model.Opportunity {
	found := make([][]model.Opportunity, len(categories))
	var wg sync.WaitGroup
	for i, c := range categories {
		wg.Add(1)
		go func(i int, c model.Category) {
			defer wg.Done()
			found[i] = s.searchSafely(ctx, skills, c)
		}(i, c)
	}
	wg.Wait()

	results := make(map[model.Category][]model.Opportunity, len(categories))
	for i, c := range categories {
		results[c] = found[i]
	}
	return results
}

func parseSearchType(searchType string) ([]model.Category, error) {
	searchType = strings.ToLower(strings.TrimSpace(searchType))
	if searchType == "" || searchType == "all" {
		return model.Categories, nil
	}
	if searchType == "mentorship" {
		searchType = string(model.CategoryMentoring)
	}
	c, err := model.ParseCategory(searchType)
	if err != nil {
		return nil, apperrors.ErrInvalidSearchType
	}
	return []model.Category{c}, nil
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
