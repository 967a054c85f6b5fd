package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/apperrors"
	"github.com/ekaya-inc/clearbrief/pkg/llm"
	"github.com/ekaya-inc/clearbrief/pkg/logging"
	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
	"github.com/ekaya-inc/clearbrief/pkg/retry"
)

// Names of the responder branches.
const (
	ChatRuleQA        = "qa"
	ChatRuleConflicts = "conflicts"
	ChatRuleVerified  = "verified"
	ChatRuleSpotrep   = "spotrep"
	ChatRuleFallback  = "fallback"
	ChatRuleLLM       = "llm"
)

// Citation limits per rule.
const (
	qaPrefixLength         = 20
	conflictItemsPerEntry  = 2
	conflictCitationLimit  = 4
	verifiedCitationLimit  = 3
	spotrepCitationLimit   = 4
	llmContextReportLimit  = 8
	llmContextConflictLine = 160
)

// FallbackAnswer is returned when no rule matches the question.
const FallbackAnswer = "I can help you analyze this project's intelligence data. " +
	"I have access to military reports, public items, verification results, and knowledge graph data. " +
	"Please ask specific questions about events, conflicts, verified sources, or request a summary."

const assistantSystemMessage = `You are the analyst assistant of a crisis-intelligence workspace.
Answer only from the project context you are given. Military reports are authoritative;
public items are corroborating signals weighted by their verification label.
Be concise and cite report or item ids in the form MIL-001 or PUB-001 when you rely on them.`

var (
	conflictKeywords = []string{"conflict", "unresolved"}
	verifiedKeywords = []string{"verified", "civilian", "public"}
	spotrepKeywords  = []string{"spotrep", "update", "change"}
)

// Respond picks the scripted answer for query. Stored Q&A pairs match when
// the lowercased query contains the first 20 characters of the question;
// otherwise keyword rules are tried in order, then the fallback.
func Respond(p *models.Project, query string) models.ChatAnswer {
	lower := strings.ToLower(query)

	for _, qa := range p.Chat.QAPairs {
		if strings.Contains(lower, runePrefix(strings.ToLower(qa.Q), qaPrefixLength)) {
			return models.ChatAnswer{Content: qa.A, Citations: nonNil(qa.Citations), Rule: ChatRuleQA}
		}
	}

	if containsAny(lower, conflictKeywords) {
		return conflictAnswer(p)
	}
	if containsAny(lower, verifiedKeywords) {
		return verifiedAnswer(p)
	}
	if containsAny(lower, spotrepKeywords) {
		if latest := p.LatestSpotrep(); latest != nil {
			return spotrepAnswer(latest)
		}
	}
	return fallbackAnswer(p)
}

func conflictAnswer(p *models.Project) models.ChatAnswer {
	open := p.OpenConflicts()

	lines := make([]string, len(open))
	citations := []string{}
	for i, c := range open {
		lines[i] = "• " + c.Summary
		items := c.Items
		if len(items) > conflictItemsPerEntry {
			items = items[:conflictItemsPerEntry]
		}
		citations = append(citations, items...)
	}
	if len(citations) > conflictCitationLimit {
		citations = citations[:conflictCitationLimit]
	}

	verb := "are"
	if len(open) == 1 {
		verb = "is"
	}
	content := fmt.Sprintf("There %s %d active %s in this project:\n\n%s\n\nThese require attention and cross-verification with primary sources.",
		verb, len(open), countNoun("conflict", len(open)), strings.Join(lines, "\n"))
	return models.ChatAnswer{Content: content, Citations: citations, Rule: ChatRuleConflicts}
}

func verifiedAnswer(p *models.Project) models.ChatAnswer {
	citations := []string{}
	verified := 0
	for _, v := range p.VerificationResults {
		if v.Label != models.LabelVerified {
			continue
		}
		verified++
		if len(citations) < verifiedCitationLimit {
			citations = append(citations, v.ItemID)
		}
	}

	verb := "have"
	if verified == 1 {
		verb = "has"
	}
	content := fmt.Sprintf("%d public %s %s been verified in this project. "+
		"These sources have passed reliability, relevance, geo-consistency, and cross-confirmation checks. "+
		"Verified civilian signals provide corroborating context but should be weighted against military reports.",
		verified, countNoun("item", verified), verb)
	return models.ChatAnswer{Content: content, Citations: citations, Rule: ChatRuleVerified}
}

func spotrepAnswer(v *models.SpotrepVersion) models.ChatAnswer {
	sources := v.Sections.Sources
	if len(sources) > spotrepCitationLimit {
		sources = sources[:spotrepCitationLimit]
	}
	content := fmt.Sprintf("The latest SPOTREP (%s) was generated covering %s.\n\nKey findings:\n• %s\n• Confidence: %s",
		v.ID, v.TimeWindow, v.Sections.Situation, v.Sections.ConfidenceSummary)
	return models.ChatAnswer{Content: content, Citations: append([]string{}, sources...), Rule: ChatRuleSpotrep}
}

func fallbackAnswer(p *models.Project) models.ChatAnswer {
	citations := []string{}
	if len(p.MilitaryReports) > 0 {
		citations = append(citations, p.MilitaryReports[0].ID)
	}
	if len(p.PublicItems) > 0 {
		citations = append(citations, p.PublicItems[0].ID)
	}
	return models.ChatAnswer{Content: FallbackAnswer, Citations: citations, Rule: ChatRuleFallback}
}

func countNoun(noun string, n int) string {
	if n == 1 {
		return noun
	}
	return inflection.Plural(noun)
}

func runePrefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ChatView is the chat tab before any message is sent.
type ChatView struct {
	ProjectID        string   `json:"projectId"`
	SuggestedPrompts []string `json:"suggestedPrompts"`
	LLMEnabled       bool     `json:"llmEnabled"`
}

// ChatExchange is the pair of messages produced by one send.
type ChatExchange struct {
	User      models.ChatMessage `json:"user"`
	Assistant models.ChatMessage `json:"assistant"`
	Rule      string             `json:"rule"`
	Sources   []SourceDetail     `json:"sources"`
}

// ChatService answers analyst questions about a project.
type ChatService interface {
	GetChat(ctx context.Context, projectID string) (*ChatView, error)
	// Ask answers query. Empty queries return apperrors.ErrInvalidInput.
	Ask(ctx context.Context, projectID, query string) (*ChatExchange, error)
}

type chatService struct {
	repo     repositories.ProjectRepository
	llm      llm.Completer
	breaker  *llm.Breaker
	retryCfg *retry.Config
	now      func() time.Time
	logger   *zap.Logger
}

// NewChatService creates a chat service. completer may be nil, in which
// case only scripted answers are given.
func NewChatService(repo repositories.ProjectRepository, completer llm.Completer, logger *zap.Logger) ChatService {
	return &chatService{
		repo:     repo,
		llm:      completer,
		breaker:  llm.NewBreaker(llm.DefaultBreakerConfig()),
		retryCfg: retry.DefaultConfig(),
		now:      time.Now,
		logger:   logger.Named("chat"),
	}
}

func (s *chatService) GetChat(ctx context.Context, projectID string) (*ChatView, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &ChatView{
		ProjectID:        p.ID,
		SuggestedPrompts: nonNil(p.Chat.SuggestedPrompts),
		LLMEnabled:       s.llm != nil,
	}, nil
}

func (s *chatService) Ask(ctx context.Context, projectID, query string) (*ChatExchange, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty question: %w", apperrors.ErrInvalidInput)
	}
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	userMsg := models.NewChatMessage(models.ChatRoleUser, query, nil, s.now())
	answer := Respond(p, query)
	if answer.Rule == ChatRuleFallback && s.llm != nil {
		answer = s.complete(ctx, p, query, answer)
	}

	s.logger.Debug("Chat answered",
		zap.String("project_id", projectID),
		zap.String("query", logging.SanitizeQuery(query)),
		zap.String("rule", answer.Rule),
		zap.Int("citations", len(answer.Citations)))

	return &ChatExchange{
		User:      userMsg,
		Assistant: models.NewChatMessage(models.ChatRoleAssistant, answer.Content, answer.Citations, s.now()),
		Rule:      answer.Rule,
		Sources:   ResolveSources(p, answer.Citations),
	}, nil
}

// complete asks the model and keeps the scripted fallback when it fails.
func (s *chatService) complete(ctx context.Context, p *models.Project, query string, fallback models.ChatAnswer) models.ChatAnswer {
	if err := s.breaker.Allow(); err != nil {
		s.logger.Warn("LLM circuit open, using scripted answer",
			zap.String("project_id", p.ID),
			zap.String("circuit_state", s.breaker.State().String()),
			zap.Int("consecutive_failures", s.breaker.Failures()))
		return fallback
	}

	prompt := buildAssistantPrompt(p, query)
	content, err := retry.DoWithResult(ctx, s.retryCfg, func() (string, error) {
		return s.llm.Complete(ctx, assistantSystemMessage, prompt)
	})
	if err != nil {
		s.breaker.RecordFailure()
		s.logger.Warn("LLM fallback failed, using scripted answer",
			zap.String("project_id", p.ID),
			zap.Int("consecutive_failures", s.breaker.Failures()),
			zap.String("error", logging.SanitizeError(err)))
		return fallback
	}
	s.breaker.RecordSuccess()
	return models.ChatAnswer{
		Content:   content,
		Citations: citedIDs(p, content, fallback.Citations),
		Rule:      ChatRuleLLM,
	}
}

// buildAssistantPrompt summarizes the project for the model.
func buildAssistantPrompt(p *models.Project, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project %s: %s (%s), status %s.\n", p.ID, p.Name, p.Region, p.Status)
	fmt.Fprintf(&b, "%d military reports, %d public items, %d%% of verified results labelled Verified.\n",
		len(p.MilitaryReports), len(p.PublicItems), VerifiedPercentage(p.VerificationResults))

	b.WriteString("\nMilitary reports:\n")
	for i, r := range p.MilitaryReports {
		if i == llmContextReportLimit {
			break
		}
		fmt.Fprintf(&b, "- %s %s %s: %s\n", r.ID, r.ReportedAt, r.Unit, r.Text)
	}

	if open := p.OpenConflicts(); len(open) > 0 {
		b.WriteString("\nOpen conflicts:\n")
		for _, c := range open {
			fmt.Fprintf(&b, "- %s (%s): %s\n", c.ID, strings.Join(c.Items, ", "),
				logging.TruncateString(c.Summary, llmContextConflictLine))
		}
	}

	if latest := p.LatestSpotrep(); latest != nil {
		fmt.Fprintf(&b, "\nLatest SPOTREP %s: %s\n", latest.ID, latest.Sections.Situation)
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n", query)
	return b.String()
}

// citedIDs returns the project source ids mentioned in content, or
// fallback when none are.
func citedIDs(p *models.Project, content string, fallback []string) []string {
	var ids []string
	for _, r := range p.MilitaryReports {
		if strings.Contains(content, r.ID) {
			ids = append(ids, r.ID)
		}
	}
	for _, item := range p.PublicItems {
		if strings.Contains(content, item.ID) {
			ids = append(ids, item.ID)
		}
	}
	if len(ids) == 0 {
		return fallback
	}
	return ids
}

var _ ChatService = (*chatService)(nil)
