package services

import (
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// Ensure InsightService implements the interface.
var _ driving.InsightService = (*InsightService)(nil)

// maxFollowups caps suggested follow-up questions.
const maxFollowups = 3

var (
	serviceFollowups = []string{
		"Would you like to see our case studies?",
		"What's your timeline for implementation?",
		"Can I connect you with our solutions expert?",
	}
	careerFollowups = []string{
		"What type of role are you interested in?",
		"Would you like to know about our company culture?",
		"Can I help you find current job openings?",
	}
	companyFollowups = []string{
		"Would you like to know about our leadership team?",
		"Are you interested in our company values?",
		"Can I tell you about our recent achievements?",
	}
)

// userTypeSignals are the words counted when inferring a user type.
var userTypeSignals = []struct {
	userType domain.UserType
	words    []string
}{
	{domain.UserTypePotentialClient, []string{"service", "solution", "help", "business", "project"}},
	{domain.UserTypeJobSeeker, []string{"job", "career", "position", "hiring", "work"}},
	{domain.UserTypeInformationSeeker, []string{"about", "company", "information", "know"}},
}

var nextQuestions = map[string][]string{
	"services": {
		"What's your timeline for implementation?",
		"What's your approximate budget range?",
		"Would you like to see some case studies?",
		"Can I connect you with our solutions architect?",
	},
	"careers": {
		"What type of role interests you most?",
		"Are you looking for remote or on-site positions?",
		"Would you like to know about our company culture?",
		"Can I help you find current job openings?",
	},
	"company": {
		"Would you like to know about our leadership team?",
		"Are you interested in our recent projects?",
		"Would you like to hear about our company values?",
		"Can I tell you about our industry expertise?",
	},
	"technical": {
		"Would you like a technical deep-dive?",
		"Are you interested in implementation details?",
		"Would you like to speak with our technical team?",
		"Can I share relevant case studies?",
	},
}

// InsightService turns detected intents and visitor history into
// journey analysis and suggested questions.
type InsightService struct {
	company domain.Company
}

// NewInsightService creates a new insight service.
func NewInsightService(company domain.Company) *InsightService {
	return &InsightService{company: company}
}

// AnalyzeJourney scores engagement over a series of intents.
// The score weighs turn count, topic breadth and mean confidence.
func (s *InsightService) AnalyzeJourney(intents []domain.IntentResult) domain.Journey {
	journey := domain.Journey{
		TotalIntents: len(intents),
		Engagement:   "none",
		MethodCounts: make(map[string]int),
	}
	if len(intents) == 0 {
		return journey
	}

	counts := make(map[string]int)
	var confidence float64
	for _, in := range intents {
		journey.MethodCounts[in.Method.String()]++
		confidence += in.Confidence
		for _, c := range in.Categories {
			if counts[c] == 0 {
				journey.Topics = append(journey.Topics, c)
			}
			counts[c]++
		}
	}
	journey.UniqueTopics = len(journey.Topics)

	// first topic wins ties
	for _, t := range journey.Topics {
		if counts[t] > journey.PrimaryCount {
			journey.PrimaryFocus = t
			journey.PrimaryCount = counts[t]
		}
	}

	avg := confidence / float64(len(intents))
	journey.EngagementScore = float64(len(intents))*0.4 + float64(journey.UniqueTopics)*0.3 + avg*0.3
	switch {
	case journey.EngagementScore > 3:
		journey.Engagement = "high"
	case journey.EngagementScore > 1.5:
		journey.Engagement = "medium"
	default:
		journey.Engagement = "low"
	}
	return journey
}

// SuggestFollowups returns up to three follow-up questions for the intent's categories.
func (s *InsightService) SuggestFollowups(intent domain.IntentResult) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(qs []string) {
		for _, q := range qs {
			if !seen[q] {
				seen[q] = true
				out = append(out, q)
			}
		}
	}

	for _, c := range intent.Categories {
		switch domain.FamilyOf(c) {
		case domain.FamilyService:
			add(serviceFollowups)
		case domain.FamilyCareer:
			add(careerFollowups)
		case domain.FamilyCompany:
			add(companyFollowups)
		}
	}
	if len(out) > maxFollowups {
		out = out[:maxFollowups]
	}
	return out
}

// ClassifyUserType returns the declared type, or infers one from the
// visitor's words. A business email counts as one client signal. Ties infer nothing.
func (s *InsightService) ClassifyUserType(profile domain.UserProfile, utterances []string) domain.UserType {
	if profile.UserType.IsValid() && profile.UserType != domain.UserTypeGeneral {
		return profile.UserType
	}

	text := strings.ToLower(strings.Join(utterances, " "))
	best, bestCount, tied := domain.UserTypeGeneral, 0, false
	for _, sig := range userTypeSignals {
		n := 0
		if sig.userType == domain.UserTypePotentialClient && IsBusinessEmail(profile.Email) {
			n++
		}
		for _, w := range sig.words {
			n += strings.Count(text, w)
		}
		switch {
		case n > bestCount:
			best, bestCount, tied = sig.userType, n, false
		case n == bestCount && n > 0:
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return domain.UserTypeGeneral
	}
	return best
}

// ConversationStarter greets a visitor according to their profile.
func (s *InsightService) ConversationStarter(profile domain.UserProfile) string {
	return s.ConversationStarters(profile)[0]
}

// ConversationStarters returns the greeting variants for the visitor's user type.
func (s *InsightService) ConversationStarters(profile domain.UserProfile) []string {
	greeting := "Hello! "
	if profile.Name != "" {
		greeting = "Hello " + profile.Name + "! "
	}
	name := s.company.Name

	var variants []string
	switch profile.UserType {
	case domain.UserTypePotentialClient:
		variants = []string{
			"I'm excited to help you find the perfect digital solution for your business. What challenges are you looking to solve?",
			"Welcome to " + name + "! I'd love to learn about your business needs and how we can help you grow.",
			"Great to meet you! What type of digital transformation are you considering for your company?",
		}
	case domain.UserTypeJobSeeker:
		variants = []string{
			"Welcome to " + name + "! I'm thrilled you're interested in joining our team. What type of role are you looking for?",
			"Thanks for your interest in careers at " + name + "! Tell me about your background and what excites you about working with us.",
			"I'd love to help you explore opportunities at " + name + ". What skills and experience do you bring?",
		}
	case domain.UserTypeInformationSeeker:
		variants = []string{
			"I'm here to share information about " + name + " and our digital solutions. What would you like to know?",
			"Welcome! I'm happy to tell you about " + name + ", our services, and our approach to digital transformation.",
			"Great to meet you! What aspects of " + name + " are you most curious about?",
		}
	default:
		variants = []string{
			"I'm " + s.company.BotName + ", your virtual assistant at " + name + ". How can I help you today?",
			"Welcome to " + name + "! I'm here to answer any questions about our services, company, or opportunities.",
			"Hi there! I'm ready to help with any questions about " + name + ". What can I assist you with?",
		}
	}

	for i, v := range variants {
		variants[i] = greeting + v
	}
	return variants
}

// SuggestNextQuestions proposes questions based on the last three utterances.
func (s *InsightService) SuggestNextQuestions(utterances []string) []string {
	recent := utterances
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	text := strings.ToLower(strings.Join(recent, " "))

	topic := "services"
	switch {
	case strings.Contains(text, "career"):
		topic = "careers"
	case strings.Contains(text, "about"):
		topic = "company"
	case containsAny(text, "technical", "api", "integration", "architecture"):
		topic = "technical"
	}

	qs := nextQuestions[topic]
	out := make([]string, 3)
	copy(out, qs[:3])
	return out
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
