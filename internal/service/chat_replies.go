package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const defaultName = "there"

// cannedGroup is one rule of the plain-chat responder. A group matches when
// any phrase occurs in the lower-cased message, or any word equals one of
// words.
type cannedGroup struct {
	name    string
	phrases []string
	words   []string
	reply   string
}

// cannedGroups are checked in order; the first match wins.
var cannedGroups = []cannedGroup{
	{
		name:    "resume",
		phrases: []string{"resume", "cv", "curriculum vitae"},
		reply: `Hi %s! Here are some tips to make your resume stand out:

1. Lead with a short professional summary tailored to the role.
2. Quantify achievements ("grew sales by 20%%") instead of listing duties.
3. Mirror keywords from the job description so applicant tracking systems find you.
4. Keep it to one or two pages with a clean, consistent layout.

If you are returning after a career break, add a brief line explaining it and highlight any courses, freelancing or volunteering from that time. You can also upload your resume here for personalised feedback.`,
	},
	{
		name:    "interview",
		phrases: []string{"interview"},
		reply: `Hi %s! Let's get you ready for that interview:

1. Research the company's products, culture and recent news.
2. Prepare stories using the STAR method (Situation, Task, Action, Result).
3. Practise common questions aloud, including "Tell me about yourself".
4. Prepare two or three thoughtful questions for the interviewer.

On the day, arrive (or log in) a few minutes early and follow up with a thank-you note within 24 hours. You've got this!`,
	},
	{
		name:    "salary",
		phrases: []string{"salary", "negotiat", "compensation", "pay raise"},
		reply: `Hi %s! Negotiating pay is a skill you can learn:

1. Research market ranges for the role, level and city before the conversation.
2. Let the employer share a number first when you can.
3. Anchor on the value you bring, backed by concrete results.
4. Consider the whole package: bonus, equity, flexibility, learning budget and leave.

It is normal and expected to negotiate. A calm, well-researched ask rarely costs you an offer.`,
	},
	{
		name:    "career_change",
		phrases: []string{"career change", "change career", "change my career", "switch career", "career switch", "transition"},
		reply: `Hi %s! Changing careers is a big step, and very doable:

1. List the transferable skills from your current work.
2. Explore the new field through informational interviews and online communities.
3. Fill gaps with short courses or certifications and a small portfolio project.
4. Look for returnship and mentoring programs designed for career changers.

Tell me which field you are considering and I can suggest where to start.`,
	},
	{
		name:    "greeting",
		phrases: []string{"good morning", "good afternoon", "good evening"},
		words:   []string{"hi", "hello", "hey", "hiya", "namaste"},
		reply: `Hello %s! 👋 I'm Asha, your career companion.

I can help you with:
- Resume and CV tips
- Interview preparation
- Salary negotiation
- Career changes and restarts
- Finding jobs, events and mentoring programs

What would you like to talk about today?`,
	},
}

const fallbackReply = `Thanks for your message, %s! I'm here to support your career journey.

You can ask me about resumes, interviews, salary negotiation or changing careers, or share your skills and I'll look for matching jobs, events and mentoring programs.`

// cannedReply picks the first matching canned reply for message.
func cannedReply(message, name string) (group, reply string) {
	if name == "" {
		name = defaultName
	}
	lower := strings.ToLower(message)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	for _, g := range cannedGroups {
		if g.matches(lower, words) {
			return g.name, fmt.Sprintf(g.reply, name)
		}
	}
	return "fallback", fmt.Sprintf(fallbackReply, name)
}

func (g cannedGroup) matches(lower string, words []string) bool {
	for _, p := range g.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	for _, w := range words {
		for _, want := range g.words {
			if w == want {
				return true
			}
		}
	}
	return false
}

// jobTerms mark a message as job related.
var jobTerms = []string{
	"job", "career", "work", "position", "role", "opportunit", "hiring",
	"vacanc", "employ", "opening", "internship", "profession", "company",
}

// skillPhrases mark a message as describing the user's own skills.
var skillPhrases = []string{
	"i know", "i have experience", "i've experience", "experience in",
	"experience with", "i am skilled", "i'm skilled", "skilled in",
	"my skills", "i can", "i have worked", "i've worked", "proficient in",
	"expertise in", "familiar with", "i specialize", "background in",
}

// minSkillMessageLen is the shortest message, in characters, treated as
// skill bearing.
const minSkillMessageLen = 30

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func isJobRelated(message string) bool {
	return containsAny(strings.ToLower(message), jobTerms)
}

func isSkillBearing(message string) bool {
	return utf8.RuneCountInString(message) >= minSkillMessageLen && containsAny(strings.ToLower(message), skillPhrases)
}
