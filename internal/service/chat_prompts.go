package service

import (
	"fmt"
	"strings"

	"asha/internal/model"
)

const biasCheckPrompt = `You screen messages sent to a career assistant for women for gender bias.
Reply with a single JSON object and nothing else:
{"has_bias": boolean, "bias_type": string or null, "suggestion": string or null}
bias_type names the kind of bias, such as "gender stereotype" or "role assumption".
suggestion rephrases the message in an inclusive way. Use null for both when has_bias is false.`

func biasPrompt(message string) string {
	return "Text: " + message
}

const apologyReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

const personaPrompt = `You are Asha, an AI career assistant for the JobsForHer Foundation. You help women with career development, job search, returning to work after a break and professional growth.

Core principles:
1. Give inclusive, bias-free answers that empower women in their careers.
2. Be accurate and practical; say so when you are unsure and point to appropriate resources.
3. Stay professional, warm and encouraging.
4. If a question contains gender bias, address it respectfully and redirect to an inclusive perspective.

Keep answers concise and use short lists where they help.`

const jobAnalysisPrompt = personaPrompt + `

You are now reviewing a specific job posting for the user. Summarise the role, list the key skills it asks for, point out anything that looks unclear or potentially biased, and give concrete tips for applying.`

const resumeAnalysisPrompt = personaPrompt + `

You are now reviewing the user's resume. Give constructive feedback: strengths, gaps, formatting and wording improvements, and how to present any career break positively. Be specific and encouraging.`

const maxResumePromptRunes = 8000

// userPrompt addresses the generator on behalf of a named user.
func userPrompt(name, message string) string {
	if name == "" || name == defaultName {
		return message
	}
	return fmt.Sprintf("The user's name is %s.\n\n%s", name, message)
}

func jobLinkPrompt(d model.JobDetails, message string) string {
	var b strings.Builder
	b.WriteString("Please analyse this job posting.\n\n")
	fmt.Fprintf(&b, "URL: %s\n", d.URL)
	writeField(&b, "Title", d.Title)
	writeField(&b, "Company", d.Company)
	writeField(&b, "Location", d.Location)
	writeField(&b, "Description", d.Description)
	if d.Title == "" && d.Description == "" {
		b.WriteString("\nThe page could not be read, so base the analysis on the URL and general advice for this kind of role.\n")
	}
	if message != "" {
		fmt.Fprintf(&b, "\nThe user wrote: %s\n", message)
	}
	return b.String()
}

func resumePrompt(text string, skills []string) string {
	r := []rune(text)
	if len(r) > maxResumePromptRunes {
		text = string(r[:maxResumePromptRunes])
	}
	skillLine := "none detected"
	if len(skills) > 0 {
		skillLine = strings.Join(skills, ", ")
	}
	return fmt.Sprintf("Here is my resume:\n\n%s\n\nSkills detected: %s\n\nPlease give me feedback.", text, skillLine)
}

func opportunitiesFormatPrompt(listing string) string {
	return "Format the following opportunities as a friendly, well organised section titled \"Opportunities for you\" " +
		"with a subsection per category. Keep every link. Do not invent new entries.\n\n" + listing
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

var categoryHeadings = map[model.Category]string{
	model.CategoryJobs:      "Jobs",
	model.CategoryEvents:    "Events",
	model.CategoryMentoring: "Mentoring programs",
}

// bulletList renders up to limit opportunities as a markdown list.
func bulletList(items []model.Opportunity, limit int) string {
	var b strings.Builder
	for i, o := range items {
		if i == limit {
			break
		}
		fmt.Fprintf(&b, "- **%s**", o.Title)
		if o.Company != "" {
			fmt.Fprintf(&b, " at %s", o.Company)
		}
		if o.Location != "" {
			fmt.Fprintf(&b, " (%s)", o.Location)
		}
		b.WriteString("\n")
		if o.Link != "" {
			fmt.Fprintf(&b, "  %s\n", o.Link)
		}
	}
	return b.String()
}

// formatResults renders grouped results in category order.
func formatResults(results map[model.Category][]model.Opportunity, limit int) string {
	var b strings.Builder
	for _, c := range model.Categories {
		items, ok := results[c]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### %s\n", categoryHeadings[c])
		if len(items) == 0 {
			b.WriteString("No results found right now.\n\n")
			continue
		}
		b.WriteString(bulletList(items, limit))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
