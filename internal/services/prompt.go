package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildJobAnalysisPrompt creates prompt for job intelligence extraction
func (pb *PromptBuilder) BuildJobAnalysisPrompt(jobText string) string {
	return fmt.Sprintf(`You are an expert Technical Recruiter and Career Coach.
Analyze the job description provided below. Your goal is to normalize varied job posting styles into a structured format.

### INSTRUCTIONS:
1. **Identify Semantics over Syntax:** Job descriptions use different headers.
   - Treat sections like "You are a good fit if...", "What you bring", "About you", "Qualifications", or "Requirements" as **Required Experience**.
   - Treat sections like "Bonus points", "Nice to have", "Preferred Qualifications", "Pluses", or "It would be great if..." as **Desirable Experience**.
2. **Inference:** If distinct headers are missing, infer the requirements based on language intensity (e.g., "Must have" vs. "Experience with X is a plus").
3. **Extraction:** Populate the JSON fields below.

### TARGET JSON STRUCTURE:
{
  "role_name": "The specific job title mentioned",
  "job_description_summary": "A concise summary of the overall job description in 2-3 sentences.",
  "required_experience": "A comprehensive summary of the mandatory experience/background. Include years of experience if stated.",
  "desirable_experience": "A summary of preferred or bonus experience. If none is found, return null.",
  "hard_skills": ["List", "of", "specific", "tools", "languages", "or", "platforms"],
  "soft_skills": ["List", "of", "interpersonal", "or", "behavioral", "traits"],
  "cultural_values": ["List", "of", "explicit", "or", "implied", "company", "values"],
  "mission_critical": "A one-sentence synthesis of the core problem this role solves for the company."
}

JOB DESCRIPTION:
%s`, jobText)
}

// BuildResumeParsePrompt creates prompt for resume parsing
func (pb *PromptBuilder) BuildResumeParsePrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert Resume Parser.
Read the resume text below and convert it into the structured format described.

### INSTRUCTIONS:
1. Copy facts exactly as written. Do not invent employers, dates, degrees or links.
2. Keep the original order of experience, education and project entries.
3. Split each role or project into its individual bullet points.
4. Graduation year is free text; keep values like "Expected 2025" as they appear.
5. Use an empty list when a section is missing and null for a project without a link.

### TARGET JSON STRUCTURE:
{
  "full_name": "Candidate's full name",
  "summary": "Professional summary as written, or an empty string",
  "links": [{"label": "LinkedIn", "url": "https://..."}],
  "skills": ["Flat", "list", "of", "skills"],
  "experience": [
    {"company": "Company name", "role": "Job title", "duration": "Jan 2020 - Present", "description": ["Bullet one", "Bullet two"]}
  ],
  "education": [
    {"institution": "University", "degree": "BSc", "major": "Computer Science", "graduation_year": "2019"}
  ],
  "projects": [
    {"name": "Project name", "link": null, "description": ["Bullet one"]}
  ]
}

RESUME TEXT:
%s`, resumeText)
}

// BuildTailoringStrategyPrompt creates prompt for the gap analysis. The
// evidence block is optional retrieved context and may be empty.
func (pb *PromptBuilder) BuildTailoringStrategyPrompt(jobIntelJSON, resumeJSON, evidence string) string {
	if strings.TrimSpace(evidence) == "" {
		evidence = "No additional evidence retrieved."
	}

	return fmt.Sprintf(`You are a Senior Career Strategist who tailors resumes to specific roles.
Compare the candidate's master resume with the analyzed job below and produce a tailoring strategy.

### INSTRUCTIONS:
1. **Match Score:** An integer from 0 to 100 for how well the resume fits the required experience. Weigh required experience above desirable experience.
2. **Gap Analysis:** "missing_skills" lists hard or soft skills the job asks for that the resume does not show. "matching_skills" lists the ones it does show. Either list may be empty.
3. **Tailoring Instructions:** Concrete, ordered edits the candidate should make, referencing their actual experience entries.
4. **Suggested Summary:** A fresh 2-sentence professional summary aimed at this role.

### TARGET JSON STRUCTURE:
{
  "match_score": 75,
  "gap_analysis": {
    "missing_skills": ["Skill"],
    "matching_skills": ["Skill"]
  },
  "tailoring_instructions": ["Instruction one", "Instruction two"],
  "suggested_summary": "Two sentences."
}

JOB INTELLIGENCE:
%s

MASTER RESUME:
%s

MOST RELEVANT RESUME EVIDENCE:
%s`, jobIntelJSON, resumeJSON, evidence)
}

// BuildStrictRetryPrompt wraps a prompt whose previous answer could not be
// parsed.
func (pb *PromptBuilder) BuildStrictRetryPrompt(original string) string {
	return original + `

### OUTPUT FORMAT (STRICT):
Your previous answer could not be parsed. Respond with exactly one JSON object matching the target structure.
Do not wrap it in markdown code fences. Do not add any text before or after the object.`
}

// BuildRetrievalQuery creates the query used to pull resume evidence for a job
func (pb *PromptBuilder) BuildRetrievalQuery(roleName string, hardSkills []string) string {
	if len(hardSkills) == 0 {
		return fmt.Sprintf("Experience relevant to a %s role", roleName)
	}
	return fmt.Sprintf("Experience relevant to a %s role using %s", roleName, strings.Join(hardSkills, ", "))
}

// FormatRAGContext renders retrieved bullets as a numbered evidence block
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Evidence %d (Score: %.2f, %s) ---\n%s",
			i+1, result.Score, result.Source, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
