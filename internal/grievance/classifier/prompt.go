package classifier

import "strings"

const promptTemplate = `You are a system that decides the priority, grievance type, and category of a given grievance based on its title and description.

Priority: One of ["Low", "Medium", "High"].
GrievanceType: A single word (e.g., "Service", "Technical", "Billing", "Health", "Infrastructure").
Category: A single word (e.g., "Network", "Payment", "HR", "Maintenance").

Title: {{title}}
Description: {{description}}

Respond with a single JSON object in this exact format (no extra text):
{
  "priority": "Low|Medium|High",
  "grievanceType": "<SingleWord>",
  "category": "<SingleWord>"
}`

// BuildPrompt renders the instruction sent to the generator. Same input, same prompt.
func BuildPrompt(title, description string) string {
	r := strings.NewReplacer("{{title}}", title, "{{description}}", description)
	return r.Replace(promptTemplate)
}
