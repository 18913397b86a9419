package workflow

import "fmt"

const plannerPrompt = `
As a Project Planner, your task is to break down the following project description into major phases and detailed tasks. Be very specific and ensure that the output is a clear and concise Markdown list of the phases and their corresponding tasks.

Project Description:
%s

Provide the output as a Markdown list.
`

const schedulerPrompt = `
You are a Project Scheduler. Based on the provided plan and the project description, assign realistic timelines (in weeks) for each task. Assign appropriate team members *only* from the "Team Members" list provided in the project description. Do not create or use any team member names not listed. Assign a project leader *only* from the provided team members, and indicate dependencies where appropriate.

Project Plan:
%s

Project Description:
%s

Output as a Markdown table with columns: Task | Duration (weeks) | Team Member | Dependencies
`

const reviewerPrompt = `
You are a Project Reviewer. Review this schedule for completeness, any missing dependencies or tasks, potential bottlenecks, unrealistic timelines, and issues with team member assignments based on the project description.

Here is the schedule to review:
%s

Project Description:
%s

Output suggestions as a Markdown list. If no issues are found that would prevent successful project completion, write: "No significant issues found."
`

const htmlPrompt = `
You are an HTML Generator. Based on the project plan, schedule, and review, create a single, professional-looking HTML page that summarizes all the information.

IMPORTANT: Convert ALL markdown content to proper HTML format:
- Convert markdown headers (# ## ###) to HTML headers (h1, h2, h3)
- Convert markdown lists (- *) to HTML lists (ul/li)
- Convert markdown tables to proper HTML tables with <table>, <thead>, <tbody>, <tr>, <th>, <td> tags
- Ensure ALL rows from the schedule table are included in the HTML output

Include the following sections in order:
1. **Project Summary:** A brief overview derived from the project description
2. **Project Plan:** Convert the markdown plan to HTML format
3. **Project Schedule:** Convert the COMPLETE markdown table to a properly formatted HTML table with headers and all rows
4. **Review Feedback:** Convert the markdown review to HTML format

Use inline CSS for basic styling (borders for tables, padding, margins). Ensure the output is a complete HTML document with DOCTYPE, html, head, and body tags.

Project Description:
%s

Project Plan (Markdown to convert to HTML):
%s

Project Schedule (Markdown table to convert to HTML table - INCLUDE ALL ROWS):
%s

Review Feedback (Markdown to convert to HTML):
%s

Make sure the HTML table includes:
- Table headers (Task, Duration, Team Member, Dependencies)
- ALL task rows from the markdown table
- Proper table styling with borders and padding
- Responsive layout

Output the complete HTML code.
`

func planPrompt(s *State) string {
	return fmt.Sprintf(plannerPrompt, s.Input)
}

func schedulePrompt(s *State) string {
	return fmt.Sprintf(schedulerPrompt, s.Plan, s.Input)
}

func reviewPrompt(s *State) string {
	return fmt.Sprintf(reviewerPrompt, s.Schedule, s.Input)
}

func renderPrompt(s *State) string {
	return fmt.Sprintf(htmlPrompt, s.Input, s.Plan, s.Schedule, s.Review)
}
