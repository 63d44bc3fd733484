package breakdown

// BuildPrompt returns the instruction sent to the model for taskText.
func BuildPrompt(taskText string) string {
	return `You are a helpful assistant that breaks down tasks into concrete, actionable steps.

Given the following task or goal, break it down into 2-5 specific, actionable todo items. Each item should be clear and concrete.

Task: "` + taskText + `"

Return ONLY a JSON array of strings, where each string is a concrete action step. Do not include any markdown formatting, explanation, or additional text - just the raw JSON array.

Example format:
["First concrete step", "Second concrete step", "Third concrete step"]`
}
