package gemini

import (
	"fmt"
	"strings"
)

func questionsPrompt(skills []string, count int) string {
	return fmt.Sprintf(`Generate %d concise, varied basic or intermediate-level technical interview questions for a candidate skilled in %s.
Focus on testing practical understanding and core concepts.
Return only the questions, one per line, with no numbering or extra text.`, count, strings.Join(skills, ", "))
}

func evaluationPrompt(question, answer string) string {
	return fmt.Sprintf(`As an expert technical interviewer, evaluate the following interview response.
Consider clarity, technical accuracy, and communication skills.

Question: %s
Answer: %s

Provide evaluation in the following JSON format:
{
    "confidence": <score 0-100>,
    "technical": <score 0-100>,
    "communication": <score 0-100>,
    "summary": "<brief evaluation summary>",
    "feedback": "<constructive feedback>",
    "strengths": ["<key strength 1>", "<key strength 2>"],
    "areas_to_improve": ["<area 1>", "<area 2>"]
}

Base the scores on:
- Confidence: Answer structure, certainty in statements
- Technical: Accuracy, depth of knowledge, proper terminology
- Communication: Clarity, organization, example usage`, question, answer)
}

// parseQuestionLines splits model output into questions, dropping blank lines
// and any numbering or bullet prefixes the model added anyway.
func parseQuestionLines(text string, count int) []string {
	questions := make([]string, 0, count)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(trimNumbering(strings.TrimSpace(line)))
		if line == "" {
			continue
		}
		questions = append(questions, line)
		if len(questions) == count {
			break
		}
	}
	return questions
}

// trimNumbering strips a "1.", "2)" or "-"/"*" list prefix. Digits that are
// part of the question itself ("2FA", "3NF") have no delimiter and stay put.
func trimNumbering(line string) string {
	if rest, ok := strings.CutPrefix(line, "- "); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(line, "* "); ok {
		return rest
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) {
		return line
	}
	if line[i] == '.' || line[i] == ')' {
		return line[i+1:]
	}
	return line
}

// stripFences removes a markdown code fence around a JSON payload.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
