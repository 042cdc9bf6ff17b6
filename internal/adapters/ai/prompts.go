package ai

import (
	"fmt"

	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
)

// DefaultRole is the position the interviewer hires for.
const DefaultRole = "full stack (React/Node.js) developer"

func questionPrompt(role string, d interview.Difficulty) Prompt {
	return Prompt{
		System: fmt.Sprintf("You are an expert interviewer for a %s role. "+
			"Generate one interview question with a difficulty of '%s'. "+
			"Do not add any preamble, just return the raw question text.", role, d),
		User: "Generate the question.",
	}
}

func evaluationPrompt(question, answer string) Prompt {
	return Prompt{
		System: "As an expert interviewer, evaluate an answer for a given question. " +
			"Provide a score from 1 to 10 and a single sentence of feedback. " +
			`Your response MUST be a valid JSON object like this: {"score": 8, "feedback": "This is a good answer."}. ` +
			"Do not include markdown, backticks, or any other text.",
		User: fmt.Sprintf("Question: \"%s\"\nAnswer: \"%s\"", question, answer),
		JSON: true,
	}
}

func summaryPrompt(interviewJSON []byte) Prompt {
	return Prompt{
		System: "As an expert interviewer, create a concise, 2-3 sentence summary of the candidate's " +
			"performance based on their answers. Mention their strengths and one area for improvement.",
		User: "Here is the interview data: " + string(interviewJSON),
	}
}
