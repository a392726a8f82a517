package gateway

import (
	"fmt"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
)

const (
	doubtTemperature       float32 = 0.7
	derivationTemperature  float32 = 0.6
	explanationTemperature float32 = 0.7
	explanationMaxTokens           = 200
)

func doubtPrompt(classLevel string, req DoubtRequest) string {
	return fmt.Sprintf(`You are an expert AI tutor for Class %[1]s %[2]s.
A student has the following doubt about %[3]s - %[4]s:

"%[5]s"

Provide a clear, comprehensive explanation that:
1. Addresses the question directly
2. Uses simple language appropriate for Class %[1]s
3. Includes relevant examples
4. Helps build intuition about the concept

Keep your response engaging and encouraging.`,
		classLevel, req.Subject, req.Chapter, req.Topic, req.Question)
}

func derivationPrompt(classLevel string, req DerivationRequest) string {
	return fmt.Sprintf(`You are an expert mathematics and physics tutor for Class %[1]s.
Provide a detailed, step-by-step derivation of the formula: %[2]s
from %[3]s - %[4]s.

For each step:
1. Show the mathematical expression
2. Explain the reasoning
3. Highlight key principles or laws used

Make it clear and easy to follow for a Class %[1]s student.
Format your response with clear step numbering.`,
		classLevel, req.Formula, req.Chapter, req.Subject)
}

func explanationPrompt(classLevel string, quiz *models.Quiz, answer string) string {
	return fmt.Sprintf(`A Class %s student answered incorrectly: "%s"
to the question: "%s"
The correct answer is: "%s"

Provide a brief, encouraging explanation helping them understand why they got it wrong and how to think about it correctly.`,
		classLevel, answer, quiz.Question, quiz.CorrectAnswer)
}
