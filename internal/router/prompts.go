package router

import (
	"fmt"
	"strings"

	"github.com/codeincraft/MathAi/internal/capability"
)

const agentPromptPrefix = "Answer the following questions as best you can. You have access to the following tools:"

const agentFormatInstructions = `Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [%s]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question`

const agentPromptSuffix = "Begin!\n\nQuestion: %s\nThought:"

const observationStop = "\nObservation:"

const forceFinalAnswer = "\n\nI now need to return a final answer based on the previous steps:"

// StoppedMessage is the answer when the loop ran out of iterations with nothing to surface.
const StoppedMessage = "Agent stopped due to iteration limit or time limit."

func buildAgentPrefix(caps []capability.Capability) string {
	var b strings.Builder
	b.WriteString(agentPromptPrefix)
	b.WriteString("\n\n")

	names := make([]string, 0, len(caps))
	for _, c := range caps {
		fmt.Fprintf(&b, "%s: %s\n", c.Name(), c.Description())
		names = append(names, c.Name())
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, agentFormatInstructions, strings.Join(names, ", "))
	b.WriteString("\n\n")
	return b.String()
}

func unknownCapabilityObservation(name string, names []string) string {
	return fmt.Sprintf("%s is not a valid tool, try one of [%s].", name, strings.Join(names, ", "))
}
