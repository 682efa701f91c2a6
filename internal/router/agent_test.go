package router

import (
	"context"
	"errors"
	"testing"

	"github.com/codeincraft/MathAi/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(f *fixture, model *llmtest.Scripted, opts ...AgentOption) *Agent {
	return NewAgent(model, f.registry.List(), f.registry.Invoke, opts...)
}

func TestAgentDirectFinalAnswer(t *testing.T) {
	f := newFixture()
	model := llmtest.New(" I already know this.\nFinal Answer: Paris")

	got, err := newTestAgent(f, model).Route(context.Background(), "capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris", got)
	assert.Equal(t, 1, model.Calls())
	assert.Equal(t, 0, f.lookup.calls())
}

func TestAgentPromptListsCapabilities(t *testing.T) {
	f := newFixture()
	model := llmtest.New("Final Answer: ok")

	_, err := newTestAgent(f, model).Route(context.Background(), "anything")
	require.NoError(t, err)

	req := model.Requests()[0]
	assert.Equal(t, []string{"\nObservation:"}, req.Stop)
	prompt := model.LastPrompt()
	assert.Contains(t, prompt, "Calculator: fake Calculator\nWikipedia: fake Wikipedia\nReasoning: fake Reasoning\n")
	assert.Contains(t, prompt, "should be one of [Calculator, Wikipedia, Reasoning]")
	assert.Contains(t, prompt, "Question: anything\nThought:")
}

func TestAgentActionThenFinalAnswer(t *testing.T) {
	f := newFixture()
	model := llmtest.New(
		" I should compute it.\nAction: Calculator\nAction Input: \"2+2\"",
		" I now know the final answer\nFinal Answer: 4",
	)

	var steps []Step
	ctx := WithStepHook(context.Background(), func(s Step) { steps = append(steps, s) })

	got, err := newTestAgent(f, model).Route(ctx, "what is 2+2")
	require.NoError(t, err)
	assert.Equal(t, "4", got)
	assert.Equal(t, []string{"2+2"}, f.math.inputs)
	assert.Contains(t, model.LastPrompt(), "Action Input: \"2+2\"\nObservation: ✅ 2+2 = 4\nThought:")

	require.Len(t, steps, 1)
	assert.Equal(t, Step{
		Capability: "Calculator",
		Input:      "2+2",
		Output:     "✅ 2+2 = 4",
		Thought:    "I should compute it.",
		Log:        " I should compute it.\nAction: Calculator\nAction Input: \"2+2\"",
	}, steps[0])
}

func TestAgentParseErrorCountsAsIteration(t *testing.T) {
	f := newFixture()
	model := llmtest.New(
		"I think the answer is 4",
		"Final Answer: 4",
	)

	got, err := newTestAgent(f, model).Route(context.Background(), "what is 2+2")
	require.NoError(t, err)
	assert.Equal(t, "4", got)
	assert.Contains(t, model.LastPrompt(), "Observation: Invalid Format: Missing 'Action:' after 'Thought:'")
}

func TestAgentParseErrorsExhaustIterations(t *testing.T) {
	f := newFixture()
	model := llmtest.New("nonsense", "more nonsense", "Final Answer: gave up")

	var iterations int
	got, err := newTestAgent(f, model, WithIterationObserver(func(n int) { iterations = n })).
		Route(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "gave up", got)
	assert.Equal(t, 3, model.Calls())
	assert.Equal(t, 2, iterations)
}

func TestAgentUnknownCapabilityObservation(t *testing.T) {
	f := newFixture()
	model := llmtest.New(
		"Action: Search\nAction Input: Ada Lovelace",
		"Final Answer: unknown",
	)

	_, err := newTestAgent(f, model).Route(context.Background(), "who is Ada")
	require.NoError(t, err)
	assert.Contains(t, model.LastPrompt(), "Observation: Search is not a valid tool, try one of [Calculator, Wikipedia, Reasoning].")
}

func TestAgentEarlyStoppingGenerate(t *testing.T) {
	f := newFixture()
	model := llmtest.New(
		"Action: Wikipedia\nAction Input: Ada Lovelace",
		"Action: Wikipedia\nAction Input: Charles Babbage",
		" I now know the final answer\nFinal Answer: Ada wrote the first program.",
	)

	got, err := newTestAgent(f, model).Route(context.Background(), "who is Ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada wrote the first program.", got)
	assert.Equal(t, 3, model.Calls())
	assert.Equal(t, 2, f.lookup.calls())
	assert.Contains(t, model.LastPrompt(), "I now need to return a final answer based on the previous steps:")
}

func TestAgentEarlyStoppingGenerateRawReply(t *testing.T) {
	f := newFixture()
	model := llmtest.New(
		"Action: Reasoning\nAction Input: sky",
		"Action: Reasoning\nAction Input: sky",
		"  The sky scatters blue light.  ",
	)

	got, err := newTestAgent(f, model).Route(context.Background(), "why is the sky blue")
	require.NoError(t, err)
	assert.Equal(t, "The sky scatters blue light.", got)
}

func TestAgentEarlyStoppingLastObservation(t *testing.T) {
	f := newFixture()
	model := llmtest.New(
		"Action: Calculator\nAction Input: 2+2",
		"bad reply",
	)

	got, err := newTestAgent(f, model, WithEarlyStopping(StopLastObservation)).
		Route(context.Background(), "what is 2+2")
	require.NoError(t, err)
	assert.Equal(t, "✅ 2+2 = 4", got)
	assert.Equal(t, 2, model.Calls())
}

func TestAgentEarlyStoppingLastObservationWithoutSteps(t *testing.T) {
	f := newFixture()
	model := llmtest.New("bad", "bad")

	got, err := newTestAgent(f, model, WithEarlyStopping(StopLastObservation)).
		Route(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, StoppedMessage, got)
}

func TestAgentMaxIterationsOption(t *testing.T) {
	f := newFixture()
	model := llmtest.New(
		"Action: Calculator\nAction Input: 1+1",
		"Action: Calculator\nAction Input: 2+2",
		"Action: Calculator\nAction Input: 3+3",
		"Final Answer: done",
	)

	got, err := newTestAgent(f, model, WithMaxIterations(3)).Route(context.Background(), "sum")
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, 3, f.math.calls())
}

func TestAgentModelErrorEscapes(t *testing.T) {
	f := newFixture()
	model := llmtest.Failing(errors.New("connection refused"))

	_, err := newTestAgent(f, model).Route(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAgentCapabilityFailureIsObservation(t *testing.T) {
	f := newFixture()
	f.lookup.err = errors.New("offline")
	model := llmtest.New(
		"Action: Wikipedia\nAction Input: Ada",
		"Final Answer: could not look it up",
	)

	got, err := newTestAgent(f, model).Route(context.Background(), "who is Ada")
	require.NoError(t, err)
	assert.Equal(t, "could not look it up", got)
	assert.Contains(t, model.LastPrompt(), "Observation: ⚠️ Error: offline")
}
