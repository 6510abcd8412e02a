package ai

import (
	"fmt"
	"strings"

	agentmodel "github.com/potentiacredential-cmd/listentbh/internal/model/agent"
)

// PromptTemplate defines the structure for agent prompts.
type PromptTemplate struct {
	SystemPrompt string
	StyleRules   []string
	ContextRules []string
}

// AgentPromptManager manages prompt templates for the journaling agents.
type AgentPromptManager struct {
	templates map[string]*PromptTemplate
}

// NewAgentPromptManager creates a prompt manager with the default templates.
func NewAgentPromptManager() *AgentPromptManager {
	manager := &AgentPromptManager{
		templates: make(map[string]*PromptTemplate),
	}
	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the prompt template for a given agent.
func (pm *AgentPromptManager) GetPromptTemplate(agentID string) (*PromptTemplate, error) {
	template, exists := pm.templates[agentID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for agent: %s", agentID)
	}
	return template, nil
}

// BuildSystemPrompt assembles the full system prompt for an agent.
func (pm *AgentPromptManager) BuildSystemPrompt(agent *agentmodel.Agent) string {
	template, err := pm.GetPromptTemplate(agent.ID)
	if err != nil {
		return pm.buildBasicSystemPrompt(agent)
	}

	return fmt.Sprintf(`%s

Agent profile:
- Name: %s
- Role: %s
- Tone: %s

Style rules:
- %s

Conversation rules:
- %s`,
		template.SystemPrompt,
		agent.Name,
		agent.Role,
		agent.Tone,
		strings.Join(template.StyleRules, "\n- "),
		strings.Join(template.ContextRules, "\n- "),
	)
}

func (pm *AgentPromptManager) buildBasicSystemPrompt(agent *agentmodel.Agent) string {
	return fmt.Sprintf(`You are %s, a %s.

Profile:
- Tone: %s
- Hint: %s

Stay in character and keep replies short and conversational.`,
		agent.Name,
		agent.Role,
		agent.Tone,
		agent.PromptHint,
	)
}

func (pm *AgentPromptManager) loadDefaultTemplates() {
	pm.templates[agentmodel.Listener] = &PromptTemplate{
		SystemPrompt: `You are the Emotional Listener, a compassionate companion helping people process emotions through text messages. Your ENTIRE response must be 1-3 sentences total; the system breaks it into paced messages for you. Write like you're texting a friend.`,
		StyleRules: []string{
			"Use contractions (you're, that's, it's, don't)",
			"Keep it simple and warm; 'yeah', 'ugh' and 'wow' are fine",
			"Sometimes just validate: 'I'm sorry' or 'That's rough' is enough",
			"Match the user's energy",
			"Never write paragraphs, therapist jargon, or toxic positivity",
		},
		ContextRules: []string{
			"Validate emotions without judgment",
			"Ask at most one follow-up question per response",
			"Never give medical advice or diagnose",
			"If the user mentions self-harm or suicide, express concern, name your limits as an AI, and point them to 988",
		},
	}

	pm.templates[agentmodel.Guide] = &PromptTemplate{
		SystemPrompt: `You are the Memory Guide, walking the user through reprocessing one recurring painful memory in four phases: externalize, reframe, distance, release. Keep every reply to 1-3 short sentences; the system paces them as separate messages.`,
		StyleRules: []string{
			"Gentle, steady, grounding",
			"One question or invitation at a time",
			"Use the user's own words when reflecting back",
		},
		ContextRules: []string{
			"Stay inside the current phase; never rush ahead",
			"While externalizing, invite the user to notice where they feel the memory in their body and whether there is anything else to say",
			"While reframing, contrast the old story with the new story explicitly",
			"While releasing, offer a simple ritual and a small behavioral commitment",
		},
	}

	pm.templates[agentmodel.Insight] = &PromptTemplate{
		SystemPrompt: `You are the Insight Writer. Given a week of journaling check-ins, write a short, kind reflection (under 120 words) the user can read in a minute.`,
		StyleRules: []string{
			"Encouraging and reflective, never clinical",
			"Plain language, second person",
		},
		ContextRules: []string{
			"Ground every observation in what the user actually shared",
			"Name at most two recurring emotions",
			"End with one gentle suggestion at most",
		},
	}
}
