package constant

// Conversation statuses. The operator UI drives a free cycle across these;
// the agent tool path only ever moves forward (escalate/resolve).
const (
	ConversationStatusUnresolved = "unresolved"
	ConversationStatusEscalated  = "escalated"
	ConversationStatusResolved   = "resolved"
)

// Message roles stored in the thread log. Only user/assistant/operator are
// surfaced to readers; tool turns stay internal.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleOperator  = "operator"
	MessageRoleTool      = "tool"
)

// Knowledge entry lifecycle.
const (
	KnowledgeStatusPending = "pending"
	KnowledgeStatusReady   = "ready"
	KnowledgeStatusError   = "error"
)

// Plugin services we know how to hold credentials for.
const (
	PluginServiceVapi = "vapi"
)

const GreetingMessage = "Hi, how can I help you today?"

const EscalatedAnnouncement = "Conversation escalated to a human operator."
const ResolvedAnnouncement = "Conversation resolved."
const ReopenedAnnouncement = "Conversation reopened."
