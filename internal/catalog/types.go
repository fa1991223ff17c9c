package catalog

// Index lists the documents that make up the catalog. Paths are relative
// to the content root.
type Index struct {
	SchemaVersion         Num      `json:"catalogSchemaVersion"`
	EventPaths            []string `json:"eventPaths"`
	ToolPaths             []string `json:"toolPaths"`
	ProgressionModelPaths []string `json:"progressionModelPaths"`
	SharedPaths           []string `json:"sharedPaths"`
}

// SectionCounts holds the sizes of an event's child collections.
type SectionCounts struct {
	TaskCount         int `json:"taskCount"`
	GuideSectionCount int `json:"guideSectionCount"`
	FAQCount          int `json:"faqCount"`
	ToolCount         int `json:"toolCount"`
}

// EventSummary is the list-view projection of an event document.
type EventSummary struct {
	EventID          string        `json:"eventId"`
	EventVersion     Num           `json:"eventVersion"`
	Title            string        `json:"title"`
	Subtitle         string        `json:"subtitle,omitempty"`
	LastVerifiedDate string        `json:"lastVerifiedDate,omitempty"`
	Schedule         string        `json:"schedule,omitempty"`
	ActivityStatus   string        `json:"activityStatus,omitempty"`
	Sections         SectionCounts `json:"sections"`
}

// Requirement describes what a task asks the player to do.
type Requirement struct {
	Action      string `json:"action"`
	Object      string `json:"object"`
	Scope       string `json:"scope"`
	TargetValue Num    `json:"targetValue"`
}

// Reward is what completing a task pays out.
type Reward struct {
	Type   string `json:"type"`
	Amount Num    `json:"amount"`
}

// Task is a single trackable objective within an event.
type Task struct {
	TaskID       string      `json:"taskId"`
	DisplayOrder Num         `json:"displayOrder"`
	Requirement  Requirement `json:"requirement"`
	Reward       Reward      `json:"reward"`
}

// GuideSection is one node of an event's guide tree.
type GuideSection struct {
	SectionID   string         `json:"sectionId"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Subsections []GuideSection `json:"subsections,omitempty"`
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	FAQID    string   `json:"faqId"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags,omitempty"`
}

// Event is the full detail view of an event document.
type Event struct {
	EventSummary
	Tasks         []Task                 `json:"tasks"`
	GuideSections []GuideSection         `json:"guideSections"`
	FAQItems      []FAQItem              `json:"faqItems"`
	ToolRefs      []string               `json:"toolRefs,omitempty"`
	Assets        map[string]RewardAsset `json:"assets,omitempty"`
}

// Task returns the task with the given id.
func (e *Event) Task(id string) (Task, bool) {
	for _, t := range e.Tasks {
		if t.TaskID == id {
			return t, true
		}
	}
	return Task{}, false
}

// Tool is a reference tool document (calculator, planner, ...).
type Tool struct {
	ToolID   string `json:"toolId"`
	ToolType string `json:"toolType"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
}

// SharedItem is a shared registry entry for a reward or cost type code.
type SharedItem struct {
	Type          string `json:"type"`
	Label         string `json:"label,omitempty"`
	Icon          string `json:"icon,omitempty"`
	FallbackLabel string `json:"fallbackLabel,omitempty"`
}

// RewardAsset is the display form of a reward type.
type RewardAsset struct {
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}
