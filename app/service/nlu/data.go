package nlu

import (
	"aria/app/util/timeparse"
	"encoding/json"
	"fmt"
	"time"
)

type Action string

const (
	ActionSaveFact       Action = "save_fact"
	ActionCreateTask     Action = "create_task"
	ActionFetchTasks     Action = "fetch_tasks"
	ActionGetChatHistory Action = "get_chat_history"
	ActionOpenExternal   Action = "open_external"
	ActionGeneralChat    Action = "general_chat"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Target string

const (
	TargetYouTube   Target = "youtube"
	TargetMaps      Target = "maps"
	TargetWhatsApp  Target = "whatsapp"
	TargetSpotify   Target = "spotify"
	TargetInstagram Target = "instagram"
)

// Intent is the classifier output: exactly one Action, with the payload
// pointer for that action set and the others nil.
type Intent struct {
	Action       Action
	SaveFact     *SaveFactData
	CreateTask   *CreateTaskData
	OpenExternal *OpenExternalData
}

type SaveFactData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type CreateTaskData struct {
	Title string `json:"title"`
	// Datetime is nil when no time expression was resolved; the task then
	// goes through the pending-task follow-up flow.
	Datetime *Timestamp `json:"datetime"`
	Priority Priority   `json:"priority"`
	Category string     `json:"category"`
	Notes    string     `json:"notes"`
}

type OpenExternalData struct {
	Target Target `json:"target"`
	Query  string `json:"query"`
}

// Timestamp marshals as the sortable civil datetime string used everywhere
// in the assistant ("2006-01-02 15:04:05", reference timezone).
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.In(timeparse.Location).Format(timeparse.Layout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "" || s == "null" {
		return nil
	}

	parsed, err := time.ParseInLocation(timeparse.Layout, s, timeparse.Location)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}

	t.Time = parsed

	return nil
}

type intentEnvelope struct {
	Action Action          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (i Intent) MarshalJSON() ([]byte, error) {
	var payload any

	switch i.Action {
	case ActionSaveFact:
		payload = i.SaveFact
	case ActionCreateTask:
		payload = i.CreateTask
	case ActionOpenExternal:
		payload = i.OpenExternal
	}

	env := intentEnvelope{Action: i.Action}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}

	return json.Marshal(env)
}

func (i *Intent) UnmarshalJSON(data []byte) error {
	var env intentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	*i = Intent{Action: env.Action}

	if len(env.Data) == 0 {
		return nil
	}

	switch env.Action {
	case ActionSaveFact:
		i.SaveFact = &SaveFactData{}
		return json.Unmarshal(env.Data, i.SaveFact)
	case ActionCreateTask:
		i.CreateTask = &CreateTaskData{}
		return json.Unmarshal(env.Data, i.CreateTask)
	case ActionOpenExternal:
		i.OpenExternal = &OpenExternalData{}
		return json.Unmarshal(env.Data, i.OpenExternal)
	}

	return nil
}
