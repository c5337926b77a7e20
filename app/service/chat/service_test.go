package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"aria/app/client/neograph"
	"aria/app/client/postgres"
	"aria/app/client/rediscache"
	"aria/app/client/semantic"
	"aria/app/service/ai"
	"aria/app/service/nlu"
	"aria/app/util/timeparse"

	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	reply   string
	prompts []string
	intent  nlu.Intent
}

func (f *fakeAI) Generate(_ context.Context, prompt string) string {
	f.prompts = append(f.prompts, prompt)
	return f.reply
}

func (f *fakeAI) Summarize(_ context.Context, text string) string {
	return "Recap: " + text
}

func (f *fakeAI) ExtractIntent(_ context.Context, _ string) nlu.Intent {
	return f.intent
}

type fakeStores struct {
	user        *postgres.User
	tasks       []postgres.Task
	pending     *postgres.PendingTask
	facts       []neograph.Fact
	savedFacts  map[string]string
	entries     []postgres.ChatEntry
	messages    []postgres.ChatMessage
	matches     []semantic.Match
	remembered  []string
	hasMessages bool
	persisted   [][2]string
}

func (f *fakeStores) GetUserByID(_ context.Context, _ int64) (*postgres.User, error) {
	return f.user, nil
}

func (f *fakeStores) UpdateUserProfile(_ context.Context, _ int64, _, _ string) error {
	return nil
}

func (f *fakeStores) SaveTask(_ context.Context, task postgres.Task) (int64, error) {
	f.tasks = append(f.tasks, task)
	return int64(len(f.tasks)), nil
}

func (f *fakeStores) GetTasks(_ context.Context, _ int64) ([]postgres.Task, error) {
	return f.tasks, nil
}

func (f *fakeStores) SavePendingTask(_ context.Context, _ int64, title string) error {
	f.pending = &postgres.PendingTask{ID: 1, Title: title}
	return nil
}

func (f *fakeStores) GetPendingTask(_ context.Context, _ int64) (*postgres.PendingTask, error) {
	return f.pending, nil
}

func (f *fakeStores) DeletePendingTask(_ context.Context, _ int64) error {
	f.pending = nil
	return nil
}

func (f *fakeStores) SaveChat(_ context.Context, _ int64, query, response, conversationID string) (string, error) {
	f.persisted = append(f.persisted, [2]string{query, response})
	if conversationID == "" {
		return "conv-1", nil
	}
	return conversationID, nil
}

func (f *fakeStores) HasMessages(_ context.Context, _ int64, _ string) (bool, error) {
	return f.hasMessages, nil
}

func (f *fakeStores) GetMessagesByChat(_ context.Context, _ int64, _ string, _ int) ([]postgres.ChatMessage, error) {
	return f.messages, nil
}

func (f *fakeStores) GetChatHistory(_ context.Context, _ int64, _ int) ([]postgres.ChatEntry, error) {
	return f.entries, nil
}

func (f *fakeStores) SaveFact(_ context.Context, _ int64, key, value string) error {
	if f.savedFacts == nil {
		f.savedFacts = make(map[string]string)
	}
	f.savedFacts[key] = value
	return nil
}

func (f *fakeStores) GetFacts(_ context.Context, _ int64) ([]neograph.Fact, error) {
	return f.facts, nil
}

func (f *fakeStores) Store(_ context.Context, _ int64, text string) error {
	f.remembered = append(f.remembered, text)
	return nil
}

func (f *fakeStores) Query(_ context.Context, _ int64, _ string, _ int) ([]semantic.Match, error) {
	return f.matches, nil
}

type fakeRecent struct {
	entries []rediscache.Entry
}

func (f *fakeRecent) SaveChat(_ context.Context, _ int64, query, response, conversationID string) error {
	f.entries = append(f.entries, rediscache.Entry{
		Query:          query,
		Response:       response,
		ConversationID: conversationID,
	})
	return nil
}

func (f *fakeRecent) GetLastChats(_ context.Context, _ int64, _ int) ([]rediscache.Entry, error) {
	return f.entries, nil
}

// Wednesday morning in the reference timezone.
var testNow = time.Date(2025, 1, 1, 10, 30, 0, 0, timeparse.Location)

func newTestService(stores *fakeStores, recent *fakeRecent, model *fakeAI) *Service {
	return &Service{
		ai:      model,
		users:   stores,
		tasks:   stores,
		history: stores,
		recent:  recent,
		facts:   stores,
		memory:  stores,
		now:     func() time.Time { return testNow },
	}
}

var alice = UserInfo{ID: 7, Name: "Alice", Email: "alice@example.com"}

func TestGreetingUsesName(t *testing.T) {
	stores := &fakeStores{}
	s := newTestService(stores, &fakeRecent{}, &fakeAI{})

	result, err := s.ProcessMessage(context.Background(), alice, "", "hey there")
	require.NoError(t, err)

	require.Equal(t, "Hello Alice! How can I assist you today?", result.Reply)
	require.Equal(t, "conv-1", result.ConversationID)
	require.Len(t, stores.persisted, 1)
}

func TestGreetingWithoutKnownName(t *testing.T) {
	s := newTestService(&fakeStores{}, &fakeRecent{}, &fakeAI{})

	result, err := s.ProcessMessage(context.Background(), UserInfo{ID: 2}, "", "good morning")
	require.NoError(t, err)

	require.Equal(t, "Hello! I don't know your name yet. What should I call you?", result.Reply)
}

func TestIdentityQuickAnswers(t *testing.T) {
	s := newTestService(&fakeStores{}, &fakeRecent{}, &fakeAI{})

	result, err := s.ProcessMessage(context.Background(), alice, "", "what is my name?")
	require.NoError(t, err)
	require.Equal(t, "Your name is Alice.", result.Reply)

	result, err = s.ProcessMessage(context.Background(), alice, "", "what's my email")
	require.NoError(t, err)
	require.Equal(t, "Your email address is alice@example.com.", result.Reply)
}

func TestClockAnswersSkipProvidersAndStores(t *testing.T) {
	stores := &fakeStores{}
	model := &fakeAI{reply: "should not be used"}
	s := newTestService(stores, &fakeRecent{}, model)

	result, err := s.ProcessMessage(context.Background(), alice, "", "what time is it")
	require.NoError(t, err)
	require.Equal(t, "The current time is 10:30 AM.", result.Reply)

	result, err = s.ProcessMessage(context.Background(), alice, "", "what is the date today")
	require.NoError(t, err)
	require.Equal(t, "Today is Wednesday, January 01, 2025.", result.Reply)

	require.Empty(t, model.prompts)
	require.Empty(t, stores.persisted)
	require.Empty(t, stores.remembered)
}

func TestCreateTaskWithResolvedTime(t *testing.T) {
	stores := &fakeStores{}
	s := newTestService(stores, &fakeRecent{}, &fakeAI{})

	result, err := s.ProcessMessage(context.Background(), alice, "", "remind me to submit report at 5 pm")
	require.NoError(t, err)

	require.Equal(t, "task_saved", result.Status)
	require.True(t, strings.HasPrefix(result.Reply, "Task saved: submit report due "))
	require.Len(t, stores.tasks, 1)
	require.Equal(t, "submit report", stores.tasks[0].Title)
	require.NotNil(t, stores.tasks[0].Datetime)
}

func TestPendingTaskFollowUp(t *testing.T) {
	stores := &fakeStores{}
	s := newTestService(stores, &fakeRecent{}, &fakeAI{})

	result, err := s.ProcessMessage(context.Background(), alice, "", "remind me to call mom")
	require.NoError(t, err)

	require.Equal(t, "awaiting_time", result.Status)
	require.Equal(t, "I can add the task 'call mom'. When should I remind you?", result.Reply)
	require.NotNil(t, stores.pending)
	require.Empty(t, stores.tasks)

	// the next short message supplies the missing time
	result, err = s.ProcessMessage(context.Background(), alice, "conv-1", "8 pm")
	require.NoError(t, err)

	require.Equal(t, "task_saved", result.Status)
	require.Nil(t, stores.pending)
	require.Len(t, stores.tasks, 1)
	require.Equal(t, "call mom", stores.tasks[0].Title)
	require.Equal(t, 20, stores.tasks[0].Datetime.Hour())
}

func TestSaveFactRouting(t *testing.T) {
	stores := &fakeStores{}
	s := newTestService(stores, &fakeRecent{}, &fakeAI{})

	result, err := s.ProcessMessage(context.Background(), alice, "", "my birthday is june 5")
	require.NoError(t, err)

	require.Equal(t, "I have saved the fact 'birthday: june 5' in your knowledge base.", result.Reply)
	require.Equal(t, "june 5", stores.savedFacts["birthday"])
}

func TestFetchTasksSummary(t *testing.T) {
	stores := &fakeStores{
		tasks: []postgres.Task{
			{Title: "buy milk"},
			{Title: "pay rent", Notified: true},
		},
	}
	s := newTestService(stores, &fakeRecent{}, &fakeAI{})

	result, err := s.ProcessMessage(context.Background(), alice, "", "show my tasks")
	require.NoError(t, err)

	require.Equal(t, "You have 2 tasks, 1 of them still open.", result.Reply)
	require.Len(t, result.Tasks, 2)
}

func TestChatHistoryFromCache(t *testing.T) {
	recent := &fakeRecent{entries: []rediscache.Entry{
		{Query: "hello", Response: "hi"},
	}}
	s := newTestService(&fakeStores{}, recent, &fakeAI{})

	result, err := s.ProcessMessage(context.Background(), alice, "", "show chat history")
	require.NoError(t, err)

	require.Equal(t, "Here is what we talked about recently.", result.Reply)
	require.Len(t, result.History, 1)
}

func TestOpenExternalBuildsURL(t *testing.T) {
	s := newTestService(&fakeStores{}, &fakeRecent{}, &fakeAI{})

	result, err := s.ProcessMessage(context.Background(), alice, "", "play lofi on youtube")
	require.NoError(t, err)

	require.Equal(t, "Opening youtube for: lofi", result.Reply)
	require.Equal(t, "https://www.youtube.com/results?search_query=lofi", result.OpenURL)
}

func TestNewConversationGetsNamePrefix(t *testing.T) {
	stores := &fakeStores{}
	model := &fakeAI{reply: "You could try a walk in the park."}
	s := newTestService(stores, &fakeRecent{}, model)

	result, err := s.ProcessMessage(context.Background(), alice, "", "suggest something relaxing")
	require.NoError(t, err)

	require.Equal(t, "Hi Alice, You could try a walk in the park.", result.Reply)
	require.Equal(t, []string{"suggest something relaxing"}, stores.remembered)
	require.Len(t, model.prompts, 1)
	require.Contains(t, model.prompts[0], noFactsPlaceholder)
	require.Contains(t, model.prompts[0], noHistoryPlaceholder)
	require.Contains(t, model.prompts[0], "Do not prepend a greeting or the user's name to every response")
}

func TestNewConversationSkipsPrefixWhenModelGreets(t *testing.T) {
	model := &fakeAI{reply: "Hi Alice, happy to help with that."}
	s := newTestService(&fakeStores{}, &fakeRecent{}, model)

	result, err := s.ProcessMessage(context.Background(), alice, "", "suggest something relaxing")
	require.NoError(t, err)

	require.Equal(t, "Hi Alice, happy to help with that.", result.Reply)
}

func TestContinuingConversationStripsGreeting(t *testing.T) {
	stores := &fakeStores{hasMessages: true}
	model := &fakeAI{reply: "Hello John, how are you doing today?"}
	s := newTestService(stores, &fakeRecent{}, model)

	result, err := s.ProcessMessage(context.Background(), alice, "conv-9", "another question")
	require.NoError(t, err)

	require.Equal(t, "you doing today?", result.Reply)
	require.Equal(t, "conv-9", result.ConversationID)
}

func TestUnavailableMessagePassesThrough(t *testing.T) {
	model := &fakeAI{reply: ai.UnavailableMessage}
	s := newTestService(&fakeStores{}, &fakeRecent{}, model)

	result, err := s.ProcessMessage(context.Background(), alice, "", "tell me a story")
	require.NoError(t, err)

	require.Equal(t, ai.UnavailableMessage, result.Reply)
}

func TestGenerativeClassifierPath(t *testing.T) {
	model := &fakeAI{intent: nlu.Intent{Action: nlu.ActionFetchTasks}}
	s := newTestService(&fakeStores{}, &fakeRecent{}, model)
	s.generativeNLU = true

	result, err := s.ProcessMessage(context.Background(), alice, "", "anything at all")
	require.NoError(t, err)

	require.Equal(t, nlu.ActionFetchTasks, result.Intent.Action)
	require.Equal(t, "You don't have any tasks yet.", result.Reply)
}

func TestSummarizeConversation(t *testing.T) {
	stores := &fakeStores{messages: []postgres.ChatMessage{
		{Sender: "user", Content: "plan my week"},
		{Sender: "assistant", Content: "sure, here is a plan"},
	}}
	s := newTestService(stores, &fakeRecent{}, &fakeAI{})

	summary, err := s.SummarizeConversation(context.Background(), alice.ID, "conv-1")
	require.NoError(t, err)
	require.Equal(t, "Recap: Human: plan my week\nAssistant: sure, here is a plan", summary)

	stores.messages = nil
	summary, err = s.SummarizeConversation(context.Background(), alice.ID, "conv-1")
	require.NoError(t, err)
	require.Equal(t, "This conversation is empty.", summary)
}
