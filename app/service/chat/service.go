// Package chat turns one user message into one assistant reply: it
// classifies the message, dispatches the resulting action to the right
// store, and composes model responses with personal context.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"aria/app/client/neograph"
	"aria/app/client/postgres"
	"aria/app/client/rediscache"
	"aria/app/client/semantic"
	"aria/app/config"
	"aria/app/service/ai"
	"aria/app/service/nlu"
	"aria/app/util/timeparse"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const (
	conversationWindow = 50
	recentWindow       = 10
	semanticTopK       = 5
)

type Service struct {
	ai      Generator
	users   UserStore
	tasks   TaskStore
	history HistoryStore
	recent  RecentCache
	facts   FactStore
	memory  SemanticMemory

	generativeNLU bool
	now           func() time.Time
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	pg := do.MustInvoke[*postgres.Client](di)

	return &Service{
		ai:            do.MustInvoke[*ai.Service](di),
		users:         pg,
		tasks:         pg,
		history:       pg,
		recent:        do.MustInvoke[*rediscache.Client](di),
		facts:         do.MustInvoke[*neograph.Client](di),
		memory:        do.MustInvoke[*semantic.Client](di),
		generativeNLU: cfg.AI.GenerativeNLU,
		now:           time.Now,
	}, nil
}

// ProcessMessage handles a single chat turn. conversationID may be empty,
// which starts a new conversation; the returned result carries the canonical
// id to continue it.
func (s *Service) ProcessMessage(ctx context.Context, user UserInfo, conversationID, message string) (*Result, error) {
	// keep the profile in sync with the token claims
	if err := s.users.UpdateUserProfile(ctx, user.ID, user.Name, user.Email); err != nil {
		slog.Warn("Failed to update user profile", "user", user.ID, "error", err)
	}

	var intent nlu.Intent
	if s.generativeNLU {
		intent = s.ai.ExtractIntent(ctx, message)
	} else {
		intent = nlu.Classify(message)
	}

	// a payload-carrying action without its payload (possible on the
	// generative path) degrades to general chat
	switch intent.Action {
	case nlu.ActionSaveFact:
		if intent.SaveFact != nil {
			return s.handleSaveFact(ctx, user, conversationID, message, intent)
		}
	case nlu.ActionCreateTask:
		if intent.CreateTask != nil {
			return s.handleCreateTask(ctx, user, conversationID, message, intent)
		}
	case nlu.ActionFetchTasks:
		return s.handleFetchTasks(ctx, user, intent)
	case nlu.ActionGetChatHistory:
		return s.handleGetChatHistory(ctx, user, intent)
	case nlu.ActionOpenExternal:
		if intent.OpenExternal != nil {
			return s.handleOpenExternal(ctx, user, conversationID, message, intent)
		}
	}

	return s.handleGeneralChat(ctx, user, conversationID, message, intent)
}

func (s *Service) handleSaveFact(ctx context.Context, user UserInfo, conversationID, message string, intent nlu.Intent) (*Result, error) {
	data := intent.SaveFact

	if err := s.facts.SaveFact(ctx, user.ID, data.Key, data.Value); err != nil {
		return nil, fmt.Errorf("failed to save fact: %w", err)
	}

	reply := fmt.Sprintf("I have saved the fact '%s: %s' in your knowledge base.", data.Key, data.Value)

	return &Result{
		Reply:          reply,
		Intent:         intent,
		ConversationID: s.persistTurn(ctx, user.ID, message, reply, conversationID),
	}, nil
}

func (s *Service) handleCreateTask(ctx context.Context, user UserInfo, conversationID, message string, intent nlu.Intent) (*Result, error) {
	data := intent.CreateTask

	if data.Datetime == nil {
		// a dangling follow-up may mean this message is the missing time
		if result, ok := s.completePendingTask(ctx, user, conversationID, message); ok {
			return result, nil
		}

		if err := s.tasks.SavePendingTask(ctx, user.ID, data.Title); err != nil {
			return nil, fmt.Errorf("failed to save pending task: %w", err)
		}

		reply := fmt.Sprintf("I can add the task '%s'. When should I remind you?", data.Title)

		return &Result{
			Reply:          reply,
			Intent:         intent,
			Status:         "awaiting_time",
			ConversationID: s.persistTurn(ctx, user.ID, message, reply, conversationID),
		}, nil
	}

	task := postgres.Task{
		UserID:   user.ID,
		Title:    data.Title,
		Datetime: &data.Datetime.Time,
		Priority: string(data.Priority),
		Category: data.Category,
		Notes:    data.Notes,
	}

	if _, err := s.tasks.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	reply := fmt.Sprintf("Task saved: %s due %s", data.Title,
		data.Datetime.In(timeparse.Location).Format(timeparse.Layout))

	return &Result{
		Reply:          reply,
		Intent:         intent,
		Status:         "task_saved",
		ConversationID: s.persistTurn(ctx, user.ID, message, reply, conversationID),
	}, nil
}

// completePendingTask resolves the follow-up flow: the previous turn created
// a task without a time, and the current message supplies one.
func (s *Service) completePendingTask(ctx context.Context, user UserInfo, conversationID, message string) (*Result, bool) {
	pending, err := s.tasks.GetPendingTask(ctx, user.ID)
	if err != nil {
		slog.Warn("Failed to look up pending task", "user", user.ID, "error", err)
		return nil, false
	}
	if pending == nil {
		return nil, false
	}

	due, ok := timeparse.Parse(message)
	if !ok {
		return nil, false
	}

	task := postgres.Task{
		UserID:   user.ID,
		Title:    pending.Title,
		Datetime: &due,
		Priority: string(nlu.PriorityMedium),
		Category: "personal",
	}

	if _, err = s.tasks.SaveTask(ctx, task); err != nil {
		slog.Error("Failed to save pending task", "user", user.ID, "error", err)
		return nil, false
	}

	if err = s.tasks.DeletePendingTask(ctx, pending.ID); err != nil {
		slog.Warn("Failed to delete pending task", "pending", pending.ID, "error", err)
	}

	reply := fmt.Sprintf("Task saved: %s due %s", pending.Title,
		due.In(timeparse.Location).Format(timeparse.Layout))

	return &Result{
		Reply:          reply,
		Intent:         nlu.Intent{Action: nlu.ActionCreateTask},
		Status:         "task_saved",
		ConversationID: s.persistTurn(ctx, user.ID, message, reply, conversationID),
	}, true
}

func (s *Service) handleFetchTasks(ctx context.Context, user UserInfo, intent nlu.Intent) (*Result, error) {
	tasks, err := s.tasks.GetTasks(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	open := pie.Filter(tasks, func(task postgres.Task) bool {
		return !task.Notified
	})

	reply := "You don't have any tasks yet."
	if len(tasks) > 0 {
		reply = fmt.Sprintf("You have %d tasks, %d of them still open.", len(tasks), len(open))
	}

	return &Result{
		Reply:  reply,
		Intent: intent,
		Tasks:  tasks,
	}, nil
}

func (s *Service) handleGetChatHistory(ctx context.Context, user UserInfo, intent nlu.Intent) (*Result, error) {
	entries, err := s.recent.GetLastChats(ctx, user.ID, recentWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent chats: %w", err)
	}

	reply := "We haven't chatted before."
	if len(entries) > 0 {
		reply = "Here is what we talked about recently."
	}

	return &Result{
		Reply:   reply,
		Intent:  intent,
		History: entries,
	}, nil
}

func (s *Service) handleOpenExternal(ctx context.Context, user UserInfo, conversationID, message string, intent nlu.Intent) (*Result, error) {
	data := intent.OpenExternal

	reply := fmt.Sprintf("Opening %s.", data.Target)
	if data.Query != "" {
		reply = fmt.Sprintf("Opening %s for: %s", data.Target, data.Query)
	}

	return &Result{
		Reply:          reply,
		Intent:         intent,
		OpenURL:        nlu.BuildOpenURL(data.Target, data.Query),
		ConversationID: s.persistTurn(ctx, user.ID, message, reply, conversationID),
	}, nil
}

func (s *Service) handleGeneralChat(ctx context.Context, user UserInfo, conversationID, message string, intent nlu.Intent) (*Result, error) {
	norm := nlu.Normalize(message)

	if IsGreeting(norm) {
		reply := "Hello! I don't know your name yet. What should I call you?"
		if name := s.displayName(ctx, user); name != "" {
			reply = fmt.Sprintf("Hello %s! How can I assist you today?", name)
		}

		return &Result{
			Reply:          reply,
			Intent:         intent,
			ConversationID: s.persistTurn(ctx, user.ID, message, reply, conversationID),
		}, nil
	}

	if reply, ok := s.identityAnswer(ctx, user, norm); ok {
		return &Result{
			Reply:          reply,
			Intent:         intent,
			ConversationID: s.persistTurn(ctx, user.ID, message, reply, conversationID),
		}, nil
	}

	// deterministic clock answers skip the stores and the model entirely
	if reply, ok := quickAnswer(norm, s.now().In(timeparse.Location)); ok {
		return &Result{
			Reply:          reply,
			Intent:         intent,
			ConversationID: conversationID,
		}, nil
	}

	if result, ok := s.completePendingTask(ctx, user, conversationID, message); ok {
		return result, nil
	}

	history, semanticContext, facts := s.gatherContext(ctx, user.ID, conversationID, message)

	response := s.Respond(ctx, message, history, semanticContext, facts)

	if response != ai.UnavailableMessage {
		response = s.personalize(ctx, user, conversationID, response)
	}

	return &Result{
		Reply:          response,
		Intent:         intent,
		ConversationID: s.persistTurn(ctx, user.ID, message, response, conversationID),
	}, nil
}

// gatherContext fetches history, semantic matches and facts concurrently and
// remembers the current message. Every lookup is best effort: a failing
// store degrades the prompt, it never fails the turn.
func (s *Service) gatherContext(ctx context.Context, userID int64, conversationID, message string) (history, semanticContext, facts string) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if conversationID != "" {
			messages, err := s.history.GetMessagesByChat(gctx, userID, conversationID, conversationWindow)
			if err != nil {
				slog.Warn("Failed to load conversation history", "conversation", conversationID, "error", err)
				return nil
			}
			history = formatMessages(messages)
			return nil
		}

		entries, err := s.history.GetChatHistory(gctx, userID, recentWindow)
		if err != nil {
			slog.Warn("Failed to load chat history", "user", userID, "error", err)
			return nil
		}
		history = formatEntries(entries)
		return nil
	})

	g.Go(func() error {
		matches, err := s.memory.Query(gctx, userID, message, semanticTopK)
		if err != nil {
			slog.Warn("Failed to query semantic memory", "user", userID, "error", err)
			return nil
		}
		semanticContext = formatMatches(matches)
		return nil
	})

	g.Go(func() error {
		userFacts, err := s.facts.GetFacts(gctx, userID)
		if err != nil {
			slog.Warn("Failed to load facts", "user", userID, "error", err)
			return nil
		}
		facts = formatFacts(userFacts)
		return nil
	})

	g.Go(func() error {
		if err := s.memory.Store(gctx, userID, message); err != nil {
			slog.Warn("Failed to store message in semantic memory", "user", userID, "error", err)
		}
		return nil
	})

	_ = g.Wait()

	return history, semanticContext, facts
}

// personalize applies the greeting policy: a new conversation may get a
// one-time "Hi <name>, " prefix, a continuing one gets leading greetings
// stripped so the assistant does not greet on every turn.
func (s *Service) personalize(ctx context.Context, user UserInfo, conversationID, response string) string {
	isNew := conversationID == ""
	if !isNew {
		has, err := s.history.HasMessages(ctx, user.ID, conversationID)
		if err != nil {
			slog.Warn("Failed to check conversation state", "conversation", conversationID, "error", err)
			return response
		}
		isNew = !has
	}

	if !isNew {
		return StripLeadingGreeting(response)
	}

	name := s.displayName(ctx, user)
	if name == "" || IsGreeting(response) {
		return response
	}

	head := response
	if len(head) > 200 {
		head = head[:200]
	}
	if strings.Contains(strings.ToLower(head), strings.ToLower(name)) {
		return response
	}

	return fmt.Sprintf("Hi %s, %s", name, response)
}

func (s *Service) identityAnswer(ctx context.Context, user UserInfo, norm string) (string, bool) {
	switch {
	case containsAny(norm, nameQueries):
		if name := s.displayName(ctx, user); name != "" {
			return fmt.Sprintf("Your name is %s.", name), true
		}
		return "I don't know your name yet. Tell me with \"my name is ...\" and I'll remember it.", true

	case containsAny(norm, emailQueries):
		if email := s.displayEmail(ctx, user); email != "" {
			return fmt.Sprintf("Your email address is %s.", email), true
		}
		return "I don't have your email address on file.", true
	}

	return "", false
}

func (s *Service) displayName(ctx context.Context, user UserInfo) string {
	if user.Name != "" {
		return user.Name
	}

	stored, err := s.users.GetUserByID(ctx, user.ID)
	if err != nil || stored == nil {
		return ""
	}

	return stored.Name
}

func (s *Service) displayEmail(ctx context.Context, user UserInfo) string {
	if user.Email != "" {
		return user.Email
	}

	stored, err := s.users.GetUserByID(ctx, user.ID)
	if err != nil || stored == nil {
		return ""
	}

	return stored.Email
}

// persistTurn writes the turn to Postgres and mirrors it to Redis. Returns
// the canonical conversation id, which may be freshly minted.
func (s *Service) persistTurn(ctx context.Context, userID int64, query, reply, conversationID string) string {
	canonical, err := s.history.SaveChat(ctx, userID, query, reply, conversationID)
	if err != nil {
		slog.Error("Failed to persist chat turn", "user", userID, "error", err)
		return conversationID
	}

	if err = s.recent.SaveChat(ctx, userID, query, reply, canonical); err != nil {
		slog.Warn("Failed to mirror chat turn to redis", "user", userID, "error", err)
	}

	return canonical
}

// SummarizeConversation produces a short summary of a stored conversation.
func (s *Service) SummarizeConversation(ctx context.Context, userID int64, conversationID string) (string, error) {
	messages, err := s.history.GetMessagesByChat(ctx, userID, conversationID, conversationWindow)
	if err != nil {
		return "", fmt.Errorf("failed to load conversation: %w", err)
	}

	if len(messages) == 0 {
		return "This conversation is empty.", nil
	}

	return s.ai.Summarize(ctx, formatMessages(messages)), nil
}
