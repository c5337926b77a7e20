package server

import (
	"fmt"
	"log/slog"

	"aria/app/service/chat"

	"github.com/gofiber/fiber/v2"
)

type chatRequest struct {
	UserMessage string `json:"user_message"`
	Token       string `json:"token"`
	ChatID      string `json:"chat_id"`
}

type chatResponse struct {
	Success bool `json:"success"`
	*chat.Result
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Personal assistant backend is running"})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.UserMessage == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_message is required")
	}

	user, err := s.userFromToken(req.Token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	result, err := s.chat.ProcessMessage(c.Context(), user, req.ChatID, req.UserMessage)
	if err != nil {
		slog.Error("Chat turn failed", "user", user.ID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}

	return c.JSON(chatResponse{Success: true, Result: result})
}

// handleGreet powers the frontend's one-time daily greeting.
func (s *Server) handleGreet(c *fiber.Ctx) error {
	user, err := s.userFromToken(c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	greeted, err := s.cache.WasGreeted(c.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to check greeting state", "user", user.ID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}

	if greeted {
		return c.JSON(fiber.Map{"success": true, "greet": false})
	}

	if err = s.cache.MarkGreeted(c.Context(), user.ID); err != nil {
		slog.Error("Failed to mark greeting", "user", user.ID, "error", err)
	}

	name := user.Name
	if name == "" {
		if stored, err := s.db.GetUserByID(c.Context(), user.ID); err == nil && stored != nil {
			name = stored.Name
		}
	}

	reply := "Hello! How can I assist you today?"
	if name != "" {
		reply = fmt.Sprintf("Hello %s! How can I assist you today?", name)
	}

	return c.JSON(fiber.Map{"success": true, "greet": true, "reply": reply})
}

func (s *Server) handleGetTasks(c *fiber.Ctx) error {
	user, err := s.userFromToken(c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	tasks, err := s.db.GetTasks(c.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to fetch tasks", "user", user.ID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch tasks")
	}

	return c.JSON(fiber.Map{"success": true, "tasks": tasks})
}

func (s *Server) handleDeleteTask(c *fiber.Ctx) error {
	user, err := s.userFromToken(c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid task id")
	}

	deleted, err := s.db.DeleteTask(c.Context(), user.ID, int64(taskID))
	if err != nil {
		slog.Error("Failed to delete task", "task", taskID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete task")
	}
	if !deleted {
		return fiber.NewError(fiber.StatusNotFound, "Task not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Task deleted successfully"})
}

func (s *Server) handleClearCompletedTasks(c *fiber.Ctx) error {
	user, err := s.userFromToken(c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	if _, err = s.db.DeleteCompletedTasks(c.Context(), user.ID); err != nil {
		slog.Error("Failed to clear completed tasks", "user", user.ID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to clear completed tasks")
	}

	return c.JSON(fiber.Map{"success": true})
}

type taskStatusRequest struct {
	Notified bool `json:"notified"`
}

func (s *Server) handleSetTaskStatus(c *fiber.Ctx) error {
	user, err := s.userFromToken(c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid task id")
	}

	var req taskStatusRequest
	if err = c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	updated, err := s.db.SetTaskNotified(c.Context(), user.ID, int64(taskID), req.Notified)
	if err != nil {
		slog.Error("Failed to update task status", "task", taskID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update task")
	}
	if !updated {
		return fiber.NewError(fiber.StatusNotFound, "Task not found")
	}

	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleGetConversations(c *fiber.Ctx) error {
	user, err := s.userFromToken(c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	conversations, err := s.db.GetConversations(c.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to fetch conversations", "user", user.ID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch conversations")
	}

	return c.JSON(fiber.Map{"success": true, "conversations": conversations})
}

func (s *Server) handleGetConversation(c *fiber.Ctx) error {
	user, err := s.userFromToken(c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	messages, err := s.db.GetMessagesByChat(c.Context(), user.ID, c.Params("id"), 200)
	if err != nil {
		slog.Error("Failed to fetch conversation", "conversation", c.Params("id"), "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch conversation")
	}

	return c.JSON(fiber.Map{"success": true, "messages": messages})
}

func (s *Server) handleSummarizeConversation(c *fiber.Ctx) error {
	user, err := s.userFromToken(c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	summary, err := s.chat.SummarizeConversation(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		slog.Error("Failed to summarize conversation", "conversation", c.Params("id"), "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to summarize conversation")
	}

	return c.JSON(fiber.Map{"success": true, "summary": summary})
}
