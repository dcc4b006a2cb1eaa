package main

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jmswan/fivemhub/internal/entities"
)

func (s *Server) handleListNotifications(e echo.Context) error {
	user, err := s.requireUser(e)
	if err != nil {
		return err
	}

	notifications, err := s.notifications.List(e.Request().Context(), entities.Filter{
		"user_email": user.Email,
	}, "created_at desc", 50)
	if err != nil {
		return err
	}

	return e.JSON(http.StatusOK, notifications)
}

func (s *Server) handleReadNotification(e echo.Context) error {
	user, err := s.requireUser(e)
	if err != nil {
		return err
	}

	ctx := e.Request().Context()

	notification, err := s.notifications.Get(ctx, e.Param("id"))
	if errors.Is(err, entities.ErrNotFound) {
		return e.JSON(http.StatusNotFound, errorResponse{Error: "notification not found"})
	}
	if err != nil {
		return err
	}

	if notification.UserEmail != user.Email {
		return e.JSON(http.StatusForbidden, errorResponse{Error: "not your notification"})
	}

	if err := s.notifications.Update(ctx, notification.ID, map[string]any{"read": true}); err != nil {
		return err
	}

	return e.NoContent(http.StatusNoContent)
}
