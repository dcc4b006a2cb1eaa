package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/jmswan/fivemhub/internal/entities"
)

func (s *Server) handleListPosts(e echo.Context) error {
	filter := entities.Filter{}
	if category := e.QueryParam("category"); category != "" {
		filter["category"] = category
	}

	limit := 0
	if raw := e.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return e.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit"})
		}
		limit = n
	}

	posts, err := s.posts.List(e.Request().Context(), filter, "created_at desc", limit)
	if err != nil {
		return err
	}

	return e.JSON(http.StatusOK, posts)
}

func (s *Server) handleCreatePost(e echo.Context) error {
	user, err := s.requireUser(e)
	if err != nil {
		return err
	}

	var req createPostRequest
	if err := e.Bind(&req); err != nil {
		return e.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if req.Title == "" || req.Content == "" {
		return e.JSON(http.StatusBadRequest, errorResponse{Error: "title and content are required"})
	}

	ctx := e.Request().Context()

	post := entities.ForumPost{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		AuthorEmail: user.Email,
		CreatedAt:   time.Now(),
	}

	if err := s.posts.Create(ctx, &post); err != nil {
		return err
	}

	if err := s.profiles.BumpCounter(ctx, user.Email, "posts", 1); err != nil {
		return err
	}

	return e.JSON(http.StatusCreated, post)
}

func (s *Server) handleGetPost(e echo.Context) error {
	post, err := s.posts.Get(e.Request().Context(), e.Param("id"))
	if errors.Is(err, entities.ErrNotFound) {
		return e.JSON(http.StatusNotFound, errorResponse{Error: "post not found"})
	}
	if err != nil {
		return err
	}

	return e.JSON(http.StatusOK, post)
}

func (s *Server) handleLikePost(e echo.Context) error {
	user, err := s.requireUser(e)
	if err != nil {
		return err
	}

	ctx := e.Request().Context()

	post, err := s.posts.Get(ctx, e.Param("id"))
	if errors.Is(err, entities.ErrNotFound) {
		return e.JSON(http.StatusNotFound, errorResponse{Error: "post not found"})
	}
	if err != nil {
		return err
	}

	existing, err := s.postLikes.List(ctx, entities.Filter{
		"post_id":    post.ID,
		"user_email": user.Email,
	}, "", 1)
	if err != nil {
		return err
	}

	liked := len(existing) == 0
	delta := 1

	if liked {
		like := entities.PostLike{
			ID:        uuid.NewString(),
			PostID:    post.ID,
			UserEmail: user.Email,
			CreatedAt: time.Now(),
		}

		if err := s.postLikes.Create(ctx, &like); err != nil {
			return err
		}

		if post.AuthorEmail != user.Email {
			notification := entities.Notification{
				ID:        uuid.NewString(),
				UserEmail: post.AuthorEmail,
				Kind:      "like",
				Message:   fmt.Sprintf("%s liked your post %q", user.Username, post.Title),
				CreatedAt: time.Now(),
			}

			if err := s.notifications.Create(ctx, &notification); err != nil {
				return err
			}
		}
	} else {
		delta = -1

		if err := s.postLikes.Delete(ctx, existing[0].ID); err != nil {
			return err
		}
	}

	if err := s.posts.Update(ctx, post.ID, map[string]any{
		"likes": gorm.Expr("likes + ?", delta),
	}); err != nil {
		return err
	}

	if err := s.profiles.BumpCounter(ctx, post.AuthorEmail, "likes", delta); err != nil {
		return err
	}

	// Re-read after the increment so a concurrent like is not undercounted.
	post, err = s.posts.Get(ctx, post.ID)
	if err != nil {
		return err
	}

	return e.JSON(http.StatusOK, likeResponse{
		Liked: liked,
		Likes: post.Likes,
	})
}

func (s *Server) handleReportPost(e echo.Context) error {
	user, err := s.requireUser(e)
	if err != nil {
		return err
	}

	var req reportRequest
	if err := e.Bind(&req); err != nil {
		return e.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if req.Reason == "" {
		return e.JSON(http.StatusBadRequest, errorResponse{Error: "reason is required"})
	}

	ctx := e.Request().Context()

	post, err := s.posts.Get(ctx, e.Param("id"))
	if errors.Is(err, entities.ErrNotFound) {
		return e.JSON(http.StatusNotFound, errorResponse{Error: "post not found"})
	}
	if err != nil {
		return err
	}

	report := entities.Report{
		ID:            uuid.NewString(),
		PostID:        post.ID,
		ReporterEmail: user.Email,
		Reason:        req.Reason,
		CreatedAt:     time.Now(),
	}

	if err := s.reports.Create(ctx, &report); err != nil {
		return err
	}

	if post.AuthorEmail != user.Email {
		notification := entities.Notification{
			ID:        uuid.NewString(),
			UserEmail: post.AuthorEmail,
			Kind:      "report",
			Message:   fmt.Sprintf("your post %q was reported", post.Title),
			CreatedAt: time.Now(),
		}

		if err := s.notifications.Create(ctx, &notification); err != nil {
			return err
		}
	}

	return e.JSON(http.StatusCreated, report)
}
