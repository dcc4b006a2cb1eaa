package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/jmswan/fivemhub/internal/entities"
)

func (s *Server) handleListAssets(e echo.Context) error {
	filter := entities.Filter{}
	if category := e.QueryParam("category"); category != "" {
		filter["category"] = category
	}

	sort := "created_at desc"
	if e.QueryParam("sort") == "downloads" {
		sort = "downloads desc"
	}

	limit := 0
	if raw := e.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return e.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit"})
		}
		limit = n
	}

	assets, err := s.assets.List(e.Request().Context(), filter, sort, limit)
	if err != nil {
		return err
	}

	return e.JSON(http.StatusOK, assets)
}

func (s *Server) handleCreateAsset(e echo.Context) error {
	user, err := s.requireUser(e)
	if err != nil {
		return err
	}

	var req createAssetRequest
	if err := e.Bind(&req); err != nil {
		return e.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	if req.Title == "" || req.Category == "" {
		return e.JSON(http.StatusBadRequest, errorResponse{Error: "title and category are required"})
	}

	asset := entities.Asset{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		FileURL:     req.FileURL,
		ImageURL:    req.ImageURL,
		AuthorEmail: user.Email,
		CreatedAt:   time.Now(),
	}

	if err := s.assets.Create(e.Request().Context(), &asset); err != nil {
		return err
	}

	return e.JSON(http.StatusCreated, asset)
}

func (s *Server) handleGetAsset(e echo.Context) error {
	asset, err := s.assets.Get(e.Request().Context(), e.Param("id"))
	if errors.Is(err, entities.ErrNotFound) {
		return e.JSON(http.StatusNotFound, errorResponse{Error: "asset not found"})
	}
	if err != nil {
		return err
	}

	return e.JSON(http.StatusOK, asset)
}

func (s *Server) handleDownloadAsset(e echo.Context) error {
	user, err := s.requireUser(e)
	if err != nil {
		return err
	}

	ctx := e.Request().Context()

	asset, err := s.assets.Get(ctx, e.Param("id"))
	if errors.Is(err, entities.ErrNotFound) {
		return e.JSON(http.StatusNotFound, errorResponse{Error: "asset not found"})
	}
	if err != nil {
		return err
	}

	if err := s.assets.Update(ctx, asset.ID, map[string]any{
		"downloads": gorm.Expr("downloads + 1"),
	}); err != nil {
		return err
	}

	if err := s.profiles.BumpCounter(ctx, user.Email, "downloads", 1); err != nil {
		return err
	}

	return e.JSON(http.StatusOK, map[string]string{"file_url": asset.FileURL})
}
