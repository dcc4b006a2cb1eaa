package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// refreshFeed rebuilds the cached front-page snapshot. Called by the
// interval refresher; readers keep seeing the previous snapshot while a
// rebuild is in flight.
func (s *Server) refreshFeed(ctx context.Context) error {
	posts, err := s.posts.List(ctx, nil, "created_at desc", 10)
	if err != nil {
		return err
	}

	assets, err := s.assets.List(ctx, nil, "downloads desc", 10)
	if err != nil {
		return err
	}

	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()

	s.feed.latestPosts = posts
	s.feed.popularAssets = assets
	s.feed.updatedAt = time.Now()

	return nil
}

func (s *Server) handleFeed(e echo.Context) error {
	s.feed.mu.RLock()
	defer s.feed.mu.RUnlock()

	return e.JSON(http.StatusOK, feedResponse{
		LatestPosts:   s.feed.latestPosts,
		PopularAssets: s.feed.popularAssets,
		UpdatedAt:     s.feed.updatedAt,
	})
}
