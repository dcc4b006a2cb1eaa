package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmswan/fivemhub/internal/entities"
)

func seedPost(t *testing.T, p *testPlatform, authorEmail string) entities.ForumPost {
	t.Helper()

	post := entities.ForumPost{
		ID:          uuid.NewString(),
		Title:       "handling tips",
		Content:     "tune the suspension first",
		Category:    "guides",
		AuthorEmail: authorEmail,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, p.srv.posts.Create(context.Background(), &post))

	return post
}

func notificationsFor(t *testing.T, p *testPlatform, email string) []entities.Notification {
	t.Helper()

	list, err := p.srv.notifications.List(context.Background(), entities.Filter{"user_email": email}, "", 0)
	require.NoError(t, err)

	return list
}

func TestReportNotifiesAuthor(t *testing.T) {
	assert := assert.New(t)

	p := startPlatform(t, nil)
	p.login(t, "code-1")

	post := seedPost(t, p, "alice@x.com")

	resp := p.postJSON(t, "/api/forum/posts/"+post.ID+"/report", reportRequest{Reason: "spam"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	report := decodeJSON[entities.Report](t, resp)
	assert.Equal(post.ID, report.PostID)
	assert.Equal("bob@x.com", report.ReporterEmail)

	notifications := notificationsFor(t, p, "alice@x.com")
	require.Len(t, notifications, 1)
	assert.Equal("report", notifications[0].Kind)
}

func TestReportOwnPostSkipsNotification(t *testing.T) {
	assert := assert.New(t)

	p := startPlatform(t, nil)
	p.login(t, "code-1")

	post := seedPost(t, p, "bob@x.com")

	resp := p.postJSON(t, "/api/forum/posts/"+post.ID+"/report", reportRequest{Reason: "spam"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON[entities.Report](t, resp)

	assert.Empty(notificationsFor(t, p, "bob@x.com"))
}

func TestLikeToggle(t *testing.T) {
	assert := assert.New(t)

	p := startPlatform(t, nil)
	p.login(t, "code-1")

	post := seedPost(t, p, "alice@x.com")

	resp := p.postJSON(t, "/api/forum/posts/"+post.ID+"/like", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	liked := decodeJSON[likeResponse](t, resp)
	assert.True(liked.Liked)
	assert.Equal(1, liked.Likes)

	notifications := notificationsFor(t, p, "alice@x.com")
	require.Len(t, notifications, 1)
	assert.Equal("like", notifications[0].Kind)

	resp = p.postJSON(t, "/api/forum/posts/"+post.ID+"/like", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	unliked := decodeJSON[likeResponse](t, resp)
	assert.False(unliked.Liked)
	assert.Equal(0, unliked.Likes)
}

func TestLikeCountMatchesStoredPost(t *testing.T) {
	assert := assert.New(t)

	p := startPlatform(t, nil)
	p.login(t, "code-1")

	post := seedPost(t, p, "alice@x.com")

	resp := p.postJSON(t, "/api/forum/posts/"+post.ID+"/like", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	liked := decodeJSON[likeResponse](t, resp)

	stored, err := p.srv.posts.Get(context.Background(), post.ID)
	require.NoError(t, err)

	assert.Equal(stored.Likes, liked.Likes)
}
