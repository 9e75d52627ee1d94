package service

import (
	"context"
	"testing"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newPostServiceForTest(t *testing.T) (*PostService, *UserService, *memPostRepo) {
	t.Helper()
	userRepo := newMemUserRepo()
	postRepo := newMemPostRepo()
	return NewPostService(postRepo, userRepo, &okAssetChecker{}),
		NewUserService(userRepo, postRepo, &okAssetChecker{}),
		postRepo
}

func TestCreatePost(t *testing.T) {
	postSvc, userSvc, _ := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")

	post, err := postSvc.Create(ctx, CreatePostInput{
		OwnerID:  owner.ID,
		Title:    "First post",
		Text:     "hello world",
		VideoRef: "https://youtu.be/dQw4w9WgXcQ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "dQw4w9WgXcQ", post.VideoID)
	assert.Empty(t, post.Likers)
	assert.Empty(t, post.Responses)
	assert.False(t, post.WasEdited)
}

func TestCreatePostRejections(t *testing.T) {
	postSvc, userSvc, _ := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")

	t.Run("unknown owner", func(t *testing.T) {
		_, err := postSvc.Create(ctx, CreatePostInput{
			OwnerID: "ghost", Title: "T", Text: "body",
		})
		assert.Equal(t, "NOT_FOUND", appCode(err))
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := postSvc.Create(ctx, CreatePostInput{
			OwnerID: owner.ID, Text: "body",
		})
		assert.Equal(t, "VALIDATION_ERROR", appCode(err))
	})

	t.Run("blank text", func(t *testing.T) {
		_, err := postSvc.Create(ctx, CreatePostInput{
			OwnerID: owner.ID, Title: "T", Text: " \t\n ",
		})
		assert.Equal(t, "VALIDATION_ERROR", appCode(err))
	})

	t.Run("bad video reference", func(t *testing.T) {
		_, err := postSvc.Create(ctx, CreatePostInput{
			OwnerID: owner.ID, Title: "T", Text: "body", VideoRef: "not-a-url",
		})
		assert.Equal(t, "VALIDATION_ERROR", appCode(err))
	})
}

func TestGetPostDedupesLikers(t *testing.T) {
	postSvc, userSvc, postRepo := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")

	post, err := postSvc.Create(ctx, CreatePostInput{
		OwnerID: owner.ID, Title: "T", Text: "body",
	})
	require.NoError(t, err)

	// simulate historic duplicate inserts directly in storage
	stored, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	stored.Likers = datatypes.JSONSlice[models.UserID]{"a", "a", "b", "a"}
	stored.Responses = datatypes.JSONSlice[models.Response]{
		{ID: "r1", UserID: owner.ID, Text: "hi", Likers: []models.UserID{"c", "c"}},
	}
	require.NoError(t, postRepo.Update(ctx, stored))

	got, err := postSvc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.UserID{"a", "b"}, []models.UserID(got.Likers))
	assert.Equal(t, []models.UserID{"c"}, got.Responses[0].Likers)
}

func TestToggleLikeParity(t *testing.T) {
	postSvc, userSvc, postRepo := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")
	fan := mustRegister(t, userSvc, "Loyal Fan", "fan@example.com")

	post, err := postSvc.Create(ctx, CreatePostInput{
		OwnerID: owner.ID, Title: "T", Text: "body",
	})
	require.NoError(t, err)

	// after an odd number of toggles the id is present, after an even
	// number it is absent
	for i := 1; i <= 5; i++ {
		liked, err := postSvc.ToggleLike(ctx, post.ID, fan.ID)
		require.NoError(t, err)
		wantPresent := i%2 == 1
		assert.Equal(t, wantPresent, liked)

		stored, err := postRepo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, wantPresent, stored.HasLiker(fan.ID))
	}
}

func TestToggleLikeChecksExistence(t *testing.T) {
	postSvc, userSvc, _ := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")

	post, err := postSvc.Create(ctx, CreatePostInput{
		OwnerID: owner.ID, Title: "T", Text: "body",
	})
	require.NoError(t, err)

	_, err = postSvc.ToggleLike(ctx, post.ID, "ghost")
	assert.Equal(t, "NOT_FOUND", appCode(err))

	_, err = postSvc.ToggleLike(ctx, "missing-post", owner.ID)
	assert.Equal(t, "NOT_FOUND", appCode(err))
}

func TestFeedOrdering(t *testing.T) {
	postSvc, userSvc, postRepo := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")

	titles := map[string]int{"Ábaco": 2, "Zebra": 5, "banana": 1}
	for _, title := range []string{"Ábaco", "Zebra", "banana"} {
		post, err := postSvc.Create(ctx, CreatePostInput{
			OwnerID: owner.ID, Title: title, Text: "body",
		})
		require.NoError(t, err)

		stored, err := postRepo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		likers := datatypes.JSONSlice[models.UserID]{}
		for i := 0; i < titles[title]; i++ {
			likers = append(likers, models.UserID(title+"-fan-"+string(rune('a'+i))))
		}
		stored.Likers = likers
		require.NoError(t, postRepo.Update(ctx, stored))
	}

	feed, err := postSvc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	// collated title order is Ábaco, banana, Zebra; the like-count re-sort
	// on top produces Zebra, Ábaco, banana
	got := []string{feed[0].Title, feed[1].Title, feed[2].Title}
	assert.Equal(t, []string{"Zebra", "Ábaco", "banana"}, got)
}

func TestFeedDenormalizesAuthors(t *testing.T) {
	postSvc, userSvc, _ := newPostServiceForTest(t)
	ctx := context.Background()

	owner, err := userSvc.Register(ctx, RegisterInput{
		Name: "Post Owner", Email: "owner@example.com", Password: "secret1",
		PictureURL: "https://example.com/owner.png",
	})
	require.NoError(t, err)
	responder, err := userSvc.Register(ctx, RegisterInput{
		Name: "Keen Responder", Email: "resp@example.com", Password: "secret1",
		PictureURL: "https://example.com/resp.png",
	})
	require.NoError(t, err)

	post, err := postSvc.Create(ctx, CreatePostInput{
		OwnerID: owner.ID, Title: "T", Text: "body",
	})
	require.NoError(t, err)
	_, err = postSvc.AddResponse(ctx, post.ID, responder.ID, "hello")
	require.NoError(t, err)

	feed, err := postSvc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	assert.Equal(t, "Post Owner", feed[0].OwnerName)
	assert.Equal(t, "https://example.com/owner.png", feed[0].OwnerAvatar)
	require.Len(t, feed[0].Responses, 1)
	assert.Equal(t, "Keen Responder", feed[0].Responses[0].AuthorName)
	assert.Equal(t, "https://example.com/resp.png", feed[0].Responses[0].AuthorAvatar)
}

func TestUpdatePost(t *testing.T) {
	postSvc, userSvc, _ := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")
	stranger := mustRegister(t, userSvc, "Some Stranger", "stranger@example.com")

	post, err := postSvc.Create(ctx, CreatePostInput{
		OwnerID:  owner.ID,
		Title:    "Original",
		Text:     "body",
		ImageURL: "https://example.com/a.png",
		VideoRef: "dQw4w9WgXcQ",
	})
	require.NoError(t, err)

	t.Run("non-owner is unauthorized", func(t *testing.T) {
		newTitle := "Hijacked"
		_, err := postSvc.Update(ctx, UpdatePostInput{
			PostID: post.ID, CallerID: stranger.ID, Title: &newTitle,
		})
		assert.Equal(t, "UNAUTHORIZED", appCode(err))
	})

	t.Run("partial update keeps omitted text, clears omitted media", func(t *testing.T) {
		newTitle := "Renamed"
		updated, err := postSvc.Update(ctx, UpdatePostInput{
			PostID: post.ID, CallerID: owner.ID, Title: &newTitle,
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, "body", updated.Text)
		assert.Empty(t, updated.ImageURL)
		assert.Empty(t, updated.VideoID)
		assert.True(t, updated.WasEdited)
	})

	t.Run("media can be set again", func(t *testing.T) {
		updated, err := postSvc.Update(ctx, UpdatePostInput{
			PostID:   post.ID,
			CallerID: owner.ID,
			ImageURL: "https://example.com/b.png",
			VideoRef: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/b.png", updated.ImageURL)
		assert.Equal(t, "dQw4w9WgXcQ", updated.VideoID)
	})
}

func TestDeletePost(t *testing.T) {
	postSvc, userSvc, postRepo := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")
	stranger := mustRegister(t, userSvc, "Some Stranger", "stranger@example.com")

	post, err := postSvc.Create(ctx, CreatePostInput{
		OwnerID: owner.ID, Title: "T", Text: "body",
	})
	require.NoError(t, err)

	err = postSvc.Delete(ctx, post.ID, stranger.ID)
	assert.Equal(t, "UNAUTHORIZED", appCode(err))

	require.NoError(t, postSvc.Delete(ctx, post.ID, owner.ID))
	_, err = postRepo.GetByID(ctx, post.ID)
	assert.Equal(t, "NOT_FOUND", appCode(err))
}

func TestDeleteAllPosts(t *testing.T) {
	postSvc, userSvc, postRepo := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")
	other := mustRegister(t, userSvc, "Other User", "other@example.com")

	for i := 0; i < 3; i++ {
		_, err := postSvc.Create(ctx, CreatePostInput{
			OwnerID: owner.ID, Title: "T", Text: "body",
		})
		require.NoError(t, err)
	}
	kept, err := postSvc.Create(ctx, CreatePostInput{
		OwnerID: other.ID, Title: "Keep", Text: "body",
	})
	require.NoError(t, err)

	require.NoError(t, postSvc.DeleteAll(ctx, owner.ID))

	remaining, err := postRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
}

func TestResponseLifecycle(t *testing.T) {
	postSvc, userSvc, postRepo := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")
	author := mustRegister(t, userSvc, "Reply Author", "author@example.com")

	post, err := postSvc.Create(ctx, CreatePostInput{
		OwnerID: owner.ID, Title: "T", Text: "body",
	})
	require.NoError(t, err)

	response, err := postSvc.AddResponse(ctx, post.ID, author.ID, "first reply")
	require.NoError(t, err)
	assert.NotEmpty(t, response.ID)
	assert.False(t, response.WasEdited)

	t.Run("edit by non-author is unauthorized", func(t *testing.T) {
		err := postSvc.UpdateResponse(ctx, post.ID, response.ID, owner.ID, "hijack")
		assert.Equal(t, "UNAUTHORIZED", appCode(err))
	})

	t.Run("edit by author marks was_edited", func(t *testing.T) {
		require.NoError(t, postSvc.UpdateResponse(ctx, post.ID, response.ID, author.ID, "edited reply"))

		stored, err := postRepo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		resp := stored.FindResponse(response.ID)
		require.NotNil(t, resp)
		assert.Equal(t, "edited reply", resp.Text)
		assert.True(t, resp.WasEdited)
	})

	t.Run("unknown response id is not found", func(t *testing.T) {
		err := postSvc.UpdateResponse(ctx, post.ID, "missing", author.ID, "x")
		assert.Equal(t, "NOT_FOUND", appCode(err))
	})

	t.Run("response like toggles", func(t *testing.T) {
		liked, err := postSvc.ToggleResponseLike(ctx, post.ID, response.ID, owner.ID)
		require.NoError(t, err)
		assert.True(t, liked)

		liked, err = postSvc.ToggleResponseLike(ctx, post.ID, response.ID, owner.ID)
		require.NoError(t, err)
		assert.False(t, liked)
	})

	t.Run("delete by non-author is unauthorized", func(t *testing.T) {
		err := postSvc.DeleteResponse(ctx, post.ID, response.ID, owner.ID)
		assert.Equal(t, "UNAUTHORIZED", appCode(err))
	})

	t.Run("delete by author removes the response", func(t *testing.T) {
		require.NoError(t, postSvc.DeleteResponse(ctx, post.ID, response.ID, author.ID))

		stored, err := postRepo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.FindResponse(response.ID))
	})
}

func TestAddResponseValidation(t *testing.T) {
	postSvc, userSvc, _ := newPostServiceForTest(t)
	ctx := context.Background()
	owner := mustRegister(t, userSvc, "Post Owner", "owner@example.com")

	post, err := postSvc.Create(ctx, CreatePostInput{
		OwnerID: owner.ID, Title: "T", Text: "body",
	})
	require.NoError(t, err)

	_, err = postSvc.AddResponse(ctx, post.ID, owner.ID, "  \t ")
	assert.Equal(t, "VALIDATION_ERROR", appCode(err))

	_, err = postSvc.AddResponse(ctx, post.ID, "ghost", "hello")
	assert.Equal(t, "NOT_FOUND", appCode(err))

	_, err = postSvc.AddResponse(ctx, "missing-post", owner.ID, "hello")
	assert.Equal(t, "NOT_FOUND", appCode(err))
}
