package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"blogcast-backend/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCreateAndGetUser(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "alice", "alice@example.com", "hashed-pw")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == 0 {
		t.Error("user ID not assigned")
	}

	byName, err := st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != user.ID || byName.PasswordHash != "hashed-pw" || byName.Email != "alice@example.com" {
		t.Errorf("got %+v", byName)
	}

	byID, err := st.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Username != "alice" {
		t.Errorf("username = %q", byID.Username)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.CreateUser(ctx, "bob", "", "hash1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := st.CreateUser(ctx, "bob", "", "hash2")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	st := openTestStore(t)

	if _, err := st.GetUserByUsername(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := st.GetUserByID(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestBlogPostRoundtrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "alice", "", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Long transcript exercises the compressed storage path
	transcript := strings.Repeat("this is what was said in the video. ", 200)
	post, err := st.CreateBlogPost(ctx, user.ID, "My Video", "https://youtu.be/abc123", transcript, "Generated article body")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	got, err := st.GetBlogPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.Transcript != transcript {
		t.Error("transcript did not survive the roundtrip")
	}
	if got.YoutubeTitle != "My Video" || got.GeneratedContent != "Generated article body" {
		t.Errorf("got %+v", got)
	}
	if got.UserID != user.ID {
		t.Errorf("user id = %d, want %d", got.UserID, user.ID)
	}
}

func TestGetBlogPostNotFound(t *testing.T) {
	st := openTestStore(t)

	if _, err := st.GetBlogPost(context.Background(), 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListBlogPostsPagination(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	alice, _ := st.CreateUser(ctx, "alice", "", "hash")
	bob, _ := st.CreateUser(ctx, "bob", "", "hash")

	for i := 0; i < 5; i++ {
		if _, err := st.CreateBlogPost(ctx, alice.ID, "Video", "https://youtu.be/a", "transcript", "content"); err != nil {
			t.Fatalf("create post %d: %v", i, err)
		}
	}
	if _, err := st.CreateBlogPost(ctx, bob.ID, "Other", "https://youtu.be/b", "transcript", "content"); err != nil {
		t.Fatalf("create bob post: %v", err)
	}

	posts, total, err := st.ListBlogPosts(ctx, alice.ID, 1, 3)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(posts) != 3 {
		t.Errorf("page 1 size = %d, want 3", len(posts))
	}

	// Newest first
	if len(posts) >= 2 && posts[0].ID < posts[1].ID {
		t.Error("posts not ordered newest first")
	}

	// Listings omit the transcript
	for _, p := range posts {
		if p.Transcript != "" {
			t.Error("listing included transcript")
		}
	}

	posts, _, err = st.ListBlogPosts(ctx, alice.ID, 2, 3)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("page 2 size = %d, want 2", len(posts))
	}

	// Bob sees only his own post
	posts, total, err = st.ListBlogPosts(ctx, bob.ID, 1, 20)
	if err != nil {
		t.Fatalf("list bob: %v", err)
	}
	if total != 1 || len(posts) != 1 {
		t.Errorf("bob total = %d len = %d, want 1/1", total, len(posts))
	}
}

func TestJobLifecycle(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	user, _ := st.CreateUser(ctx, "alice", "", "hash")

	job, err := st.CreateJob(ctx, "job-uuid-1", user.ID, "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if job.Status != models.JobStatusPending {
		t.Errorf("status = %q, want pending", job.Status)
	}

	if err := st.MarkJobProcessing(ctx, job.ID); err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	got, _ := st.GetJob(ctx, job.ID)
	if got.Status != models.JobStatusProcessing {
		t.Errorf("status = %q, want processing", got.Status)
	}

	post, err := st.CreateBlogPost(ctx, user.ID, "Video", "https://youtu.be/abc", "t", "c")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := st.MarkJobCompleted(ctx, job.ID, post.ID); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	got, _ = st.GetJob(ctx, job.ID)
	if got.Status != models.JobStatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.BlogPostID == nil || *got.BlogPostID != post.ID {
		t.Errorf("blog post id = %v, want %d", got.BlogPostID, post.ID)
	}
}

func TestJobFailure(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	user, _ := st.CreateUser(ctx, "alice", "", "hash")
	job, _ := st.CreateJob(ctx, "job-uuid-2", user.ID, "https://youtu.be/abc")

	if err := st.MarkJobFailed(ctx, job.ID, "transcription stage: boom"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	got, err := st.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != models.JobStatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.Error != "transcription stage: boom" {
		t.Errorf("error = %q", got.Error)
	}
	if got.BlogPostID != nil {
		t.Error("failed job has a blog post id")
	}
}

func TestUpdateMissingJob(t *testing.T) {
	st := openTestStore(t)

	if err := st.MarkJobProcessing(context.Background(), "no-such-job"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	st := openTestStore(t)

	version, err := st.SchemaVersion()
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version == 0 {
		t.Fatal("no migrations applied")
	}

	if err := st.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	again, _ := st.SchemaVersion()
	if again != version {
		t.Errorf("version changed from %d to %d", version, again)
	}
}
