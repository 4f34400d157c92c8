//go:build integration

package services_test

import (
	"strings"
	"testing"

	"github.com/critiq-dev/critiq/db"
	"github.com/critiq-dev/critiq/internal/auth"
	"github.com/critiq-dev/critiq/internal/models"
	"github.com/critiq-dev/critiq/internal/services"
	"github.com/critiq-dev/critiq/internal/testutil"
	"github.com/critiq-dev/critiq/internal/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures outgoing notifications so tests can read the
// confirmation code out of the message body.
type recordingSender struct {
	recipients []string
	bodies     []string
}

func (s *recordingSender) Send(recipient, subject, body string) error {
	s.recipients = append(s.recipients, recipient)
	s.bodies = append(s.bodies, body)
	return nil
}

func (s *recordingSender) lastCode(t *testing.T) string {
	t.Helper()

	require.NotEmpty(t, s.bodies)

	body := s.bodies[len(s.bodies)-1]
	idx := strings.LastIndex(body, ": ")
	require.Greater(t, idx, -1)

	return body[idx+2:]
}

func setupIdentity(t *testing.T) (*services.IdentityService, *recordingSender) {
	t.Helper()

	testutil.SetupDatabase(t)

	t.Setenv("JWT_SECRET", "integration-secret")
	require.NoError(t, auth.InitJWTSecret())

	sender := &recordingSender{}

	return &services.IdentityService{DB: db.DB, Sender: sender}, sender
}

func TestRegisterAndIssueToken(t *testing.T) {
	identity, sender := setupIdentity(t)

	require.NoError(t, identity.Register("alice", "alice@example.com"))
	assert.Equal(t, []string{"alice@example.com"}, sender.recipients)

	_, err := identity.IssueToken("nobody", "whatever")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = identity.IssueToken("alice", "wrong-code")
	assert.ErrorIs(t, err, services.ErrInvalidConfirmationCode)

	code := sender.lastCode(t)

	token, err := identity.IssueToken("alice", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = auth.VerifyJWT(token)
	assert.NoError(t, err)

	// The code is single-use: replaying it fails.
	_, err = identity.IssueToken("alice", code)
	assert.ErrorIs(t, err, services.ErrInvalidConfirmationCode)
}

func TestRegisterIsIdempotentForSamePair(t *testing.T) {
	identity, sender := setupIdentity(t)

	require.NoError(t, identity.Register("alice", "alice@example.com"))
	require.NoError(t, identity.Register("alice", "alice@example.com"))

	var count int64
	require.NoError(t, db.DB.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The freshly issued code works.
	token, err := identity.IssueToken("alice", sender.lastCode(t))
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestRegisterConflicts(t *testing.T) {
	identity, _ := setupIdentity(t)

	require.NoError(t, identity.Register("alice", "alice@example.com"))

	err := identity.Register("alice", "other@example.com")
	assert.ErrorIs(t, err, services.ErrConflict)

	err = identity.Register("bob", "alice@example.com")
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestRegisterRejectsBadUsernames(t *testing.T) {
	identity, _ := setupIdentity(t)

	assert.Error(t, identity.Register("me", "me@example.com"))
	assert.Error(t, identity.Register("bad name!", "bad@example.com"))
}

// Oversized values are rejected before they reach the varchar columns.
func TestRegisterRejectsOversizedFields(t *testing.T) {
	identity, _ := setupIdentity(t)

	longName := strings.Repeat("a", 151)
	err := identity.Register(longName, "long@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, validators.ErrInvalidUsername)

	longEmail := strings.Repeat("a", 250) + "@example.com"
	err = identity.Register("longmail", longEmail)
	require.Error(t, err)
	assert.ErrorIs(t, err, validators.ErrInvalidEmail)
}

func createUser(t *testing.T, username, role string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	require.NoError(t, db.DB.Create(&user).Error)

	return &user
}

func createTitle(t *testing.T, name string) *models.Title {
	t.Helper()

	title := models.Title{Name: name, Year: 1999}
	require.NoError(t, db.DB.Create(&title).Error)

	return &title
}

func TestOneReviewPerAuthorPerTitle(t *testing.T) {
	testutil.SetupDatabase(t)

	alice := createUser(t, "alice", models.RoleUser)
	title := createTitle(t, "Solaris")

	reviews := services.ReviewService{DB: db.DB}

	first, err := reviews.CreateReview(title.ID, alice.ID, "slow but great", 8)
	require.NoError(t, err)

	_, err = reviews.CreateReview(title.ID, alice.ID, "changed my mind", 3)
	assert.ErrorIs(t, err, services.ErrConflict)

	// Editing the existing review never trips the duplicate check.
	score := 9
	updated, err := reviews.UpdateReview(title.ID, first.ID, nil, &score)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Score)
}

func TestReviewScoreBounds(t *testing.T) {
	testutil.SetupDatabase(t)

	alice := createUser(t, "alice", models.RoleUser)
	title := createTitle(t, "Solaris")

	reviews := services.ReviewService{DB: db.DB}

	for _, score := range []int{0, 11} {
		_, err := reviews.CreateReview(title.ID, alice.ID, "meh", score)
		assert.Error(t, err, "score %d", score)
	}

	_, err := reviews.CreateReview(title.ID, alice.ID, "fine", 10)
	assert.NoError(t, err)
}

func TestTitleRatingIsAverageOfScores(t *testing.T) {
	testutil.SetupDatabase(t)

	alice := createUser(t, "alice", models.RoleUser)
	bob := createUser(t, "bob", models.RoleUser)
	title := createTitle(t, "Solaris")
	unrated := createTitle(t, "Stalker")

	reviews := services.ReviewService{DB: db.DB}

	_, err := reviews.CreateReview(title.ID, alice.ID, "good", 4)
	require.NoError(t, err)
	_, err = reviews.CreateReview(title.ID, bob.ID, "great", 8)
	require.NoError(t, err)

	titles := services.TitleService{DB: db.DB}

	detail, err := titles.GetTitle(title.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Rating)
	assert.InDelta(t, 6.0, *detail.Rating, 0.0001)

	bare, err := titles.GetTitle(unrated.ID)
	require.NoError(t, err)
	assert.Nil(t, bare.Rating)
}

func TestTitleSlugResolutionAndFilters(t *testing.T) {
	testutil.SetupDatabase(t)

	catalog := services.CatalogService{DB: db.DB}

	_, err := catalog.CreateCategory("Films", "films")
	require.NoError(t, err)
	_, err = catalog.CreateGenre("Science Fiction", "sci-fi")
	require.NoError(t, err)
	_, err = catalog.CreateGenre("Drama", "drama")
	require.NoError(t, err)

	titles := services.TitleService{DB: db.DB}

	name := "Solaris"
	year := 1972
	category := "films"
	genres := []string{"sci-fi", "drama"}

	created, err := titles.CreateTitle(services.TitleInput{
		Name:     &name,
		Year:     &year,
		Category: &category,
		Genres:   &genres,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Category)
	assert.Equal(t, "films", created.Category.Slug)
	assert.Len(t, created.Genres, 2)

	// Unknown slugs fail with a field error.
	badCategory := "books"
	_, err = titles.CreateTitle(services.TitleInput{Name: &name, Year: &year, Category: &badCategory})
	var fieldErr *services.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "category", fieldErr.Field)

	other := "Alien"
	otherYear := 1979
	_, err = titles.CreateTitle(services.TitleInput{Name: &other, Year: &otherYear})
	require.NoError(t, err)

	byGenre, count, err := titles.ListTitles(services.TitleFilter{GenreSlug: "sci-fi"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, byGenre, 1)
	assert.Equal(t, "Solaris", byGenre[0].Name)

	byYear, _, err := titles.ListTitles(services.TitleFilter{Year: &otherYear}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	assert.Equal(t, "Alien", byYear[0].Name)

	byName, _, err := titles.ListTitles(services.TitleFilter{Name: "sol"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Solaris", byName[0].Name)
}

func TestFutureYearRejected(t *testing.T) {
	testutil.SetupDatabase(t)

	titles := services.TitleService{DB: db.DB}

	name := "From the Future"
	year := 99999

	_, err := titles.CreateTitle(services.TitleInput{Name: &name, Year: &year})
	var fieldErr *services.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "year", fieldErr.Field)
}

func TestCategoryDeleteNullifiesTitles(t *testing.T) {
	testutil.SetupDatabase(t)

	catalog := services.CatalogService{DB: db.DB}
	titles := services.TitleService{DB: db.DB}

	_, err := catalog.CreateCategory("Films", "films")
	require.NoError(t, err)

	name := "Solaris"
	year := 1972
	category := "films"

	created, err := titles.CreateTitle(services.TitleInput{Name: &name, Year: &year, Category: &category})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteCategory("films"))

	detail, err := titles.GetTitle(created.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Category)
}

func TestGenreDeleteDetachesTitles(t *testing.T) {
	testutil.SetupDatabase(t)

	catalog := services.CatalogService{DB: db.DB}
	titles := services.TitleService{DB: db.DB}

	_, err := catalog.CreateGenre("Science Fiction", "sci-fi")
	require.NoError(t, err)

	name := "Solaris"
	year := 1972
	genres := []string{"sci-fi"}

	created, err := titles.CreateTitle(services.TitleInput{Name: &name, Year: &year, Genres: &genres})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteGenre("sci-fi"))

	detail, err := titles.GetTitle(created.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Genres)
}

func TestTitleDeleteCascades(t *testing.T) {
	testutil.SetupDatabase(t)

	alice := createUser(t, "alice", models.RoleUser)
	title := createTitle(t, "Solaris")

	reviews := services.ReviewService{DB: db.DB}
	comments := services.CommentService{DB: db.DB}

	review, err := reviews.CreateReview(title.ID, alice.ID, "good", 7)
	require.NoError(t, err)

	_, err = comments.CreateComment(title.ID, review.ID, alice.ID, "agreed")
	require.NoError(t, err)

	titles := services.TitleService{DB: db.DB}
	require.NoError(t, titles.DeleteTitle(title.ID))

	var reviewCount, commentCount int64
	require.NoError(t, db.DB.Model(&models.Review{}).Count(&reviewCount).Error)
	require.NoError(t, db.DB.Model(&models.Comment{}).Count(&commentCount).Error)
	assert.Zero(t, reviewCount)
	assert.Zero(t, commentCount)
}

func TestUserDeleteRemovesAuthoredContent(t *testing.T) {
	testutil.SetupDatabase(t)

	alice := createUser(t, "alice", models.RoleUser)
	bob := createUser(t, "bob", models.RoleUser)
	title := createTitle(t, "Solaris")

	reviews := services.ReviewService{DB: db.DB}
	comments := services.CommentService{DB: db.DB}

	review, err := reviews.CreateReview(title.ID, alice.ID, "good", 7)
	require.NoError(t, err)

	// Bob comments on Alice's review; the comment goes when her review goes.
	_, err = comments.CreateComment(title.ID, review.ID, bob.ID, "disagree")
	require.NoError(t, err)

	users := services.UserService{DB: db.DB}
	require.NoError(t, users.DeleteUser("alice"))

	var reviewCount, commentCount int64
	require.NoError(t, db.DB.Model(&models.Review{}).Count(&reviewCount).Error)
	require.NoError(t, db.DB.Model(&models.Comment{}).Count(&commentCount).Error)
	assert.Zero(t, reviewCount)
	assert.Zero(t, commentCount)

	// The title itself survives.
	titles := services.TitleService{DB: db.DB}
	_, err = titles.GetTitle(title.ID)
	assert.NoError(t, err)
}

// Deleting a review frees the (author, title) pair for a fresh review.
func TestReviewCanBeRecreatedAfterDelete(t *testing.T) {
	testutil.SetupDatabase(t)

	alice := createUser(t, "alice", models.RoleUser)
	title := createTitle(t, "Solaris")

	reviews := services.ReviewService{DB: db.DB}

	first, err := reviews.CreateReview(title.ID, alice.ID, "first take", 5)
	require.NoError(t, err)

	require.NoError(t, reviews.DeleteReview(title.ID, first.ID))

	second, err := reviews.CreateReview(title.ID, alice.ID, "second take", 9)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSlugReusableAfterDelete(t *testing.T) {
	testutil.SetupDatabase(t)

	catalog := services.CatalogService{DB: db.DB}

	_, err := catalog.CreateCategory("Films", "films")
	require.NoError(t, err)
	require.NoError(t, catalog.DeleteCategory("films"))

	_, err = catalog.CreateCategory("Films Again", "films")
	assert.NoError(t, err)

	_, err = catalog.CreateGenre("Science Fiction", "sci-fi")
	require.NoError(t, err)
	require.NoError(t, catalog.DeleteGenre("sci-fi"))

	_, err = catalog.CreateGenre("Science Fiction Again", "sci-fi")
	assert.NoError(t, err)
}

func TestUsernameReusableAfterUserDelete(t *testing.T) {
	identity, _ := setupIdentity(t)

	require.NoError(t, identity.Register("alice", "alice@example.com"))

	users := services.UserService{DB: db.DB}
	require.NoError(t, users.DeleteUser("alice"))

	// Same username and email sign up cleanly after the delete.
	assert.NoError(t, identity.Register("alice", "alice@example.com"))
}

// Rewriting a title's genre set and putting a genre back must not trip the
// (title, genre) unique index.
func TestGenreCanBeReattachedAfterRewrite(t *testing.T) {
	testutil.SetupDatabase(t)

	catalog := services.CatalogService{DB: db.DB}
	titles := services.TitleService{DB: db.DB}

	_, err := catalog.CreateGenre("Science Fiction", "sci-fi")
	require.NoError(t, err)

	name := "Solaris"
	year := 1972
	genres := []string{"sci-fi"}

	created, err := titles.CreateTitle(services.TitleInput{Name: &name, Year: &year, Genres: &genres})
	require.NoError(t, err)

	none := []string{}
	_, err = titles.UpdateTitle(created.ID, services.TitleInput{Genres: &none})
	require.NoError(t, err)

	detail, err := titles.UpdateTitle(created.ID, services.TitleInput{Genres: &genres})
	require.NoError(t, err)
	assert.Len(t, detail.Genres, 1)
}

func TestSelfUpdateCannotChangeRole(t *testing.T) {
	testutil.SetupDatabase(t)

	alice := createUser(t, "alice", models.RoleUser)

	users := services.UserService{DB: db.DB}

	admin := models.RoleAdmin
	bio := "reviewer of things"

	updated, err := users.UpdateSelf(alice.ID, services.UserInput{Role: &admin, Bio: &bio})
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, updated.Role)
	assert.Equal(t, "reviewer of things", updated.Bio)
}

func TestAdminUpdateCanChangeRole(t *testing.T) {
	testutil.SetupDatabase(t)

	createUser(t, "alice", models.RoleUser)

	users := services.UserService{DB: db.DB}

	moderator := models.RoleModerator

	updated, err := users.UpdateUser("alice", services.UserInput{Role: &moderator})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, updated.Role)
}
