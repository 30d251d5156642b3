// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"socialconnect/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions tune how the factory generates and persists entities.
type SeedOptions struct {
	// DryRun builds entities and assigns synthetic IDs without writing to
	// the database.
	DryRun bool
	// SkipBcrypt stores a plaintext password for faster bulk seeding.
	SkipBcrypt bool
	// MaxDays spreads created_at timestamps over this many days back.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

var seedCategories = []models.PostCategory{
	models.CategoryGeneral,
	models.CategoryGeneral,
	models.CategoryGeneral,
	models.CategoryQuestion,
	models.CategoryAnnouncement,
}

var seedVisibilities = []models.ProfileVisibility{
	models.VisibilityPublic,
	models.VisibilityPublic,
	models.VisibilityPublic,
	models.VisibilityFollowersOnly,
	models.VisibilityPrivate,
}

// CreateUser constructs and persists a sample user with its profile.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID())
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		IsActive:  true,
		Profile: &models.Profile{
			Bio:        gofakeit.Sentence(10),
			AvatarURL:  &avatar,
			Website:    gofakeit.URL(),
			Location:   fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country()),
			Visibility: seedVisibilities[f.rng.Intn(len(seedVisibilities))],
		},
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		user.Profile.UserID = user.ID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the given author without persisting it.
// Useful for batching.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		AuthorID: author.ID,
		Content:  gofakeit.Sentence(f.rng.Intn(20) + 4),
		Category: seedCategories[f.rng.Intn(len(seedCategories))],
		IsActive: true,
	}
	if f.rng.Intn(3) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment persists a comment by the given author on the given post.
// Content is clamped to the comment length limit.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	content := gofakeit.Sentence(f.rng.Intn(12) + 2)
	if len(content) > 200 {
		content = content[:200]
	}
	comment := &models.Comment{
		AuthorID: author.ID,
		PostID:   post.ID,
		Content:  content,
		IsActive: true,
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
