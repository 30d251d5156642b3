package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"socialconnect/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	Factory     SeedOptions
}

// Seed populates the database with demo users, a follow mesh, posts, likes,
// and comments. Counter columns are recomputed from live rows at the end so
// the seeded data obeys the same invariant as production writes.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("seeding database with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("warning: could not clear all existing data, continuing anyway")
		}
	}

	factory := NewFactory(db, opts.Factory)

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	if err := createFollowMesh(db, users); err != nil {
		return fmt.Errorf("failed to create follow mesh: %w", err)
	}

	posts, err := createPosts(factory, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := createLikes(db, users, posts); err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	if err := createComments(factory, users, posts); err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}

	if err := RecomputeCounters(db); err != nil {
		return fmt.Errorf("failed to recompute counters: %w", err)
	}

	log.Println("database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE notifications, comments, likes, posts, follows, profiles, users RESTART IDENTITY CASCADE;`).Error
	}
	for _, table := range []string{"notifications", "comments", "likes", "posts", "follows", "profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(factory *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createFollowMesh gives every user a handful of outgoing follows. Edges are
// inserted with ON CONFLICT semantics absent, so duplicates are filtered
// up front instead.
func createFollowMesh(db *gorm.DB, users []*models.User) error {
	if len(users) < 2 {
		return nil
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var follows []models.Follow
	seen := make(map[[2]uint]bool)
	for _, follower := range users {
		outgoing := r.Intn(len(users)/2+1) + 1
		for j := 0; j < outgoing; j++ {
			target := users[r.Intn(len(users))]
			if target.ID == follower.ID {
				continue
			}
			edge := [2]uint{follower.ID, target.ID}
			if seen[edge] {
				continue
			}
			seen[edge] = true
			follows = append(follows, models.Follow{
				FollowerID:  follower.ID,
				FollowingID: target.ID,
			})
		}
	}
	if len(follows) == 0 {
		return nil
	}
	if err := db.Create(&follows).Error; err != nil {
		return err
	}
	log.Printf("created %d follow edges", len(follows))
	return nil
}

func createPosts(factory *Factory, users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]
		posts = append(posts, factory.BuildPost(author))
	}
	if err := factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func createLikes(db *gorm.DB, users []*models.User, posts []*models.Post) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var likes []models.Like
	seen := make(map[[2]uint]bool)
	for _, post := range posts {
		likers := r.Intn(len(users)/2 + 1)
		for j := 0; j < likers; j++ {
			user := users[r.Intn(len(users))]
			key := [2]uint{user.ID, post.ID}
			if seen[key] {
				continue
			}
			seen[key] = true
			likes = append(likes, models.Like{UserID: user.ID, PostID: post.ID})
		}
	}
	if len(likes) == 0 {
		return nil
	}
	if err := db.Create(&likes).Error; err != nil {
		return err
	}
	log.Printf("created %d likes", len(likes))
	return nil
}

func createComments(factory *Factory, users []*models.User, posts []*models.Post) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	total := 0
	for _, post := range posts {
		commenters := r.Intn(4)
		for j := 0; j < commenters; j++ {
			author := users[r.Intn(len(users))]
			if _, err := factory.CreateComment(author, post); err != nil {
				return err
			}
			total++
		}
	}
	log.Printf("created %d comments", total)
	return nil
}

// RecomputeCounters rewrites every post's like_count and comment_count from
// live rows. Seeding bypasses the transactional write paths, so the counters
// have to be reconciled the same way those paths do it.
func RecomputeCounters(db *gorm.DB) error {
	if err := db.Exec(`
		UPDATE posts SET like_count = (
			SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id
		)`).Error; err != nil {
		return err
	}
	return db.Exec(`
		UPDATE posts SET comment_count = (
			SELECT COUNT(*) FROM comments
			WHERE comments.post_id = posts.id AND comments.is_active = ` + dialectTrue(db) + `
		)`).Error
}

func dialectTrue(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "1"
	}
	return "true"
}
