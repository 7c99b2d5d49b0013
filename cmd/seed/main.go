// Command seed populates a development database with demo accounts and
// a handful of posts across the fixed topics.
package main

import (
	"context"
	"log"
	"time"

	"mingle/internal/config"
	"mingle/internal/database"
	"mingle/internal/models"
	"mingle/internal/repository"
	"mingle/internal/service"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

var demoUsers = []struct {
	Name  string
	Email string
}{
	{"Olga", "olga@mingle.com"},
	{"Nick", "nick@mingle.com"},
	{"Mary", "mary@mingle.com"},
	{"Nestor", "nestor@mingle.com"},
}

var demoPosts = []struct {
	Owner   string
	Title   string
	Topics  []string
	Body    string
	Minutes int
}{
	{"Olga", "Olga Tech Post", []string{"Tech"}, "Olga: Hello Tech!", 120},
	{"Nick", "Nick Tech Post", []string{"Tech"}, "Nick: Tech thoughts.", 120},
	{"Mary", "Mary Tech Post", []string{"Tech"}, "Mary: AI topic.", 120},
	{"Nestor", "Nestor Health Post", []string{"Health"}, "Nestor: Health topic message.", 60},
	{"Olga", "Weekend Sport Roundup", []string{"Sport"}, "Olga: match recaps and scores.", 240},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	postSvc := service.NewPostService(repository.NewPostRepository(db), time.Now)

	hashed, err := bcrypt.GenerateFromPassword([]byte("StrongPass123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Hashing seed password: %v", err)
	}

	identities := make(map[string]models.Identity, len(demoUsers))
	for _, u := range demoUsers {
		existing, err := userRepo.GetByEmail(ctx, u.Email)
		if err != nil {
			log.Fatalf("Looking up %s: %v", u.Email, err)
		}
		if existing == nil {
			existing = &models.User{Name: u.Name, Email: u.Email, Password: string(hashed)}
			if err := userRepo.Create(ctx, existing); err != nil {
				log.Fatalf("Creating %s: %v", u.Email, err)
			}
		}
		identities[u.Name] = existing.Identity()
	}

	for _, p := range demoPosts {
		if _, err := postSvc.CreatePost(ctx, service.CreatePostInput{
			Owner:            identities[p.Owner],
			Title:            p.Title,
			Topics:           p.Topics,
			Body:             p.Body,
			ExpiresInMinutes: p.Minutes,
		}); err != nil {
			log.Fatalf("Creating post %q: %v", p.Title, err)
		}
	}

	log.Printf("Seeded %d users and %d posts", len(demoUsers), len(demoPosts))
}
