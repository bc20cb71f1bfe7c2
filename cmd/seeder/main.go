package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/nmdr-club/courtsync/internal/database"
	"github.com/nmdr-club/courtsync/internal/game"
	"github.com/nmdr-club/courtsync/internal/roster"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "courtsync.db",
		"MIGRATIONS_DIR": "./migrations",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	config["TURSO_PRIMARY_URL"] = os.Getenv("TURSO_PRIMARY_URL")
	config["TURSO_AUTH_TOKEN"] = os.Getenv("TURSO_AUTH_TOKEN")
	return config
}

type seedMember struct {
	name      string
	birthYear int
	gender    game.Gender
	skill     game.Skill
}

func main() {
	log.Info("Starting roster seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	store := roster.New(db)

	members := []seedMember{
		{"Anders Nygaard", 1978, game.GenderMale, game.SkillA},
		{"Birgitte Krogh", 1985, game.GenderFemale, game.SkillB},
		{"Casper Lindholm", 1990, game.GenderMale, game.SkillC},
		{"Ditte Mortensen", 1993, game.GenderFemale, game.SkillB},
		{"Emil Vestergaard", 1982, game.GenderMale, game.SkillS},
		{"Freja Dahl", 1996, game.GenderFemale, game.SkillD},
		{"Gustav Brandt", 1975, game.GenderMale, game.SkillC},
		{"Helle Thorup", 1988, game.GenderFemale, game.SkillA},
		{"Ib Clausen", 1969, game.GenderMale, game.SkillE},
		{"Johanne Friis", 2001, game.GenderFemale, game.SkillC},
		{"Kasper Winther", 1998, game.GenderMale, game.SkillB},
		{"Lærke Østergaard", 1994, game.GenderFemale, game.SkillF},
	}

	created := 0
	for _, m := range members {
		if _, err := store.CreateMember(m.name, m.birthYear, m.gender, m.skill); err != nil {
			if errors.Is(err, roster.ErrMemberExists) {
				log.Debug("Member already seeded", "name", m.name)
				continue
			}
			log.Fatalf("Failed to seed member %s: %s", m.name, err)
		}
		created++
	}

	log.Info("Seeding complete.", "created", created, "skipped", len(members)-created)
}
