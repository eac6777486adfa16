// Command create-actor registers an actor account so it can sign in to the
// API. Run once per bookkeeper or administrator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/kitabu/kitabu/internal/adapter/persistence"
	"github.com/kitabu/kitabu/internal/config"
	"github.com/kitabu/kitabu/internal/domain"
	"github.com/kitabu/kitabu/internal/service/identity"
)

func main() {
	name := flag.String("name", "", "actor display name")
	email := flag.String("email", "", "actor email (login)")
	password := flag.String("password", "", "actor password")
	role := flag.String("role", "bookkeeper", "actor role: bookkeeper or admin")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		log.Fatal("usage: create-actor -name NAME -email EMAIL -password PASSWORD [-role ROLE]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := persistence.Open(cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMaxIdleTime)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	hash, err := identity.NewBcryptPasswordService(10).Hash(*password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	actor, err := domain.NewActor(*name, *email, hash, *role, time.Now().UTC())
	if err != nil {
		log.Fatalf("invalid actor: %v", err)
	}

	if err := persistence.NewActorRepository(db).Create(context.Background(), actor); err != nil {
		log.Fatalf("failed to create actor: %v", err)
	}

	fmt.Printf("created actor %s (%s) with role %s\n", actor.ID, actor.Email, actor.Role)
}
