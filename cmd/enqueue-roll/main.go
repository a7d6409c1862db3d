package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/internal/config"
	"github.com/jwebster45206/wod-sheets/internal/logger"
	"github.com/jwebster45206/wod-sheets/internal/services/queue"
	queuemodels "github.com/jwebster45206/wod-sheets/pkg/queue"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

// enqueue-roll pushes a roll request straight onto the queue so a running
// worker can be exercised without the API.
func main() {
	var (
		sheetID    = flag.String("sheet", "", "sheet id")
		sessionID  = flag.String("session", "", "editable session id on the sheet")
		ability    = flag.String("ability", "", "ability key, e.g. wits")
		skill      = flag.String("skill", "", "skill key, e.g. occult")
		pool       = flag.String("pool", "", "derived pool: frenzy, willpower, remorse, harano, hauglosk")
		dice       = flag.Int("dice", 0, "extra dice")
		difficulty = flag.Int("difficulty", 0, "difficulty")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.Service = "enqueue-roll"
	lg := logger.Setup(cfg)

	sid, err := uuid.Parse(*sheetID)
	if err != nil {
		log.Fatalf("invalid -sheet: %v", err)
	}
	sess, err := uuid.Parse(*sessionID)
	if err != nil {
		log.Fatalf("invalid -session: %v", err)
	}

	client, err := queue.NewClient(cfg.RedisURI(), lg)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	defer client.Close()
	q := queue.NewRollQueue(client)

	ctx := context.Background()
	req := queuemodels.NewRollRequest(sid, sess, sheet.RollRequest{
		Ability:    *ability,
		Skill:      *skill,
		Pool:       *pool,
		Dice:       *dice,
		Difficulty: *difficulty,
	})
	if err := q.EnqueueRequest(ctx, req); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Enqueued roll request: %s\n", req.RequestID)

	depth, err := q.RequestQueueDepth(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get queue depth: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Queue depth: %d requests\n", depth)
}
