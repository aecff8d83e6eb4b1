package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/ballcrusher-stats/internal/database"
	"github.com/mauv0809/ballcrusher-stats/internal/extrabox"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
)

type seedPlayer struct {
	Name  string `json:"name" msgpack:"name"`
	Rank  int    `json:"rank" msgpack:"rank"`
	Time  string `json:"time" msgpack:"time"`
	Boxes int    `json:"boxs" msgpack:"boxs"`
}

type seedDay struct {
	Day     int          `json:"day" msgpack:"day"`
	Players []seedPlayer `json:"players" msgpack:"players"`
}

type seedPayload struct {
	DayStats []seedDay `json:"day_stats" msgpack:"day_stats"`
}

var (
	numDays       int
	playersPerDay int
	rosterSize    int
	outPath       string
	msgpackPath   string
	seedBoxes     bool
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Generate a synthetic day_stats payload and seed extra-box counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().IntVar(&numDays, "days", 60, "Number of days to generate")
	rootCmd.Flags().IntVar(&playersPerDay, "players", 500, "Players per day")
	rootCmd.Flags().IntVar(&rosterSize, "roster", 2000, "Number of distinct player names")
	rootCmd.Flags().StringVar(&outPath, "out", "day_stats.json", "Where to write the JSON payload")
	rootCmd.Flags().StringVar(&msgpackPath, "msgpack-out", "", "Optionally also write the payload as MessagePack")
	rootCmd.Flags().BoolVar(&seedBoxes, "seed-boxes", true, "Seed extra-box counters into the configured database")
}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{"DB_NAME": "ballcrusher.db"}
	for _, key := range []string{"DB_NAME", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func run() error {
	if numDays < 1 || playersPerDay < 1 || rosterSize < 1 {
		return fmt.Errorf("--days, --players and --roster must be positive")
	}
	log.Info("Starting seeder...", "days", numDays, "players", playersPerDay, "roster", rosterSize)
	startTime := time.Now()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	roster := make([]string, rosterSize)
	for i := range roster {
		roster[i] = fmt.Sprintf("Player-%s", uuid.NewString()[:8])
	}

	payload := generate(rng, roster)

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := os.WriteFile(outPath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	log.Info("Wrote JSON payload", "path", outPath, "bytes", len(raw))

	if msgpackPath != "" {
		packed, err := msgpack.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode msgpack payload: %w", err)
		}
		if err := os.WriteFile(msgpackPath, packed, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", msgpackPath, err)
		}
		log.Info("Wrote MessagePack payload", "path", msgpackPath, "bytes", len(packed))
	}

	if seedBoxes {
		if err := seedExtraBoxes(rng, roster); err != nil {
			return err
		}
	}

	log.Info("Seeding finished", "duration", time.Since(startTime))
	return nil
}

func generate(rng *rand.Rand, roster []string) seedPayload {
	payload := seedPayload{DayStats: make([]seedDay, 0, numDays)}
	for day := 1; day <= numDays; day++ {
		players := make([]seedPlayer, 0, playersPerDay)
		for i, idx := range rng.Perm(len(roster)) {
			if i == playersPerDay {
				break
			}
			seconds := 30 + rng.Intn(300)
			clock := fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
			if rng.Intn(50) == 0 {
				clock = "--:--"
			}
			players = append(players, seedPlayer{
				Name:  roster[idx],
				Rank:  i + 1,
				Time:  clock,
				Boxes: 1 + rng.Intn(5),
			})
		}
		// Payload order is not rank order upstream either.
		rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
		payload.DayStats = append(payload.DayStats, seedDay{Day: day, Players: players})
	}
	return payload
}

func seedExtraBoxes(rng *rand.Rand, roster []string) error {
	cfg := loadConfig()
	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer teardown()

	store := extrabox.New(db)
	ctx := context.Background()
	granted := 0
	for _, name := range roster {
		if rng.Intn(10) != 0 {
			continue
		}
		for n := 1 + rng.Intn(3); n > 0; n-- {
			if _, err := store.Increment(ctx, name); err != nil {
				return fmt.Errorf("failed to seed extra boxes for %s: %w", name, err)
			}
			granted++
		}
	}
	log.Info("Seeded extra boxes", "granted", granted)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal("Seeder failed", "error", err)
	}
}
