package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/prepbox/examsim-backend/internal/config"
	"github.com/prepbox/examsim-backend/internal/logger"
	"github.com/prepbox/examsim-backend/internal/model"
)

// seed-bank writes a sample question-bank JSON file so a fresh install
// has something to run exams against.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	out := flag.String("out", cfg.BankPath, "output path for the question bank JSON")
	count := flag.Int("count", 100, "number of questions to generate")
	flag.Parse()

	fmt.Printf("=== Seeding %d Questions ===\n", *count)

	subjects := []string{
		"Networking", "Operating Systems", "Databases", "Algorithms",
		"Security", "Web Development", "Cloud Computing", "Linux",
	}

	questions := make([]model.Question, 0, *count)
	for i := 0; i < *count; i++ {
		subject := subjects[i%len(subjects)]
		correct := rand.Intn(4)
		options := make([]string, 4)
		for j := range options {
			if j == correct {
				options[j] = fmt.Sprintf("Correct answer for %s question %d", subject, i+1)
			} else {
				options[j] = fmt.Sprintf("Distractor %d for %s question %d", j+1, subject, i+1)
			}
		}
		questions = append(questions, model.Question{
			ID:          fmt.Sprintf("q-%04d", i+1),
			Prompt:      fmt.Sprintf("[%s] Sample question %d: which option is correct?", subject, i+1),
			Options:     options,
			Correct:     correct,
			Explanation: fmt.Sprintf("Option %d is correct for %s question %d.", correct+1, subject, i+1),
		})
	}

	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode question bank")
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", *out).Msg("Failed to write question bank")
	}

	fmt.Printf("Wrote %d questions to %s\n", len(questions), *out)
}
