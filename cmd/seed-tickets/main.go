package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"

	"github.com/Rahmadjon0038/avto-test-backend/internal/config"
	"github.com/Rahmadjon0038/avto-test-backend/internal/database"
	"github.com/Rahmadjon0038/avto-test-backend/internal/logger"
	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
)

// seedFile is the JSON layout for bulk-loading tickets with questions.
type seedFile struct {
	Tickets []struct {
		TicketNumber int     `json:"ticket_number"`
		Name         string  `json:"name"`
		Description  *string `json:"description"`
		IsDemo       bool    `json:"is_demo"`
		Questions    []struct {
			QuestionText  string   `json:"question_text"`
			Image         *string  `json:"image"`
			Options       []string `json:"options"`
			CorrectOption int      `json:"correct_option"`
			Explanation   *string  `json:"explanation"`
		} `json:"questions"`
	} `json:"tickets"`
}

func main() {
	file := flag.String("file", "seed/tickets.json", "seed file path")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, "pretty")

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("read seed file failed")
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal().Err(err).Msg("parse seed file failed")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	tickets := repository.NewTicketRepository(pool)
	questions := repository.NewQuestionRepository(pool)

	var ticketCount, questionCount, skipped int
	for _, st := range seed.Tickets {
		ticket := &model.Ticket{
			TicketNumber: st.TicketNumber,
			Name:         st.Name,
			Description:  st.Description,
			IsDemo:       st.IsDemo,
		}
		if err := tickets.Create(ctx, ticket); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				log.Warn().Int("ticket_number", st.TicketNumber).Msg("ticket exists, skipping")
				skipped++
				continue
			}
			log.Fatal().Err(err).Int("ticket_number", st.TicketNumber).Msg("create ticket failed")
		}
		ticketCount++

		for _, sq := range st.Questions {
			if sq.CorrectOption >= len(sq.Options) {
				log.Fatal().
					Int("ticket_number", st.TicketNumber).
					Str("question", sq.QuestionText).
					Msg("correct_option out of range")
			}
			q := &model.Question{
				TicketID:      ticket.ID,
				QuestionText:  sq.QuestionText,
				Image:         sq.Image,
				Options:       sq.Options,
				CorrectOption: sq.CorrectOption,
				Explanation:   sq.Explanation,
			}
			if err := questions.Create(ctx, q); err != nil {
				log.Fatal().Err(err).Int("ticket_id", ticket.ID).Msg("create question failed")
			}
			questionCount++
		}
	}

	log.Info().
		Int("tickets", ticketCount).
		Int("questions", questionCount).
		Int("skipped", skipped).
		Msg("seed finished")
}
