package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/Rahmadjon0038/avto-test-backend/internal/config"
	"github.com/Rahmadjon0038/avto-test-backend/internal/database"
	"github.com/Rahmadjon0038/avto-test-backend/internal/logger"
	"github.com/Rahmadjon0038/avto-test-backend/internal/model"
	"github.com/Rahmadjon0038/avto-test-backend/internal/repository"
)

// Interactive bootstrap for the first admin account. The password is read
// with echo disabled.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, "pretty")

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	reader := bufio.NewReader(os.Stdin)
	firstName := prompt(reader, "First name: ")
	lastName := prompt(reader, "Last name: ")
	phone := prompt(reader, "Phone: ")

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatal().Err(err).Msg("read password failed")
	}
	if len(password) < 6 {
		log.Fatal().Msg("password must be at least 6 characters")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatal().Err(err).Msg("read password failed")
	}
	if string(password) != string(confirm) {
		log.Fatal().Msg("passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password failed")
	}

	user := &model.User{
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}

	if err := repository.NewUserRepository(pool).Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Fatal().Str("phone", phone).Msg("phone already registered")
		}
		log.Fatal().Err(err).Msg("create admin failed")
	}

	log.Info().Int("user_id", user.ID).Str("phone", phone).Msg("admin created")
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
