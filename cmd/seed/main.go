package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/smartbites/backend/config"
	"github.com/smartbites/backend/internal/database"
	"github.com/smartbites/backend/internal/logger"
	"github.com/smartbites/backend/internal/models"
	"github.com/smartbites/backend/internal/service"
	"github.com/smartbites/backend/internal/types"
)

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "seed",
		Usage: "Populate a development database with fake users and saved recipes",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "users", Value: 5, Usage: "number of users to create"},
			&cli.IntFlag{Name: "recipes", Value: 3, Usage: "saved recipes per user"},
			&cli.StringFlag{Name: "password", Value: "smartbites123", Usage: "password for every seeded user"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed, 0 picks one"},
		},
		Action: seed,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.App.Environment.IsProduction() {
		return errors.New("refusing to seed a production database")
	}

	log, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: "console"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := database.RunMigrations(db, log); err != nil {
		return err
	}

	gofakeit.Seed(cmd.Int64("seed"))
	auth := service.NewAuthService(db, cfg.Auth, nil, log)
	profiles := service.NewProfileService(db)
	recipes := service.NewRecipeService(db)

	for i := 0; i < int(cmd.Int("users")); i++ {
		user, err := auth.Register(ctx, &types.RegisterRequest{
			Email:    gofakeit.Email(),
			Password: cmd.String("password"),
			FullName: gofakeit.Name(),
		})
		if errors.Is(err, service.ErrUserExists) {
			continue
		}
		if err != nil {
			return err
		}

		diet := string(models.DietaryPreferences[gofakeit.Number(0, len(models.DietaryPreferences)-1)])
		budget := gofakeit.Price(500, 5000)
		if _, err := profiles.UpdateProfile(ctx, user.ID, &types.UpdateProfileRequest{
			DietaryPreference: &diet,
			Budget:            &budget,
		}); err != nil {
			return err
		}

		for j := 0; j < int(cmd.Int("recipes")); j++ {
			cost := gofakeit.Price(50, 600)
			_, err := recipes.SaveRecipe(ctx, user.ID, &types.SaveRecipeRequest{
				Title:        gofakeit.Dinner(),
				Ingredients:  fmt.Sprintf("%s|%s|%s", gofakeit.Fruit(), gofakeit.Vegetable(), gofakeit.Snack()),
				Instructions: gofakeit.Paragraph(1, 3, 10, " "),
				Cost:         &cost,
			})
			if err != nil && !errors.Is(err, service.ErrDuplicateRecipe) {
				return err
			}
		}

		log.Info("seeded user", zap.String("email", user.Email), zap.String("diet", diet))
	}
	return nil
}
