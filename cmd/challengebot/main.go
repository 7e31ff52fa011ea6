package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/challenge-bot/internal/announce"
	"github.com/sakif/challenge-bot/internal/apperror"
	"github.com/sakif/challenge-bot/internal/auth"
	"github.com/sakif/challenge-bot/internal/bot"
	"github.com/sakif/challenge-bot/internal/model"
	"github.com/sakif/challenge-bot/internal/server"
	"github.com/sakif/challenge-bot/internal/service"
	"github.com/sakif/challenge-bot/internal/transport/telegram"
)

var rootCmd = &cobra.Command{
	Use:   "challengebot",
	Short: "Daily coding challenge bot",
	Long: `challengebot announces a fixed-length coding challenge to chat groups,
records members' pull request submissions and tracks their streaks.

Settings come from the environment or a .env file in the working directory.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(announceCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the announcement schedule and the admin API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.openStore(); err != nil {
		return err
	}
	cfg, logger := a.cfg, a.logger

	tg, err := telegram.New(cfg.BotToken, cfg.SendRatePerSec, logger.With(slog.String("component", "telegram")))
	if err != nil {
		return err
	}

	resolver := a.resolver(ctx)
	streaks := service.NewStreakService(a.db, cfg.LinkPrefixes, logger.With(slog.String("component", "streaks")))
	commands := bot.NewCommands(streaks, tg, logger.With(slog.String("component", "commands")))
	announcer := newAnnouncer(a, resolver, tg)

	if len(cfg.Destinations) == 0 {
		logger.Warn("GROUP_CHAT_ID is empty, scheduled announcements will reach nobody")
	}

	scheduler, err := announce.NewScheduler(announcer, announce.DefaultSchedule(), cfg.JobTimeout,
		logger.With(slog.String("component", "scheduler")))
	if err != nil {
		return err
	}
	scheduler.Start()
	logger.Info("scheduler started",
		slog.Time("start_date", cfg.StartDate),
		slog.Int("total_days", cfg.TotalDays),
		slog.Int("current_day", announcer.CurrentDay(time.Now())),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tg.Listen(gctx, commands)
	})

	if cfg.Port > 0 {
		var tokens *auth.TokenService
		if cfg.JWTSecret != "" {
			if tokens, err = auth.NewTokenService(cfg.JWTSecret); err != nil {
				return err
			}
		}
		srv := server.New(server.Config{Port: cfg.Port, TotalDays: cfg.TotalDays}, server.Deps{
			Streaks:   streaks,
			Resolver:  resolver,
			Announcer: announcer,
			Tokens:    tokens,
		}, logger.With(slog.String("component", "api")))

		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
		defer cancel()
		return scheduler.Stop(stopCtx)
	})

	err = g.Wait()
	logger.Info("shutting down")
	return err
}

func announceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "announce <action>",
		Short: "Fire one announcement now and print the delivery report",
		Long: `Fire one announcement immediately, outside the schedule.

Actions: reveal_challenge, send_reminder, reveal_solution, send_resource_promo`,
		Args: cobra.ExactArgs(1),
		RunE: runAnnounce,
	}
}

func runAnnounce(cmd *cobra.Command, args []string) error {
	action, ok := model.ParseAction(args[0])
	if !ok {
		return apperror.ValidationFailed("action", fmt.Sprintf("unknown action %q", args[0]))
	}

	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.openStore(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.JobTimeout)
	defer cancel()

	tg, err := telegram.New(a.cfg.BotToken, a.cfg.SendRatePerSec, a.logger.With(slog.String("component", "telegram")))
	if err != nil {
		return err
	}

	report, err := newAnnouncer(a, a.resolver(ctx), tg).Fire(ctx, action)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <day>",
		Short: "Resolve one challenge day and print it with its source",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	day, err := strconv.Atoi(args[0])
	if err != nil || day < 1 || day > a.cfg.TotalDays {
		return apperror.ValidationFailed("day", fmt.Sprintf("day must be between 1 and %d", a.cfg.TotalDays))
	}

	if err := a.openStore(); err != nil {
		return err
	}

	res := a.resolver(cmd.Context()).Resolve(cmd.Context(), day)
	return printJSON(cmd.OutOrStdout(), res)
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the admin API",
		Args:  cobra.NoArgs,
		RunE:  runToken,
	}
	cmd.Flags().String("subject", "operator", "Who the token is issued to")
	cmd.Flags().Duration("ttl", auth.DefaultTTL, "How long the token stays valid")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.JWTSecret == "" {
		return apperror.ValidationFailed("JWT_SECRET", "JWT_SECRET is required to issue tokens")
	}
	tokens, err := auth.NewTokenService(a.cfg.JWTSecret)
	if err != nil {
		return err
	}

	token, err := tokens.GenerateWithDuration(subject, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func newAnnouncer(a *app, resolver announce.ChallengeResolver, tg *telegram.Bot) *announce.Announcer {
	return announce.NewAnnouncer(announce.Config{
		Destinations:     a.cfg.Destinations,
		StartDate:        a.cfg.StartDate,
		TotalDays:        a.cfg.TotalDays,
		ChallengeURL:     a.cfg.ChallengeURL,
		ResourceVaultURL: a.cfg.ResourceVaultURL,
	}, resolver, tg, a.logger.With(slog.String("component", "announce")))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
