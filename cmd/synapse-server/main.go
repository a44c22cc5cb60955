package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"synapse-assistant/internal/chat"
	"synapse-assistant/internal/config"
	"synapse-assistant/internal/contact"
	"synapse-assistant/internal/logging"
	"synapse-assistant/internal/profile"
	"synapse-assistant/internal/server"
	"synapse-assistant/internal/store"
	"synapse-assistant/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "synapse-server",
		Short:         "Synapse Digital chat assistant and contact handoff",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{Use: "serve", Short: "Serve the chat and contact API", Args: cobra.NoArgs, RunE: runServe},
		&cobra.Command{Use: "ask <message>", Short: "Print the reply to one chat message", Args: cobra.MinimumNArgs(1), RunE: runAsk},
		&cobra.Command{Use: "chat", Short: "Chat with the assistant in the terminal", Args: cobra.NoArgs, RunE: runChat},
		newMailtoCmd(),
	)
	return root
}

// loadProfile returns the built-in profile unless PROFILE_FILE points at a
// YAML override.
func loadProfile(cfg config.Config) (profile.Profile, error) {
	if cfg.ProfileFile == "" {
		return profile.Default(), nil
	}
	return profile.Load(cfg.ProfileFile)
}

func recipientFor(cfg config.Config, p profile.Profile) string {
	if cfg.ContactRecipient != "" {
		return cfg.ContactRecipient
	}
	return p.Email
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	p, err := loadProfile(cfg)
	if err != nil {
		log.Error("failed to load profile", zap.Error(err))
		return err
	}
	assistant, err := chat.NewDefaultAssistant(p)
	if err != nil {
		log.Error("failed to build assistant", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := store.NewMemoryStore(assistant, cfg.ReplyDelay, cfg.SessionIdleTimeout, log.Named("store"))
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sessions.Run(ctx, cfg.SweepInterval)
	}()

	s := server.NewServer(cfg, sessions, recipientFor(cfg, p), log.Named("http"))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("synapse server listening", zap.String("addr", srv.Addr), zap.String("business", p.Name))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		stop()
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}
	<-sweepDone
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	p, err := loadProfile(config.Load())
	if err != nil {
		return err
	}
	assistant, err := chat.NewDefaultAssistant(p)
	if err != nil {
		return err
	}
	in, reply := assistant.Reply(strings.Join(args, " "))
	fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n%s\n", in, reply)
	return nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	p, err := loadProfile(cfg)
	if err != nil {
		return err
	}
	assistant, err := chat.NewDefaultAssistant(p)
	if err != nil {
		return err
	}
	session := chat.NewSession("terminal", assistant, cfg.ReplyDelay)
	return tui.Run(session, p.Name)
}

func newMailtoCmd() *cobra.Command {
	var (
		form   contact.Form
		to     string
		decode string
	)
	cmd := &cobra.Command{
		Use:   "mailto",
		Short: "Build (or decode) the mailto: URI for a contact request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if decode != "" {
				recipient, d, err := contact.ParseMailto(decode)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "To: %s\nSubject: %s\n\n%s\n", recipient, d.Subject, d.Body)
				return nil
			}
			if to == "" {
				cfg := config.Load()
				p, err := loadProfile(cfg)
				if err != nil {
					return err
				}
				to = recipientFor(cfg, p)
			}
			fmt.Fprintln(out, contact.Format(form).MailtoURI(to))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Name, "name", "", "sender name")
	f.StringVar(&form.Email, "email", "", "sender email")
	f.StringVar(&form.Phone, "phone", "", "sender phone")
	f.StringVar(&form.Service, "service", "", "service of interest")
	f.StringVar(&form.Message, "message", "", "message body")
	f.StringVar(&to, "to", "", "recipient address (defaults to CONTACT_RECIPIENT or the profile email)")
	f.StringVar(&decode, "decode", "", "decode an existing mailto: URI instead")
	return cmd
}
