// Command chpp is a command-line client for the Hattrick CHPP API.
//
// Usage:
//
//	chpp auth url --callback oob --scope set_training
//	chpp auth exchange --token T --secret S --verifier V
//	chpp user
//	chpp team 456789 --detailed
//	chpp player 480742036 --field scorer
//	chpp matches 456789 --archive --season 82
//	chpp snapshot --matches
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
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/htstatus/chpp-client/internal/cache"
	"github.com/htstatus/chpp-client/internal/config"
	"github.com/htstatus/chpp-client/internal/provider/chpp"
	"github.com/htstatus/chpp-client/internal/snapshot"
)

var (
	logLevel = new(slog.LevelVar)
	logger   = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	configPath string
	stdout     io.Writer = os.Stdout
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "chpp",
		Short:         "Hattrick CHPP command-line client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (environment variables override it)")

	root.AddCommand(authCmd())
	root.AddCommand(userCmd())
	root.AddCommand(teamCmd())
	root.AddCommand(playerCmd())
	root.AddCommand(matchesCmd())
	root.AddCommand(snapshotCmd())

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		if code, ok := chpp.APICode(err); ok {
			logger.Error("chpp error", "code", code, "label", chpp.ErrorLabel(code))
		}
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// auth command
// --------------------------------------------------------------------------

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "OAuth handshake and token management",
	}
	cmd.AddCommand(authURLCmd())
	cmd.AddCommand(authExchangeCmd())
	cmd.AddCommand(authCheckCmd())
	cmd.AddCommand(authInvalidateCmd())
	return cmd
}

func authURLCmd() *cobra.Command {
	var callback, scope string
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Get a request token and the URL the user must visit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(func(ctx context.Context, cfg *config.Config, client *chpp.Client) error {
				auth, err := client.GetAuth(ctx, callback, scope)
				if err != nil {
					return err
				}
				return printJSON(auth)
			})
		},
	}
	cmd.Flags().StringVar(&callback, "callback", "oob", "OAuth callback URL")
	cmd.Flags().StringVar(&scope, "scope", "", "Comma-separated scopes ("+strings.Join(chpp.Scopes[1:], ", ")+")")
	return cmd
}

func authExchangeCmd() *cobra.Command {
	var token, secret, verifier string
	cmd := &cobra.Command{
		Use:   "exchange",
		Short: "Exchange an authorized request token for an access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" || verifier == "" {
				return fmt.Errorf("--token and --verifier are required")
			}
			return runClient(func(ctx context.Context, cfg *config.Config, client *chpp.Client) error {
				tok, err := client.GetAccessToken(ctx, token, secret, verifier)
				if err != nil {
					return err
				}
				logger.Info("Access token granted; set CHPP_ACCESS_KEY and CHPP_ACCESS_SECRET to use it")
				return printJSON(tok)
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Request token from 'auth url'")
	cmd.Flags().StringVar(&secret, "secret", "", "Request token secret from 'auth url'")
	cmd.Flags().StringVar(&verifier, "verifier", "", "Verifier code shown after authorization")
	return cmd
}

func authCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Show information about the configured access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(func(ctx context.Context, cfg *config.Config, client *chpp.Client) error {
				root, err := client.CheckToken(ctx)
				if err != nil {
					return err
				}
				info := map[string]string{}
				for _, el := range root.ChildElements() {
					if text := strings.TrimSpace(el.Text()); text != "" {
						info[el.Tag] = text
					}
				}
				return printJSON(info)
			})
		},
	}
}

func authInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate",
		Short: "Revoke the configured access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(func(ctx context.Context, cfg *config.Config, client *chpp.Client) error {
				if err := client.InvalidateToken(ctx); err != nil {
					return err
				}
				logger.Info("Access token invalidated")
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// data commands
// --------------------------------------------------------------------------

func userCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user",
		Short: "Show the manager owning the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(func(ctx context.Context, cfg *config.Config, client *chpp.Client) error {
				user, err := client.User(ctx)
				if err != nil {
					return err
				}
				return printJSON(user)
			})
		},
	}
}

func teamCmd() *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "team [team-id]",
		Short: "Show a team with its roster (primary team when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID := 0
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				teamID = id
			}
			return runClient(func(ctx context.Context, cfg *config.Config, client *chpp.Client) error {
				fetch := client.Team
				if detailed {
					fetch = client.TeamDetailed
				}
				start := time.Now()
				team, err := fetch(ctx, teamID)
				if err != nil {
					return err
				}
				logger.Debug("Team fetched", "team_id", team.TeamID, "players", len(team.Players()),
					"duration", time.Since(start).Round(time.Millisecond))
				return printJSON(team)
			})
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Fetch playerdetails for every roster entry")
	return cmd
}

func playerCmd() *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "player <player-id>",
		Short: "Show a single player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runClient(func(ctx context.Context, cfg *config.Config, client *chpp.Client) error {
				player, err := client.Player(ctx, playerID)
				if err != nil {
					return err
				}
				if len(fields) == 0 {
					return printJSON(player)
				}
				out := make(map[string]any, len(fields))
				for _, f := range fields {
					v, ok := player.Get(f)
					if !ok {
						return fmt.Errorf("unknown player field %q (available: %s)", f, strings.Join(player.Fields(), ", "))
					}
					out[f] = v
				}
				return printJSON(out)
			})
		},
	}
	cmd.Flags().StringSliceVar(&fields, "field", nil, "Only print these fields")
	return cmd
}

func matchesCmd() *cobra.Command {
	var (
		youth    bool
		archive  bool
		season   int
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "matches <team-id>",
		Short: "Show a team's matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runClient(func(ctx context.Context, cfg *config.Config, client *chpp.Client) error {
				var out any
				if archive {
					matches, err := client.MatchesArchiveRange(ctx, teamID, chpp.ArchiveQuery{
						IsYouth:        youth,
						Season:         season,
						FirstMatchDate: from,
						LastMatchDate:  to,
					})
					if err != nil {
						return err
					}
					out = matches
				} else {
					matches, err := client.MatchesArchive(ctx, teamID, youth)
					if err != nil {
						return err
					}
					out = matches
				}
				return printJSON(out)
			})
		},
	}
	cmd.Flags().BoolVar(&youth, "youth", false, "Team id is a youth team")
	cmd.Flags().BoolVar(&archive, "archive", false, "Use matchesarchive with season/date filters")
	cmd.Flags().IntVar(&season, "season", 0, "Season number (archive only, overrides dates)")
	cmd.Flags().StringVar(&from, "from", "", "First match date YYYY-MM-DD (archive only)")
	cmd.Flags().StringVar(&to, "to", "", "Last match date YYYY-MM-DD (archive only)")
	return cmd
}

func snapshotCmd() *cobra.Command {
	var opts snapshot.Options
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the user, every owned team with roster and optionally matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(func(ctx context.Context, cfg *config.Config, client *chpp.Client) error {
				start := time.Now()
				snap, result := snapshot.Collect(ctx, client, opts, logger)
				logger.Info("Snapshot finished", "duration", time.Since(start).Round(time.Second), "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("snapshot error", "error", e)
				}
				if snap == nil {
					return fmt.Errorf("snapshot failed: %s", strings.Join(result.Errors, "; "))
				}
				return printJSON(struct {
					*snapshot.Snapshot
					Result snapshot.Result `json:"result"`
				}{snap, result})
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Matches, "matches", false, "Include each team's match archive")
	cmd.Flags().BoolVar(&opts.YouthMatches, "youth", false, "Include the youth team's match archive")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "Teams fetched concurrently")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runClient handles config loading, client construction, and context cancellation.
func runClient(fn func(ctx context.Context, cfg *config.Config, client *chpp.Client) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logLevel.Set(cfg.SlogLevel())
	if cfg.IsProduction() {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	}

	respCache := cache.New(cfg.CacheEnabled, cfg.CacheTTL)
	client, err := chpp.NewClient(cfg.ClientConfig(respCache), logger)
	if err != nil {
		return err
	}

	err = fn(ctx, cfg, client)
	if respCache.Enabled() {
		logger.Debug("Cache stats", "stats", respCache.Stats())
	}
	return err
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
