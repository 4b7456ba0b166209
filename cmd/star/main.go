package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "stardom/internal/cli"
	"stardom/internal/config"
	"stardom/internal/game"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "star",
		Short:        "Stardom music career client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base url")

	root.AddCommand(
		newNewCmd(&apiBase),
		newUseCmd(&apiBase),
		newGamesCmd(&apiBase),
		newDashCmd(&apiBase),
		newWeekCmd(&apiBase),
		newSongsCmd(&apiBase),
		newSongCmd(&apiBase),
		newAlbumsCmd(&apiBase),
		newAlbumCmd(&apiBase),
		newRappersCmd(&apiBase),
		newFeatureCmd(&apiBase),
		newControversyCmd(&apiBase),
		newEventCmd(&apiBase),
		newHypeCmd(&apiBase),
		newConcertCmd(&apiBase),
		newTourCmd(&apiBase),
		newPostCmd(&apiBase),
		newMerchCmd(&apiBase),
		newExportCmd(&apiBase),
		newImportCmd(&apiBase),
		newPlayCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

// withGame runs fn against the active save with a bounded context.
func withGame(cmd *cobra.Command, apiBase *string, fn func(ctx context.Context, c *cl.Client, gameID string) error) error {
	sess, err := cl.LoadSession()
	if err != nil {
		return err
	}
	base := *apiBase
	if sess.APIBaseURL != "" && !cmd.Flags().Changed("api") {
		base = sess.APIBaseURL
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	return fn(ctx, newClient(&base), sess.GameID)
}

func newNewCmd(apiBase *string) *cobra.Command {
	var subscription string
	var seed int64
	cmd := &cobra.Command{
		Use:   "new [player name]",
		Short: "Start a new career and make it the active game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			} else {
				var err error
				if name, err = promptRequired("Artist name"); err != nil {
					return err
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).NewGame(ctx, name, subscription, seed)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{APIBaseURL: *apiBase, GameID: out.ID, PlayerName: out.State.PlayerName}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Career started for %s (game %s).", out.State.PlayerName, out.ID))
			return renderDashboard(out.State)
		},
	}
	cmd.Flags().StringVar(&subscription, "plan", "free", "subscription plan (free, basic, premium, ultimate)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for a reproducible career")
	return cmd
}

func newUseCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "use <game id>",
		Short: "Switch the active game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			st, err := newClient(apiBase).Game(ctx, args[0])
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{APIBaseURL: *apiBase, GameID: args[0], PlayerName: st.PlayerName}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Now playing as %s, week %d.", st.PlayerName, st.Week))
			return nil
		},
	}
}

func newGamesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List saved games",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			ids, err := newClient(apiBase).ListGames(ctx)
			if err != nil {
				return err
			}
			active := ""
			if sess, err := cl.LoadSession(); err == nil {
				active = sess.GameID
			}
			if len(ids) == 0 {
				printInfo("No saved games. Run `star new`.")
				return nil
			}
			for _, id := range ids {
				if id == active {
					accent.Printf("* %s\n", id)
					continue
				}
				fmt.Printf("  %s\n", id)
			}
			return nil
		},
	}
}

func newDashCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Show the career dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				st, err := c.Game(ctx, id)
				if err != nil {
					return err
				}
				return renderDashboard(st)
			})
		},
	}
}

func newWeekCmd(apiBase *string) *cobra.Command {
	var weeks int
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Advance the career by one or more weeks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if weeks < 1 || weeks > 52 {
				return fmt.Errorf("weeks must be between 1 and 52")
			}
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				for i := 0; i < weeks; i++ {
					report, err := c.AdvanceWeek(ctx, id)
					if err != nil {
						return err
					}
					renderWeekReport(report)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&weeks, "weeks", "n", 1, "number of weeks to simulate")
	return cmd
}

func newSongsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "songs",
		Short: "List your songs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				st, err := c.Game(ctx, id)
				if err != nil {
					return err
				}
				renderSongs(st)
				return nil
			})
		},
	}
}

func newSongCmd(apiBase *string) *cobra.Command {
	song := &cobra.Command{
		Use:   "song",
		Short: "Record and release songs",
	}

	var tier int
	var featuring []string
	create := &cobra.Command{
		Use:   "create [title]",
		Short: "Record a new song",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := argOrPrompt(args, 0, "Title")
			if err != nil {
				return err
			}
			if err := game.ValidateTitle(title); err != nil {
				return err
			}
			if err := game.ValidateTier(tier); err != nil {
				return err
			}
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				s, err := c.CreateSong(ctx, id, title, tier, featuring)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Recorded %q (tier %d) as %s.", s.Title, s.Tier, s.ID))
				return nil
			})
		},
	}
	create.Flags().IntVarP(&tier, "tier", "t", 1, "quality tier 1-5")
	create.Flags().StringSliceVar(&featuring, "feat", nil, "rapper ids to feature")

	var platforms []string
	release := &cobra.Command{
		Use:   "release <song id>",
		Short: "Release a recorded song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				mult, err := c.ReleaseSong(ctx, id, args[0], platforms)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Released. Hype multiplier x%.2f.", mult))
				return nil
			})
		},
	}
	release.Flags().StringSliceVar(&platforms, "platforms", nil, "platforms to release on (default: all unlocked)")

	song.AddCommand(create, release)
	return song
}

func newAlbumsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "albums",
		Short: "List your albums",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				st, err := c.Game(ctx, id)
				if err != nil {
					return err
				}
				renderAlbums(st)
				return nil
			})
		},
	}
}

func newAlbumCmd(apiBase *string) *cobra.Command {
	album := &cobra.Command{
		Use:   "album",
		Short: "Build and release albums",
	}

	var albumType string
	create := &cobra.Command{
		Use:   "create <title> <song id>...",
		Short: "Create an album from recorded songs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				albumID, err := c.CreateAlbum(ctx, id, args[0], albumType, args[1:])
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Album %q created as %s.", args[0], albumID))
				return nil
			})
		},
	}
	create.Flags().StringVar(&albumType, "type", string(game.AlbumStandard), "standard, ep or compilation")

	var deluxeTitle string
	deluxe := &cobra.Command{
		Use:   "deluxe <album id> <song id>...",
		Short: "Create a deluxe edition with extra songs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				albumID, err := c.CreateDeluxe(ctx, id, args[0], deluxeTitle, args[1:])
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Deluxe edition created as %s.", albumID))
				return nil
			})
		},
	}
	deluxe.Flags().StringVar(&deluxeTitle, "title", "", "deluxe title (default: parent title + (Deluxe))")

	var remixTitle string
	remix := &cobra.Command{
		Use:   "remix <album id>",
		Short: "Create a remix album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				albumID, err := c.CreateRemix(ctx, id, args[0], remixTitle)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Remix album created as %s.", albumID))
				return nil
			})
		},
	}
	remix.Flags().StringVar(&remixTitle, "title", "", "remix title (default: parent title + (Remixes))")

	release := &cobra.Command{
		Use:   "release <album id>",
		Short: "Release an album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				mult, err := c.ReleaseAlbum(ctx, id, args[0])
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Album released. Hype multiplier x%.2f.", mult))
				return nil
			})
		},
	}

	album.AddCommand(create, deluxe, remix, release)
	return album
}

func newRappersCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rappers",
		Short: "Show the rival rappers and open feature requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				st, err := c.Game(ctx, id)
				if err != nil {
					return err
				}
				renderRappers(st)
				return nil
			})
		},
	}
}

func newFeatureCmd(apiBase *string) *cobra.Command {
	feature := &cobra.Command{
		Use:   "feature",
		Short: "Work with other rappers",
	}

	var tier int
	var title string
	request := &cobra.Command{
		Use:   "request <rapper id>",
		Short: "Ask a rapper to feature on a new song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				out, err := c.RequestFeature(ctx, id, args[0], tier, title)
				if err != nil {
					return err
				}
				if !out.Accepted {
					printWarn(out.Message)
					return nil
				}
				printSuccess(fmt.Sprintf("%s Paid %s.", out.Message, formatCents(out.CostCents)))
				return nil
			})
		},
	}
	request.Flags().IntVarP(&tier, "tier", "t", 1, "quality tier 1-5")
	request.Flags().StringVar(&title, "title", "", "song title")

	respond := &cobra.Command{
		Use:   "respond <rapper id> <accept|decline>",
		Short: "Answer a feature request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accept, err := parseAccept(args[1])
			if err != nil {
				return err
			}
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				ev, err := c.RespondFeature(ctx, id, args[0], accept)
				if err != nil {
					return err
				}
				printSuccess(ev.Message)
				return nil
			})
		},
	}

	feature.AddCommand(request, respond)
	return feature
}

func newControversyCmd(apiBase *string) *cobra.Command {
	controversy := &cobra.Command{
		Use:   "controversy",
		Short: "Handle the press",
	}
	controversy.AddCommand(&cobra.Command{
		Use:   "respond <controversy id> <option>",
		Short: "Respond to an active controversy (0 apologize, 1 deny, 2 stay silent, 3 publicity stunt)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				ev, err := c.RespondControversy(ctx, id, args[0], idx)
				if err != nil {
					return err
				}
				printSuccess(ev.Message)
				return nil
			})
		},
	})
	return controversy
}

func newEventCmd(apiBase *string) *cobra.Command {
	event := &cobra.Command{
		Use:   "event",
		Short: "Resolve random career events",
	}
	event.AddCommand(&cobra.Command{
		Use:   "resolve <event id> <option>",
		Short: "Pick an option for a pending event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				ev, err := c.ResolveEvent(ctx, id, args[0], idx)
				if err != nil {
					return err
				}
				printSuccess(ev.Message)
				return nil
			})
		},
	})
	return event
}

func newHypeCmd(apiBase *string) *cobra.Command {
	hype := &cobra.Command{
		Use:   "hype",
		Short: "Announce and promote upcoming releases",
	}

	var related string
	var target int
	announce := &cobra.Command{
		Use:   "announce <single|ep|album|tour> <title>",
		Short: "Announce a release to start building hype",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				ev, err := c.Announce(ctx, id, args[0], args[1], related, target)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Announced %q for week %d (hype %.0f/%.0f, id %s).", ev.Title, ev.TargetWeek, ev.HypeLevel, ev.MaxHype, ev.ID))
				return nil
			})
		},
	}
	announce.Flags().StringVar(&related, "for", "", "song or album id the campaign is for")
	announce.Flags().IntVar(&target, "week", 0, "target release week")

	promote := &cobra.Command{
		Use:   "promote <hype id> <dollars>",
		Short: "Spend money on a hype campaign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dollars, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
			if err != nil || dollars <= 0 {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				ev, err := c.Promote(ctx, id, args[0], game.DollarsToCents(dollars))
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("%s hype is now %.0f/%.0f.", ev.Title, ev.HypeLevel, ev.MaxHype))
				return nil
			})
		},
	}

	hype.AddCommand(announce, promote)
	return hype
}

func newConcertCmd(apiBase *string) *cobra.Command {
	var capacity int64
	var price float64
	var week int
	var setlist []string
	cmd := &cobra.Command{
		Use:   "concert <venue>",
		Short: "Book a concert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				out, err := c.ScheduleConcert(ctx, id, args[0], capacity, game.DollarsToCents(price), week, setlist)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Booked %s for week %d (%d seats).", out.VenueName, out.Week, out.Capacity))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&capacity, "capacity", 200, "venue capacity")
	cmd.Flags().Float64Var(&price, "price", 20, "ticket price in dollars")
	cmd.Flags().IntVar(&week, "week", 0, "week of the show")
	cmd.Flags().StringSliceVar(&setlist, "setlist", nil, "released song ids to perform")
	return cmd
}

func newTourCmd(apiBase *string) *cobra.Command {
	var stops []string
	var setlist []string
	var hypeID string
	var capacity int64
	var price float64
	cmd := &cobra.Command{
		Use:   "tour <name>",
		Short: "Start a tour, one city per week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tourStops := make([]game.TourStop, 0, len(stops))
			for _, city := range stops {
				tourStops = append(tourStops, game.TourStop{
					City:             strings.TrimSpace(city),
					Capacity:         capacity,
					TicketPriceCents: game.DollarsToCents(price),
				})
			}
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				t, err := c.StartTour(ctx, id, args[0], tourStops, setlist, hypeID)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("%s kicks off week %d with %d stops.", t.Name, t.StartWeek, len(t.Stops)))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&stops, "cities", nil, "tour cities in order")
	cmd.Flags().StringSliceVar(&setlist, "setlist", nil, "released song ids to perform")
	cmd.Flags().StringVar(&hypeID, "hype", "", "tour hype campaign id")
	cmd.Flags().Int64Var(&capacity, "capacity", 1000, "capacity per stop")
	cmd.Flags().Float64Var(&price, "price", 30, "ticket price in dollars")
	return cmd
}

func newPostCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "post <platform>",
		Short: "Post on a social platform (Instagram, TikTok, X, YouTube)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				p, err := c.PostSocial(ctx, id, args[0])
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("%s: %s followers, engagement %.1f.", p.Name, comma(p.Followers), p.Engagement))
				return nil
			})
		},
	}
}

func newMerchCmd(apiBase *string) *cobra.Command {
	var price, cost float64
	var qty int64
	cmd := &cobra.Command{
		Use:   "merch <item name>",
		Short: "Stock a merch item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				item, err := c.StockMerch(ctx, id, args[0], game.DollarsToCents(price), game.DollarsToCents(cost), qty)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Stocked %d x %s at %s.", item.Stock, item.Name, formatCents(item.PriceCents)))
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&price, "price", 25, "sale price in dollars")
	cmd.Flags().Float64Var(&cost, "cost", 10, "unit cost in dollars")
	cmd.Flags().Int64Var(&qty, "qty", 50, "units to stock")
	return cmd
}

func newExportCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the active save to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGame(cmd, apiBase, func(ctx context.Context, c *cl.Client, id string) error {
				data, err := c.Export(ctx, id)
				if err != nil {
					return err
				}
				if err := os.WriteFile(args[0], data, 0o600); err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Saved to %s.", args[0]))
				return nil
			})
		},
	}
}

func newImportCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a JSON save into a new slot and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Import(ctx, data)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{APIBaseURL: *apiBase, GameID: out.ID, PlayerName: out.State.PlayerName}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Imported %s at week %d as %s.", out.State.PlayerName, out.State.Week, out.ID))
			return nil
		},
	}
}

func argOrPrompt(args []string, idx int, label string) (string, error) {
	if len(args) > idx {
		return strings.TrimSpace(args[idx]), nil
	}
	return promptRequired(label)
}

func parseIndex(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid option %q", s)
	}
	return v, nil
}

func parseAccept(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "yes", "y":
		return true, nil
	case "decline", "no", "n":
		return false, nil
	}
	return false, errors.New("answer must be accept or decline")
}
