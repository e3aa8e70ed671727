package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/walletfy/walletfy/internal/app"
	"github.com/walletfy/walletfy/internal/config"
	"github.com/walletfy/walletfy/internal/event_bus"
	"github.com/walletfy/walletfy/internal/utils"
	"github.com/walletfy/walletfy/pkg/balance"
	"github.com/walletfy/walletfy/pkg/event"
	"github.com/walletfy/walletfy/pkg/notifier"
)

// session is the storage and services a single command runs against.
type session struct {
	storage   *app.Storage
	publisher *notifier.Publisher
	events    *event.ServiceImpl
	balance   *balance.ServiceImpl
}

func openSession(configPath string) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	location, err := cfg.Server.TimeLocation()
	if err != nil {
		return nil, err
	}

	storage, err := app.OpenStorage(cfg.Storage, &utils.SystemClock{})
	if err != nil {
		return nil, err
	}

	bus := event_bus.NewEventBus()
	var publisher *notifier.Publisher
	if cfg.Amqp.Url != "" {
		publisher, err = notifier.Dial(cfg.Amqp.Url, cfg.Amqp.Exchange)
		if err != nil {
			storage.Close()
			return nil, err
		}
		publisher.Attach(bus)
	}

	events := event.NewService(storage.Events, event.NewValidator(location), bus, cfg.Attachments.MaxBytes)
	return &session{
		storage:   storage,
		publisher: publisher,
		events:    events,
		balance:   balance.NewService(events),
	}, nil
}

func (s *session) close() {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Errorf("failed to close notifier: %v", err)
		}
	}
	s.storage.Close()
}

// NewRootCommand builds the walletfyctl command tree.
func NewRootCommand() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:           "walletfyctl",
		Short:         "Manage the Walletfy ledger from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the YAML configuration")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newImportCommand(&configPath),
		newExportCommand(&configPath),
		newBalanceCommand(&configPath),
	)
	return root
}

func defaultConfigPath() string {
	if path := os.Getenv("WALLETFY_CONFIG"); path != "" {
		return path
	}
	return "./config/application.yaml"
}

func newImportCommand(configPath *string) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import events from a JSON array, including exports of the browser app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			candidates, err := ParseRecords(data)
			if err != nil {
				return err
			}

			s, err := openSession(*configPath)
			if err != nil {
				return err
			}
			defer s.close()

			count, err := s.events.ImportEvents(cmd.Context(), candidates, replace)
			if err != nil {
				return err
			}
			log.Infof("Imported %d events from %s", count, args[0])
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d events\n", count)
			return err
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "drop all stored events before importing")
	return cmd
}

func newExportCommand(configPath *string) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(*configPath)
			if err != nil {
				return err
			}
			defer s.close()

			events, err := s.events.ListEvents(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := Export(w, events, format); err != nil {
				return err
			}
			log.Debugf("Exported %d events as %s", len(events), format)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "json, csv or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file instead of stdout")
	return cmd
}

func newBalanceCommand(configPath *string) *cobra.Command {
	var search string
	var asCsv bool
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show income, expense and balance per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(*configPath)
			if err != nil {
				return err
			}
			defer s.close()

			groups, err := s.balance.GetMonthlyGroups(cmd.Context(), search)
			if err != nil {
				return err
			}
			summary, err := s.balance.GetSummary(cmd.Context())
			if err != nil {
				return err
			}

			if asCsv {
				csv, err := balance.NewCsvRenderer().RenderGroups(groups, summary)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), csv)
				return err
			}
			return WriteBalanceTable(cmd.OutOrStdout(), groups, summary)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only months whose name or year contains this text")
	cmd.Flags().BoolVar(&asCsv, "csv", false, "print csv instead of a table")
	return cmd
}

// WriteBalanceTable prints one row per month followed by the overall totals.
func WriteBalanceTable(w io.Writer, groups []balance.MonthlyGroup, summary balance.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tEvents\tIncome\tExpense\tBalance\t")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t\n", g.Label(), len(g.Events),
			g.TotalIncome.StringFixed(2), g.TotalExpense.StringFixed(2), g.Balance.StringFixed(2))
	}
	fmt.Fprintf(tw, "Total\t%d\t%s\t%s\t%s\t\n", summary.EventCount,
		summary.TotalIncome.StringFixed(2), summary.TotalExpense.StringFixed(2), summary.Balance.StringFixed(2))
	return tw.Flush()
}
