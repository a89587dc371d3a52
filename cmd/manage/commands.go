package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"fasplanners/internal/config"
	"fasplanners/internal/database"
	"fasplanners/internal/domain"
	"fasplanners/internal/notify"
	"fasplanners/internal/services"
	"fasplanners/internal/store"
)

// app holds what the commands share. cfg and db are filled on first use.
type app struct {
	cfg *config.Config
	db  *gorm.DB

	open        func(config.DatabaseConfig) (*gorm.DB, error)
	newNotifier func(*config.Config) (notify.Notifier, error)
}

func (a *app) bootstrap() error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		config.SetupLogger(&cfg.App)
		a.cfg = cfg
	}
	if a.db == nil {
		db, err := a.open(a.cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		a.db = db
	}
	return nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}
}

func (a *app) service() (*services.EventRequestService, error) {
	notifier, err := a.newNotifier(a.cfg)
	if err != nil {
		return nil, err
	}
	return services.NewEventRequestService(store.NewGormStore(a.db), services.Options{
		Notifier: notifier,
		Limits:   a.cfg.Submission,
	}), nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "manage",
		Short:         "Operator tools for the event request database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.bootstrap()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the event_requests table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "List the event_requests columns and report missing ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return verifySchema(cmd.OutOrStdout(), a.db)
		},
	})

	root.AddCommand(newRequestsCmd(a))
	return root
}

func newRequestsCmd(a *app) *cobra.Command {
	requests := &cobra.Command{
		Use:   "requests",
		Short: "Inspect and review event requests",
	}

	var status string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List requests, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter store.ListFilter
			if status != "" && status != "all" {
				st, ok := domain.ParseStatus(status)
				if !ok {
					return fmt.Errorf("invalid status %q", status)
				}
				filter.Status = &st
			}
			filter.Limit = limit

			rows, err := store.NewGormStore(a.db).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printList(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "only show requests with this status")
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of requests, 0 for all")

	show := &cobra.Command{
		Use:   "show [tracking-code]",
		Short: "Show one request by tracking code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			res, err := svc.Track(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDetail(cmd.OutOrStdout(), res.Request)
			return nil
		},
	}

	setStatus := &cobra.Command{
		Use:   "set-status [id] [status]",
		Short: "Change the status of a request and notify the client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			rec, err := svc.UpdateStatus(cmd.Context(), id, args[1])
			svc.Wait()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", rec.TrackingCode, rec.Status)
			return nil
		},
	}

	notes := &cobra.Command{
		Use:   "notes [id] [text]",
		Short: "Replace the internal notes of a request; empty text clears them",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service()
			if err != nil {
				return err
			}
			rec, err := svc.UpdateNotes(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Notes saved for %s\n", rec.TrackingCode)
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Count requests per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			s, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "new\t%d\n", s.New)
			fmt.Fprintf(w, "in_review\t%d\n", s.InReview)
			fmt.Fprintf(w, "converted\t%d\n", s.Converted)
			fmt.Fprintf(w, "rejected\t%d\n", s.Rejected)
			fmt.Fprintf(w, "total\t%d\n", s.Total)
			return w.Flush()
		},
	}

	requests.AddCommand(list, show, setStatus, notes, stats)
	return requests
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid request id %q", s)
	}
	return uint(id), nil
}

func printList(out io.Writer, rows []domain.EventRequest) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No event requests found")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tEMAIL\tEVENT\tSTATUS\tCREATED")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.TrackingCode, r.Name, r.Email, eventLabel(&r), r.Status, humanize.Time(r.CreatedAt))
	}
	w.Flush()
}

func printDetail(out io.Writer, r *domain.EventRequest) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s:\t%s\n", label, value)
		}
	}
	field("Tracking code", r.TrackingCode)
	field("Status", fmt.Sprintf("%s (%s)", r.Status.Label(), r.Status))
	field("Name", r.Name)
	field("Email", r.Email)
	field("Phone", deref(r.Phone))
	field("Event", eventLabel(r))
	if r.EventDate != nil {
		field("Date", r.EventDate.Format("2 January 2006"))
	}
	if r.GuestCount != nil {
		field("Guests", humanize.Comma(int64(*r.GuestCount)))
	}
	field("Venue", deref(r.Venue))
	field("Budget", deref(r.BudgetRange))
	field("Menu", deref(r.MenuCategory))

	sections := r.Sections()
	for _, name := range slices.Sorted(maps.Keys(sections)) {
		if items := sections[name]; len(items) > 0 {
			field("  "+name, strings.Join(items, ", "))
		}
	}

	field("Décor theme", deref(r.DecorTheme))
	field("Décor vision", deref(r.DecorVision))
	field("Colours", strings.Join(r.Colors(), ", "))
	if images := r.Images(); len(images) > 0 {
		field("Images", strconv.Itoa(len(images)))
	}
	field("Message", deref(r.Message))
	field("Notes", deref(r.Notes))
	field("Submitted", fmt.Sprintf("%s (%s)", r.CreatedAt.Format("2006-01-02 15:04"), humanize.Time(r.CreatedAt)))
	w.Flush()
}

func eventLabel(r *domain.EventRequest) string {
	parts := make([]string, 0, 2)
	for _, p := range []*string{r.EventCategory, r.EventType} {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, "/")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// verifySchema prints the columns of the event_requests table and fails when
// a column of the model is missing.
func verifySchema(out io.Writer, db *gorm.DB) error {
	model := &domain.EventRequest{}
	if !db.Migrator().HasTable(model) {
		return fmt.Errorf("table %s does not exist, run migrate first", model.TableName())
	}

	columns, err := db.Migrator().ColumnTypes(model)
	if err != nil {
		return fmt.Errorf("failed to read columns: %w", err)
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Errorf("failed to parse model: %w", err)
	}

	present := make(map[string]bool, len(columns))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tTYPE\tNULLABLE")
	for _, c := range columns {
		present[c.Name()] = true
		nullable := "?"
		if n, ok := c.Nullable(); ok {
			nullable = strconv.FormatBool(n)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name(), strings.ToLower(c.DatabaseTypeName()), nullable)
	}
	w.Flush()

	var missing []string
	for _, name := range stmt.Schema.DBNames {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	fmt.Fprintf(out, "Found %d columns in %s\n", len(columns), model.TableName())
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
