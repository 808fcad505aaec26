// Command seqrepair realigns document number sequences with the numbers
// already stored in the quotes, orders and invoices tables.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/glassline/erp-api/internal/config"
	"github.com/glassline/erp-api/internal/database"
	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/logger"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/glassline/erp-api/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	org        string
	docType    string
	all        bool
	outputJSON bool
	timeout    time.Duration
}

func rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "seqrepair",
		Short: "Repair document number sequences",
		Long: `Set each sequence's next number to one past the highest number issued
this year, so the next quote, order or invoice does not collide with an
existing one.

Examples:
  seqrepair --org 6f1c...                 # Repair every document type of one organization
  seqrepair --org 6f1c... --type INVOICE  # Repair invoices only
  seqrepair --all --json                  # Repair every organization, JSON output
`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.org, "org", "", "Organization ID")
	cmd.Flags().StringVar(&opts.docType, "type", "", "Document type: QUOTE, ORDER or INVOICE (default all types)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Repair every organization")
	cmd.Flags().BoolVar(&opts.outputJSON, "json", false, "Output results as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Overall timeout")

	return cmd
}

func (o *options) validate() error {
	if o.all == (o.org != "") {
		return fmt.Errorf("exactly one of --org or --all is required")
	}
	if o.org != "" {
		if _, err := uuid.Parse(o.org); err != nil {
			return fmt.Errorf("invalid --org: %w", err)
		}
	}
	if o.docType != "" {
		if o.all {
			return fmt.Errorf("--type cannot be combined with --all")
		}
		o.docType = strings.ToUpper(o.docType)
		if !domain.DocType(o.docType).IsValid() {
			return fmt.Errorf("invalid --type %q: must be QUOTE, ORDER or INVOICE", o.docType)
		}
	}
	return nil
}

func run(out io.Writer, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	svc := service.NewNumberSequenceService(
		repository.NewNumberSequenceRepository(db, cfg.Sequences.IsolationLevel()),
		repository.NewOrganizationRepository(db),
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return repair(ctx, out, svc, opts)
}

// orgResults is one organization's outcome in the report
type orgResults struct {
	OrganizationID uuid.UUID                     `json:"organizationId"`
	Results        []domain.SequenceRepairResult `json:"results"`
}

// repair runs the requested repair and writes the report. It fails when any
// document type failed or an --all run stopped early, so scripts can rely on
// the exit code.
func repair(ctx context.Context, out io.Writer, svc *service.NumberSequenceService, opts options) error {
	var report []orgResults
	var stopErr error

	switch {
	case opts.all:
		all, err := svc.RepairAllOrganizations(ctx)
		if err != nil && len(all) == 0 {
			return err
		}
		if err != nil {
			stopErr = fmt.Errorf("repair stopped after %d organization(s): %w", len(all), err)
		}
		for id, results := range all {
			report = append(report, orgResults{OrganizationID: id, Results: results})
		}
		sort.Slice(report, func(i, j int) bool {
			return report[i].OrganizationID.String() < report[j].OrganizationID.String()
		})

	case opts.docType != "":
		orgID := uuid.MustParse(opts.org)
		docType := domain.DocType(opts.docType)
		result := domain.SequenceRepairResult{DocType: docType, Status: domain.SequenceRepaired}
		next, err := svc.Repair(ctx, orgID, docType)
		if err != nil {
			result.Status = domain.SequenceFailed
			result.Error = err.Error()
		} else {
			result.NextNumber = next
		}
		report = append(report, orgResults{OrganizationID: orgID, Results: []domain.SequenceRepairResult{result}})

	default:
		orgID := uuid.MustParse(opts.org)
		report = append(report, orgResults{OrganizationID: orgID, Results: svc.RepairAll(ctx, orgID)})
	}

	if err := writeReport(out, report, opts.outputJSON); err != nil {
		return err
	}
	if stopErr != nil {
		return stopErr
	}

	failed := 0
	for _, org := range report {
		for _, r := range org.Results {
			if r.Status == domain.SequenceFailed {
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d sequence(s) failed to repair", failed)
	}
	return nil
}

func writeReport(out io.Writer, report []orgResults, outputJSON bool) error {
	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for _, org := range report {
		fmt.Fprintf(out, "Organization %s\n", org.OrganizationID)
		for _, r := range org.Results {
			if r.Status == domain.SequenceFailed {
				fmt.Fprintf(out, "  %-8s FAILED  %s\n", r.DocType, r.Error)
				continue
			}
			fmt.Fprintf(out, "  %-8s next=%d", r.DocType, r.NextNumber)
			if r.Skipped > 0 {
				fmt.Fprintf(out, " skipped=%d", r.Skipped)
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}
