// Command settle is the operator tool for resolving payout requests and
// auditing balances against the coin ledger.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/reelspay/reelspay-backend/internal/config"
	"github.com/reelspay/reelspay-backend/internal/db"
	"github.com/reelspay/reelspay-backend/internal/logging"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/repository"
	"github.com/reelspay/reelspay-backend/internal/service"
	"gorm.io/gorm"
)

const usageText = `usage: settle <command> [args]

commands:
  list [-status pending|completed|failed] [-limit N]
  complete <payout-id>
  fail <payout-id> <reason...>
  audit <profile-id>
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usageText)
			os.Exit(2)
		}
		log.Fatalf("settle: %v", err)
	}
}

func run(args []string) error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, closer := logging.Setup(logging.Options{Service: "reelspay-settle", Env: cfg.AppEnv, File: cfg.LogFile})
	defer closer.Close()

	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	ops := newOperator(conn, service.PayoutPolicy{MinCoins: cfg.PayoutMinCoins, CoinsToPaise: cfg.CoinsToPaise}, service.WithLogger(logger))
	return ops.execute(context.Background(), args, os.Stdout)
}

type operator struct {
	payouts service.PayoutService
	ledger  service.LedgerService
}

func newOperator(conn *gorm.DB, policy service.PayoutPolicy, opts ...service.Option) *operator {
	profiles := repository.NewProfileRepository(conn)
	ledger := repository.NewLedgerRepository(conn)
	notify := service.NewNotificationService(repository.NewNotificationRepository(conn), opts...)
	return &operator{
		payouts: service.NewPayoutService(conn, repository.NewPayoutRepository(conn), ledger, profiles, notify, policy, opts...),
		ledger:  service.NewLedgerService(ledger, profiles, repository.NewRewardRepository(conn), opts...),
	}
}

func (o *operator) execute(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		return o.list(ctx, args[1:], out)
	case "complete":
		if len(args) != 2 {
			return errUsage
		}
		return o.resolve(ctx, args[1], model.PayoutStatusCompleted, "", out)
	case "fail":
		if len(args) < 3 {
			return errUsage
		}
		return o.resolve(ctx, args[1], model.PayoutStatusFailed, strings.Join(args[2:], " "), out)
	case "audit":
		if len(args) != 2 {
			return errUsage
		}
		return o.audit(ctx, args[1], out)
	}
	return errUsage
}

func (o *operator) list(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	status := fs.String("status", string(model.PayoutStatusPending), "payout status to list")
	limit := fs.Int("limit", 50, "maximum rows")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	list, err := o.payouts.ListByStatus(ctx, model.PayoutStatus(*status), *limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROFILE\tCOINS\tPAISE\tUPI\tSTATUS\tCREATED")
	for _, p := range list {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			p.ID, p.ProfileID, p.CoinsAmount, p.PaiseAmount, p.PayoutAddress, p.Status, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (o *operator) resolve(ctx context.Context, rawID string, status model.PayoutStatus, reason string, out io.Writer) error {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("payout id %q: %w", rawID, errUsage)
	}
	p, err := o.payouts.Resolve(ctx, id, status, reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "payout %d %s\n", p.ID, p.Status)
	return nil
}

func (o *operator) audit(ctx context.Context, rawID string, out io.Writer) error {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("profile id %q: %w", rawID, errUsage)
	}
	report, err := o.ledger.Audit(ctx, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
