package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/committeehq/committee-client/internal/cli"
	"github.com/committeehq/committee-client/internal/committee"
	"github.com/committeehq/committee-client/internal/draw"
)

func runSignup(a *app, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	password := fs.String("password", "", "Password")
	role := fs.String("role", "user", "Account role")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *phone == "" || *password == "" {
		return fmt.Errorf("usage: committee signup --name NAME --email EMAIL --phone PHONE --password PASSWORD")
	}

	creds, err := a.svc.Register(context.Background(), committee.RegisterInput{
		Name:     *name,
		Email:    *email,
		PhoneNo:  *phone,
		Password: *password,
		Role:     *role,
	})
	if err != nil {
		return err
	}
	a.store.SetAuth(creds)
	cli.Success(fmt.Sprintf("account created, logged in as %s", displayUser(creds.User)))
	return nil
}

func runLogin(a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	phone := fs.String("phone", "", "Phone number")
	password := fs.String("password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *phone == "" || *password == "" {
		return fmt.Errorf("usage: committee login --phone PHONE --password PASSWORD")
	}

	creds, err := a.svc.Login(context.Background(), *phone, *password)
	if err != nil {
		return err
	}
	a.store.SetAuth(creds)
	cli.Success(fmt.Sprintf("logged in as %s", displayUser(creds.User)))
	return nil
}

func runLogout(a *app, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: committee logout")
	}
	if !a.store.IsAuthenticated() {
		cli.Info("not logged in")
		return nil
	}

	phone := a.store.User().PhoneNo
	// Server-side logout is best effort; the local session is cleared
	// regardless so a dead backend cannot pin a stale token.
	if err := a.svc.Logout(context.Background(), phone); err != nil {
		a.log.Warnf("server logout failed: %v", err)
	}
	a.store.ClearAuth()
	cli.Success("logged out")
	return nil
}

func runCommittees(a *app, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	items, err := a.svc.List(context.Background())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		cli.Info("no committees")
		return nil
	}

	tbl := cli.NewTable(os.Stdout, "ID", "NAME", "AMOUNT", "MEMBERS", "MONTHS", "START")
	for _, c := range items {
		tbl.AddRow(
			strconv.Itoa(c.ID),
			c.CommitteeName,
			formatAmount(c.CommitteeAmount),
			strconv.Itoa(c.CommissionMax),
			strconv.Itoa(c.NoOfMonths),
			c.StartCommitteeDate,
		)
	}
	tbl.Render()
	return nil
}

func runAnalysis(a *app, args []string) error {
	fs := flag.NewFlagSet("analysis", flag.ContinueOnError)
	committeeID := fs.Int("committee", 0, "Committee id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *committeeID <= 0 {
		return fmt.Errorf("usage: committee analysis --committee ID")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	item, err := a.svc.Analysis(context.Background(), *committeeID)
	if err != nil {
		return err
	}

	fmt.Printf("%s (committee %d)\n", item.CommitteeName, item.CommitteeID)
	tbl := cli.NewTable(os.Stdout, "METRIC", "VALUE")
	tbl.AddRow("members", strconv.Itoa(item.Analysis.TotalMembers))
	tbl.AddRow("total amount", formatAmount(item.Analysis.TotalCommitteeAmount))
	tbl.AddRow("paid amount", formatAmount(item.Analysis.TotalCommitteePaidAmount))
	tbl.AddRow("fine amount", formatAmount(item.Analysis.TotalCommitteeFineAmount))
	tbl.AddRow("draws completed", fmt.Sprintf("%d/%d", item.Analysis.NoOfDrawsCompleted, item.Analysis.TotalDraws))
	tbl.Render()
	return nil
}

func runMembers(a *app, args []string) error {
	fs := flag.NewFlagSet("members", flag.ContinueOnError)
	committeeID := fs.Int("committee", 0, "Committee id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *committeeID <= 0 {
		return fmt.Errorf("usage: committee members --committee ID")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	members, err := a.svc.Members(context.Background(), *committeeID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		cli.Info("no members")
		return nil
	}

	tbl := cli.NewTable(os.Stdout, "ID", "NAME", "PHONE", "DRAW DONE")
	for _, m := range members {
		done := ""
		if m.IsUserDrawCompleted || (m.User != nil && m.User.IsUserDrawCompleted) {
			done = "yes"
		}
		tbl.AddRow(strconv.Itoa(m.ID), m.DisplayName(), m.Phone(), done)
	}
	tbl.Render()
	return nil
}

func runDraws(a *app, args []string) error {
	fs := flag.NewFlagSet("draws", flag.ContinueOnError)
	committeeID := fs.Int("committee", 0, "Committee id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *committeeID <= 0 {
		return fmt.Errorf("usage: committee draws --committee ID")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	draws, err := a.svc.Draws(context.Background(), *committeeID)
	if err != nil {
		return err
	}
	if len(draws) == 0 {
		cli.Info("no draws")
		return nil
	}

	tbl := cli.NewTable(os.Stdout, "ID", "DATE", "TIME", "AMOUNT", "PAID", "DONE")
	for _, d := range draws {
		done := ""
		if d.IsDrawCompleted {
			done = "yes"
		}
		tbl.AddRow(
			strconv.Itoa(d.ID),
			d.CommitteeDrawDate,
			d.CommitteeDrawTime,
			formatAmount(d.CommitteeDrawAmount),
			formatAmount(d.CommitteeDrawPaid),
			done,
		)
	}
	tbl.Render()
	return nil
}

func runPaid(a *app, args []string) error {
	fs := flag.NewFlagSet("paid", flag.ContinueOnError)
	committeeID := fs.Int("committee", 0, "Committee id")
	drawID := fs.Int("draw", 0, "Draw id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *committeeID <= 0 || *drawID <= 0 {
		return fmt.Errorf("usage: committee paid --committee ID --draw ID")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	items, err := a.svc.UserWisePaid(context.Background(), *committeeID, *drawID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		cli.Info("no payment records")
		return nil
	}

	tbl := cli.NewTable(os.Stdout, "USER", "NAME", "PHONE", "PAID", "FINE")
	for _, p := range items {
		tbl.AddRow(
			strconv.Itoa(p.UserID),
			p.User.Name,
			p.User.PhoneNo,
			formatAmount(p.User.UserDrawAmountPaid),
			formatAmount(p.User.FineAmountPaid),
		)
	}
	tbl.Render()
	return nil
}

func runPay(a *app, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ContinueOnError)
	committeeID := fs.Int("committee", 0, "Committee id")
	drawID := fs.Int("draw", 0, "Draw id")
	userID := fs.Int("user", 0, "User id")
	amount := fs.Float64("amount", 0, "Amount paid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *committeeID <= 0 || *drawID <= 0 || *userID <= 0 {
		return fmt.Errorf("usage: committee pay --committee ID --draw ID --user ID --amount N")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	res, err := a.svc.UpdateUserWisePaid(context.Background(), *committeeID, *userID, *drawID, *amount)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("payment update rejected: %s", res.Message)
	}
	if res.Message != "" {
		cli.Success(res.Message)
	} else {
		cli.Success("payment recorded")
	}
	return nil
}

// runAmount edits a draw amount. With --amount it sends once; without it the
// command reads amounts from stdin and debounces them, so rapid corrections
// collapse into a single request after the quiet period.
func runAmount(a *app, args []string) error {
	fs := flag.NewFlagSet("amount", flag.ContinueOnError)
	committeeID := fs.Int("committee", 0, "Committee id")
	drawID := fs.Int("draw", 0, "Draw id")
	amount := fs.Float64("amount", 0, "New draw amount (omit for interactive mode)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *committeeID <= 0 || *drawID <= 0 {
		return fmt.Errorf("usage: committee amount --committee ID --draw ID [--amount N]")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if *amount != 0 {
		res, err := a.svc.UpdateDrawAmount(context.Background(), *committeeID, *drawID, *amount)
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("amount update rejected: %s", res.Message)
		}
		cli.Success(fmt.Sprintf("draw %d amount set to %s", *drawID, formatAmount(*amount)))
		return nil
	}

	return amountEditor(a, *committeeID, *drawID)
}

// amountEditor is the interactive debounced editor. Every line typed replaces
// the pending amount; only the value that survives the quiet period is sent.
// A failed send reverts to the last known server value.
func amountEditor(a *app, committeeID, drawID int) error {
	draws, err := a.svc.Draws(context.Background(), committeeID)
	if err != nil {
		return err
	}
	known := 0.0
	found := false
	for _, d := range draws {
		if d.ID == drawID {
			known = d.CommitteeDrawAmount
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("draw %d not found in committee %d", drawID, committeeID)
	}

	fmt.Printf("draw %d current amount %s, type new amounts (empty line to finish):\n", drawID, formatAmount(known))
	return editAmounts(a.svc, committeeID, drawID, known, os.Stdin, draw.DefaultDebounce)
}

// editAmounts drives the debounced edit loop. The flush callback runs on the
// debouncer's timer goroutine, so every outcome is handed back over a channel
// and only the reading loop touches the returned error.
func editAmounts(svc *committee.Service, committeeID, drawID int, known float64, input io.Reader, delay time.Duration) error {
	results := make(chan error, 16)
	var deb *draw.Debouncer
	deb = draw.NewDebouncer(delay, func(id int, amount float64) {
		res, err := svc.UpdateDrawAmount(context.Background(), committeeID, id, amount)
		switch {
		case err != nil:
			reverted, _ := deb.Known(id)
			cli.Error(fmt.Sprintf("update failed, reverting to %s: %v", formatAmount(reverted), err))
			results <- err
		case !res.Success:
			reverted, _ := deb.Known(id)
			cli.Error(fmt.Sprintf("update rejected, reverting to %s: %s", formatAmount(reverted), res.Message))
			results <- fmt.Errorf("amount update rejected: %s", res.Message)
		default:
			deb.SetKnown(id, amount)
			cli.Success(fmt.Sprintf("draw %d amount set to %s", id, formatAmount(amount)))
			results <- nil
		}
	})
	deb.SetKnown(drawID, known)
	defer deb.Close()

	var fatal error
	drain := func() {
		for {
			select {
			case err := <-results:
				if err != nil {
					fatal = err
				}
			default:
				return
			}
		}
	}

	edited := false
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		amount, err := strconv.ParseFloat(line, 64)
		if err != nil {
			cli.Warning(fmt.Sprintf("not a number: %s", line))
			continue
		}
		if amount <= 0 {
			cli.Warning("amount must be greater than 0")
			continue
		}
		deb.Edit(drawID, amount)
		edited = true
		drain()
	}
	drain()

	// At most one timer can still be pending for the draw. An edit matching
	// the known value is skipped without a result, so the wait is bounded.
	if edited {
		select {
		case err := <-results:
			if err != nil {
				fatal = err
			}
		case <-time.After(delay + 500*time.Millisecond):
		}
	}
	drain()
	return fatal
}

func runTimer(a *app, args []string) error {
	fs := flag.NewFlagSet("timer", flag.ContinueOnError)
	duration := fs.Duration("duration", draw.DefaultCountdown, "Countdown duration")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	line := cli.NewCountdownLine("draw closes in")
	expired := make(chan struct{})

	countdown := draw.NewCountdown(draw.CountdownConfig{
		Duration: *duration,
		Announce: func(text string) { a.log.Info(text) },
		OnTick: func(remaining time.Duration) {
			line.Tick(int(remaining / time.Second))
		},
		OnExpire: func() { close(expired) },
		Logger:   a.log.With("component", "timer"),
	})
	if err := countdown.Start(); err != nil {
		return err
	}

	select {
	case <-expired:
		line.Done("time is up")
	case <-ctx.Done():
		countdown.Stop()
		line.Done("countdown stopped")
	}
	return nil
}

// runLottery plays the reveal animation while the server picks a winner, then
// records the payout against the winning member's payment record.
func runLottery(a *app, args []string) error {
	fs := flag.NewFlagSet("lottery", flag.ContinueOnError)
	committeeID := fs.Int("committee", 0, "Committee id")
	drawID := fs.Int("draw", 0, "Draw id")
	amount := fs.Float64("amount", 0, "Payout amount recorded for the winner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *committeeID <= 0 || *drawID <= 0 {
		return fmt.Errorf("usage: committee lottery --committee ID --draw ID [--amount N]")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	members, err := a.svc.Members(ctx, *committeeID)
	if err != nil {
		return err
	}

	spinner := cli.NewSpinner("picking winner...")
	if frames := memberFrames(members); len(frames) > 0 {
		spinner.SetFrames(frames)
	}

	type outcome struct {
		winner  committee.Winner
		message string
	}
	winnerCh := make(chan outcome, 1)
	errCh := make(chan error, 1)

	lottery := draw.NewLottery(draw.LotteryConfig{
		Pick: func(ctx context.Context) (committee.Winner, string, error) {
			w, msg, err := a.svc.LotteryRandomUser(ctx, *committeeID)
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
			return w, msg, err
		},
		OnWinner: func(w committee.Winner, msg string) {
			winnerCh <- outcome{winner: w, message: msg}
		},
		Logger: a.log.With("component", "lottery"),
	})

	spinner.Start()
	if err := lottery.Open(ctx); err != nil {
		spinner.Stop()
		return err
	}
	defer lottery.Close()

	var won outcome
	select {
	case won = <-winnerCh:
	case err := <-errCh:
		spinner.Stop()
		return err
	case <-ctx.Done():
		spinner.Stop()
		return ctx.Err()
	}

	spinner.Success(fmt.Sprintf("winner: %s (user %d)", winnerName(won.winner), won.winner.WinnerUserID()))
	if won.message != "" {
		cli.Info(won.message)
	}

	if *amount > 0 {
		res, err := a.svc.SubmitLotteryResult(ctx, *committeeID, won.winner.WinnerUserID(), *drawID, *amount)
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("payout update rejected: %s", res.Message)
		}
		cli.Success(fmt.Sprintf("payout of %s recorded for user %d", formatAmount(*amount), won.winner.WinnerUserID()))
	}
	return nil
}

func memberFrames(members []committee.MemberItem) []string {
	frames := make([]string, 0, len(members))
	for _, m := range members {
		if name := m.DisplayName(); name != "" {
			frames = append(frames, name)
		}
	}
	return frames
}

func winnerName(w committee.Winner) string {
	if name := w.DisplayName(); name != "" {
		return name
	}
	return "unknown"
}

func displayUser(u committee.User) string {
	switch {
	case u.Name != "" && u.PhoneNo != "":
		return fmt.Sprintf("%s (%s)", u.Name, u.PhoneNo)
	case u.Name != "":
		return u.Name
	case u.PhoneNo != "":
		return u.PhoneNo
	default:
		return "unknown user"
	}
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
