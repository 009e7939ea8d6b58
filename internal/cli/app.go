package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/diner/internal/catalog"
	"github.com/dmitrijs2005/diner/internal/logging"
	"github.com/dmitrijs2005/diner/internal/metrics"
	"github.com/dmitrijs2005/diner/internal/payment"
	"github.com/dmitrijs2005/diner/internal/services"
	"github.com/dmitrijs2005/diner/internal/viewstate"
)

// Prompt indirections, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// AppDeps are the collaborators of the shell. In and Out default to the
// process stdin and stdout.
type AppDeps struct {
	Auth    services.AuthService
	Orders  services.OrderService
	Catalog catalog.DataSource
	Cards   *payment.Validator
	Metrics *metrics.Collector
	Log     logging.Logger
	In      io.Reader
	Out     io.Writer
}

type App struct {
	auth    services.AuthService
	orders  services.OrderService
	catalog catalog.DataSource
	cards   *payment.Validator
	metrics *metrics.Collector
	log     logging.Logger

	login *viewstate.LoginViewModel
	cart  *viewstate.OrderViewModel

	placed     <-chan int64
	stopPlaced func()
	reader     *bufio.Reader
	out        io.Writer
}

func NewApp(d AppDeps) *App {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Cards == nil {
		d.Cards = payment.NewValidator()
	}

	a := &App{
		auth:    d.Auth,
		orders:  d.Orders,
		catalog: d.Catalog,
		cards:   d.Cards,
		metrics: d.Metrics,
		log:     d.Log,
		login:   viewstate.NewLoginViewModel(d.Auth),
		cart:    viewstate.NewOrderViewModel(d.Orders),
		reader:  bufio.NewReader(d.In),
		out:     d.Out,
	}
	a.placed, a.stopPlaced = a.cart.Placed.Subscribe()
	return a
}

// Run loads the session, starts the live cart lists and serves commands
// until the input ends or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.stopPlaced()

	a.login.Init(ctx)
	a.cart.Start(ctx)

	a.say("Welcome to the diner (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) status() string {
	who := a.login.DisplayName.Get()
	if who == "" {
		who = "guest"
	}
	return fmt.Sprintf("(%s, cart %d)", who, len(a.cart.Pending.Get()))
}

func (a *App) say(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// reportStatus prints and clears the account status line.
func (a *App) reportStatus() {
	if s := a.login.Status.Get(); s != "" {
		a.say("%s", s)
		a.login.ClearStatus()
	}
}

// cartError turns the order view model's error state into an error.
func (a *App) cartError() error {
	msg := a.cart.Error.Get()
	if msg == "" {
		return nil
	}
	a.cart.ClearError()
	return errors.New(msg)
}

func (a *App) Stats(ctx context.Context) error {
	if a.metrics == nil {
		a.say("Metrics are disabled")
		return nil
	}
	return a.metrics.WriteText(a.out)
}
