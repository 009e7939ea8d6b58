package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for the shell's own output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App implements
// it; tests use a recording stub.
type execIface interface {
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Passwd(ctx context.Context) error
	Switch(ctx context.Context, args []string) error

	Menu(ctx context.Context, args []string) error
	Meal(ctx context.Context, args []string) error

	Add(ctx context.Context, args []string) error
	Order(ctx context.Context, args []string) error
	Cart(ctx context.Context) error
	History(ctx context.Context) error
	Qty(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Clear(ctx context.Context) error
	Submit(ctx context.Context, args []string) error
	Checkout(ctx context.Context) error

	Theme(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
}

const helpText = `Available commands:
  menu [category], meal <id>
  add <mealId> [qty], order <mealId> [qty], cart, history
  qty <id> <n>, remove <id>, clear, submit [id...], checkout
  signup, login, logout, whoami, passwd, switch <id>
  theme [light|dark], stats, help, exit`

// runREPL reads commands from reader until EOF, "exit" or "quit", or until
// ctx is done. Handler errors are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("diner %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var cmdErr error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "signup", "register":
			cmdErr = a.SignUp(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "passwd":
			cmdErr = a.Passwd(ctx)
		case "switch":
			cmdErr = a.Switch(ctx, args)

		case "menu":
			cmdErr = a.Menu(ctx, args)
		case "meal":
			cmdErr = a.Meal(ctx, args)

		case "add":
			cmdErr = a.Add(ctx, args)
		case "order":
			cmdErr = a.Order(ctx, args)
		case "cart":
			cmdErr = a.Cart(ctx)
		case "history":
			cmdErr = a.History(ctx)
		case "qty":
			cmdErr = a.Qty(ctx, args)
		case "remove", "rm":
			cmdErr = a.Remove(ctx, args)
		case "clear":
			cmdErr = a.Clear(ctx)
		case "submit":
			cmdErr = a.Submit(ctx, args)
		case "checkout":
			cmdErr = a.Checkout(ctx)

		case "theme":
			cmdErr = a.Theme(ctx, args)
		case "stats":
			cmdErr = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
