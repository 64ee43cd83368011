package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/extensionhost/authbroker/allowances"
	"github.com/extensionhost/authbroker/authentication"
	"github.com/extensionhost/authbroker/providers"
	"github.com/extensionhost/authbroker/requests"
	"github.com/extensionhost/authbroker/usage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("demo failed")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	displayAppname("authbroker")

	broker, err := authentication.NewBroker(authentication.Repos{
		Allowances: allowances.NewInMemoryRepo(),
		Requests:   requests.NewInMemoryRepo(),
		Usage:      usage.NewInMemoryRepo(),
	}, newConsolePrompt(os.Stdin, os.Stdout), logSink{})
	if err != nil {
		return fmt.Errorf("NewBroker: %w", err)
	}

	dev, err := providers.NewDevProvider(
		"https://authbroker.localhost",
		[]byte("dev-secret"),
		authentication.Account{ID: "dev-account", Label: "Dev Account"},
	)
	if err != nil {
		return fmt.Errorf("NewDevProvider: %w", err)
	}

	dispose, err := broker.RegisterAuthenticationProvider("dev", "Dev Identity", dev, nil)
	if err != nil {
		return fmt.Errorf("RegisterAuthenticationProvider: %w", err)
	}
	defer dispose.Dispose()

	ctx := context.Background()
	extension := authentication.ExtensionDescriptor{ID: "demo.extension", Label: "Demo Extension"}

	session, err := broker.GetOrCreateSession(ctx, extension, "dev", []string{"profile", "email"})
	if err != nil {
		return fmt.Errorf("GetOrCreateSession: %w", err)
	}
	if session == nil {
		fmt.Println("Sign-in declined.")
		return nil
	}
	fmt.Printf("Signed in as %s, session %s\n", session.Account.Label, session.ID)
	fmt.Printf("Access token: %s\n", session.AccessToken)

	infos, err := broker.GetAuthenticationProvidersInfo(ctx)
	if err != nil {
		return fmt.Errorf("GetAuthenticationProvidersInfo: %w", err)
	}
	for _, info := range infos {
		for _, account := range info.Accounts {
			fmt.Printf("Provider %s: account %s\n", info.Label, account.AccountLabel)
		}
	}

	if err := broker.SignOut(ctx, "dev", session.ID); err != nil {
		return fmt.Errorf("SignOut: %w", err)
	}
	return nil
}

// logSink broadcasts broker notifications to the console log in place of a
// real UI transport.
type logSink struct{}

func (logSink) Send(channel string, payload any) {
	log.Info().Str("channel", channel).Interface("payload", payload).Msg("notification")
}

// consolePrompt renders message boxes on the terminal and reads the chosen
// button index from stdin.
type consolePrompt struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsolePrompt(in io.Reader, out io.Writer) *consolePrompt {
	return &consolePrompt{in: bufio.NewReader(in), out: out}
}

func (p *consolePrompt) ShowMessageBox(ctx context.Context, options authentication.MessageBoxOptions) (authentication.MessageBoxResult, error) {
	fmt.Fprintf(p.out, "\n%s\n%s\n", options.Title, options.Message)
	for i, button := range options.Buttons {
		fmt.Fprintf(p.out, "  [%d] %s\n", i, button)
	}

	for {
		if err := ctx.Err(); err != nil {
			return authentication.MessageBoxResult{}, err
		}

		fmt.Fprint(p.out, "> ")
		line, err := p.in.ReadString('\n')
		if err != nil {
			return authentication.MessageBoxResult{}, fmt.Errorf("reading response: %w", err)
		}

		response, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || response < 0 || response >= len(options.Buttons) {
			fmt.Fprintf(p.out, "enter a number between 0 and %d\n", len(options.Buttons)-1)
			continue
		}
		return authentication.MessageBoxResult{Response: response}, nil
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
