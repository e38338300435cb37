package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/famez/mschapv2-crack/session"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

var errNoInput = errors.New("no exchange given, use -c/-r/-u, --pcap, --radius or --eap-challenge/--eap-response")

var errInterrupted = errors.New("interrupted")

var (
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	promptInputs    = promptMissing
)

//loadExchanges collects the exchanges from the single input source given on the command line.
//Missing manual values are asked for when stdin is a terminal.
func loadExchanges(opts *options) ([]*session.Exchange, error) {

	manual := opts.challenge != "" || opts.response != ""
	eapPair := opts.eapChallenge != "" || opts.eapResponse != ""

	sources := 0
	for _, given := range []bool{opts.pcap != "", opts.radius != "", eapPair, manual} {
		if given {
			sources++
		}
	}

	if sources > 1 {
		return nil, errors.New("more than one input source given")
	}

	switch {
	case opts.pcap != "":
		return readCapture(opts.pcap)

	case opts.radius != "":
		exchange, err := session.ParseRadiusPacket(opts.radius)
		if err != nil {
			return nil, err
		}
		return []*session.Exchange{exchange}, nil

	case eapPair:
		if opts.eapChallenge == "" || opts.eapResponse == "" {
			return nil, errors.New("--eap-challenge and --eap-response go together")
		}
		exchange, err := session.ParseEapPackets(opts.eapChallenge, opts.eapResponse)
		if err != nil {
			return nil, err
		}
		return []*session.Exchange{exchange}, nil
	}

	if opts.challenge == "" || opts.response == "" || opts.user == "" {

		//stdin is taken by the wordlist or not a terminal
		if opts.wordlist == "-" || !stdinIsTerminal() {
			if opts.challenge == "" || opts.response == "" {
				return nil, errNoInput
			}
			warn_("No user name given (-u), the challenge hash uses an empty one")
		} else if err := promptInputs(opts); err != nil {
			return nil, err
		}
	}

	exchange, err := session.ParseExchange(opts.challenge, opts.response, session.StripDomain(opts.user))
	if err != nil {
		return nil, err
	}

	return []*session.Exchange{exchange}, nil
}

func readCapture(path string) ([]*session.Exchange, error) {

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture: %w", err)
	}
	defer file.Close()

	exchanges, err := session.ReadCapture(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	info_("Found %d exchanges in %s", len(exchanges), path)

	for i, exchange := range exchanges {
		debug_("%d: %s", i+1, exchange)
	}

	return exchanges, nil
}

func promptMissing(opts *options) error {

	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fields := []struct {
		label string
		value *string
	}{
		{"Auth challenge", &opts.challenge},
		{"NT response", &opts.response},
		{"User name", &opts.user},
	}

	for _, field := range fields {

		if *field.value != "" {
			continue
		}

		rl.SetPrompt(fmt.Sprintf("%s%s:%s ", colorCyan, field.label, colorReset))

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				return errInterrupted
			}
			return fmt.Errorf("reading %s: %w", strings.ToLower(field.label), err)
		}

		*field.value = strings.TrimSpace(line)
	}

	return nil
}
